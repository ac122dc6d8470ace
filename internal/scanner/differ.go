package scanner

import (
	"context"
	"log/slog"
	"time"

	"github.com/listenupapp/cuescan/internal/store"
)

// SidecarTimeFunc returns the modification time of an audio file's sidecar
// cuesheet, if it has one.
type SidecarTimeFunc func(audioPath string) (time.Time, bool)

// Differ decides which discovered files need analysis.
type Differ struct {
	logger      *slog.Logger
	sidecarTime SidecarTimeFunc
}

// NewDiffer creates a differ. sidecarTime may be nil, in which case sidecar
// edits alone do not mark a file as changed.
func NewDiffer(logger *slog.Logger, sidecarTime SidecarTimeFunc) *Differ {
	return &Differ{
		logger:      logger,
		sidecarTime: sidecarTime,
	}
}

// ComputeDiff compares walked files against the catalog stamps of the same
// tree. With force set every walked file counts as added or updated.
func (d *Differ) ComputeDiff(ctx context.Context, walked []FileData, existing map[string]store.FileStamp, force bool) (*ScanDiff, error) {
	diff := &ScanDiff{
		Added:     make([]FileData, 0),
		Updated:   make([]FileData, 0),
		Unchanged: make([]string, 0),
		Removed:   make([]string, 0),
	}

	seen := make(map[string]bool, len(walked))

	for _, f := range walked {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		seen[f.Path] = true

		stamp, ok := existing[f.Path]
		switch {
		case !ok:
			diff.Added = append(diff.Added, f)
		case force || d.hasChanged(f, stamp):
			diff.Updated = append(diff.Updated, f)
		default:
			diff.Unchanged = append(diff.Unchanged, f.Path)
		}
	}

	for path := range existing {
		if !seen[path] {
			diff.Removed = append(diff.Removed, path)
		}
	}

	d.logger.Info("diff computed",
		"added", len(diff.Added),
		"updated", len(diff.Updated),
		"unchanged", len(diff.Unchanged),
		"removed", len(diff.Removed),
	)

	return diff, nil
}

// hasChanged reports whether the audio file or its sidecar changed since
// the file was cataloged.
func (d *Differ) hasChanged(f FileData, stamp store.FileStamp) bool {
	if f.Size != stamp.Size || !f.ModTime.Equal(stamp.ModTime) {
		return true
	}
	if d.sidecarTime == nil {
		return false
	}
	if cueTime, ok := d.sidecarTime(f.Path); ok && cueTime.After(stamp.ScannedAt) {
		return true
	}
	return false
}
