package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/listenupapp/cuescan/internal/domain"
	"github.com/listenupapp/cuescan/internal/errors"
	"github.com/listenupapp/cuescan/internal/store"
)

// audioExtensions lists the containers that may carry or accompany a
// cuesheet.
var audioExtensions = map[string]bool{
	".flac": true,
	".ape":  true,
	".wv":   true,
	".tta":  true,
	".wav":  true,
	".aiff": true,
	".aif":  true,
	".mp3":  true,
	".m4a":  true,
	".m4b":  true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".wma":  true,
	".mpc":  true,
}

// IsAudioExt reports whether ext (with its dot, any case) is a scanned
// audio extension.
func IsAudioExt(ext string) bool {
	return audioExtensions[strings.ToLower(ext)]
}

// IsAudioPath reports whether path has a scanned audio extension.
func IsAudioPath(path string) bool {
	return IsAudioExt(filepath.Ext(path))
}

// Scanner orchestrates walking, analysis and catalog updates.
type Scanner struct {
	store  store.Store
	logger *slog.Logger

	walker   *Walker
	analyzer *Analyzer
	differ   *Differ
}

// NewScanner creates a new scanner. st may be nil, in which case every scan
// behaves as a dry run against an empty catalog.
func NewScanner(st store.Store, walker *Walker, analyzer *Analyzer, differ *Differ, logger *slog.Logger) *Scanner {
	return &Scanner{
		store:    st,
		logger:   logger,
		walker:   walker,
		analyzer: analyzer,
		differ:   differ,
	}
}

// ScanOptions configures a scan.
type ScanOptions struct {
	OnProgress func(*Progress)
	Workers    int
	Force      bool // re-analyze unchanged files
	DryRun     bool // analyze without touching the catalog
}

func (s *Scanner) dryRun(opts ScanOptions) bool {
	return opts.DryRun || s.store == nil
}

// Scan walks root, analyzes new and changed audio files and applies the
// result to the catalog. Files that disappeared from root are removed.
func (s *Scanner) Scan(ctx context.Context, root string, opts ScanOptions) (*ScanResult, error) {
	root = filepath.Clean(root)
	info, err := s.walker.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root not accessible: %w", err)
	}
	if !info.IsDir() {
		return nil, errors.Validationf("scan root %s is not a directory", root)
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}

	result := &ScanResult{
		Root:      root,
		StartedAt: time.Now(),
	}

	tracker := NewProgressTracker(opts.OnProgress)
	defer tracker.Close()

	files := s.walkFilesystem(ctx, root, tracker, result)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	diff, err := s.computeDiff(ctx, root, files, tracker, opts)
	if err != nil {
		return nil, err
	}
	result.Unchanged = len(diff.Unchanged)

	analyzed, err := s.analyzeFiles(ctx, diff, tracker, result, opts)
	if err != nil {
		return nil, err
	}

	if err := s.applyChanges(ctx, analyzed, diff, tracker, result, opts); err != nil {
		return nil, err
	}

	result.CompletedAt = time.Now()
	tracker.SetPhase(PhaseComplete)
	progress := tracker.Get()
	result.Progress = &progress

	s.logger.Info("scan complete",
		"root", root,
		"duration", result.CompletedAt.Sub(result.StartedAt),
		"files", result.Files,
		"added", result.Added,
		"updated", result.Updated,
		"removed", result.Removed,
		"unchanged", result.Unchanged,
		"with_cues", result.WithCues,
		"errors", result.Errors,
	)

	return result, nil
}

// walkFilesystem collects the audio files under root.
func (s *Scanner) walkFilesystem(ctx context.Context, root string, tracker *ProgressTracker, result *ScanResult) []FileData {
	tracker.SetPhase(PhaseWalking)
	s.logger.Info("starting walk", "path", root)

	files := make([]FileData, 0, 100)
	for wr := range s.walker.Walk(ctx, root) {
		if wr.Error != nil {
			tracker.AddError(ScanError{
				Path:  wr.File.Path,
				Phase: PhaseWalking,
				Error: wr.Error,
				Time:  time.Now(),
			})
			result.Errors++
			continue
		}
		files = append(files, wr.File)
		tracker.Increment(wr.File.Path)
	}

	result.Files = len(files)
	s.logger.Info("walk complete", "files", len(files))
	return files
}

// computeDiff compares the walk against the catalog.
func (s *Scanner) computeDiff(ctx context.Context, root string, files []FileData, tracker *ProgressTracker, opts ScanOptions) (*ScanDiff, error) {
	tracker.SetPhase(PhaseDiffing)

	var existing map[string]store.FileStamp
	if s.store != nil {
		var err error
		prefix := root
		if !strings.HasSuffix(prefix, string(filepath.Separator)) {
			prefix += string(filepath.Separator)
		}
		existing, err = s.store.FileStamps(ctx, prefix)
		if err != nil {
			return nil, fmt.Errorf("load catalog stamps: %w", err)
		}
	}

	return s.differ.ComputeDiff(ctx, files, existing, opts.Force)
}

// analyzeFiles runs the analyzer over added and updated files.
func (s *Scanner) analyzeFiles(ctx context.Context, diff *ScanDiff, tracker *ProgressTracker, result *ScanResult, opts ScanOptions) ([]AnalyzeResult, error) {
	work := make([]FileData, 0, len(diff.Added)+len(diff.Updated))
	work = append(work, diff.Added...)
	work = append(work, diff.Updated...)

	tracker.SetPhase(PhaseAnalyzing)
	tracker.SetTotal(len(work))
	s.logger.Info("analyzing files", "count", len(work), "workers", opts.Workers)

	analyzed, err := s.analyzer.Analyze(ctx, work, AnalyzeOptions{
		Workers: opts.Workers,
		OnFile: func(r AnalyzeResult) {
			tracker.Increment(r.File.Path)
			if r.Err != nil {
				tracker.AddError(ScanError{
					Path:  r.File.Path,
					Phase: PhaseAnalyzing,
					Error: r.Err,
					Time:  time.Now(),
				})
				result.Errors++
			}
		},
	})
	if err != nil {
		return nil, err
	}

	for _, r := range analyzed {
		if r.Audio == nil {
			continue
		}
		result.Items = append(result.Items, r.Audio)
		if r.Audio.HasCuesheet() {
			result.WithCues++
		}
	}
	return analyzed, nil
}

// applyChanges writes analyzed files and drops removed ones.
func (s *Scanner) applyChanges(ctx context.Context, analyzed []AnalyzeResult, diff *ScanDiff, tracker *ProgressTracker, result *ScanResult, opts ScanOptions) error {
	added := make(map[string]bool, len(diff.Added))
	for _, f := range diff.Added {
		added[f.Path] = true
	}

	if s.dryRun(opts) {
		s.logger.Info("dry run mode - skipping catalog updates")
		for _, r := range analyzed {
			if r.Audio == nil {
				continue
			}
			if added[r.File.Path] {
				result.Added++
			} else {
				result.Updated++
			}
		}
		result.Removed = len(diff.Removed)
		return nil
	}

	tracker.SetPhase(PhaseApplying)
	tracker.SetTotal(len(analyzed) + len(diff.Removed))

	for _, r := range analyzed {
		if err := ctx.Err(); err != nil {
			return err
		}
		tracker.Increment(r.File.Path)
		if r.Audio == nil {
			continue
		}

		if err := s.store.SaveFile(ctx, r.Audio); err != nil {
			tracker.AddError(ScanError{
				Path:  r.File.Path,
				Phase: PhaseApplying,
				Error: fmt.Errorf("save %s: %w", r.File.Path, err),
				Time:  time.Now(),
			})
			result.Errors++
			continue
		}

		if added[r.File.Path] {
			result.Added++
			tracker.Record(1, 0, 0)
		} else {
			result.Updated++
			tracker.Record(0, 1, 0)
		}
	}

	for _, path := range diff.Removed {
		if err := ctx.Err(); err != nil {
			return err
		}
		tracker.Increment(path)
		if err := s.store.DeleteFileByPath(ctx, path); err != nil && !errors.Is(err, store.ErrNotFound) {
			tracker.AddError(ScanError{
				Path:  path,
				Phase: PhaseApplying,
				Error: fmt.Errorf("remove %s: %w", path, err),
				Time:  time.Now(),
			})
			result.Errors++
			continue
		}
		result.Removed++
		tracker.Record(0, 0, 1)
	}

	return nil
}

// ScanFile analyzes a single audio file and saves it unless opts.DryRun is
// set.
func (s *Scanner) ScanFile(ctx context.Context, path string, opts ScanOptions) (*domain.AudioFile, error) {
	if !IsAudioPath(path) {
		return nil, errors.Unsupportedf("%s is not a supported audio file", path)
	}

	fd, err := s.walker.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := s.analyzer.AnalyzeFile(ctx, fd)
	if err != nil {
		return nil, err
	}

	if s.dryRun(opts) {
		return f, nil
	}
	if err := s.store.SaveFile(ctx, f); err != nil {
		return nil, fmt.Errorf("save %s: %w", path, err)
	}
	s.logger.Info("file scanned", "path", path, "id", f.ID, "tracks", len(f.Tracks), "sources", f.Sources)
	return f, nil
}

// RemoveFile drops path from the catalog. A path that was never cataloged
// is not an error.
func (s *Scanner) RemoveFile(ctx context.Context, path string) error {
	if s.store == nil {
		return nil
	}
	err := s.store.DeleteFileByPath(ctx, path)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	if err == nil {
		s.logger.Info("file removed", "path", path)
	}
	return nil
}
