package domain

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// FileIDPrefix prefixes catalog IDs of audio files.
const FileIDPrefix = "file"

// AudioFile is one scanned audio file and the track table extracted from it.
// A file without a cuesheet is still cataloged, with an empty Tracks slice.
type AudioFile struct {
	ID   string `json:"id"`
	Path string `json:"path"`

	Format string        `json:"format"`
	Codec  string        `json:"codec,omitempty"`
	Size   int64         `json:"size"`
	Length time.Duration `json:"duration"`

	// Sources names the inputs that produced Tracks, such as "embedded" or
	// "sidecar+cueblock".
	Sources   string            `json:"sources"`
	GenreSlug string            `json:"genre_slug,omitempty"`
	Album     cuesheet.Record   `json:"album"`
	Tracks    []cuesheet.Record `json:"tracks"`

	ModTime   time.Time `json:"mod_time"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Name returns the file name without its directory.
func (f *AudioFile) Name() string {
	return filepath.Base(f.Path)
}

// Ext returns the lower-cased extension, including the dot.
func (f *AudioFile) Ext() string {
	return strings.ToLower(filepath.Ext(f.Path))
}

// HasCuesheet reports whether any track was extracted.
func (f *AudioFile) HasCuesheet() bool {
	return len(f.Tracks) > 0
}

// PlayableTracks returns the tracks that were finalized and are not
// disabled, in table order.
func (f *AudioFile) PlayableTracks() []cuesheet.Record {
	var out []cuesheet.Record
	for _, t := range f.Tracks {
		if t.Subtrack && !t.Disabled {
			out = append(out, t)
		}
	}
	return out
}

// Stale reports whether the file on disk changed since it was cataloged.
func (f *AudioFile) Stale(size int64, modTime time.Time) bool {
	return f.Size != size || !f.ModTime.Equal(modTime)
}
