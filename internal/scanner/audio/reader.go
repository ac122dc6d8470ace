// Package audio reads the cuesheet-relevant metadata of audio containers.
package audio

import (
	"context"
	"strings"
	"time"

	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// Reader extracts container metadata from an audio file.
type Reader interface {
	// Read opens path and returns its decoded metadata.
	Read(ctx context.Context, path string) (*Container, error)
}

// Container is the decoded metadata of one audio file.
type Container struct {
	Format   string
	Codec    string
	Duration time.Duration

	// Album is seeded from the container tags, with SampleRate and
	// SampleCount set when known.
	Album cuesheet.Record

	// Comments holds raw KEY=value entries, including CUESHEET and
	// CUE_TRACKnn_FIELD entries.
	Comments []string

	// CueBlock is the native track table, if the container has one.
	CueBlock *cuesheet.CueBlock
}

// Input returns the cuesheet extraction input for this container.
func (c *Container) Input(sidecar cuesheet.SidecarFunc) cuesheet.Input {
	return cuesheet.Input{
		Comments: c.Comments,
		CueBlock: c.CueBlock,
		Sidecar:  sidecar,
	}
}

// seedFromComments applies plain tag entries to the album record. Entries
// that carry cuesheet data are left for the cuesheet extractor.
func seedFromComments(album *cuesheet.Record, comments []string) {
	for _, c := range comments {
		key, value, ok := strings.Cut(c, "=")
		if !ok || value == "" {
			continue
		}
		if strings.EqualFold(key, "CUESHEET") || hasPrefixFold(key, "CUE_TRACK") {
			continue
		}
		cuesheet.Resolve(album, key, value)
	}
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// samplesFor converts a duration to a sample count at rate.
func samplesFor(d time.Duration, rate uint32) int64 {
	if d <= 0 || rate == 0 {
		return 0
	}
	return int64(d) / int64(time.Millisecond) * int64(rate) / 1000
}
