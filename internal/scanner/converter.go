package scanner

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/listenupapp/cuescan/internal/domain"
	"github.com/listenupapp/cuescan/internal/normalize"
	"github.com/listenupapp/cuescan/internal/scanner/audio"
	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// ConvertToAudioFile builds the catalog entry for an analyzed file. Text
// fields are normalized; res may be nil for a file whose cuesheet could not
// be extracted.
func ConvertToAudioFile(fd FileData, c *audio.Container, res *cuesheet.Result) *domain.AudioFile {
	f := &domain.AudioFile{
		Path:      fd.Path,
		Size:      fd.Size,
		ModTime:   fd.ModTime,
		Sources:   cuesheet.Source(0).String(),
		Tracks:    []cuesheet.Record{},
		ScannedAt: time.Now(),
	}

	if c != nil {
		f.Format = strings.ToLower(c.Format)
		f.Codec = c.Codec
		f.Length = c.Duration
		f.Album = c.Album
	}
	if f.Format == "" || f.Format == "unknown" {
		f.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(fd.Path)), ".")
	}
	if f.Length == 0 && f.Album.SampleRate > 0 {
		f.Length = samplesToDuration(f.Album.SampleCount, f.Album.SampleRate)
	}

	if res != nil {
		f.Sources = res.Sources.String()
		if res.Tracks != nil {
			f.Tracks = res.Tracks
		}
	}

	normalize.Record(&f.Album)
	for i := range f.Tracks {
		normalize.Record(&f.Tracks[i])
	}
	f.GenreSlug = genreSlug(f)

	return f
}

// genreSlug picks the album genre, or the first track genre when the album
// has none.
func genreSlug(f *domain.AudioFile) string {
	if f.Album.Genre != "" {
		return normalize.Slug(f.Album.Genre)
	}
	for _, t := range f.Tracks {
		if t.Genre != "" {
			return normalize.Slug(t.Genre)
		}
	}
	return ""
}

// samplesToDuration splits whole seconds from the remainder so long
// recordings do not overflow.
func samplesToDuration(samples int64, rate uint32) time.Duration {
	r := int64(rate)
	return time.Duration(samples/r)*time.Second + time.Duration(samples%r)*time.Second/time.Duration(r)
}
