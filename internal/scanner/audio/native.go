package audio

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/simonhull/audiometa"

	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// NativeReader reads containers without external tools. FLAC streams are
// decoded block by block; other formats go through audiometa. When both fail
// the optional fallback reader is tried.
type NativeReader struct {
	logger   *slog.Logger
	fallback Reader
}

// NewNativeReader creates a reader. fallback may be nil.
func NewNativeReader(logger *slog.Logger, fallback Reader) *NativeReader {
	return &NativeReader{
		logger:   logger,
		fallback: fallback,
	}
}

// Read implements Reader.
func (r *NativeReader) Read(ctx context.Context, path string) (*Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(path), ".flac") {
		c, err := readFLAC(path)
		if err == nil {
			return c, nil
		}
		r.logger.Warn("native flac read failed, trying tag reader", "path", path, "error", err)
	}

	c, err := r.readTags(ctx, path)
	if err == nil {
		return c, nil
	}
	if r.fallback == nil {
		return nil, err
	}

	r.logger.Debug("tag reader failed, using fallback", "path", path, "error", err)
	return r.fallback.Read(ctx, path)
}

// readTags seeds the album record from format-agnostic tags.
func (r *NativeReader) readTags(ctx context.Context, path string) (*Container, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read tags %s: %w", path, err)
	}
	defer file.Close() //nolint:errcheck // read-only

	c := &Container{
		Format:   file.Format.String(),
		Duration: file.Audio.Duration,
	}

	album := &c.Album
	album.SampleRate = uint32(max(file.Audio.SampleRate, 0))
	album.SampleCount = samplesFor(c.Duration, album.SampleRate)

	tags := file.Tags
	album.SetString(cuesheet.FieldTitle, tags.Title)
	album.SetString(cuesheet.FieldAlbum, tags.Album)
	album.SetString(cuesheet.FieldArtist, tags.Artist)
	album.SetString(cuesheet.FieldAlbumArtist, tags.AlbumArtist)
	album.SetString(cuesheet.FieldComment, tags.Comment)
	if len(tags.Genres) > 0 {
		album.SetString(cuesheet.FieldGenre, tags.Genres[0])
	}
	if len(tags.Composers) > 0 {
		album.SetString(cuesheet.FieldComposer, tags.Composers[0])
	}
	album.SetUint(cuesheet.FieldYear, uint32(max(tags.Year, 0)))
	album.SetUint(cuesheet.FieldTotalTracks, uint32(max(tags.TrackTotal, 0)))
	album.SetUint(cuesheet.FieldDisc, uint32(max(tags.DiscNumber, 0)))
	album.SetUint(cuesheet.FieldTotalDiscs, uint32(max(tags.DiscTotal, 0)))

	return c, nil
}
