package audio

import (
	"fmt"
	"time"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/meta"

	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// readFLAC decodes the metadata blocks of a FLAC stream. STREAMINFO gives
// the exact sample count, VORBIS_COMMENT the raw tag entries and CUESHEET the
// native track table.
func readFLAC(path string) (*Container, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac %s: %w", path, err)
	}
	defer stream.Close() //nolint:errcheck // read-only

	c := &Container{
		Format: "FLAC",
		Codec:  "flac",
	}
	if info := stream.Info; info != nil {
		c.Album.SampleRate = info.SampleRate
		c.Album.SampleCount = int64(info.NSamples)
		if info.SampleRate > 0 {
			c.Duration = time.Duration(float64(info.NSamples) / float64(info.SampleRate) * float64(time.Second))
		}
	}

	for _, block := range stream.Blocks {
		switch body := block.Body.(type) {
		case *meta.VorbisComment:
			c.Comments = append(c.Comments, commentEntries(body)...)
		case *meta.CueSheet:
			c.CueBlock = convertCueSheet(body)
		}
	}

	seedFromComments(&c.Album, c.Comments)
	return c, nil
}

func commentEntries(vc *meta.VorbisComment) []string {
	entries := make([]string, 0, len(vc.Tags))
	for _, tag := range vc.Tags {
		entries = append(entries, tag[0]+"="+tag[1])
	}
	return entries
}

func convertCueSheet(cs *meta.CueSheet) *cuesheet.CueBlock {
	block := &cuesheet.CueBlock{
		Tracks: make([]cuesheet.CueBlockTrack, 0, len(cs.Tracks)),
	}
	for _, t := range cs.Tracks {
		bt := cuesheet.CueBlockTrack{
			Number:   int(t.Num),
			Offset:   int64(t.Offset),
			NonAudio: !t.IsAudio,
		}
		for _, idx := range t.Indicies {
			bt.Indexes = append(bt.Indexes, cuesheet.CueBlockIndex{
				Number: int(idx.Num),
				Offset: int64(idx.Offset),
			})
		}
		block.Tracks = append(block.Tracks, bt)
	}
	return block
}
