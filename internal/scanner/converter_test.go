package scanner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/cuescan/internal/scanner/audio"
	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

func TestConvertToAudioFile(t *testing.T) {
	mod := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	fd := FileData{Path: "/music/live.flac", Size: 99, ModTime: mod}
	c := &audio.Container{
		Format:   "FLAC",
		Codec:    "flac",
		Duration: 90 * time.Second,
		Album: cuesheet.Record{
			Album:      "  Live\tat  the Hall ",
			Genre:      "Progressive Rock",
			SampleRate: 44100,
		},
	}
	res := &cuesheet.Result{
		Tracks: []cuesheet.Record{
			{Track: 1, Subtrack: true, Title: "Café  Song"},
		},
		Sources: cuesheet.SourceSidecar | cuesheet.SourceCueBlock,
	}

	f := ConvertToAudioFile(fd, c, res)

	assert.Equal(t, "/music/live.flac", f.Path)
	assert.Equal(t, int64(99), f.Size)
	assert.True(t, mod.Equal(f.ModTime))
	assert.Equal(t, "flac", f.Format)
	assert.Equal(t, 90*time.Second, f.Length)
	assert.Equal(t, "sidecar+cueblock", f.Sources)
	assert.Equal(t, "Live at the Hall", f.Album.Album)
	assert.Equal(t, "progressive-rock", f.GenreSlug)
	assert.Equal(t, "Café Song", f.Tracks[0].Title)
	assert.False(t, f.ScannedAt.IsZero())
}

func TestConvertToAudioFile_NoContainer(t *testing.T) {
	f := ConvertToAudioFile(FileData{Path: "/music/Broken.APE"}, nil, nil)

	assert.Equal(t, "ape", f.Format)
	assert.Equal(t, "none", f.Sources)
	assert.NotNil(t, f.Tracks)
	assert.Empty(t, f.Tracks)
	assert.Empty(t, f.GenreSlug)
}

func TestConvertToAudioFile_LengthFromSamples(t *testing.T) {
	c := &audio.Container{Album: cuesheet.Record{SampleRate: 48000, SampleCount: 48000 * 3}}

	f := ConvertToAudioFile(FileData{Path: "/m/a.wv"}, c, &cuesheet.Result{})

	assert.Equal(t, 3*time.Second, f.Length)
	assert.Equal(t, "wv", f.Format)
}

func TestConvertToAudioFile_LongRecording(t *testing.T) {
	const hours = 100
	c := &audio.Container{Album: cuesheet.Record{SampleRate: 44100, SampleCount: 44100 * 3600 * hours}}

	f := ConvertToAudioFile(FileData{Path: "/m/archive.flac"}, c, &cuesheet.Result{})

	assert.Equal(t, hours*time.Hour, f.Length)
}

func TestSamplesToDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, samplesToDuration(66150, 44100))
	assert.Equal(t, time.Duration(0), samplesToDuration(0, 48000))
}

func TestConvertToAudioFile_GenreFromTrack(t *testing.T) {
	res := &cuesheet.Result{Tracks: []cuesheet.Record{
		{Track: 1},
		{Track: 2, Genre: "Jazz Fusion"},
	}}

	f := ConvertToAudioFile(FileData{Path: "/m/a.flac"}, &audio.Container{}, res)

	assert.Equal(t, "jazz-fusion", f.GenreSlug)
}
