package cuesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedCuesheet(t *testing.T) {
	text, ok := EmbeddedCuesheet([]string{"TITLE=x", "cuesheet=TRACK 01 AUDIO", "CUESHEET=second"})
	assert.True(t, ok)
	assert.Equal(t, "TRACK 01 AUDIO", text)

	_, ok = EmbeddedCuesheet([]string{"TITLE=x", "CUESHEET=  ", "noequals"})
	assert.False(t, ok)
}

func TestParseCueTrackKey(t *testing.T) {
	tests := []struct {
		key   string
		track int64
		field string
		ok    bool
	}{
		{"CUE_TRACK01_TITLE", 1, "TITLE", true},
		{"cue_track12_album artist", 12, "album artist", true},
		{"CUE_TRACK7_", 0, "", false},
		{"CUE_TRACK_TITLE", 0, "", false},
		{"CUE_TRACKX_TITLE", 0, "", false},
		{"CUE_TRACK01", 0, "", false},
		{"CUE_TRACK", 0, "", false},
		{"TITLE", 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			track, field, ok := parseCueTrackKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.track, track)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestApplyComments(t *testing.T) {
	comments := []string{
		"TITLE=Album level tag",
		"CUE_TRACK01_TITLE=One",
		"cue_track02_title=Two",
		"CUE_TRACK02_ARTIST=Second Artist",
		"CUE_TRACK02_TITLE=Ignored rewrite",
		"CUE_TRACK09_BOGUS=not a key",
		"CUE_TRACK00_TITLE=zero",
		"CUE_TRACK03",
	}

	tracks, err := NewParser().ApplyComments(nil, comments)
	require.NoError(t, err)
	require.Len(t, tracks, 2, "unknown keys do not grow the table")

	assert.Equal(t, uint32(1), tracks[0].Track)
	assert.Equal(t, "One", tracks[0].Title)
	assert.Equal(t, uint32(2), tracks[1].Track)
	assert.Equal(t, "Two", tracks[1].Title)
	assert.Equal(t, "Second Artist", tracks[1].Artist)
}

func TestApplyCommentsForwardJump(t *testing.T) {
	tracks, err := NewParser().ApplyComments(nil, []string{"CUE_TRACK04_GENRE=Ambient"})
	require.NoError(t, err)
	require.Len(t, tracks, 4)
	assert.Equal(t, Record{}, tracks[0])
	assert.Equal(t, "Ambient", tracks[3].Genre)
}

func TestApplyCommentsTrackLimit(t *testing.T) {
	tracks, err := NewParser().ApplyComments(nil, []string{"CUE_TRACK99999_TITLE=x"})
	assert.Error(t, err)
	assert.Nil(t, tracks)
}

func TestApplyCueBlock(t *testing.T) {
	block := &CueBlock{Tracks: []CueBlockTrack{
		{Number: 1, Offset: 0, Indexes: []CueBlockIndex{{Number: 1, Offset: 0}}},
		{Number: 2, Offset: 176400, Indexes: []CueBlockIndex{{Number: 0, Offset: 0}, {Number: 1, Offset: 588}}},
		{Number: 3, Offset: 300000, Indexes: []CueBlockIndex{{Number: 1, Offset: 0}}},
		{Number: 170, Offset: 441000},
	}}
	album := Record{SampleRate: 44100}

	tracks, err := NewParser().ApplyCueBlock(&album, nil, block)
	require.NoError(t, err)
	require.Len(t, tracks, 3, "lead-out is not a track")

	for i, tr := range tracks {
		assert.Equal(t, uint32(i+1), tr.Track)
		assert.True(t, tr.Subtrack)
	}

	assert.Equal(t, int64(0), tracks[0].SampleOffset)
	assert.Equal(t, int64(176988), tracks[0].SampleCount)
	assert.Equal(t, int64(4013), tracks[0].SongLength)

	assert.Equal(t, int64(176988), tracks[1].SampleOffset)
	assert.Equal(t, int64(123012), tracks[1].SampleCount)
	assert.Equal(t, int64(2789), tracks[1].SongLength)

	assert.Equal(t, int64(300000), tracks[2].SampleOffset)
	assert.Equal(t, int64(141000), tracks[2].SampleCount)
	assert.Equal(t, int64(3197), tracks[2].SongLength)
}

func TestApplyCueBlockOverridesTiming(t *testing.T) {
	existing := []Record{
		{Track: 1, Title: "One", Subtrack: true, SampleOffset: 5, SampleCount: 10},
		{Track: 2, Title: "Two", Subtrack: true, SampleOffset: 15},
	}
	block := &CueBlock{Tracks: []CueBlockTrack{
		{Offset: 0},
		{Offset: 1000, NonAudio: true},
		{Offset: 5000},
	}}
	album := Record{SampleRate: 44100}

	tracks, err := NewParser().ApplyCueBlock(&album, existing, block)
	require.NoError(t, err)
	require.Len(t, tracks, 2)

	assert.Equal(t, "One", tracks[0].Title)
	assert.Equal(t, int64(0), tracks[0].SampleOffset)
	assert.Equal(t, int64(1000), tracks[0].SampleCount)

	assert.True(t, tracks[1].Disabled)
	assert.Equal(t, int64(1000), tracks[1].SampleOffset)
	assert.Equal(t, int64(4000), tracks[1].SampleCount)
	assert.Equal(t, int64(90), tracks[1].SongLength)
}

func TestApplyCueBlockLeadOutOnly(t *testing.T) {
	var album Record
	tracks, err := NewParser().ApplyCueBlock(&album, nil, &CueBlock{Tracks: []CueBlockTrack{{Offset: 100}}})
	require.NoError(t, err)
	assert.Empty(t, tracks)

	tracks, err = NewParser().ApplyCueBlock(&album, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, tracks)
}

func TestApplyCueBlockTrackNumbers(t *testing.T) {
	block := &CueBlock{Tracks: []CueBlockTrack{
		{Number: 5, Offset: 0},
		{Number: 0, Offset: 1000},
		{Number: 7, Offset: 2000},
		{Number: 170, Offset: 3000},
	}}
	album := Record{SampleRate: 44100}

	tracks, err := NewParser().ApplyCueBlock(&album, nil, block)
	require.NoError(t, err)
	require.Len(t, tracks, 3)

	assert.Equal(t, uint32(5), tracks[0].Track)
	assert.Equal(t, uint32(2), tracks[1].Track, "unknown number uses the slot")
	assert.Equal(t, uint32(7), tracks[2].Track)
}
