package cuesheet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveWriteOnce(t *testing.T) {
	var r Record

	matched, stored := Resolve(&r, "title", "First")
	assert.True(t, matched)
	assert.True(t, stored)

	matched, stored = Resolve(&r, "TITLE", "Second")
	assert.True(t, matched)
	assert.False(t, stored)
	assert.Equal(t, "First", r.Title)

	Resolve(&r, "year", "1998")
	Resolve(&r, "year", "2005")
	assert.Equal(t, uint32(1998), r.Year)
}

func TestResolveTables(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(t *testing.T, r *Record)
	}{
		{"Artist", "A", func(t *testing.T, r *Record) { assert.Equal(t, "A", r.Artist) }},
		{"author", "B", func(t *testing.T, r *Record) { assert.Equal(t, "B", r.Artist) }},
		{"description", "C", func(t *testing.T, r *Record) { assert.Equal(t, "C", r.Comment) }},
		{"title-sort", "D", func(t *testing.T, r *Record) { assert.Equal(t, "D", r.TitleSort) }},
		{"ALBUMARTIST", "E", func(t *testing.T, r *Record) { assert.Equal(t, "E", r.AlbumArtist) }},
		{"album artist", "F", func(t *testing.T, r *Record) { assert.Equal(t, "F", r.AlbumArtist) }},
		{"compilation", "1", func(t *testing.T, r *Record) { assert.Equal(t, uint32(1), r.Compilation) }},
		{"totaltracks", "12", func(t *testing.T, r *Record) { assert.Equal(t, uint32(12), r.TotalTracks) }},
		{"disctotal", "2", func(t *testing.T, r *Record) { assert.Equal(t, uint32(2), r.TotalDiscs) }},
		{"track", "3/12", func(t *testing.T, r *Record) {
			assert.Equal(t, uint32(3), r.Track)
			assert.Equal(t, uint32(12), r.TotalTracks)
		}},
		{"tracknumber", "7", func(t *testing.T, r *Record) {
			assert.Equal(t, uint32(7), r.Track)
			assert.Equal(t, uint32(0), r.TotalTracks)
		}},
		{"discnumber", "1/2", func(t *testing.T, r *Record) {
			assert.Equal(t, uint32(1), r.Disc)
			assert.Equal(t, uint32(2), r.TotalDiscs)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			var r Record
			matched, stored := Resolve(&r, tt.key, tt.value)
			assert.True(t, matched)
			assert.True(t, stored)
			tt.check(t, &r)
		})
	}
}

func TestResolveUnknownKey(t *testing.T) {
	var r Record
	matched, stored := Resolve(&r, "REPLAYGAIN ALBUM GAIN", "-6.5 dB")
	assert.False(t, matched)
	assert.False(t, stored)
	assert.Equal(t, Record{}, r)
}

func TestResolveUnparsableInteger(t *testing.T) {
	var r Record
	matched, stored := Resolve(&r, "year", "unknown")
	assert.True(t, matched)
	assert.False(t, stored)
	assert.Equal(t, uint32(0), r.Year)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		value    string
		year     uint32
		released time.Time
	}{
		{"2003-05-01", 2003, time.Date(2003, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"1999", 1999, time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2010-11", 2010, time.Date(2010, 11, 1, 0, 0, 0, 0, time.UTC)},
		{"2001-02-03T04:05:06Z", 2001, time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var r Record
			assert.True(t, parseDate(&r, tt.value))
			assert.Equal(t, tt.year, r.Year)
			assert.Equal(t, uint32(tt.released.Unix()), r.DateReleased)
		})
	}

	var r Record
	assert.True(t, parseDate(&r, "1987 (remaster)"))
	assert.Equal(t, uint32(1987), r.Year)
	assert.Equal(t, uint32(0), r.DateReleased)
}
