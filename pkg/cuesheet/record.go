package cuesheet

import (
	"fmt"
	"math"
)

// MaxTracks bounds the track table. A CD holds at most 99 tracks; the limit
// leaves room for embedded tables that number tracks loosely while rejecting
// garbage such as TRACK 4294967295.
const MaxTracks = 1000

// Record holds album or track metadata. The album record is track zero.
//
// Descriptive fields are write-once: an empty string or zero integer is unset,
// and a set field is never overwritten by a later source.
type Record struct {
	Track    uint32 `json:"track,omitempty"`
	Subtrack bool   `json:"subtrack,omitempty"`

	Title       string `json:"title,omitempty"`
	Album       string `json:"album,omitempty"`
	Artist      string `json:"artist,omitempty"`
	AlbumArtist string `json:"album_artist,omitempty"`
	Composer    string `json:"composer,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Comment     string `json:"comment,omitempty"`
	Grouping    string `json:"grouping,omitempty"`
	Orchestra   string `json:"orchestra,omitempty"`
	Conductor   string `json:"conductor,omitempty"`
	TitleSort   string `json:"title_sort,omitempty"`
	ArtistSort  string `json:"artist_sort,omitempty"`
	AlbumSort   string `json:"album_sort,omitempty"`

	Year         uint32 `json:"year,omitempty"`
	TotalTracks  uint32 `json:"total_tracks,omitempty"`
	Disc         uint32 `json:"disc,omitempty"`
	TotalDiscs   uint32 `json:"total_discs,omitempty"`
	Compilation  uint32 `json:"compilation,omitempty"`
	DateReleased uint32 `json:"date_released,omitempty"` // unix seconds

	// Timing. SampleRate is only meaningful on the album record. Offsets and
	// counts are in samples, or CD frames when the rate is unknown.
	SampleRate   uint32 `json:"sample_rate,omitempty"`
	SampleOffset int64  `json:"sample_offset"`
	SampleCount  int64  `json:"sample_count,omitempty"`
	SongLength   int64  `json:"song_length_ms,omitempty"`

	// Disabled marks a non-audio track. It keeps its slot in the table.
	Disabled bool `json:"disabled,omitempty"`
}

// Field selects a descriptive field of a Record.
type Field int

// Descriptive fields addressable by the key tables.
const (
	FieldTitle Field = iota
	FieldAlbum
	FieldArtist
	FieldAlbumArtist
	FieldComposer
	FieldGenre
	FieldComment
	FieldGrouping
	FieldOrchestra
	FieldConductor
	FieldTitleSort
	FieldArtistSort
	FieldAlbumSort
	FieldTrack
	FieldYear
	FieldTotalTracks
	FieldDisc
	FieldTotalDiscs
	FieldCompilation
	FieldDateReleased
)

var fieldNames = [...]string{
	FieldTitle:        "title",
	FieldAlbum:        "album",
	FieldArtist:       "artist",
	FieldAlbumArtist:  "album_artist",
	FieldComposer:     "composer",
	FieldGenre:        "genre",
	FieldComment:      "comment",
	FieldGrouping:     "grouping",
	FieldOrchestra:    "orchestra",
	FieldConductor:    "conductor",
	FieldTitleSort:    "title_sort",
	FieldArtistSort:   "artist_sort",
	FieldAlbumSort:    "album_sort",
	FieldTrack:        "track",
	FieldYear:         "year",
	FieldTotalTracks:  "total_tracks",
	FieldDisc:         "disc",
	FieldTotalDiscs:   "total_discs",
	FieldCompilation:  "compilation",
	FieldDateReleased: "date_released",
}

func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

// IsString reports whether the field holds text.
func (f Field) IsString() bool {
	return f >= FieldTitle && f <= FieldAlbumSort
}

func (r *Record) stringField(f Field) *string {
	switch f {
	case FieldTitle:
		return &r.Title
	case FieldAlbum:
		return &r.Album
	case FieldArtist:
		return &r.Artist
	case FieldAlbumArtist:
		return &r.AlbumArtist
	case FieldComposer:
		return &r.Composer
	case FieldGenre:
		return &r.Genre
	case FieldComment:
		return &r.Comment
	case FieldGrouping:
		return &r.Grouping
	case FieldOrchestra:
		return &r.Orchestra
	case FieldConductor:
		return &r.Conductor
	case FieldTitleSort:
		return &r.TitleSort
	case FieldArtistSort:
		return &r.ArtistSort
	case FieldAlbumSort:
		return &r.AlbumSort
	}
	return nil
}

func (r *Record) uintField(f Field) *uint32 {
	switch f {
	case FieldTrack:
		return &r.Track
	case FieldYear:
		return &r.Year
	case FieldTotalTracks:
		return &r.TotalTracks
	case FieldDisc:
		return &r.Disc
	case FieldTotalDiscs:
		return &r.TotalDiscs
	case FieldCompilation:
		return &r.Compilation
	case FieldDateReleased:
		return &r.DateReleased
	}
	return nil
}

// SetString assigns a text field if it is unset. It reports whether the
// value was stored.
func (r *Record) SetString(f Field, v string) bool {
	p := r.stringField(f)
	if p == nil || *p != "" || v == "" {
		return false
	}
	*p = v
	return true
}

// SetUint assigns an integer field if it is unset.
func (r *Record) SetUint(f Field, v uint32) bool {
	p := r.uintField(f)
	if p == nil || *p != 0 || v == 0 {
		return false
	}
	*p = v
	return true
}

// StringValue returns the value of a text field, or "" for integer fields.
func (r *Record) StringValue(f Field) string {
	if p := r.stringField(f); p != nil {
		return *p
	}
	return ""
}

// growToTrack extends tracks so that track number n has a slot.
func growToTrack(tracks []Record, n int64) ([]Record, error) {
	if n > MaxTracks {
		return tracks, &TrackLimitError{Requested: int(min(n, math.MaxInt32)), Limit: MaxTracks}
	}
	return growTracks(tracks, int(n))
}

// growTracks extends tracks to exactly n entries. New entries are zero
// valued and existing ones are untouched. A table already n or longer is
// returned as is.
func growTracks(tracks []Record, n int) ([]Record, error) {
	if n <= len(tracks) {
		return tracks, nil
	}
	if n > MaxTracks {
		return tracks, &TrackLimitError{Requested: n, Limit: MaxTracks}
	}
	if n <= cap(tracks) {
		// Slots past len may hold stale data from an earlier shrink.
		old := len(tracks)
		tracks = tracks[:n]
		clear(tracks[old:])
		return tracks, nil
	}
	grown := make([]Record, n, max(n, 2*cap(tracks)))
	copy(grown, tracks)
	return grown, nil
}
