package cuesheet

import (
	"strings"
	"time"
)

// keyHandler normalizes a raw value into one or more fields of r. It
// reports whether anything was stored.
type keyHandler func(r *Record, value string) bool

// keyEntry maps a case-insensitive tag name to a field, or to a handler when
// the value needs more than a typed write-once assignment.
type keyEntry struct {
	key     string
	field   Field
	handler keyHandler
}

// genericKeys holds tag names shared by all container formats.
var genericKeys = []keyEntry{
	{key: "title", field: FieldTitle},
	{key: "artist", field: FieldArtist},
	{key: "author", field: FieldArtist},
	{key: "album_artist", field: FieldAlbumArtist},
	{key: "album", field: FieldAlbum},
	{key: "genre", field: FieldGenre},
	{key: "composer", field: FieldComposer},
	{key: "grouping", field: FieldGrouping},
	{key: "orchestra", field: FieldOrchestra},
	{key: "conductor", field: FieldConductor},
	{key: "comment", field: FieldComment},
	{key: "description", field: FieldComment},
	{key: "track", handler: parseTrack},
	{key: "disc", handler: parseDisc},
	{key: "year", field: FieldYear},
	{key: "date", handler: parseDate},
	{key: "title-sort", field: FieldTitleSort},
	{key: "artist-sort", field: FieldArtistSort},
	{key: "album-sort", field: FieldAlbumSort},
	{key: "compilation", field: FieldCompilation},
}

// vorbisKeys holds Vorbis comment names not covered by genericKeys.
var vorbisKeys = []keyEntry{
	{key: "albumartist", field: FieldAlbumArtist},
	{key: "album artist", field: FieldAlbumArtist},
	{key: "tracknumber", handler: parseTrack},
	{key: "tracktotal", field: FieldTotalTracks},
	{key: "totaltracks", field: FieldTotalTracks},
	{key: "discnumber", handler: parseDisc},
	{key: "disctotal", field: FieldTotalDiscs},
	{key: "totaldiscs", field: FieldTotalDiscs},
}

// Resolve applies key=value to r using the generic table, then the Vorbis
// table. matched is false when neither table knows the key; stored is false
// when the key matched but the target field was already set.
func Resolve(r *Record, key, value string) (matched, stored bool) {
	e, ok := lookupKey(key)
	if !ok {
		return false, false
	}
	return true, e.apply(r, value)
}

func lookupKey(key string) (keyEntry, bool) {
	for _, table := range [][]keyEntry{genericKeys, vorbisKeys} {
		for _, e := range table {
			if strings.EqualFold(e.key, key) {
				return e, true
			}
		}
	}
	return keyEntry{}, false
}

func (e keyEntry) apply(r *Record, value string) bool {
	if e.handler != nil {
		return e.handler(r, value)
	}
	if e.field.IsString() {
		return r.SetString(e.field, value)
	}
	return r.SetUint(e.field, parseUint32(value))
}

// parseTrack handles "N" and "N/M" track numbers.
func parseTrack(r *Record, value string) bool {
	return setPair(r, value, FieldTrack, FieldTotalTracks)
}

// parseDisc handles "N" and "N/M" disc numbers.
func parseDisc(r *Record, value string) bool {
	return setPair(r, value, FieldDisc, FieldTotalDiscs)
}

func setPair(r *Record, value string, num, total Field) bool {
	n, t, _ := strings.Cut(value, "/")
	stored := r.SetUint(num, parseUint32(n))
	if r.SetUint(total, parseUint32(t)) {
		stored = true
	}
	return stored
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// parseDate stores the leading year and, when the value is a full or
// partial ISO date, the release date as unix seconds.
func parseDate(r *Record, value string) bool {
	value = strings.TrimSpace(value)
	stored := r.SetUint(FieldYear, parseUint32(value))

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		if sec := t.Unix(); sec > 0 && sec <= 1<<32-1 {
			if r.SetUint(FieldDateReleased, uint32(sec)) {
				stored = true
			}
		}
		break
	}
	return stored
}
