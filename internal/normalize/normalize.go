// Package normalize cleans metadata text before it is stored or compared.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
	innerSpace      = regexp.MustCompile(`\s{2,}`)
)

// textFields are the Record fields Record normalizes.
var textFields = []cuesheet.Field{
	cuesheet.FieldTitle,
	cuesheet.FieldAlbum,
	cuesheet.FieldArtist,
	cuesheet.FieldAlbumArtist,
	cuesheet.FieldComposer,
	cuesheet.FieldGenre,
	cuesheet.FieldComment,
	cuesheet.FieldGrouping,
	cuesheet.FieldOrchestra,
	cuesheet.FieldConductor,
	cuesheet.FieldTitleSort,
	cuesheet.FieldArtistSort,
	cuesheet.FieldAlbumSort,
}

// Text composes Unicode (NFC), drops NUL and other control characters,
// collapses runs of whitespace and trims the result. Tag readers sometimes
// leave NUL terminators in strings.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\t' || r == '\n':
			return ' '
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
	s = innerSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Record applies Text to every text field of r.
func Record(r *cuesheet.Record) {
	var clean cuesheet.Record
	for _, f := range textFields {
		clean.SetString(f, Text(r.StringValue(f)))
	}
	r.Title = clean.Title
	r.Album = clean.Album
	r.Artist = clean.Artist
	r.AlbumArtist = clean.AlbumArtist
	r.Composer = clean.Composer
	r.Genre = clean.Genre
	r.Comment = clean.Comment
	r.Grouping = clean.Grouping
	r.Orchestra = clean.Orchestra
	r.Conductor = clean.Conductor
	r.TitleSort = clean.TitleSort
	r.ArtistSort = clean.ArtistSort
	r.AlbumSort = clean.AlbumSort
}

// Slug converts a genre or name to a lowercase ASCII key for matching.
// "Rock & Roll" -> "rock-roll", "Électronique" -> "electronique".
func Slug(s string) string {
	// Decompose so accents become separate marks, then drop non-ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
