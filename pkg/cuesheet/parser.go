package cuesheet

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser turns cuesheet text into a track table.
// A Parser holds no per-parse state and is safe for concurrent use.
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for diagnostics about skipped input.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewParser creates a Parser. Without WithLogger diagnostics are discarded.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse parses a whole cuesheet. Album-scope directives update album in
// place; set fields are never overwritten. album.SampleRate scales
// timecodes and album.SampleCount, when known, ends the last track.
//
// Malformed lines are skipped. The only error is a *TrackLimitError, in
// which case no tracks are returned.
func Parse(data []byte, album *Record) ([]Record, error) {
	return NewParser().Parse(data, album)
}

// Parse is the method form of the package-level Parse.
func (p *Parser) Parse(data []byte, album *Record) ([]Record, error) {
	return p.ParseInto(data, album, nil)
}

// ParseInto parses a cuesheet on top of an existing track table, such as
// one filled from comment entries. Fields already set in tracks are kept.
// On error the table is not returned.
func (p *Parser) ParseInto(data []byte, album *Record, tracks []Record) ([]Record, error) {
	s := &parseState{album: album, tracks: tracks}
	data = bytes.TrimPrefix(data, utf8BOM)

	lineNo := 0
	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		lineNo++

		if err := p.parseLine(s, trimRightSpace(string(line)), lineNo); err != nil {
			return nil, err
		}
	}

	if n := len(s.tracks); n > 0 && album.SampleCount > 0 {
		finishTrack(&s.tracks[n-1], album.SampleCount, album.SampleRate)
	}

	return s.tracks, nil
}

// parseState is the directive state threaded through one parse.
type parseState struct {
	album  *Record
	tracks []Record

	// current is the track number in scope, 0 for the album.
	current        int
	seenFirstIndex bool
}

// target returns the record directives currently apply to.
func (s *parseState) target() *Record {
	if s.current == 0 {
		return s.album
	}
	return &s.tracks[s.current-1]
}

func (p *Parser) parseLine(s *parseState, line string, lineNo int) error {
	directive, rest, ok := nextToken(line)
	if !ok {
		return nil
	}

	switch strings.ToUpper(directive) {
	case "CATALOG", "CDTEXTFILE", "FILE", "ISRC", "POSTGAP", "PREGAP":
		// Recognized, nothing to record.

	case "FLAGS":
		if s.current == 0 {
			return nil
		}
		for tok, r, ok := nextToken(rest); ok; tok, r, ok = nextToken(r) {
			if strings.EqualFold(tok, "DATA") {
				s.target().Disabled = true
			}
		}

	case "INDEX":
		p.parseIndex(s, rest)

	case "PERFORMER":
		v := firstArg(rest)
		if s.current == 0 {
			s.album.SetString(FieldArtist, v)
			s.album.SetString(FieldAlbumArtist, v)
		} else {
			s.target().SetString(FieldArtist, v)
		}

	case "SONGWRITER":
		s.target().SetString(FieldComposer, firstArg(rest))

	case "TITLE":
		if s.current == 0 {
			s.album.SetString(FieldAlbum, firstArg(rest))
		} else {
			s.target().SetString(FieldTitle, firstArg(rest))
		}

	case "REM":
		p.parseRem(s, rest, lineNo)

	case "TRACK":
		return p.parseTrack(s, rest, lineNo)

	default:
		p.logger.Warn("unrecognized cuesheet directive",
			"directive", directive,
			"line", lineNo,
		)
	}
	return nil
}

func firstArg(rest string) string {
	tok, _, ok := nextToken(rest)
	if !ok {
		return ""
	}
	return unquote(tok)
}

func (p *Parser) parseTrack(s *parseState, rest string, lineNo int) error {
	tok, _, _ := nextToken(rest)
	n := atoi(tok)
	if n < 1 {
		p.logger.Warn("ignoring invalid track number",
			"value", tok,
			"line", lineNo,
		)
		return nil
	}
	tracks, err := growToTrack(s.tracks, n)
	if err != nil {
		return err
	}
	s.tracks = tracks
	s.current = int(n)
	s.seenFirstIndex = false
	s.target().SetUint(FieldTrack, uint32(n))
	return nil
}

// parseIndex handles the first INDEX 01 of a track. It sets the track's
// start and closes the previous track. Pregap and later indexes are skipped.
func (p *Parser) parseIndex(s *parseState, rest string) {
	if s.current == 0 || s.seenFirstIndex {
		return
	}
	num, rest, ok := nextToken(rest)
	if !ok || atoi(num) != 1 {
		return
	}
	s.seenFirstIndex = true

	// Without a timecode the track has no known start.
	tc, _, ok := nextToken(rest)
	if !ok {
		return
	}
	track := s.target()
	track.Subtrack = true
	if offset, ok := TimecodeToSamples(tc, s.album.SampleRate); ok {
		track.SampleOffset = offset
	}

	if s.current > 1 {
		finishTrack(&s.tracks[s.current-2], track.SampleOffset, s.album.SampleRate)
	}
}

func (p *Parser) parseRem(s *parseState, rest string, lineNo int) {
	sub, value, ok := nextToken(rest)
	if !ok {
		return
	}

	switch {
	case isUpperWord(sub):
		switch sub {
		case "COMMENT":
			s.target().SetString(FieldComment, value)
		case "GENRE":
			s.target().SetString(FieldGenre, value)
		case "DATE":
			s.target().SetUint(FieldYear, parseUint32(value))
		case "DISCID":
		default:
			k, v := remKey(sub, value)
			p.resolve(s.target(), k, v, lineNo)
		}

	case sub[0] == '"':
		q := closingQuote(rest)
		if q < 0 || q+1 >= len(rest) || (rest[q+1] != ' ' && rest[q+1] != '=') {
			p.logger.Debug("ignoring malformed quoted REM key", "line", lineNo)
			return
		}
		value := trimLeftSpace(rest[q+2:])
		if rest[q+1] == ' ' {
			value = trimLeftSpace(strings.TrimPrefix(value, "="))
		}
		p.resolve(s.target(), unquote(rest[:q+1]), value, lineNo)

	default:
		p.logger.Debug("ignoring REM comment", "line", lineNo)
	}
}

// remKey joins consecutive all-caps words into a key, so that
// "REPLAYGAIN ALBUM GAIN -6.5 dB" yields the key "REPLAYGAIN ALBUM GAIN".
// The first other word starts the value.
func remKey(first, rest string) (key, value string) {
	key = first
	for {
		tok, next, ok := nextToken(rest)
		if !ok {
			return key, ""
		}
		if !isUpperWord(tok) {
			return key, rest
		}
		key += " " + tok
		rest = next
	}
}

func (p *Parser) resolve(r *Record, key, value string, lineNo int) {
	if value == "" {
		p.logger.Debug("ignoring empty metadata value", "key", key, "line", lineNo)
		return
	}
	if matched, _ := Resolve(r, key, value); !matched {
		p.logger.Debug("unrecognized metadata key", "key", key, "line", lineNo)
	}
}
