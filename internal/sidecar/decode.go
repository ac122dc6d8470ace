package sidecar

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DefaultCharset is assumed for cuesheets that are neither UTF-8 nor
// marked with a byte order mark. Most legacy rippers wrote Windows-1252.
const DefaultCharset = "windows-1252"

// LookupCharset resolves a WHATWG encoding label such as "shift_jis" or
// "windows-1251". An empty name selects DefaultCharset.
func LookupCharset(name string) (encoding.Encoding, error) {
	if name == "" {
		return charmap.Windows1252, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	return enc, nil
}

// Decode converts raw cuesheet bytes to NFC-normalized UTF-8. A byte order
// mark wins; otherwise valid UTF-8 is kept and anything else is decoded
// with fallback.
func Decode(data []byte, fallback encoding.Encoding) ([]byte, error) {
	var dec *encoding.Decoder

	switch {
	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		dec = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	case utf8.Valid(data):
	default:
		if fallback == nil {
			fallback = charmap.Windows1252
		}
		dec = fallback.NewDecoder()
	}

	if dec != nil {
		out, _, err := transform.Bytes(dec, data)
		if err != nil {
			return nil, fmt.Errorf("decode cuesheet: %w", err)
		}
		data = out
	}
	return norm.NFC.Bytes(data), nil
}
