package cuesheet

import "strings"

const cueTrackPrefix = "CUE_TRACK"

// CueBlock is a native track table decoded from a container, such as a FLAC
// CUESHEET metadata block. Offsets are absolute sample positions. The last
// entry is the lead-out and only marks where the final track ends.
type CueBlock struct {
	Tracks []CueBlockTrack
}

// CueBlockTrack is one entry of a CueBlock. Number is the CD track number;
// zero means unknown.
type CueBlockTrack struct {
	Number   int
	Offset   int64
	NonAudio bool
	Indexes  []CueBlockIndex
}

// CueBlockIndex is an index point relative to its track's offset.
type CueBlockIndex struct {
	Number int
	Offset int64
}

// EmbeddedCuesheet returns the text of a CUESHEET=... comment entry.
func EmbeddedCuesheet(comments []string) (string, bool) {
	for _, c := range comments {
		key, value, ok := strings.Cut(c, "=")
		if ok && strings.EqualFold(key, "CUESHEET") && strings.TrimSpace(value) != "" {
			return value, true
		}
	}
	return "", false
}

// parseCueTrackKey splits CUE_TRACKnn_FIELD into its track number and field.
func parseCueTrackKey(key string) (track int64, field string, ok bool) {
	if len(key) <= len(cueTrackPrefix) || !strings.EqualFold(key[:len(cueTrackPrefix)], cueTrackPrefix) {
		return 0, "", false
	}
	rest := key[len(cueTrackPrefix):]

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(rest) || rest[i] != '_' || i+1 == len(rest) {
		return 0, "", false
	}
	return atoi(rest[:i]), rest[i+1:], true
}

// ApplyComments applies CUE_TRACKnn_FIELD=value comment entries to tracks,
// growing the table as needed, and returns the updated table. Entries with
// unknown fields are skipped without growing the table.
func (p *Parser) ApplyComments(tracks []Record, comments []string) ([]Record, error) {
	for _, c := range comments {
		key, value, ok := strings.Cut(c, "=")
		if !ok {
			continue
		}
		n, field, ok := parseCueTrackKey(key)
		if !ok {
			continue
		}
		if n < 1 {
			p.logger.Debug("ignoring cue comment for invalid track", "key", key)
			continue
		}
		if _, known := lookupKey(field); !known {
			p.logger.Debug("unrecognized metadata key", "key", field, "track", n)
			continue
		}
		grown, err := growToTrack(tracks, n)
		if err != nil {
			return nil, err
		}
		tracks = grown

		t := &tracks[n-1]
		t.SetUint(FieldTrack, uint32(n))
		Resolve(t, field, value)
	}
	return tracks, nil
}

// ApplyCueBlock applies a native track table to tracks. The block is
// authoritative for timing: offsets are overwritten and durations derived
// from consecutive offsets, with the lead-out ending the final track.
func (p *Parser) ApplyCueBlock(album *Record, tracks []Record, block *CueBlock) ([]Record, error) {
	if block == nil || len(block.Tracks) < 2 {
		return tracks, nil
	}

	n := len(block.Tracks) - 1
	tracks, err := growTracks(tracks, n)
	if err != nil {
		return nil, err
	}

	for i, bt := range block.Tracks[:n] {
		t := &tracks[i]
		t.SetUint(FieldTrack, blockTrackNumber(bt, i))
		t.Subtrack = true
		t.SampleOffset = bt.Offset
		for _, idx := range bt.Indexes {
			if idx.Number == 1 {
				t.SampleOffset += idx.Offset
				break
			}
		}
		if bt.NonAudio {
			t.Disabled = true
		}
		if i > 0 {
			finishTrack(&tracks[i-1], t.SampleOffset, album.SampleRate)
		}
	}
	finishTrack(&tracks[n-1], block.Tracks[n].Offset, album.SampleRate)

	p.logger.Debug("applied native cue block", "tracks", n)
	return tracks, nil
}

// blockTrackNumber is the track number of the entry in slot i. Numbers
// outside the CD range 1-99, such as the 170 lead-out, fall back to the
// slot position.
func blockTrackNumber(bt CueBlockTrack, i int) uint32 {
	if bt.Number >= 1 && bt.Number <= 99 {
		return uint32(bt.Number)
	}
	return uint32(i + 1)
}
