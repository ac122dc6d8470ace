package cuesheet

import "fmt"

// Source records which inputs contributed to an extraction.
type Source uint8

// Extraction sources.
const (
	SourceEmbeddedText Source = 1 << iota // CUESHEET= comment entry
	SourceComments                        // CUE_TRACKnn_FIELD= comment entries
	SourceSidecar                         // .cue file next to the audio file
	SourceCueBlock                        // native track table
)

// Has reports whether s includes src.
func (s Source) Has(src Source) bool {
	return s&src != 0
}

func (s Source) String() string {
	if s == 0 {
		return "none"
	}
	names := []struct {
		src  Source
		name string
	}{
		{SourceEmbeddedText, "embedded"},
		{SourceComments, "comments"},
		{SourceSidecar, "sidecar"},
		{SourceCueBlock, "cueblock"},
	}
	out := ""
	for _, n := range names {
		if s.Has(n.src) {
			if out != "" {
				out += "+"
			}
			out += n.name
		}
	}
	return out
}

// SidecarFunc loads a sidecar cuesheet. It returns nil data and a nil error
// when there is none.
type SidecarFunc func() ([]byte, error)

// Input is the container-supplied material for Extract. Every field is
// optional.
type Input struct {
	// Comments are raw "KEY=value" comment entries.
	Comments []string
	CueBlock *CueBlock
	Sidecar  SidecarFunc
}

// Result is the outcome of Extract.
type Result struct {
	Tracks  []Record
	Sources Source
}

// Extract builds the track table for one audio file. Sources are merged
// into one table in a fixed order, and since fields are write-once the
// earlier source wins for descriptive tags:
//
//   - CUE_TRACKnn_FIELD= comment entries are applied first;
//   - a CUESHEET= comment entry is then parsed on top of that table, or
//     the sidecar when there is no such entry;
//   - a native cue block is applied last and wins for timing.
//
// Zero tracks is not an error.
func Extract(album *Record, in Input) (*Result, error) {
	return NewParser().Extract(album, in)
}

// Extract is the method form of the package-level Extract.
func (p *Parser) Extract(album *Record, in Input) (*Result, error) {
	res := &Result{}
	var err error

	if res.Tracks, err = p.ApplyComments(nil, in.Comments); err != nil {
		return nil, fmt.Errorf("cue comments: %w", err)
	}
	if len(res.Tracks) > 0 {
		res.Sources |= SourceComments
	}

	if text, ok := EmbeddedCuesheet(in.Comments); ok {
		if res.Tracks, err = p.ParseInto([]byte(text), album, res.Tracks); err != nil {
			return nil, fmt.Errorf("embedded cuesheet: %w", err)
		}
		res.Sources |= SourceEmbeddedText
	} else if in.Sidecar != nil {
		data, err := in.Sidecar()
		if err != nil {
			return nil, fmt.Errorf("load sidecar: %w", err)
		}
		if data != nil {
			if res.Tracks, err = p.ParseInto(data, album, res.Tracks); err != nil {
				return nil, fmt.Errorf("sidecar cuesheet: %w", err)
			}
			res.Sources |= SourceSidecar
		}
	}

	if in.CueBlock != nil && len(in.CueBlock.Tracks) > 1 {
		if res.Tracks, err = p.ApplyCueBlock(album, res.Tracks, in.CueBlock); err != nil {
			return nil, fmt.Errorf("cue block: %w", err)
		}
		res.Sources |= SourceCueBlock
	}

	return res, nil
}
