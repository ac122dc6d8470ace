// Package cuesheet parses CD cuesheets and cuesheet-style embedded metadata
// into per-track records with sample-accurate offsets and durations.
package cuesheet

import "fmt"

// TrackLimitError is returned when a track number would grow the track table
// beyond MaxTracks. It aborts the parse; no partial table is returned.
type TrackLimitError struct {
	Requested int
	Limit     int
}

func (e *TrackLimitError) Error() string {
	return fmt.Sprintf("track table of %d entries exceeds limit of %d", e.Requested, e.Limit)
}
