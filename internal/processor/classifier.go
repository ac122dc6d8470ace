// Package processor turns settled file system events into incremental
// catalog updates.
package processor

import (
	"path/filepath"
	"strings"

	"github.com/listenupapp/cuescan/internal/scanner"
)

// FileType represents the type of file detected by the classifier.
type FileType int

const (
	// FileTypeAudio represents files the scanner can read.
	FileTypeAudio FileType = iota
	// FileTypeCuesheet represents sidecar .cue files.
	FileTypeCuesheet
	// FileTypeIgnored represents everything else.
	FileTypeIgnored
)

// String returns the string representation of a FileType.
func (ft FileType) String() string {
	switch ft {
	case FileTypeAudio:
		return "audio"
	case FileTypeCuesheet:
		return "cuesheet"
	case FileTypeIgnored:
		return "ignored"
	default:
		return "unknown"
	}
}

// classifyFile determines the type of file based on its extension. The
// comparison is case-insensitive.
func classifyFile(path string) FileType {
	if path == "" {
		return FileTypeIgnored
	}

	ext := strings.ToLower(filepath.Ext(path))
	if scanner.IsAudioExt(ext) {
		return FileTypeAudio
	}
	if ext == ".cue" {
		return FileTypeCuesheet
	}
	return FileTypeIgnored
}

// Relevant reports whether events for path can change the catalog. It is
// the watcher's match filter.
func Relevant(path string) bool {
	return classifyFile(path) != FileTypeIgnored
}
