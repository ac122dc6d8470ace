package scanner

import (
	"time"

	"github.com/listenupapp/cuescan/internal/domain"
)

// ScanResult represents the outcome of scanning a directory tree.
type ScanResult struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Progress    *Progress
	Root        string
	Files       int // audio files discovered
	Added       int
	Updated     int
	Removed     int
	Unchanged   int
	Errors      int
	WithCues    int // files with at least one track

	// Items holds the files analyzed in this run, in walk order.
	Items []*domain.AudioFile
}

// FileData is an audio file discovered by the walker.
type FileData struct {
	ModTime time.Time
	Path    string
	RelPath string
	Size    int64
}

// Progress tracks scan progress.
type Progress struct {
	Phase       ScanPhase
	CurrentItem string
	Errors      []ScanError
	Current     int
	Total       int
	Added       int
	Updated     int
	Removed     int
}

// ScanPhase represents the current scan phase.
type ScanPhase string

// Scan phases, in order.
const (
	PhaseWalking   ScanPhase = "walking"
	PhaseDiffing   ScanPhase = "diffing"
	PhaseAnalyzing ScanPhase = "analyzing"
	PhaseApplying  ScanPhase = "applying"
	PhaseComplete  ScanPhase = "complete"
)

// ScanError represents an error during scanning.
type ScanError struct {
	Time  time.Time
	Error error
	Path  string
	Phase ScanPhase
}

// ScanDiff represents changes detected between the filesystem and the
// catalog.
type ScanDiff struct {
	Added     []FileData
	Updated   []FileData
	Unchanged []string // paths
	Removed   []string // paths
}
