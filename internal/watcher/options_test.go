package watcher

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions_Defaults(t *testing.T) {
	opts := Options{}
	opts.setDefaults()

	assert.True(t, opts.IgnoreHidden, "Should ignore hidden files by default")
	assert.Equal(t, 500*time.Millisecond, opts.SettleDelay)
	assert.Contains(t, opts.IgnorePatterns, ".DS_Store")
	assert.Contains(t, opts.IgnorePatterns, "*.part")
}

func TestOptions_CustomValues(t *testing.T) {
	opts := Options{
		IgnoreHidden:   false,
		SettleDelay:    200 * time.Millisecond,
		IgnorePatterns: []string{"*.bak"},
	}
	opts.setDefaults()

	assert.False(t, opts.IgnoreHidden, "Custom ignore hidden should be preserved")
	assert.Equal(t, 200*time.Millisecond, opts.SettleDelay)
	assert.Equal(t, []string{"*.bak"}, opts.IgnorePatterns)
}

func TestOptions_ShouldIgnore(t *testing.T) {
	opts := Options{
		IgnoreHidden:   true,
		IgnorePatterns: []string{"*.tmp", ".DS_Store", "*.bak"},
	}
	opts.setDefaults()

	tests := []struct {
		name   string
		path   string
		expect bool
	}{
		{"hidden file", "/music/.album.flac", true},
		{"hidden directory", "/music/.git/config", true},
		{"DS_Store", "/music/.DS_Store", true},
		{"tmp file", "/music/album.tmp", true},
		{"bak file", "/music/album.cue.bak", true},
		{"cuesheet", "/music/album.cue", false},
		{"audio", "/music/Artist/album.flac", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, opts.shouldIgnore(tt.path))
		})
	}
}

func TestOptions_ShouldIgnore_NoIgnoreHidden(t *testing.T) {
	opts := Options{
		IgnoreHidden:   false,
		IgnorePatterns: []string{},
	}
	opts.setDefaults()

	assert.False(t, opts.shouldIgnore("/music/.hidden.flac"))
	assert.False(t, opts.shouldIgnore("/music/album.flac"))
}

func TestOptions_Matches(t *testing.T) {
	var opts Options
	assert.True(t, opts.matches("/music/anything.txt"))

	opts.Match = func(p string) bool {
		return strings.EqualFold(filepath.Ext(p), ".cue")
	}
	assert.True(t, opts.matches("/music/album.CUE"))
	assert.False(t, opts.matches("/music/notes.txt"))
}
