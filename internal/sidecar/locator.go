// Package sidecar finds and loads the .cue file that accompanies an audio
// file.
package sidecar

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"

	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// MaxSize bounds the size of a sidecar file. Real cuesheets are a few
// kilobytes.
const MaxSize = 1 << 20

// Locator looks up sidecar cuesheets on a filesystem.
type Locator struct {
	fs      afero.Fs
	charset encoding.Encoding
	logger  *slog.Logger
}

// NewLocator creates a locator. charset is the fallback for files that are
// not UTF-8, see LookupCharset.
func NewLocator(fsys afero.Fs, charset string, logger *slog.Logger) (*Locator, error) {
	enc, err := LookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return &Locator{
		fs:      fsys,
		charset: enc,
		logger:  logger,
	}, nil
}

// Candidates lists the sidecar paths for audioPath in lookup order: the
// last extension replaced by .cue, then .cue appended.
func Candidates(audioPath string) []string {
	ext := filepath.Ext(audioPath)
	base := strings.TrimSuffix(audioPath, ext)

	out := []string{base + ".cue", base + ".CUE"}
	if ext != "" {
		out = append(out, audioPath+".cue", audioPath+".CUE")
	}
	return out
}

// Find returns the first existing sidecar for audioPath.
func (l *Locator) Find(audioPath string) (string, bool) {
	path, _, ok := l.find(audioPath)
	return path, ok
}

func (l *Locator) find(audioPath string) (string, fs.FileInfo, bool) {
	for _, p := range Candidates(audioPath) {
		info, err := l.fs.Stat(p)
		if err == nil && !info.IsDir() {
			return p, info, true
		}
	}
	return "", nil, false
}

// Load reads and decodes the sidecar of audioPath. It returns nil data and
// a nil error when there is no sidecar.
func (l *Locator) Load(audioPath string) ([]byte, error) {
	path, info, ok := l.find(audioPath)
	if !ok {
		return nil, nil
	}
	if info.Size() > MaxSize {
		l.logger.Warn("ignoring oversized cuesheet", "path", path, "size", info.Size())
		return nil, nil
	}

	raw, err := afero.ReadFile(l.fs, path)
	if errors.Is(err, fs.ErrNotExist) {
		// Removed between stat and read.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	data, err := Decode(raw, l.charset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.Debug("loaded sidecar cuesheet", "audio", audioPath, "cue", path)
	return data, nil
}

// Func binds Load to audioPath for cuesheet extraction.
func (l *Locator) Func(audioPath string) cuesheet.SidecarFunc {
	return func() ([]byte, error) {
		return l.Load(audioPath)
	}
}

// AudioFor lists the audio files a cuesheet at cuePath may belong to,
// given a predicate for audio paths. Both naming schemes of Candidates are
// reversed: "album.flac.cue" names its file directly and "album.cue"
// matches any audio sibling named "album.*".
func (l *Locator) AudioFor(cuePath string, isAudio func(string) bool) ([]string, error) {
	ext := filepath.Ext(cuePath)
	if !strings.EqualFold(ext, ".cue") {
		return nil, nil
	}
	stem := strings.TrimSuffix(cuePath, ext)

	if isAudio(stem) {
		if _, err := l.fs.Stat(stem); err == nil {
			return []string{stem}, nil
		}
	}

	entries, err := afero.ReadDir(l.fs, filepath.Dir(cuePath))
	if err != nil {
		return nil, fmt.Errorf("read dir for %s: %w", cuePath, err)
	}

	base := filepath.Base(stem)
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.TrimSuffix(name, filepath.Ext(name)) == base && isAudio(name) {
			out = append(out, filepath.Join(filepath.Dir(cuePath), name))
		}
	}
	return out, nil
}

// ModTime returns the modification time of the sidecar of audioPath.
func (l *Locator) ModTime(audioPath string) (time.Time, bool) {
	_, info, ok := l.find(audioPath)
	if !ok {
		return time.Time{}, false
	}
	return info.ModTime(), true
}
