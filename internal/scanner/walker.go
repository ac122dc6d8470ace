package scanner

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// Walker traverses a filesystem and discovers audio files.
type Walker struct {
	fs     afero.Fs
	logger *slog.Logger
}

// NewWalker creates a new walker.
func NewWalker(fsys afero.Fs, logger *slog.Logger) *Walker {
	return &Walker{
		fs:     fsys,
		logger: logger,
	}
}

// WalkResult represents a file discovered during walking.
type WalkResult struct {
	Error error
	File  FileData
}

// Walk traverses a directory and streams the audio files under it.
// The channel closes when the walk is complete or ctx is canceled.
func (w *Walker) Walk(ctx context.Context, rootPath string) <-chan WalkResult {
	results := make(chan WalkResult, 100)

	go func() {
		defer close(results)

		err := afero.Walk(w.fs, rootPath, func(path string, info fs.FileInfo, err error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if err != nil {
				// Report and keep walking.
				w.logger.Error("walk error", "path", path, "error", err)
				select {
				case results <- WalkResult{Error: err, File: FileData{Path: path}}:
				case <-ctx.Done():
					return ctx.Err()
				}
				if info != nil && info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Skip hidden files and directories.
			if path != rootPath && strings.HasPrefix(info.Name(), ".") {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if info.IsDir() || !info.Mode().IsRegular() || !IsAudioExt(filepath.Ext(path)) {
				return nil
			}

			relPath, err := filepath.Rel(rootPath, path)
			if err != nil {
				relPath = path
			}

			result := WalkResult{File: FileData{
				Path:    path,
				RelPath: relPath,
				Size:    info.Size(),
				ModTime: info.ModTime(),
			}}

			select {
			case results <- result:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})

		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("walk failed", "root", rootPath, "error", err)
		}
	}()

	return results
}

// Stat describes a single audio file the way Walk would.
func (w *Walker) Stat(path string) (FileData, error) {
	info, err := w.fs.Stat(path)
	if err != nil {
		return FileData{}, err
	}
	if info.IsDir() {
		return FileData{}, &fs.PathError{Op: "stat", Path: path, Err: errors.New("is a directory")}
	}
	return FileData{
		Path:    path,
		RelPath: filepath.Base(path),
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
