// Package store defines the catalog persistence interface.
package store

import (
	"context"
	"time"

	"github.com/listenupapp/cuescan/internal/domain"
)

// Store persists scanned audio files and their track tables.
type Store interface {
	Close() error

	// SaveFile inserts or replaces the file at f.Path. An existing row keeps
	// its ID; a new row gets one generated when f.ID is empty.
	SaveFile(ctx context.Context, f *domain.AudioFile) error
	GetFile(ctx context.Context, id string) (*domain.AudioFile, error)
	GetFileByPath(ctx context.Context, path string) (*domain.AudioFile, error)
	ListFiles(ctx context.Context, filter FileFilter, params PaginationParams) (*PaginatedResult[*domain.AudioFile], error)
	CountFiles(ctx context.Context) (int, error)
	DeleteFile(ctx context.Context, id string) error
	DeleteFileByPath(ctx context.Context, path string) error

	// FileStamps returns size and modification time for every cataloged
	// file under root, keyed by path.
	FileStamps(ctx context.Context, root string) (map[string]FileStamp, error)
}

// FileFilter narrows ListFiles.
type FileFilter struct {
	GenreSlug  string // exact match on the normalized album genre
	PathPrefix string // directory prefix
	CueOnly    bool   // only files with at least one track
}

// FileStamp is the change-detection state of a cataloged file.
type FileStamp struct {
	ID        string
	Size      int64
	ModTime   time.Time
	ScannedAt time.Time
}
