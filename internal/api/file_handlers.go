package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/cuescan/internal/domain"
	domainerrors "github.com/listenupapp/cuescan/internal/errors"
	"github.com/listenupapp/cuescan/internal/id"
	"github.com/listenupapp/cuescan/internal/store"
	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

func (s *Server) registerFileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFiles",
		Method:      http.MethodGet,
		Path:        "/api/v1/files",
		Summary:     "List cataloged files",
		Description: "Returns a page of audio files ordered by path",
		Tags:        []string{"Files"},
	}, s.handleListFiles)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFile",
		Method:      http.MethodGet,
		Path:        "/api/v1/files/{id}",
		Summary:     "Get file",
		Description: "Returns one audio file with its album record and track table",
		Tags:        []string{"Files"},
	}, s.handleGetFile)
}

// ListFilesInput contains parameters for listing files.
type ListFilesInput struct {
	Genre   string `query:"genre" doc:"Genre slug, as produced by the scanner"`
	Prefix  string `query:"prefix" doc:"Only files whose path starts with this prefix"`
	CueOnly bool   `query:"cue_only" doc:"Only files with at least one track"`
	Limit   int    `query:"limit" minimum:"0" maximum:"500" doc:"Items per page (default 50)"`
	Cursor  string `query:"cursor" doc:"Cursor from a previous page"`
}

// FileSummary is a file in list responses. Tracks are omitted.
type FileSummary struct {
	ID          string    `json:"id" doc:"File ID"`
	Path        string    `json:"path" doc:"Absolute path"`
	Format      string    `json:"format" doc:"Container format"`
	DurationMs  int64     `json:"duration_ms" doc:"Duration in milliseconds"`
	Sources     string    `json:"sources" doc:"Inputs the track table came from"`
	GenreSlug   string    `json:"genre_slug,omitempty" doc:"Normalized genre"`
	AlbumTitle  string    `json:"album_title,omitempty" doc:"Album title"`
	AlbumArtist string    `json:"album_artist,omitempty" doc:"Album artist"`
	TrackCount  int       `json:"track_count" doc:"Number of tracks in the table"`
	Playable    int       `json:"playable_tracks" doc:"Tracks with a located start that are not data tracks"`
	ScannedAt   time.Time `json:"scanned_at" doc:"Last scan time"`
}

// ListFilesResponse is one page of files.
type ListFilesResponse struct {
	Files      []FileSummary `json:"files" doc:"Files on this page"`
	NextCursor string        `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool          `json:"has_more" doc:"Whether more pages exist"`
	Total      int           `json:"total" doc:"Files matching the filter"`
}

// ListFilesOutput wraps the list response for Huma.
type ListFilesOutput struct {
	Body ListFilesResponse
}

// GetFileInput contains parameters for getting a file.
type GetFileInput struct {
	ID string `path:"id" doc:"File ID"`
}

// FileResponse is a file with its full track table.
type FileResponse struct {
	ID         string            `json:"id" doc:"File ID"`
	Path       string            `json:"path" doc:"Absolute path"`
	Format     string            `json:"format" doc:"Container format"`
	Codec      string            `json:"codec,omitempty" doc:"Audio codec"`
	Size       int64             `json:"size" doc:"Size in bytes"`
	DurationMs int64             `json:"duration_ms" doc:"Duration in milliseconds"`
	Sources    string            `json:"sources" doc:"Inputs the track table came from"`
	GenreSlug  string            `json:"genre_slug,omitempty" doc:"Normalized genre"`
	Album      cuesheet.Record   `json:"album" doc:"Album-level fields"`
	Tracks     []cuesheet.Record `json:"tracks" doc:"Track table; track N is at index N-1"`
	ModTime    time.Time         `json:"mod_time" doc:"File modification time"`
	ScannedAt  time.Time         `json:"scanned_at" doc:"Last scan time"`
}

// FileOutput wraps the file response for Huma.
type FileOutput struct {
	Body FileResponse
}

func (s *Server) handleListFiles(ctx context.Context, input *ListFilesInput) (*ListFilesOutput, error) {
	page, err := s.store.ListFiles(ctx,
		store.FileFilter{
			GenreSlug:  input.Genre,
			PathPrefix: input.Prefix,
			CueOnly:    input.CueOnly,
		},
		store.PaginationParams{Limit: input.Limit, Cursor: input.Cursor},
	)
	if err != nil {
		return nil, err
	}

	files := make([]FileSummary, len(page.Items))
	for i, f := range page.Items {
		files[i] = toFileSummary(f)
	}

	return &ListFilesOutput{
		Body: ListFilesResponse{
			Files:      files,
			NextCursor: page.NextCursor,
			HasMore:    page.HasMore,
			Total:      page.Total,
		},
	}, nil
}

func (s *Server) handleGetFile(ctx context.Context, input *GetFileInput) (*FileOutput, error) {
	if !id.Valid(domain.FileIDPrefix, input.ID) {
		return nil, domainerrors.NotFoundf("file %s not found", input.ID)
	}

	f, err := s.store.GetFile(ctx, input.ID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFoundf("file %s not found", input.ID)
		}
		return nil, err
	}

	return &FileOutput{Body: toFileResponse(f)}, nil
}

func toFileSummary(f *domain.AudioFile) FileSummary {
	artist := f.Album.AlbumArtist
	if artist == "" {
		artist = f.Album.Artist
	}
	return FileSummary{
		ID:          f.ID,
		Path:        f.Path,
		Format:      f.Format,
		DurationMs:  f.Length.Milliseconds(),
		Sources:     f.Sources,
		GenreSlug:   f.GenreSlug,
		AlbumTitle:  f.Album.Album,
		AlbumArtist: artist,
		TrackCount:  len(f.Tracks),
		Playable:    len(f.PlayableTracks()),
		ScannedAt:   f.ScannedAt,
	}
}

func toFileResponse(f *domain.AudioFile) FileResponse {
	tracks := f.Tracks
	if tracks == nil {
		tracks = []cuesheet.Record{}
	}
	return FileResponse{
		ID:         f.ID,
		Path:       f.Path,
		Format:     f.Format,
		Codec:      f.Codec,
		Size:       f.Size,
		DurationMs: f.Length.Milliseconds(),
		Sources:    f.Sources,
		GenreSlug:  f.GenreSlug,
		Album:      f.Album,
		Tracks:     tracks,
		ModTime:    f.ModTime,
		ScannedAt:  f.ScannedAt,
	}
}
