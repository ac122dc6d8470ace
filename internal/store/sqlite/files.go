package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/listenupapp/cuescan/internal/domain"
	"github.com/listenupapp/cuescan/internal/id"
	"github.com/listenupapp/cuescan/internal/store"
	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// fileColumns is the ordered list of columns selected in file queries.
// Must match the scan order in scanFile.
const fileColumns = `id, path, format, codec, size, duration_ms, sources, genre_slug, album, mod_time, scanned_at`

// scanFile scans a sql.Row (or sql.Rows via its Scan method) into a domain.AudioFile.
func scanFile(scanner interface{ Scan(dest ...any) error }) (*domain.AudioFile, error) {
	var f domain.AudioFile

	var (
		codec      sql.NullString
		genreSlug  sql.NullString
		durationMS int64
		album      string
		modTime    string
		scannedAt  string
	)

	err := scanner.Scan(
		&f.ID,
		&f.Path,
		&f.Format,
		&codec,
		&f.Size,
		&durationMS,
		&f.Sources,
		&genreSlug,
		&album,
		&modTime,
		&scannedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Codec = codec.String
	f.GenreSlug = genreSlug.String
	f.Length = time.Duration(durationMS) * time.Millisecond

	if err := json.Unmarshal([]byte(album), &f.Album); err != nil {
		return nil, fmt.Errorf("decode album of %s: %w", f.ID, err)
	}
	if f.ModTime, err = parseTime(modTime); err != nil {
		return nil, err
	}
	if f.ScannedAt, err = parseTime(scannedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// loadTracks reads the track table of one file in position order.
func (s *Store) loadTracks(ctx context.Context, querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}, fileID string) ([]cuesheet.Record, error) {
	rows, err := querier.QueryContext(ctx,
		`SELECT data FROM tracks WHERE file_id = ? ORDER BY position ASC`, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []cuesheet.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var t cuesheet.Record
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			return nil, fmt.Errorf("decode track of %s: %w", fileID, err)
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}

// insertTracks writes the track table of one file. Slot positions are kept
// so that gaps in the cuesheet numbering survive a round trip.
func insertTracks(ctx context.Context, tx *sql.Tx, fileID string, tracks []cuesheet.Record) error {
	for i, t := range tracks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encode track %d: %w", i+1, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO tracks (
				file_id, position, number, title, artist,
				sample_offset, sample_count, song_length_ms, subtrack, disabled, data
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID,
			i,
			t.Track,
			nullString(t.Title),
			nullString(t.Artist),
			t.SampleOffset,
			nullInt64(t.SampleCount),
			nullInt64(t.SongLength),
			boolToInt(t.Subtrack),
			boolToInt(t.Disabled),
			string(data),
		)
		if err != nil {
			return fmt.Errorf("insert track %d: %w", i+1, err)
		}
	}
	return nil
}

// SaveFile inserts the file or replaces the row already stored at its path.
// The existing ID is kept on replace and written back to f.
func (s *Store) SaveFile(ctx context.Context, f *domain.AudioFile) error {
	if f.Path == "" {
		return store.ErrInvalidInput.WithDetails("path is required")
	}

	album, err := json.Marshal(f.Album)
	if err != nil {
		return fmt.Errorf("encode album: %w", err)
	}
	if f.ScannedAt.IsZero() {
		f.ScannedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM files WHERE path = ?`, f.Path).Scan(&existingID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if f.ID == "" {
			if f.ID, err = id.Generate(domain.FileIDPrefix); err != nil {
				return err
			}
		}
	case err != nil:
		return err
	default:
		f.ID = existingID
		if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE file_id = ?`, existingID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, existingID); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO files (
			id, path, format, codec, size, duration_ms, sources, genre_slug,
			album_title, album_artist, sample_rate, sample_count, track_count,
			album, mod_time, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.Path,
		f.Format,
		nullString(f.Codec),
		f.Size,
		f.Length.Milliseconds(),
		f.Sources,
		nullString(f.GenreSlug),
		nullString(f.Album.Album),
		nullString(f.Album.Artist),
		nullInt64(int64(f.Album.SampleRate)),
		nullInt64(f.Album.SampleCount),
		len(f.Tracks),
		string(album),
		formatTime(f.ModTime),
		formatTime(f.ScannedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists.WithCause(err)
		}
		return err
	}

	if err := insertTracks(ctx, tx, f.ID, f.Tracks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug("file saved", "id", f.ID, "path", f.Path, "tracks", len(f.Tracks))
	return nil
}

// GetFile retrieves a file and its tracks by ID.
// Returns store.ErrNotFound if the file does not exist.
func (s *Store) GetFile(ctx context.Context, id string) (*domain.AudioFile, error) {
	return s.getFile(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id)
}

// GetFileByPath retrieves a file and its tracks by path.
// Returns store.ErrNotFound if the file does not exist.
func (s *Store) GetFileByPath(ctx context.Context, path string) (*domain.AudioFile, error) {
	return s.getFile(ctx, `SELECT `+fileColumns+` FROM files WHERE path = ?`, path)
}

func (s *Store) getFile(ctx context.Context, query string, arg string) (*domain.AudioFile, error) {
	f, err := scanFile(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if f.Tracks, err = s.loadTracks(ctx, s.db, f.ID); err != nil {
		return nil, fmt.Errorf("load tracks for %s: %w", f.ID, err)
	}
	return f, nil
}

// filterClause builds the WHERE conditions shared by listing and counting.
func filterClause(filter store.FileFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.GenreSlug != "" {
		conds = append(conds, "genre_slug = ?")
		args = append(args, filter.GenreSlug)
	}
	if filter.PathPrefix != "" {
		conds = append(conds, "substr(path, 1, length(?)) = ?")
		args = append(args, filter.PathPrefix, filter.PathPrefix)
	}
	if filter.CueOnly {
		conds = append(conds, "track_count > 0")
	}
	if len(conds) == 0 {
		return "1 = 1", nil
	}
	return strings.Join(conds, " AND "), args
}

// ListFiles returns one page of files ordered by path. Tracks are loaded
// for each file.
func (s *Store) ListFiles(ctx context.Context, filter store.FileFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.AudioFile], error) {
	params.Normalize()

	cursorPath, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	where, args := filterClause(filter)

	var total int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, err
	}

	// Fetch limit+1 rows to determine hasMore.
	query := `SELECT ` + fileColumns + ` FROM files WHERE ` + where
	if cursorPath != "" {
		query += ` AND path > ?`
		args = append(args, cursorPath)
	}
	query += ` ORDER BY path ASC LIMIT ?`
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []*domain.AudioFile{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	hasMore := len(files) > params.Limit
	if hasMore {
		files = files[:params.Limit]
	}

	for _, f := range files {
		if f.Tracks, err = s.loadTracks(ctx, s.db, f.ID); err != nil {
			return nil, fmt.Errorf("load tracks for %s: %w", f.ID, err)
		}
	}

	var nextCursor string
	if hasMore && len(files) > 0 {
		nextCursor = store.EncodeCursor(files[len(files)-1].Path)
	}

	return &store.PaginatedResult[*domain.AudioFile]{
		Items:      files,
		Total:      total,
		HasMore:    hasMore,
		NextCursor: nextCursor,
	}, nil
}

// CountFiles returns the number of cataloged files.
func (s *Store) CountFiles(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n)
	return n, err
}

// DeleteFile removes a file and its tracks.
// Returns store.ErrNotFound if the file does not exist.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	return s.deleteFile(ctx, `id = ?`, id)
}

// DeleteFileByPath removes the file stored at path.
// Returns store.ErrNotFound if no file is stored there.
func (s *Store) DeleteFileByPath(ctx context.Context, path string) error {
	return s.deleteFile(ctx, `path = ?`, path)
}

// deleteFile removes the files matching where along with their tracks.
func (s *Store) deleteFile(ctx context.Context, where, arg string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM tracks WHERE file_id IN (SELECT id FROM files WHERE `+where+`)`, arg); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE `+where, arg)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return tx.Commit()
}

// FileStamps returns the change-detection state of every file under root.
func (s *Store) FileStamps(ctx context.Context, root string) (map[string]store.FileStamp, error) {
	where, args := filterClause(store.FileFilter{PathPrefix: root})
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, size, mod_time, scanned_at FROM files WHERE `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stamps := make(map[string]store.FileStamp)
	for rows.Next() {
		var (
			st        store.FileStamp
			path      string
			modTime   string
			scannedAt string
		)
		if err := rows.Scan(&st.ID, &path, &st.Size, &modTime, &scannedAt); err != nil {
			return nil, err
		}
		if st.ModTime, err = parseTime(modTime); err != nil {
			return nil, err
		}
		if st.ScannedAt, err = parseTime(scannedAt); err != nil {
			return nil, err
		}
		stamps[path] = st
	}
	return stamps, rows.Err()
}

var _ store.Store = (*Store)(nil)
