package scanner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/cuescan/internal/errors"
	"github.com/listenupapp/cuescan/internal/store"
)

func TestIsAudioExt(t *testing.T) {
	for _, ext := range []string{".flac", ".FLAC", ".ape", ".wv", ".wav", ".mp3"} {
		assert.True(t, IsAudioExt(ext), ext)
	}
	for _, ext := range []string{".cue", ".jpg", ".txt", ""} {
		assert.False(t, IsAudioExt(ext), ext)
	}
	assert.True(t, IsAudioPath("/m/Album.Wv"))
}

func TestScanner_Scan_EmptyDirectory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.fs.MkdirAll("/music", 0o755))

	result, err := f.scanner.Scan(context.Background(), "/music", ScanOptions{})
	require.NoError(t, err)

	assert.Zero(t, result.Files)
	assert.Zero(t, result.Added)
	assert.Empty(t, result.Items)
	assert.Equal(t, PhaseComplete, result.Progress.Phase)
}

func TestScanner_Scan_AddsFiles(t *testing.T) {
	f := newFixture(t)
	f.addAudio(t, "/music/a/album.flac", sixMinutes())
	writeFiles(t, f.fs, map[string]string{"/music/a/album.cue": twoTrackCue})
	f.addAudio(t, "/music/b/single.mp3", sixMinutes())

	result, err := f.scanner.Scan(context.Background(), "/music", ScanOptions{Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 1, result.WithCues)
	assert.Zero(t, result.Errors)

	got, err := f.store.GetFileByPath(context.Background(), "/music/a/album.flac")
	require.NoError(t, err)
	assert.Equal(t, "sidecar", got.Sources)
	assert.Len(t, got.Tracks, 2)

	n, err := f.store.CountFiles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestScanner_Scan_Incremental(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAudio(t, "/music/keep.flac", sixMinutes())
	f.addAudio(t, "/music/edit.flac", sixMinutes())
	f.addAudio(t, "/music/drop.flac", sixMinutes())

	_, err := f.scanner.Scan(ctx, "/music", ScanOptions{})
	require.NoError(t, err)
	require.Equal(t, 1, f.reader.callCount("/music/keep.flac"))

	// Add a sidecar to one file and delete another.
	later := time.Now().Add(time.Hour)
	writeFiles(t, f.fs, map[string]string{"/music/edit.cue": twoTrackCue})
	require.NoError(t, f.fs.Chtimes("/music/edit.cue", later, later))
	require.NoError(t, f.fs.Remove("/music/drop.flac"))

	result, err := f.scanner.Scan(ctx, "/music", ScanOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Unchanged)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Removed)
	assert.Zero(t, result.Added)
	assert.Equal(t, 1, f.reader.callCount("/music/keep.flac"))
	assert.Equal(t, 2, f.reader.callCount("/music/edit.flac"))

	edited, err := f.store.GetFileByPath(ctx, "/music/edit.flac")
	require.NoError(t, err)
	assert.Len(t, edited.Tracks, 2)

	_, err = f.store.GetFileByPath(ctx, "/music/drop.flac")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestScanner_Scan_Force(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAudio(t, "/music/a.flac", sixMinutes())

	_, err := f.scanner.Scan(ctx, "/music", ScanOptions{})
	require.NoError(t, err)

	result, err := f.scanner.Scan(ctx, "/music", ScanOptions{Force: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, f.reader.callCount("/music/a.flac"))
}

func TestScanner_Scan_SiblingRootUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAudio(t, "/music2/other.flac", sixMinutes())
	_, err := f.scanner.Scan(ctx, "/music2", ScanOptions{})
	require.NoError(t, err)

	require.NoError(t, f.fs.MkdirAll("/music", 0o755))
	result, err := f.scanner.Scan(ctx, "/music", ScanOptions{})
	require.NoError(t, err)

	assert.Zero(t, result.Removed)
	_, err = f.store.GetFileByPath(ctx, "/music2/other.flac")
	assert.NoError(t, err)
}

func TestScanner_Scan_UnreadableCounted(t *testing.T) {
	f := newFixture(t)
	writeFiles(t, f.fs, map[string]string{"/music/broken.flac": "junk"})
	f.addAudio(t, "/music/good.flac", sixMinutes())

	result, err := f.scanner.Scan(context.Background(), "/music", ScanOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1, result.Added)
	require.Len(t, result.Progress.Errors, 1)
	assert.Equal(t, "/music/broken.flac", result.Progress.Errors[0].Path)
	assert.Equal(t, PhaseAnalyzing, result.Progress.Errors[0].Phase)
}

func TestScanner_Scan_DryRun(t *testing.T) {
	f := newFixture(t)
	f.addAudio(t, "/music/album.flac", sixMinutes())
	writeFiles(t, f.fs, map[string]string{"/music/album.cue": twoTrackCue})

	result, err := f.scanner.Scan(context.Background(), "/music", ScanOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	require.Len(t, result.Items, 1)
	assert.Len(t, result.Items[0].Tracks, 2)

	n, err := f.store.CountFiles(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestScanner_Scan_NilStore(t *testing.T) {
	f := newFixture(t)
	s := NewScanner(nil, f.scanner.walker, f.scanner.analyzer, f.scanner.differ, discardLogger())
	f.addAudio(t, "/music/album.flac", sixMinutes())

	result, err := s.Scan(context.Background(), "/music", ScanOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Added)
	assert.Len(t, result.Items, 1)
}

func TestScanner_Scan_ProgressCallback(t *testing.T) {
	f := newFixture(t)
	f.addAudio(t, "/music/a.flac", sixMinutes())
	f.addAudio(t, "/music/b.flac", sixMinutes())

	var (
		mu     sync.Mutex
		phases []ScanPhase
		last   Progress
	)
	_, err := f.scanner.Scan(context.Background(), "/music", ScanOptions{
		OnProgress: func(p *Progress) {
			mu.Lock()
			defer mu.Unlock()
			if len(phases) == 0 || phases[len(phases)-1] != p.Phase {
				phases = append(phases, p.Phase)
			}
			last = *p
		},
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []ScanPhase{PhaseWalking, PhaseDiffing, PhaseAnalyzing, PhaseApplying, PhaseComplete}, phases)
	assert.Equal(t, 2, last.Added)
}

func TestScanner_Scan_NonexistentPath(t *testing.T) {
	f := newFixture(t)

	_, err := f.scanner.Scan(context.Background(), "/nope", ScanOptions{})
	assert.Error(t, err)
}

func TestScanner_Scan_RootIsFile(t *testing.T) {
	f := newFixture(t)
	f.addAudio(t, "/music/a.flac", sixMinutes())

	_, err := f.scanner.Scan(context.Background(), "/music/a.flac", ScanOptions{})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestScanner_Scan_ContextCancellation(t *testing.T) {
	f := newFixture(t)
	f.addAudio(t, "/music/a.flac", sixMinutes())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.scanner.Scan(ctx, "/music", ScanOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanner_ScanFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAudio(t, "/music/album.flac", sixMinutes())
	writeFiles(t, f.fs, map[string]string{"/music/album.cue": twoTrackCue})

	got, err := f.scanner.ScanFile(ctx, "/music/album.flac", ScanOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)

	stored, err := f.store.GetFile(ctx, got.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Tracks, 2)
}

func TestScanner_ScanFile_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.scanner.ScanFile(ctx, "/music/album.cue", ScanOptions{})
	assert.True(t, errors.Is(err, errors.ErrUnsupported))

	_, err = f.scanner.ScanFile(ctx, "/music/missing.flac", ScanOptions{})
	assert.Error(t, err)
}

func TestScanner_RemoveFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addAudio(t, "/music/a.flac", sixMinutes())
	_, err := f.scanner.ScanFile(ctx, "/music/a.flac", ScanOptions{})
	require.NoError(t, err)

	require.NoError(t, f.scanner.RemoveFile(ctx, "/music/a.flac"))
	require.NoError(t, f.scanner.RemoveFile(ctx, "/music/a.flac"))

	n, err := f.store.CountFiles(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
