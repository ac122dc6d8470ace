package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func isCueOrFlac(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	return ext == ".cue" || ext == ".flac"
}

// startWatcher watches dir and runs the watcher until the test ends.
func startWatcher(t *testing.T, dir string, opts Options) *Watcher {
	t.Helper()

	if opts.SettleDelay == 0 {
		opts.SettleDelay = 50 * time.Millisecond
	}
	w, err := New(discardLogger(), opts)
	require.NoError(t, err)
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	go w.Start(ctx) //nolint:errcheck // Test goroutine
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	return w
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func assertNoEvent(t *testing.T, w *Watcher, wait time.Duration) {
	t.Helper()
	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(wait):
	}
}

func TestNew(t *testing.T) {
	w, err := New(discardLogger(), Options{})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop(), "Stop should be idempotent")
}

func TestWatcher_WatchMissingPath(t *testing.T) {
	w, err := New(discardLogger(), Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	err = w.Watch(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestWatcher_FileCreation(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{})

	path := filepath.Join(dir, "album.flac")
	require.NoError(t, os.WriteFile(path, []byte("fLaC test content"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, path, event.Path)
	assert.Equal(t, int64(17), event.Size)
	assert.False(t, event.ModTime.IsZero())
}

func TestWatcher_ExistingFileIsModified(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "album.cue")
	require.NoError(t, os.WriteFile(path, []byte(`FILE "a.flac" WAVE`), 0o644))

	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.WriteFile(path, []byte(`FILE "b.flac" WAVE`), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, EventModified, event.Type)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_FileDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "album.flac")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.Remove(path))

	event := nextEvent(t, w)
	assert.Equal(t, EventRemoved, event.Type)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_RenameReportsRemovalThenAdd(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.flac")
	newPath := filepath.Join(dir, "new.flac")
	require.NoError(t, os.WriteFile(oldPath, []byte("content"), 0o644))

	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.Rename(oldPath, newPath))

	got := map[EventType]string{}
	for range 2 {
		event := nextEvent(t, w)
		got[event.Type] = event.Path
	}
	assert.Equal(t, oldPath, got[EventRemoved])
	assert.Equal(t, newPath, got[EventAdded])
}

func TestWatcher_MatchFilter(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{Match: isCueOrFlac})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cover.jpg"), []byte("jpg"), 0o644))
	cue := filepath.Join(dir, "album.cue")
	require.NoError(t, os.WriteFile(cue, []byte("TITLE x"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, cue, event.Path)
	assertNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_IgnoreHidden(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.flac"), []byte("secret"), 0o644))
	normal := filepath.Join(dir, "normal.flac")
	require.NoError(t, os.WriteFile(normal, []byte("content"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, normal, event.Path)
	assertNoEvent(t, w, 300*time.Millisecond)
}

func TestWatcher_NewSubdirectory(t *testing.T) {
	dir := t.TempDir()
	w := startWatcher(t, dir, Options{Match: isCueOrFlac})

	sub := filepath.Join(dir, "Artist", "Album")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	path := filepath.Join(sub, "disc.flac")
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))

	event := nextEvent(t, w)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, path, event.Path)
}

func TestWatcher_StopClosesChannels(t *testing.T) {
	w, err := New(discardLogger(), Options{})
	require.NoError(t, err)
	require.NoError(t, w.Watch(t.TempDir()))
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}
