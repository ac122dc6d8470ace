package scanner

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/cuescan/internal/store"
)

func TestDiffer_ComputeDiff(t *testing.T) {
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	scanned := mod.Add(time.Hour)

	existing := map[string]store.FileStamp{
		"/m/same.flac":    {ID: "file-1", Size: 10, ModTime: mod, ScannedAt: scanned},
		"/m/resized.flac": {ID: "file-2", Size: 10, ModTime: mod, ScannedAt: scanned},
		"/m/touched.flac": {ID: "file-3", Size: 10, ModTime: mod, ScannedAt: scanned},
		"/m/newcue.flac":  {ID: "file-4", Size: 10, ModTime: mod, ScannedAt: scanned},
		"/m/gone.flac":    {ID: "file-5", Size: 10, ModTime: mod, ScannedAt: scanned},
	}
	walked := []FileData{
		{Path: "/m/same.flac", Size: 10, ModTime: mod},
		{Path: "/m/resized.flac", Size: 11, ModTime: mod},
		{Path: "/m/touched.flac", Size: 10, ModTime: mod.Add(time.Minute)},
		{Path: "/m/newcue.flac", Size: 10, ModTime: mod},
		{Path: "/m/fresh.flac", Size: 10, ModTime: mod},
	}
	sidecars := func(p string) (time.Time, bool) {
		switch p {
		case "/m/newcue.flac":
			return scanned.Add(time.Minute), true
		case "/m/same.flac":
			return mod, true
		}
		return time.Time{}, false
	}

	diff, err := NewDiffer(discardLogger(), sidecars).ComputeDiff(context.Background(), walked, existing, false)
	require.NoError(t, err)

	require.Len(t, diff.Added, 1)
	assert.Equal(t, "/m/fresh.flac", diff.Added[0].Path)

	var updated []string
	for _, f := range diff.Updated {
		updated = append(updated, f.Path)
	}
	sort.Strings(updated)
	assert.Equal(t, []string{"/m/newcue.flac", "/m/resized.flac", "/m/touched.flac"}, updated)

	assert.Equal(t, []string{"/m/same.flac"}, diff.Unchanged)
	assert.Equal(t, []string{"/m/gone.flac"}, diff.Removed)
}

func TestDiffer_Force(t *testing.T) {
	mod := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := map[string]store.FileStamp{
		"/m/a.flac": {ID: "file-1", Size: 1, ModTime: mod, ScannedAt: mod},
	}
	walked := []FileData{{Path: "/m/a.flac", Size: 1, ModTime: mod}}

	diff, err := NewDiffer(discardLogger(), nil).ComputeDiff(context.Background(), walked, existing, true)
	require.NoError(t, err)

	assert.Len(t, diff.Updated, 1)
	assert.Empty(t, diff.Unchanged)
}

func TestDiffer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDiffer(discardLogger(), nil).ComputeDiff(ctx, []FileData{{Path: "/m/a.flac"}}, nil, false)
	assert.ErrorIs(t, err, context.Canceled)
}
