package scanner

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/cuescan/internal/scanner/audio"
	"github.com/listenupapp/cuescan/internal/sidecar"
	"github.com/listenupapp/cuescan/internal/store/sqlite"
	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

const minute = 60 * 44100

const twoTrackCue = `TITLE "Album"
PERFORMER "Artist"
REM GENRE "Art Rock"
FILE "album.flac" WAVE
  TRACK 01 AUDIO
    TITLE "Song One"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Song Two"
    INDEX 01 03:00:00
`

// fakeReader serves containers by path. Each read returns a fresh copy
// because extraction writes to the album record.
type fakeReader struct {
	mu         sync.Mutex
	containers map[string]audio.Container
	calls      map[string]int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		containers: make(map[string]audio.Container),
		calls:      make(map[string]int),
	}
}

func (r *fakeReader) add(path string, c audio.Container) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.containers[path] = c
}

func (r *fakeReader) callCount(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[path]
}

func (r *fakeReader) Read(ctx context.Context, path string) (*audio.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[path]++
	c, ok := r.containers[path]
	if !ok {
		return nil, errors.New("unrecognized container")
	}
	c.Comments = append([]string(nil), c.Comments...)
	return &c, nil
}

// sixMinutes is a plain 44.1 kHz container six minutes long.
func sixMinutes() audio.Container {
	return audio.Container{
		Format: "flac",
		Album:  cuesheet.Record{SampleRate: 44100, SampleCount: 6 * minute},
	}
}

type fixture struct {
	fs      afero.Fs
	reader  *fakeReader
	store   *sqlite.Store
	scanner *Scanner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := discardLogger()

	fsys := afero.NewMemMapFs()
	locator, err := sidecar.NewLocator(fsys, "", logger)
	require.NoError(t, err)

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "catalog.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	reader := newFakeReader()
	walker := NewWalker(fsys, logger)
	analyzer := NewAnalyzer(reader, locator, logger)
	differ := NewDiffer(logger, locator.ModTime)

	return &fixture{
		fs:      fsys,
		reader:  reader,
		store:   st,
		scanner: NewScanner(st, walker, analyzer, differ, logger),
	}
}

// addAudio writes a placeholder audio file and registers its container.
func (f *fixture) addAudio(t *testing.T, path string, c audio.Container) {
	t.Helper()
	writeFiles(t, f.fs, map[string]string{path: "audio"})
	f.reader.add(path, c)
}
