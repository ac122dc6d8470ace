package scanner

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/listenupapp/cuescan/internal/domain"
	apperrors "github.com/listenupapp/cuescan/internal/errors"
	"github.com/listenupapp/cuescan/internal/scanner/audio"
	"github.com/listenupapp/cuescan/internal/sidecar"
	"github.com/listenupapp/cuescan/pkg/cuesheet"
)

// Analyzer reads audio files and extracts their track tables.
type Analyzer struct {
	logger  *slog.Logger
	reader  audio.Reader
	locator *sidecar.Locator
	parser  *cuesheet.Parser
}

// NewAnalyzer creates an analyzer. locator may be nil to disable sidecar
// lookup.
func NewAnalyzer(reader audio.Reader, locator *sidecar.Locator, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		logger:  logger,
		reader:  reader,
		locator: locator,
		parser:  cuesheet.NewParser(cuesheet.WithLogger(logger)),
	}
}

// AnalyzeOptions configures analysis behavior.
type AnalyzeOptions struct {
	// Number of concurrent workers. Defaults to runtime.NumCPU().
	Workers int

	// OnFile is called after each file, from the collecting goroutine.
	OnFile func(AnalyzeResult)
}

// AnalyzeResult is the outcome for one file. Audio is nil when the
// container could not be read.
type AnalyzeResult struct {
	Err   error
	Audio *domain.AudioFile
	File  FileData
}

// AnalyzeFile reads one file and extracts its tracks. A container that
// cannot be read is an error. A broken cuesheet is logged and the file is
// returned without tracks.
func (a *Analyzer) AnalyzeFile(ctx context.Context, fd FileData) (*domain.AudioFile, error) {
	c, err := a.reader.Read(ctx, fd.Path)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, apperrors.Wrapf(err, apperrors.CodeUnsupported, "read %s", fd.Path)
	}

	var load cuesheet.SidecarFunc
	if a.locator != nil {
		load = a.locator.Func(fd.Path)
	}

	res, err := a.parser.Extract(&c.Album, c.Input(load))
	if err != nil {
		a.logger.Warn("cuesheet extraction failed", "path", fd.Path, "error", err)
		res = nil
	}

	f := ConvertToAudioFile(fd, c, res)
	a.logger.Debug("file analyzed",
		"path", fd.Path,
		"sources", f.Sources,
		"tracks", len(f.Tracks),
	)
	return f, nil
}

// Analyze runs AnalyzeFile over files with a worker pool. Results keep the
// input order. Per-file failures are reported in the results; only
// cancellation fails the whole call.
func (a *Analyzer) Analyze(ctx context.Context, files []FileData, opts AnalyzeOptions) ([]AnalyzeResult, error) {
	if len(files) == 0 {
		return []AnalyzeResult{}, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, len(files))

	type job struct {
		file  FileData
		index int
	}

	type result struct {
		AnalyzeResult
		index int
	}

	jobs := make(chan job, len(files))
	results := make(chan result, len(files))

	for range workers {
		go func() {
			for j := range jobs {
				select {
				case <-ctx.Done():
					results <- result{AnalyzeResult: AnalyzeResult{File: j.file, Err: ctx.Err()}, index: j.index}
					continue
				default:
				}

				f, err := a.AnalyzeFile(ctx, j.file)
				if err != nil {
					a.logger.Error("failed to analyze file", "path", j.file.Path, "error", err)
				}
				results <- result{AnalyzeResult: AnalyzeResult{File: j.file, Audio: f, Err: err}, index: j.index}
			}
		}()
	}

	for i, file := range files {
		jobs <- job{file: file, index: i}
	}
	close(jobs)

	out := make([]AnalyzeResult, len(files))
	for range len(files) {
		select {
		case r := <-results:
			out[r.index] = r.AnalyzeResult
			if opts.OnFile != nil {
				opts.OnFile(r.AnalyzeResult)
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
