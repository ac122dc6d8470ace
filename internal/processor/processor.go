package processor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/listenupapp/cuescan/internal/domain"
	"github.com/listenupapp/cuescan/internal/errors"
	"github.com/listenupapp/cuescan/internal/scanner"
	"github.com/listenupapp/cuescan/internal/watcher"
)

// FileScanner catalogs or drops a single audio file.
type FileScanner interface {
	ScanFile(ctx context.Context, path string, opts scanner.ScanOptions) (*domain.AudioFile, error)
	RemoveFile(ctx context.Context, path string) error
}

// CueResolver maps a sidecar cuesheet to the audio files it describes.
type CueResolver interface {
	AudioFor(cuePath string, isAudio func(string) bool) ([]string, error)
}

// EventProcessor applies watcher events to the catalog.
//
// An audio event rescans or removes that file. A cuesheet event rescans
// every audio file the cuesheet can belong to, since adding, editing or
// deleting a sidecar changes their track tables. Work on one audio path is
// serialized; different paths proceed in parallel.
type EventProcessor struct {
	scanner FileScanner
	cues    CueResolver
	logger  *slog.Logger
	locks   *pathLocks
}

// NewEventProcessor creates a new EventProcessor instance.
func NewEventProcessor(fs FileScanner, cues CueResolver, logger *slog.Logger) *EventProcessor {
	return &EventProcessor{
		scanner: fs,
		cues:    cues,
		logger:  logger,
		locks:   newPathLocks(),
	}
}

// ProcessEvent applies one event. Files that cannot be read as audio are
// logged and skipped.
func (ep *EventProcessor) ProcessEvent(ctx context.Context, event watcher.Event) error {
	fileType := classifyFile(event.Path)
	ep.logger.Debug("processing event",
		"type", event.Type.String(),
		"path", event.Path,
		"file_type", fileType.String(),
	)

	switch fileType {
	case FileTypeAudio:
		return ep.handleAudio(ctx, event)
	case FileTypeCuesheet:
		return ep.handleCuesheet(ctx, event)
	default:
		return nil
	}
}

func (ep *EventProcessor) handleAudio(ctx context.Context, event watcher.Event) error {
	switch event.Type {
	case watcher.EventAdded, watcher.EventModified:
		return ep.rescan(ctx, event.Path)
	case watcher.EventRemoved:
		unlock := ep.locks.lock(event.Path)
		defer unlock()
		return ep.scanner.RemoveFile(ctx, event.Path)
	default:
		ep.logger.Warn("unknown event type", "type", event.Type, "path", event.Path)
		return nil
	}
}

// handleCuesheet rescans the audio files next to a changed cuesheet. A
// removed cuesheet is handled the same way: the rescan falls back to
// whatever the container itself carries.
func (ep *EventProcessor) handleCuesheet(ctx context.Context, event watcher.Event) error {
	targets, err := ep.cues.AudioFor(event.Path, scanner.IsAudioPath)
	if err != nil {
		return fmt.Errorf("resolve audio for %s: %w", event.Path, err)
	}
	if len(targets) == 0 {
		ep.logger.Debug("cuesheet has no matching audio", "path", event.Path)
		return nil
	}

	ep.logger.Info("cuesheet changed",
		"path", event.Path,
		"type", event.Type.String(),
		"audio_files", len(targets),
	)

	var errs []error
	for _, target := range targets {
		if err := ep.rescan(ctx, target); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ep *EventProcessor) rescan(ctx context.Context, path string) error {
	unlock := ep.locks.lock(path)
	defer unlock()

	_, err := ep.scanner.ScanFile(ctx, path, scanner.ScanOptions{})
	if errors.Is(err, errors.ErrUnsupported) {
		ep.logger.Warn("skipping unreadable audio file", "path", path, "error", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}

// Run processes events with the given number of workers until events is
// closed or ctx is canceled. Failures are logged.
func (ep *EventProcessor) Run(ctx context.Context, events <-chan watcher.Event, workers int) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-events:
					if !ok {
						return
					}
					if err := ep.ProcessEvent(ctx, event); err != nil {
						ep.logger.Warn("failed to process event",
							"error", err,
							"type", event.Type.String(),
							"path", event.Path,
						)
					}
				}
			}
		})
	}
	wg.Wait()
}
