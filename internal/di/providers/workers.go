package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/cuescan/internal/config"
	"github.com/listenupapp/cuescan/internal/logger"
	"github.com/listenupapp/cuescan/internal/processor"
	"github.com/listenupapp/cuescan/internal/watcher"
)

// FileWatcherHandle wraps the file watcher with shutdown capability.
// Watcher is nil when watching is disabled.
type FileWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *FileWatcherHandle) Shutdown() error {
	if h.Watcher == nil {
		return nil
	}
	h.cancel()
	return h.Watcher.Stop()
}

// ProvideFileWatcher provides the library watcher and starts feeding its
// events to the event processor.
func ProvideFileWatcher(i do.Injector) (*FileWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Watch.Enabled || cfg.Library.Path == "" {
		log.Info("File watcher disabled")
		return &FileWatcherHandle{}, nil
	}

	eventProcessor := do.MustInvoke[*processor.EventProcessor](i)

	w, err := watcher.New(log.WithComponent("watcher").Logger, watcher.Options{
		Match:        processor.Relevant,
		SettleDelay:  cfg.Watch.SettleDelay,
		IgnoreHidden: true,
	})
	if err != nil {
		return nil, err
	}

	if err := w.Watch(cfg.Library.Path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		if err := w.Start(ctx); err != nil {
			log.WithError(err).Error("File watcher error")
		}
	}()

	go eventProcessor.Run(ctx, w.Events(), cfg.Scan.Workers)

	go func() {
		for err := range w.Errors() {
			log.WithError(err).Warn("file watcher error")
		}
	}()

	log.WithField("path", cfg.Library.Path).Info("File watcher started")

	return &FileWatcherHandle{
		Watcher: w,
		cancel:  cancel,
	}, nil
}
