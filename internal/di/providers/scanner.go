package providers

import (
	"context"

	"github.com/samber/do/v2"
	"github.com/spf13/afero"

	"github.com/listenupapp/cuescan/internal/config"
	"github.com/listenupapp/cuescan/internal/logger"
	"github.com/listenupapp/cuescan/internal/processor"
	"github.com/listenupapp/cuescan/internal/scanner"
	"github.com/listenupapp/cuescan/internal/scanner/audio"
	"github.com/listenupapp/cuescan/internal/sidecar"
)

// ProvideLocator provides the sidecar cuesheet locator.
func ProvideLocator(i do.Injector) (*sidecar.Locator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return sidecar.NewLocator(afero.NewOsFs(), cfg.Scan.Charset, log.WithComponent("sidecar").Logger)
}

// ProvideAudioReader provides the container reader. ffprobe is used as a
// fallback only when the binary can be found.
func ProvideAudioReader(i do.Injector) (audio.Reader, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	var fallback audio.Reader
	probe := audio.NewFFprobeReader(cfg.Scan.FFprobePath)
	if probe.Available() {
		fallback = probe
	} else {
		log.Info("ffprobe not found, APE and WavPack files will be skipped")
	}

	return audio.NewNativeReader(log.WithComponent("audio").Logger, fallback), nil
}

// ProvideScanner provides the library scanner.
func ProvideScanner(i do.Injector) (*scanner.Scanner, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	locator := do.MustInvoke[*sidecar.Locator](i)
	reader := do.MustInvoke[audio.Reader](i)
	log := do.MustInvoke[*logger.Logger](i).WithComponent("scanner")

	return scanner.NewScanner(
		storeHandle.Store,
		scanner.NewWalker(afero.NewOsFs(), log.Logger),
		scanner.NewAnalyzer(reader, locator, log.Logger),
		scanner.NewDiffer(log.Logger, locator.ModTime),
		log.Logger,
	), nil
}

// ProvideEventProcessor provides the file event processor.
func ProvideEventProcessor(i do.Injector) (*processor.EventProcessor, error) {
	fileScanner := do.MustInvoke[*scanner.Scanner](i)
	locator := do.MustInvoke[*sidecar.Locator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return processor.NewEventProcessor(fileScanner, locator, log.WithComponent("processor").Logger), nil
}

// RunInitialScan brings the catalog up to date with the library.
// Should be called after all dependencies are wired.
func RunInitialScan(i do.Injector) {
	cfg := do.MustInvoke[*config.Config](i)
	if cfg.Library.Path == "" {
		return
	}

	fileScanner := do.MustInvoke[*scanner.Scanner](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()
	if cfg.Scan.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Scan.Timeout)
		defer cancel()
	}

	log.Info("Running initial scan", "path", cfg.Library.Path)
	result, err := fileScanner.Scan(ctx, cfg.Library.Path, scanner.ScanOptions{
		Workers: cfg.Scan.Workers,
	})
	if err != nil {
		log.WithError(err).Error("Initial scan failed", "path", cfg.Library.Path)
		return
	}

	log.WithFields(map[string]any{
		"files":     result.Files,
		"added":     result.Added,
		"updated":   result.Updated,
		"removed":   result.Removed,
		"with_cues": result.WithCues,
		"errors":    result.Errors,
		"duration":  result.CompletedAt.Sub(result.StartedAt),
	}).Info("Initial scan complete")
}
