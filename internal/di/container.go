// Package di wires the cuescan daemon together.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/cuescan/internal/config"
	"github.com/listenupapp/cuescan/internal/di/providers"
	"github.com/listenupapp/cuescan/internal/logger"
	"github.com/listenupapp/cuescan/internal/processor"
	"github.com/listenupapp/cuescan/internal/scanner"
	"github.com/listenupapp/cuescan/internal/scanner/audio"
	"github.com/listenupapp/cuescan/internal/sidecar"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Catalog
	do.Provide(injector, providers.ProvideStore)

	// Scanner layer
	do.Provide(injector, providers.ProvideLocator)
	do.Provide(injector, providers.ProvideAudioReader)
	do.Provide(injector, providers.ProvideScanner)
	do.Provide(injector, providers.ProvideEventProcessor)

	// Workers
	do.Provide(injector, providers.ProvideFileWatcher)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services. Providers run lazily, so this is
// where configuration and catalog errors surface.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*sidecar.Locator](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[audio.Reader](injector)
	_ = do.MustInvoke[*scanner.Scanner](injector)
	_ = do.MustInvoke[*processor.EventProcessor](injector)

	// The watcher starts before the initial scan so changes made during
	// the scan are not missed.
	if _, err := do.Invoke[*providers.FileWatcherHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	go providers.RunInitialScan(injector)

	return nil
}
