package providers

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/cuescan/internal/config"
	"github.com/listenupapp/cuescan/internal/logger"
	"github.com/listenupapp/cuescan/internal/store/sqlite"
)

// StoreHandle wraps the catalog with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the catalog database, creating its directory.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(filepath.Dir(cfg.Catalog.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create catalog directory: %w", err)
	}

	db, err := sqlite.Open(cfg.Catalog.Path, log.WithComponent("catalog").Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Catalog opened", "path", cfg.Catalog.Path)

	return &StoreHandle{Store: db}, nil
}
