package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/pagetree/pagetree/internal/config"
	"github.com/pagetree/pagetree/internal/logger"
	"github.com/pagetree/pagetree/internal/store"
	"github.com/pagetree/pagetree/internal/store/sqlite"
)

// StoreHandle wraps the configured backend with shutdown capability.
type StoreHandle struct {
	store.Backend
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the node store selected by the configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Store.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := cfg.DatabasePath()

	var (
		backend store.Backend
		err     error
	)
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		backend, err = sqlite.Open(dbPath, log.Logger)
	default:
		backend, err = store.New(dbPath, log.Logger)
	}
	if err != nil {
		return nil, err
	}

	log.Debug("database initialized", "backend", cfg.Store.Backend, "path", dbPath)

	return &StoreHandle{Backend: backend}, nil
}
