package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/cardinalitypuzzles/cardboard-server/internal/config"
	"github.com/cardinalitypuzzles/cardboard-server/internal/logger"
	"github.com/cardinalitypuzzles/cardboard-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	st, err := sqlite.Open(cfg.DBPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.DBPath())

	return &StoreHandle{Store: st}, nil
}
