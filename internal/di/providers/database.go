package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/pausememo/pausememo/internal/config"
	"github.com/pausememo/pausememo/internal/logger"
	"github.com/pausememo/pausememo/internal/repository"
	"github.com/pausememo/pausememo/internal/sse"
	"github.com/pausememo/pausememo/internal/store"
	"github.com/pausememo/pausememo/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the configured backend with shutdown capability.
type StoreHandle struct {
	store.Backend
	Keys store.Keyspace
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the badger or SQLite backend under the data path.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	var (
		backend store.Backend
		path    string
		err     error
	)
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		path = cfg.Storage.SQLitePath()
		backend, err = sqlite.Open(path, log.Logger)
	default:
		path = cfg.Storage.BadgerPath()
		backend, err = store.New(path, log.Logger)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}

	log.Info("Database initialized", "backend", cfg.Storage.Backend, "path", path)

	return &StoreHandle{
		Backend: backend,
		Keys:    store.NewKeyspace(cfg.Storage.KeyPrefix),
	}, nil
}

// ProvideRepositories provides every repository over the opened store.
func ProvideRepositories(i do.Injector) (*repository.Set, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return repository.NewSet(storeHandle.Backend, storeHandle.Keys, log.Logger)
}
