// Package backend selects and constructs the configured data store.
package backend

import (
	"context"
	"fmt"
	"log/slog"

	"expenses/internal/config"
	"expenses/internal/store"
)

// CleanupFunc releases resources held by a store.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function
type Result struct {
	Store   store.Store
	Cleanup CleanupFunc
}

// Factory creates stores based on configuration
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create builds the store named by cfg.DBBackend.
func (f *Factory) Create(ctx context.Context, cfg *config.Config) (*Result, error) {
	switch cfg.DBBackend {
	case "postgres":
		return f.createPostgres(ctx, cfg)
	case "sqlite":
		return f.createSQLite(cfg)
	default:
		return nil, fmt.Errorf("unsupported db backend: %s", cfg.DBBackend)
	}
}

func (f *Factory) createPostgres(ctx context.Context, cfg *config.Config) (*Result, error) {
	st, err := store.NewPostgresStore(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("initialize postgres store: %w", err)
	}

	f.logger.Info("Initialized postgres store",
		"host", cfg.DBHost,
		"port", cfg.DBPort,
		"database", cfg.DBName)

	return &Result{Store: st, Cleanup: st.Close}, nil
}

func (f *Factory) createSQLite(cfg *config.Config) (*Result, error) {
	st, err := store.NewSQLiteStore(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize sqlite store: %w", err)
	}

	f.logger.Info("Initialized sqlite store", "db_path", cfg.SQLiteDBPath)

	return &Result{Store: st, Cleanup: st.Close}, nil
}
