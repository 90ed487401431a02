package backend

import (
	"context"
	"path/filepath"
	"testing"

	"expenses/internal/config"
)

func TestFactoryCreateSQLite(t *testing.T) {
	cfg := &config.Config{
		DBBackend:    "sqlite",
		SQLiteDBPath: filepath.Join(t.TempDir(), "expenses.db"),
	}

	result, err := NewFactory(nil).Create(context.Background(), cfg)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer result.Cleanup()

	if err := result.Store.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestFactoryRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{DBBackend: "mysql"}
	if _, err := NewFactory(nil).Create(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
