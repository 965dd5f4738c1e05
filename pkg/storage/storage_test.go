package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-cms-community/pkg/storage"
	"github.com/uptrace/bun/dialect"
)

func TestOpenSQLite(t *testing.T) {
	db, err := storage.Open(context.Background(), storage.Config{Driver: "sqlite", DSN: "file:storage_open_test?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if db.Dialect().Name() != dialect.SQLite {
		t.Fatalf("expected sqlite dialect, got %s", db.Dialect().Name())
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	if _, err := storage.Open(context.Background(), storage.Config{Driver: "sqlite"}); !errors.Is(err, storage.ErrDSNRequired) {
		t.Fatalf("expected ErrDSNRequired, got %v", err)
	}
	if _, err := storage.Open(context.Background(), storage.Config{Driver: "oracle", DSN: "x"}); !errors.Is(err, storage.ErrDriverUnknown) {
		t.Fatalf("expected ErrDriverUnknown, got %v", err)
	}
}
