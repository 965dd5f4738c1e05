package migrations_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/migrations"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/pkg/testsupport"
	"github.com/google/uuid"
)

func TestRunnerAppliesSchemaOnce(t *testing.T) {
	ctx := context.Background()
	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	runner := migrations.NewRunner(db, nil)
	ran, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("up: %v", err)
	}
	if len(ran) != 1 || ran[0] != "20250101000000_initial_schema.up.sql" {
		t.Fatalf("unexpected migrations %v", ran)
	}

	again, err := runner.Up(ctx)
	if err != nil {
		t.Fatalf("second up: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no pending migrations, got %v", again)
	}

	now := time.Now().UTC()
	record := &collections.Record{ID: uuid.New(), Collection: "posts", Status: domain.StatusPublished, Data: map[string]any{"text": "hello"}, Version: 1, CreatedAt: now, UpdatedAt: now}
	if _, err := collections.NewBunRepository(db).Create(ctx, record); err != nil {
		t.Fatalf("insert document into migrated table: %v", err)
	}
	history := versions.NewService(versions.NewBunRepository(db))
	if _, err := history.Save(ctx, versions.SaveRequest{
		Parent:   versions.Parent{Kind: domain.KindCollection, Slug: "posts", ID: record.ID},
		Status:   domain.StatusPublished,
		Snapshot: record.Data,
	}); err != nil {
		t.Fatalf("insert version into migrated table: %v", err)
	}
}

func TestStatementsSplitsOnMarker(t *testing.T) {
	got := migrations.Statements("CREATE TABLE a (id INT);\n---bun:split\n\n---bun:split\nCREATE TABLE b (id INT);")
	if len(got) != 2 || got[1] != "CREATE TABLE b (id INT);" {
		t.Fatalf("unexpected statements %q", got)
	}
}
