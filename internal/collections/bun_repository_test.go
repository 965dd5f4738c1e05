package collections_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/pkg/testsupport"
	repocache "github.com/goliatone/go-repository-cache/cache"
)

func TestServiceWithBunStorageAndCache(t *testing.T) {
	ctx := context.Background()
	db, err := testsupport.NewBunSQLiteDB()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range []any{(*collections.Record)(nil), (*versions.Version)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	keySerializer := repocache.NewDefaultKeySerializer()

	records := collections.NewBunRepositoryWithCache(db, cacheService, keySerializer)
	history := versions.NewService(versions.NewBunRepository(db))
	svc, err := collections.NewService(postsSet(t), records, history)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	created, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "published example post"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	draftReq := local()
	draftReq.Draft = true
	if _, err := svc.Update(ctx, collections.UpdateRequest{Request: draftReq, Collection: "posts", ID: created.ID, Data: map[string]any{"text": "draft example post"}}); err != nil {
		t.Fatalf("draft update: %v", err)
	}

	published, err := svc.FindByID(ctx, collections.FindByIDRequest{Request: local(), Collection: "posts", ID: created.ID})
	if err != nil {
		t.Fatalf("find published: %v", err)
	}
	if published.Get("text") != "published example post" {
		t.Fatalf("unexpected published text %v", published.Get("text"))
	}

	draft, err := svc.FindByID(ctx, collections.FindByIDRequest{Request: draftReq, Collection: "posts", ID: created.ID})
	if err != nil {
		t.Fatalf("find draft: %v", err)
	}
	if draft.Get("text") != "draft example post" || draft.Status != domain.StatusDraft {
		t.Fatalf("unexpected draft %+v", draft)
	}

	if _, err := svc.FindByID(ctx, collections.FindByIDRequest{Request: local(), Collection: "pages", ID: created.ID}); !collections.IsNotFound(err) {
		t.Fatalf("documents must not leak across collections, got %v", err)
	}

	page, err := svc.Find(ctx, collections.FindRequest{Request: local(), Collection: "posts"})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if page.TotalDocs != 1 {
		t.Fatalf("expected one document, got %d", page.TotalDocs)
	}
}
