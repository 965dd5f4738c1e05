package community_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	cms "github.com/goliatone/go-cms-community"
	"github.com/goliatone/go-cms-community/community"
)

func newModule(t *testing.T, out *bytes.Buffer) (*cms.Module, cms.Config) {
	t.Helper()
	cfg := community.Config(community.DevUser)
	cfg.Features.Logger = false
	cfg.GraphQL.SchemaOutputFile = filepath.Join(t.TempDir(), "test", "_community", "schema.graphql")
	cfg.Output = out
	module, err := cms.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	t.Cleanup(func() { _ = module.Close() })
	return module, cfg
}

func TestConfigDeclaresPostsAndMenu(t *testing.T) {
	cfg := community.Config(community.DevUser)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if len(cfg.Collections) != 1 || cfg.Collections[0].Slug != community.PostsSlug {
		t.Fatalf("unexpected collections %+v", cfg.Collections)
	}
	if len(cfg.Globals) != 1 || cfg.Globals[0].Slug != community.MenuSlug {
		t.Fatalf("unexpected globals %+v", cfg.Globals)
	}
	if cfg.GraphQL.SchemaOutputFile != community.SchemaOutputFile {
		t.Fatalf("unexpected schema output %q", cfg.GraphQL.SchemaOutputFile)
	}
	if cfg.OnInit == nil {
		t.Fatal("expected OnInit to seed the store")
	}
	if !cfg.Collections[0].DraftsEnabled() || !cfg.Globals[0].DraftsEnabled() {
		t.Fatal("expected drafts on posts and menu")
	}
}

func TestInitSeedsAndPrintsDraftReads(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	module, _ := newModule(t, &out)

	if err := module.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	decoder := json.NewDecoder(&out)
	var menu, post map[string]any
	if err := decoder.Decode(&menu); err != nil {
		t.Fatalf("decode menu: %v", err)
	}
	if err := decoder.Decode(&post); err != nil {
		t.Fatalf("decode post: %v", err)
	}

	if post["text"] != "draft example post" || post["_status"] != "draft" {
		t.Fatalf("expected draft post read, got %v", post)
	}
	related, ok := menu["relationship"].(map[string]any)
	if !ok {
		t.Fatalf("expected populated menu relationship, got %v", menu["relationship"])
	}
	if related["id"] != post["id"] || related["text"] != "draft example post" {
		t.Fatalf("expected menu to embed the draft post, got %v", related)
	}

	user, err := module.Users().Login(ctx, community.DevUser.Email, community.DevUser.Password)
	if err != nil {
		t.Fatalf("login dev user: %v", err)
	}
	if user.Email != community.DevUser.Email {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestSeedLeavesPublishedPostUntouched(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	module, _ := newModule(t, &out)

	result, err := community.Run(ctx, module, community.Credentials{Email: "editor@example.com", Password: "secret"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("run must not print, got %q", out.String())
	}

	published, err := module.FindByID(ctx, cms.FindByIDOptions{Collection: community.PostsSlug, ID: result.Post.ID})
	if err != nil {
		t.Fatalf("find published: %v", err)
	}
	if published.Get("text") != "published example post" {
		t.Fatalf("draft leaked into published read: %v", published.Data)
	}

	menu, err := module.FindGlobal(ctx, cms.FindGlobalOptions{Slug: community.MenuSlug, CallOptions: cms.CallOptions{Depth: cms.Int(0)}})
	if err != nil {
		t.Fatalf("find menu: %v", err)
	}
	if menu.Get("relationship") != result.Post.ID.String() {
		t.Fatalf("expected raw relationship id at depth 0, got %v", menu.Get("relationship"))
	}
}

func TestSeedFailsOnDuplicateUser(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer
	module, _ := newModule(t, &out)

	if err := community.Seed(ctx, module); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := community.Seed(ctx, module); err == nil {
		t.Fatal("expected second seed to fail on the existing dev user")
	}
}
