package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cms "github.com/goliatone/go-cms-community"
	"github.com/goliatone/go-cms-community/community"
)

func captureModule(t *testing.T) **cms.Module {
	t.Helper()
	var captured *cms.Module
	original := moduleBuilder
	t.Cleanup(func() { moduleBuilder = original })
	moduleBuilder = func(ctx context.Context, cfg cms.Config) (*cms.Module, error) {
		cfg.Features.Logger = false
		module, err := cms.New(ctx, cfg)
		captured = module
		return module, err
	}
	return &captured
}

func writeContent(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "posts"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	doc := "---\nslug: hello\n---\n# Hello\n\nFrom markdown.\n"
	if err := os.WriteFile(filepath.Join(root, "posts", "hello.md"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return root
}

func TestRunImportCreatesPosts(t *testing.T) {
	ctx := context.Background()
	module := captureModule(t)
	root := writeContent(t)

	var out bytes.Buffer
	err := runImport(ctx, []string{"-content-dir", root, "-directory", "posts", "-match-field", "slug"}, &out)
	if err != nil {
		t.Fatalf("runImport: %v", err)
	}
	if !strings.Contains(out.String(), "executed successfully") {
		t.Fatalf("unexpected output %q", out.String())
	}

	page, err := (*module).Find(ctx, cms.FindOptions{Collection: community.PostsSlug})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if page.TotalDocs != 1 {
		t.Fatalf("expected one imported post, got %d", page.TotalDocs)
	}
	text, _ := page.Docs[0].Get("text").(string)
	if !strings.Contains(text, "<h1 id=\"hello\">Hello</h1>") {
		t.Fatalf("expected rendered body in text field, got %q", text)
	}
}

func TestRunImportDryRun(t *testing.T) {
	ctx := context.Background()
	module := captureModule(t)
	root := writeContent(t)

	if err := runImport(ctx, []string{"-content-dir", root, "-directory", "posts", "-dry-run"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("runImport: %v", err)
	}
	page, err := (*module).Find(ctx, cms.FindOptions{Collection: community.PostsSlug})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if page.TotalDocs != 0 {
		t.Fatalf("expected dry run to write nothing, got %d", page.TotalDocs)
	}
}

func TestRunImportRequiresCollection(t *testing.T) {
	captureModule(t)
	root := writeContent(t)
	err := runImport(context.Background(), []string{"-content-dir", root, "-collection", ""}, &bytes.Buffer{})
	if err == nil {
		t.Fatal("expected empty collection to fail validation")
	}
}
