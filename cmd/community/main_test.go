package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-cms-community/community"
)

func TestRunSeedsAndWritesSchema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.graphql")
	configPath := filepath.Join(dir, "cms.yaml")
	config := "features:\n  logger: false\n"
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	var out bytes.Buffer
	if err := run(context.Background(), []string{"-config", configPath, "-schema-out", schemaPath}, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	printed := out.String()
	if strings.Count(printed, "draft example post") != 2 {
		t.Fatalf("expected menu and post to print the draft text, got %s", printed)
	}
	sdl, err := os.ReadFile(schemaPath)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if !strings.Contains(string(sdl), "type Post") || !strings.Contains(string(sdl), "type Menu") {
		t.Fatalf("unexpected schema:\n%s", sdl)
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.yaml")
	if err := os.WriteFile(path, []byte("storage:\n  provider: sqlite\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := run(context.Background(), []string{"-config", path}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected sqlite without dsn to be rejected")
	}
}

func TestBuildConfigKeepsCommunitySchemaPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.yaml")
	if err := os.WriteFile(path, []byte("depth:\n  default: 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := buildConfig(path, community.DevUser)
	if err != nil {
		t.Fatalf("build config: %v", err)
	}
	if cfg.GraphQL.SchemaOutputFile != "./test/_community/schema.graphql" {
		t.Fatalf("expected community schema path, got %q", cfg.GraphQL.SchemaOutputFile)
	}
	if cfg.Depth.Default != 1 || len(cfg.Collections) != 1 || cfg.OnInit == nil {
		t.Fatalf("unexpected merged config %+v", cfg)
	}
}
