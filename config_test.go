package cms_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	cms "github.com/goliatone/go-cms-community"
	"github.com/goliatone/go-cms-community/schema"
)

func TestConfigValidateChecksContentModel(t *testing.T) {
	cfg := cms.DefaultConfig()
	cfg.Globals = []schema.Global{{
		Slug:   "menu",
		Fields: []schema.Field{{Name: "relationship", Type: schema.FieldRelationship, RelationTo: "posts"}},
	}}
	if err := cfg.Validate(); !errors.Is(err, schema.ErrRelationTargetUnknown) {
		t.Fatalf("expected ErrRelationTargetUnknown, got %v", err)
	}
}

func TestConfigValidateChecksRuntime(t *testing.T) {
	cfg := cms.DefaultConfig()
	cfg.Storage.Provider = "sqlite"
	if err := cfg.Validate(); !errors.Is(err, cms.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestLoadRuntimeConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cms.yaml")
	content := "storage:\n  provider: sqlite\n  dsn: file:cms.db\ndepth:\n  default: 1\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := cms.LoadRuntimeConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageProvider() != "sqlite" || cfg.Depth.Default != 1 || cfg.Depth.Max != 10 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
