package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-cms-community/pkg/interfaces"
)

type recordingLogger struct {
	fields []map[string]any
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger {
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, collectionsModule)
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger.WithContext(context.Background()).Info("noop")
}

func TestModuleLoggerAnnotatesModule(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = GlobalsLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != globalsModule {
		t.Fatalf("expected module %s, got %v", globalsModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != globalsModule {
		t.Fatalf("expected module field, got %v", rec.fields)
	}
}

func TestModuleLoggerDefaultsToRoot(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	_ = ModuleLogger(provider, "  ")

	if provider.requested[0] != rootModule {
		t.Fatalf("expected root module, got %v", provider.requested)
	}
}

func TestWithDocumentContext(t *testing.T) {
	rec := &recordingLogger{}

	WithDocumentContext(rec, KindCollection, "posts", "abc", true)
	WithDocumentContext(rec, KindGlobal, "menu", "", false)

	if len(rec.fields) != 2 {
		t.Fatalf("expected two field sets, got %d", len(rec.fields))
	}
	first := rec.fields[0]
	if first["collection"] != "posts" || first["document_id"] != "abc" || first["draft"] != true {
		t.Fatalf("unexpected collection fields: %v", first)
	}
	second := rec.fields[1]
	if second["global"] != "menu" {
		t.Fatalf("expected global field, got %v", second)
	}
	if _, ok := second["document_id"]; ok {
		t.Fatalf("expected empty id to be skipped, got %v", second)
	}
}
