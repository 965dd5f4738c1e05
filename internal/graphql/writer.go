package graphql

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/renameio/v2"
)

// Writer renders the SDL of a schema set and replaces the output file atomically.
type Writer struct {
	logger interfaces.Logger
}

func NewWriter(logger interfaces.Logger) *Writer {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Writer{logger: logger}
}

// Write generates the SDL for set into path. An empty path is a no-op.
// Missing parent directories are created.
func (w *Writer) Write(ctx context.Context, set *schema.Set, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("graphql: create schema directory: %w", err)
		}
	}

	pendingFile, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return fmt.Errorf("graphql: create pending schema file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			w.logger.WithContext(ctx).Debug("cleanup pending schema file", "error", err)
		}
	}()

	if _, err := io.WriteString(pendingFile, Generate(set)); err != nil {
		return fmt.Errorf("graphql: write schema: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("graphql: replace schema file: %w", err)
	}

	w.logger.WithContext(ctx).Info("graphql schema written", "path", path)
	return nil
}
