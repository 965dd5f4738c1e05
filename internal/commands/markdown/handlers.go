package markdowncmd

import (
	"context"
	"errors"
	"io/fs"

	"github.com/goliatone/go-cms-community/internal/commands"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/markdown"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const importOperation = "markdown.import_directory"

// ErrImporterRequired is returned when the handler has nothing to write through.
var ErrImporterRequired = errors.New("markdown command: importer is required")

var _ command.Commander[ImportDirectoryCommand] = (*ImportDirectoryHandler)(nil)

type ImportDirectoryHandler struct {
	inner *commands.Handler[ImportDirectoryCommand]
}

// NewImportDirectoryHandler resolves command directories against fsys.
func NewImportDirectoryHandler(importer *markdown.Importer, fsys fs.FS, logger interfaces.Logger, opts ...commands.HandlerOption[ImportDirectoryCommand]) *ImportDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportDirectoryCommand) error {
		if importer == nil || fsys == nil {
			return ErrImporterRequired
		}
		docs, err := markdown.NewLoader(fsys, msg.Pattern, msg.Recursive).LoadDirectory(ctx, msg.Directory)
		if err != nil {
			return err
		}
		result, err := importer.Import(ctx, docs, markdown.ImportOptions{
			Collection: msg.Collection,
			BodyField:  msg.BodyField,
			MatchField: msg.MatchField,
			Draft:      msg.Draft,
			DryRun:     msg.DryRun,
		})
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count": len(result.Created),
				"updated_count": len(result.Updated),
				"skipped_count": len(result.Skipped),
				"error_count":   len(result.Errors),
				"dry_run":       msg.DryRun,
			}).Info("markdown.command.import_directory.completed")
		}
		if result != nil && len(result.Errors) > 1 {
			return errors.Join(result.Errors...)
		}
		return err
	}

	handlerOpts := []commands.HandlerOption[ImportDirectoryCommand]{
		commands.WithLogger[ImportDirectoryCommand](baseLogger),
		commands.WithOperation[ImportDirectoryCommand](importOperation),
		commands.WithMessageFields(func(msg ImportDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory":  msg.Directory,
				"collection": msg.Collection,
			}
			if msg.Recursive {
				fields["recursive"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDirectoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

func (h *ImportDirectoryHandler) Execute(ctx context.Context, msg ImportDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
