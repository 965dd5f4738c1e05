package documentscmd

import (
	"context"

	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/commands"
	"github.com/goliatone/go-cms-community/internal/globals"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	command "github.com/goliatone/go-command"
)

const (
	publishOperation       = "documents.publish"
	restoreOperation       = "documents.restore_version"
	publishGlobalOperation = "globals.publish"
)

var (
	_ command.Commander[PublishDocumentCommand] = (*PublishDocumentHandler)(nil)
	_ command.Commander[RestoreVersionCommand]  = (*RestoreVersionHandler)(nil)
	_ command.Commander[PublishGlobalCommand]   = (*PublishGlobalHandler)(nil)
)

// Commands run with local API privileges.
var system = collections.Request{OverrideAccess: true}

type PublishDocumentHandler struct {
	inner *commands.Handler[PublishDocumentCommand]
}

// NewPublishDocumentHandler publishes by writing an empty non-draft update,
// which merges onto the newest draft.
func NewPublishDocumentHandler(service collections.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishDocumentCommand]) *PublishDocumentHandler {
	baseLogger := ensureLogger(logger)
	exec := func(ctx context.Context, msg PublishDocumentCommand) error {
		doc, err := service.Update(ctx, collections.UpdateRequest{
			Request:    system,
			Collection: msg.Collection,
			ID:         msg.ID,
			Data:       map[string]any{},
		})
		if err != nil {
			return err
		}
		logging.WithDocumentContext(baseLogger, logging.KindCollection, msg.Collection, doc.ID.String(), false).
			Info("documents.command.publish.completed", "version", doc.Version)
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishDocumentCommand]{
		commands.WithLogger[PublishDocumentCommand](baseLogger),
		commands.WithOperation[PublishDocumentCommand](publishOperation),
		commands.WithMessageFields(func(msg PublishDocumentCommand) map[string]any {
			return map[string]any{"collection": msg.Collection, "document_id": msg.ID.String()}
		}),
	}
	return &PublishDocumentHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *PublishDocumentHandler) Execute(ctx context.Context, msg PublishDocumentCommand) error {
	return h.inner.Execute(ctx, msg)
}

type RestoreVersionHandler struct {
	inner *commands.Handler[RestoreVersionCommand]
}

func NewRestoreVersionHandler(documents collections.Service, singletons globals.Service, logger interfaces.Logger, opts ...commands.HandlerOption[RestoreVersionCommand]) *RestoreVersionHandler {
	baseLogger := ensureLogger(logger)
	exec := func(ctx context.Context, msg RestoreVersionCommand) error {
		if msg.Global != "" {
			doc, err := singletons.RestoreVersion(ctx, globals.RestoreRequest{
				Request:   globals.Request{OverrideAccess: true, Draft: msg.Draft},
				Slug:      msg.Global,
				VersionID: msg.VersionID,
			})
			if err != nil {
				return err
			}
			logging.WithDocumentContext(baseLogger, logging.KindGlobal, msg.Global, doc.ID.String(), msg.Draft).
				Info("documents.command.restore_version.completed", "version", doc.Version)
			return nil
		}
		req := system
		req.Draft = msg.Draft
		doc, err := documents.RestoreVersion(ctx, collections.RestoreRequest{
			Request:    req,
			Collection: msg.Collection,
			VersionID:  msg.VersionID,
		})
		if err != nil {
			return err
		}
		logging.WithDocumentContext(baseLogger, logging.KindCollection, msg.Collection, doc.ID.String(), msg.Draft).
			Info("documents.command.restore_version.completed", "version", doc.Version)
		return nil
	}

	handlerOpts := []commands.HandlerOption[RestoreVersionCommand]{
		commands.WithLogger[RestoreVersionCommand](baseLogger),
		commands.WithOperation[RestoreVersionCommand](restoreOperation),
		commands.WithMessageFields(func(msg RestoreVersionCommand) map[string]any {
			fields := map[string]any{"version_id": msg.VersionID.String(), "draft": msg.Draft}
			if msg.Global != "" {
				fields["global"] = msg.Global
			} else {
				fields["collection"] = msg.Collection
			}
			return fields
		}),
	}
	return &RestoreVersionHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *RestoreVersionHandler) Execute(ctx context.Context, msg RestoreVersionCommand) error {
	return h.inner.Execute(ctx, msg)
}

type PublishGlobalHandler struct {
	inner *commands.Handler[PublishGlobalCommand]
}

func NewPublishGlobalHandler(service globals.Service, logger interfaces.Logger, opts ...commands.HandlerOption[PublishGlobalCommand]) *PublishGlobalHandler {
	baseLogger := ensureLogger(logger)
	exec := func(ctx context.Context, msg PublishGlobalCommand) error {
		doc, err := service.Update(ctx, globals.UpdateRequest{
			Request: globals.Request{OverrideAccess: true},
			Slug:    msg.Slug,
			Data:    map[string]any{},
		})
		if err != nil {
			return err
		}
		logging.WithDocumentContext(baseLogger, logging.KindGlobal, msg.Slug, doc.ID.String(), false).
			Info("documents.command.publish_global.completed", "version", doc.Version)
		return nil
	}

	handlerOpts := []commands.HandlerOption[PublishGlobalCommand]{
		commands.WithLogger[PublishGlobalCommand](baseLogger),
		commands.WithOperation[PublishGlobalCommand](publishGlobalOperation),
		commands.WithMessageFields(func(msg PublishGlobalCommand) map[string]any {
			return map[string]any{"global": msg.Slug}
		}),
	}
	return &PublishGlobalHandler{inner: commands.NewHandler(exec, append(handlerOpts, opts...)...)}
}

func (h *PublishGlobalHandler) Execute(ctx context.Context, msg PublishGlobalCommand) error {
	return h.inner.Execute(ctx, msg)
}

func ensureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
