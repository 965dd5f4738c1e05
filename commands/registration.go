package commands

import (
	"errors"
	"fmt"
	"io/fs"

	internalcommands "github.com/goliatone/go-cms-community/internal/commands"
	documentscmd "github.com/goliatone/go-cms-community/internal/commands/documents"
	markdowncmd "github.com/goliatone/go-cms-community/internal/commands/markdown"
	"github.com/goliatone/go-cms-community/internal/di"
	"github.com/goliatone/go-cms-community/internal/markdown"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-command/dispatcher"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	LoggerProvider interfaces.LoggerProvider
	// MarkdownFS enables the Markdown import command. Directories in the
	// command are resolved against it.
	MarkdownFS      fs.FS
	MarkdownOptions markdown.ParseOptions
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// Unsubscribe tears down every dispatcher subscription.
func (r *RegistrationResult) Unsubscribe() {
	if r == nil {
		return
	}
	for _, sub := range r.Subscriptions {
		sub.Unsubscribe()
	}
	r.Subscriptions = nil
}

// RegisterContainerCommands builds the document command handlers backed by
// container and registers them with the configured registry and dispatcher.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0, 4),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error
	register := func(handler any) {
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}
	}

	documentsLogger := internalcommands.CommandLogger(provider, "documents")
	if service := container.CollectionService(); service != nil {
		register(documentscmd.NewPublishDocumentHandler(service, documentsLogger))
		if globalsSvc := container.GlobalService(); globalsSvc != nil {
			register(documentscmd.NewRestoreVersionHandler(service, globalsSvc, documentsLogger))
		}
	}
	if service := container.GlobalService(); service != nil {
		register(documentscmd.NewPublishGlobalHandler(service, documentsLogger))
	}

	if opts.MarkdownFS != nil {
		register(markdowncmd.NewImportDirectoryHandler(
			container.MarkdownImporter(opts.MarkdownOptions),
			opts.MarkdownFS,
			internalcommands.CommandLogger(provider, "markdown"),
		))
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure services are configured")
	}
	return result, errs
}

// Dispatcher subscribes the document command handlers to the go-command
// process dispatcher so callers can use dispatcher.Dispatch.
type Dispatcher struct{}

func (Dispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	switch h := handler.(type) {
	case *documentscmd.PublishDocumentHandler:
		return dispatcher.SubscribeCommand(h), nil
	case *documentscmd.RestoreVersionHandler:
		return dispatcher.SubscribeCommand(h), nil
	case *documentscmd.PublishGlobalHandler:
		return dispatcher.SubscribeCommand(h), nil
	case *markdowncmd.ImportDirectoryHandler:
		return dispatcher.SubscribeCommand(h), nil
	default:
		return nil, fmt.Errorf("commands: unsupported handler %T", handler)
	}
}
