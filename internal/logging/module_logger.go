package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-cms-community/pkg/interfaces"
)

const (
	rootModule        = "cms"
	collectionsModule = "cms.collections"
	globalsModule     = "cms.globals"
	usersModule       = "cms.users"
	graphqlModule     = "cms.graphql"
	httpModule        = "cms.http"
	commandsModule    = "cms.commands"
)

const (
	fieldCollection = "collection"
	fieldGlobal     = "global"
	fieldDocumentID = "document_id"
	fieldDraft      = "draft"
)

// ModuleLogger returns a logger scoped to module. A nil provider, or one that
// returns nil, yields the no-op logger. The module name is attached as the
// "module" field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

// RootLogger returns the "cms" module logger.
func RootLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, rootModule)
}

// CollectionsLogger returns the logger used by collection services.
func CollectionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, collectionsModule)
}

// GlobalsLogger returns the logger used by global services.
func GlobalsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, globalsModule)
}

// UsersLogger returns the logger used by the users service.
func UsersLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, usersModule)
}

// GraphQLLogger returns the logger used by the schema generator.
func GraphQLLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, graphqlModule)
}

// HTTPLogger returns the logger used by the REST adapter.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// CommandsLogger returns the logger used by command handlers.
func CommandsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, commandsModule)
}

// WithDocumentContext tags logger with the collection (or global) slug, the
// document id and the draft flag. Empty values are skipped.
func WithDocumentContext(logger interfaces.Logger, kind, slug, id string, draft bool) interfaces.Logger {
	fields := map[string]any{fieldDraft: draft}
	if trimmed := strings.TrimSpace(slug); trimmed != "" {
		if kind == fieldGlobal {
			fields[fieldGlobal] = trimmed
		} else {
			fields[fieldCollection] = trimmed
		}
	}
	if trimmed := strings.TrimSpace(id); trimmed != "" {
		fields[fieldDocumentID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
