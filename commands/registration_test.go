package commands

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-cms-community/internal/collections"
	documentscmd "github.com/goliatone/go-cms-community/internal/commands/documents"
	markdowncmd "github.com/goliatone/go-cms-community/internal/commands/markdown"
	"github.com/goliatone/go-cms-community/internal/di"
	"github.com/goliatone/go-cms-community/internal/runtimeconfig"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/goliatone/go-command/dispatcher"
)

func newContainer(t *testing.T) *di.Container {
	t.Helper()
	posts := schema.Collection{
		Slug:     "posts",
		Fields:   []schema.Field{{Name: "text", Type: schema.FieldText}, {Name: "body", Type: schema.FieldRichText}},
		Versions: &schema.Versions{Drafts: true},
	}
	menu := schema.Global{
		Slug:     "menu",
		Fields:   []schema.Field{{Name: "relationship", Type: schema.FieldRelationship, RelationTo: "posts"}},
		Versions: &schema.Versions{Drafts: true},
	}
	set, err := schema.NewSet([]schema.Collection{posts}, []schema.Global{menu})
	if err != nil {
		t.Fatalf("schema set: %v", err)
	}
	cfg := runtimeconfig.DefaultConfig()
	cfg.Features.Logger = false
	container, err := di.NewContainer(context.Background(), cfg, set)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close() })
	return container
}

func TestRegisterContainerCommandsBuildsHandlers(t *testing.T) {
	registry := &recordingRegistry{}
	dispatcher := &recordingDispatcher{}

	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{
		Registry:   registry,
		Dispatcher: dispatcher,
		MarkdownFS: fstest.MapFS{},
	})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	if len(result.Handlers) != 4 {
		t.Fatalf("expected 4 handlers, got %d", len(result.Handlers))
	}
	if len(registry.handlers) != len(result.Handlers) {
		t.Fatalf("expected registry to record all handlers, got %d of %d", len(registry.handlers), len(result.Handlers))
	}
	if len(result.Subscriptions) != len(result.Handlers) {
		t.Fatalf("expected one subscription per handler, got %d", len(result.Subscriptions))
	}

	result.Unsubscribe()
	for _, sub := range dispatcher.subscriptions {
		if !sub.unsubscribed {
			t.Fatalf("expected subscription for %T to be torn down", sub.handler)
		}
	}
}

func TestRegisterContainerCommandsSkipsMarkdownWithoutFS(t *testing.T) {
	result, err := RegisterContainerCommands(newContainer(t), RegistrationOptions{})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	for _, handler := range result.Handlers {
		if _, ok := handler.(*markdowncmd.ImportDirectoryHandler); ok {
			t.Fatal("expected markdown import handler to require a filesystem")
		}
	}
	if len(result.Subscriptions) != 0 {
		t.Fatalf("expected no dispatcher subscriptions without dispatcher, got %d", len(result.Subscriptions))
	}
}

func TestDispatcherRoutesPublishCommand(t *testing.T) {
	ctx := context.Background()
	container := newContainer(t)
	result, err := RegisterContainerCommands(container, RegistrationOptions{Dispatcher: Dispatcher{}})
	if err != nil {
		t.Fatalf("register commands: %v", err)
	}
	t.Cleanup(result.Unsubscribe)

	system := collections.Request{OverrideAccess: true}
	created, err := container.CollectionService().Create(ctx, collections.CreateRequest{
		Request:    collections.Request{OverrideAccess: true, Draft: true},
		Collection: "posts",
		Data:       map[string]any{"text": "draft only"},
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}

	if err := dispatcher.Dispatch(ctx, documentscmd.PublishDocumentCommand{Collection: "posts", ID: created.ID}); err != nil {
		t.Fatalf("dispatch publish: %v", err)
	}
	doc, err := container.CollectionService().FindByID(ctx, collections.FindByIDRequest{Request: system, Collection: "posts", ID: created.ID})
	if err != nil {
		t.Fatalf("find published: %v", err)
	}
	if doc.Get("text") != "draft only" {
		t.Fatalf("expected published draft content, got %v", doc.Data)
	}
}

func TestDispatcherRejectsUnknownHandlers(t *testing.T) {
	if _, err := (Dispatcher{}).RegisterCommand(struct{}{}); err == nil {
		t.Fatal("expected unsupported handler error")
	}
}

type recordingRegistry struct {
	handlers []any
}

func (r *recordingRegistry) RegisterCommand(handler any) error {
	r.handlers = append(r.handlers, handler)
	return nil
}

type recordingDispatcher struct {
	handlers      []any
	subscriptions []*recordingSubscription
}

func (d *recordingDispatcher) RegisterCommand(handler any) (CommandSubscription, error) {
	d.handlers = append(d.handlers, handler)
	sub := &recordingSubscription{handler: handler}
	d.subscriptions = append(d.subscriptions, sub)
	return sub, nil
}

type recordingSubscription struct {
	handler      any
	unsubscribed bool
}

func (s *recordingSubscription) Unsubscribe() {
	s.unsubscribed = true
}
