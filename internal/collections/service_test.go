package collections_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/validation"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/pkg/activity"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
)

func postsSet(t *testing.T) *schema.Set {
	t.Helper()
	posts := schema.Collection{
		Slug:     "posts",
		Fields:   []schema.Field{{Name: "text", Type: schema.FieldText, Required: true}, {Name: "code", Type: schema.FieldText, Unique: true}},
		Versions: &schema.Versions{Drafts: true},
		Access:   schema.Access{Read: schema.Anyone()},
	}
	pages := schema.Collection{
		Slug:   "pages",
		Fields: []schema.Field{{Name: "title", Type: schema.FieldText}},
	}
	set, err := schema.NewSet([]schema.Collection{posts, pages}, nil)
	if err != nil {
		t.Fatalf("schema set: %v", err)
	}
	return set
}

func newService(t *testing.T, opts ...collections.ServiceOption) collections.Service {
	t.Helper()
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	history := versions.NewService(versions.NewMemoryRepository(), versions.WithClock(clock))
	opts = append([]collections.ServiceOption{collections.WithClock(clock)}, opts...)
	svc, err := collections.NewService(postsSet(t), collections.NewMemoryRepository(), history, opts...)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func local() collections.Request {
	return collections.Request{OverrideAccess: true}
}

func TestDraftUpdateIsInvisibleToPublishedReads(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "published example post"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != domain.StatusPublished {
		t.Fatalf("expected published status, got %q", created.Status)
	}

	draftReq := local()
	draftReq.Draft = true
	updated, err := svc.Update(ctx, collections.UpdateRequest{Request: draftReq, Collection: "posts", ID: created.ID, Data: map[string]any{"text": "draft example post"}})
	if err != nil {
		t.Fatalf("draft update: %v", err)
	}
	if updated.Status != domain.StatusDraft || updated.Get("text") != "draft example post" {
		t.Fatalf("unexpected draft result %+v", updated)
	}

	published, err := svc.FindByID(ctx, collections.FindByIDRequest{Request: local(), Collection: "posts", ID: created.ID})
	if err != nil {
		t.Fatalf("find published: %v", err)
	}
	if published.Get("text") != "published example post" || published.Status != domain.StatusPublished {
		t.Fatalf("draft leaked into published read: %+v", published)
	}

	draft, err := svc.FindByID(ctx, collections.FindByIDRequest{Request: draftReq, Collection: "posts", ID: created.ID})
	if err != nil {
		t.Fatalf("find draft: %v", err)
	}
	if draft.Get("text") != "draft example post" || draft.Status != domain.StatusDraft {
		t.Fatalf("expected draft read to see latest version, got %+v", draft)
	}
	if !draft.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("draft read must keep the document creation time")
	}
}

func TestPublishAfterDraftReplacesMainDocument(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "v1"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	draftReq := local()
	draftReq.Draft = true
	if _, err := svc.Update(ctx, collections.UpdateRequest{Request: draftReq, Collection: "posts", ID: created.ID, Data: map[string]any{"code": "abc"}}); err != nil {
		t.Fatalf("draft: %v", err)
	}
	published, err := svc.Update(ctx, collections.UpdateRequest{Request: local(), Collection: "posts", ID: created.ID, Data: map[string]any{"text": "v2"}})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if published.Get("text") != "v2" || published.Get("code") != "abc" {
		t.Fatalf("publish must merge onto the latest draft, got %v", published.Data)
	}
	if published.Version != 3 {
		t.Fatalf("expected version 3, got %d", published.Version)
	}

	page, err := svc.Versions(ctx, collections.VersionsRequest{Request: local(), Collection: "posts", ID: created.ID})
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if page.TotalDocs != 3 || page.Docs[0].Status != domain.StatusPublished {
		t.Fatalf("unexpected history %+v", page)
	}
}

func TestRequiredFieldsOnlyForPublishedWrites(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{}})
	if !errors.Is(err, validation.ErrSchemaValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	draftReq := local()
	draftReq.Draft = true
	doc, err := svc.Create(ctx, collections.CreateRequest{Request: draftReq, Collection: "posts", Data: map[string]any{}})
	if err != nil {
		t.Fatalf("draft create should skip required fields: %v", err)
	}
	if doc.Status != domain.StatusDraft {
		t.Fatalf("expected draft status, got %q", doc.Status)
	}
}

func TestAccessIsEvaluatedWithoutOverride(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Create(ctx, collections.CreateRequest{Collection: "posts", Data: map[string]any{"text": "anon"}})
	if !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("anonymous create must be denied, got %v", err)
	}

	user := &schema.User{ID: uuid.New(), Email: "dev@payloadcms.com"}
	created, err := svc.Create(ctx, collections.CreateRequest{Request: collections.Request{User: user}, Collection: "posts", Data: map[string]any{"text": "authed"}})
	if err != nil {
		t.Fatalf("authenticated create: %v", err)
	}
	if _, err := svc.FindByID(ctx, collections.FindByIDRequest{Collection: "posts", ID: created.ID}); err != nil {
		t.Fatalf("anonymous read should be allowed: %v", err)
	}
	if _, err := svc.Delete(ctx, collections.DeleteRequest{Collection: "posts", ID: created.ID}); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("anonymous delete must be denied, got %v", err)
	}
}

func TestUniqueFieldsAndUnknownCollection(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	if _, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "a", "code": "x"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "b", "code": "x"}}); !errors.Is(err, collections.ErrUniqueValueConflict) {
		t.Fatalf("expected unique conflict, got %v", err)
	}
	if _, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "missing"}); !errors.Is(err, collections.ErrCollectionUnknown) {
		t.Fatalf("expected unknown collection, got %v", err)
	}
	if _, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: schema.UsersSlug}); !errors.Is(err, collections.ErrAuthCollection) {
		t.Fatalf("expected auth collection error, got %v", err)
	}
}

func TestUnversionedCollectionHasNoStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	req := local()
	req.Draft = true
	doc, err := svc.Create(ctx, collections.CreateRequest{Request: req, Collection: "pages", Data: map[string]any{"title": "About", "ignored": true}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if doc.Status != "" {
		t.Fatalf("collections without drafts carry no status, got %q", doc.Status)
	}
	if _, ok := doc.Data["ignored"]; ok {
		t.Fatal("undeclared fields must be dropped")
	}
	if _, err := svc.Versions(ctx, collections.VersionsRequest{Request: local(), Collection: "pages", ID: doc.ID}); !errors.Is(err, collections.ErrVersioningDisabled) {
		t.Fatalf("expected versioning disabled, got %v", err)
	}
}

func TestFindPaginatesAndFilters(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	for _, text := range []string{"one", "two", "three"} {
		if _, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": text}}); err != nil {
			t.Fatalf("create %s: %v", text, err)
		}
	}

	page, err := svc.Find(ctx, collections.FindRequest{Request: local(), Collection: "posts", Limit: 2})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if page.TotalDocs != 3 || len(page.Docs) != 2 || !page.HasNextPage || page.TotalPages != 2 {
		t.Fatalf("unexpected page %+v", page)
	}
	if page.Docs[0].Get("text") != "three" {
		t.Fatalf("expected newest first, got %v", page.Docs[0].Get("text"))
	}

	filtered, err := svc.Find(ctx, collections.FindRequest{Request: local(), Collection: "posts", Where: map[string]any{"text": "two"}})
	if err != nil {
		t.Fatalf("find filtered: %v", err)
	}
	if filtered.TotalDocs != 1 || filtered.Docs[0].Get("text") != "two" {
		t.Fatalf("unexpected filtered page %+v", filtered)
	}
}

func TestRestoreVersionAndDelete(t *testing.T) {
	ctx := context.Background()
	var events []activity.Event
	emitter := activity.NewEmitter(activity.Hooks{activity.HookFunc(func(_ context.Context, event activity.Event) error {
		events = append(events, event)
		return nil
	})}, activity.Config{Enabled: true})
	svc := newService(t, collections.WithActivityEmitter(emitter))

	created, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "original"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Update(ctx, collections.UpdateRequest{Request: local(), Collection: "posts", ID: created.ID, Data: map[string]any{"text": "changed"}}); err != nil {
		t.Fatalf("update: %v", err)
	}
	history, err := svc.Versions(ctx, collections.VersionsRequest{Request: local(), Collection: "posts", ID: created.ID})
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	oldest := history.Docs[len(history.Docs)-1]

	restored, err := svc.RestoreVersion(ctx, collections.RestoreRequest{Request: local(), Collection: "posts", VersionID: oldest.ID})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Get("text") != "original" || restored.Version != 3 {
		t.Fatalf("unexpected restored document %+v", restored)
	}

	if _, err := svc.Delete(ctx, collections.DeleteRequest{Request: local(), Collection: "posts", ID: created.ID}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.FindByID(ctx, collections.FindByIDRequest{Request: local(), Collection: "posts", ID: created.ID}); !collections.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}

	verbs := make([]string, 0, len(events))
	for _, event := range events {
		verbs = append(verbs, event.Verb)
	}
	want := []string{"create", "update", "restore", "delete"}
	if len(verbs) != len(want) {
		t.Fatalf("expected verbs %v, got %v", want, verbs)
	}
	for i := range want {
		if verbs[i] != want[i] {
			t.Fatalf("expected verbs %v, got %v", want, verbs)
		}
	}
	if events[0].ObjectType != "collection:posts" {
		t.Fatalf("unexpected object type %q", events[0].ObjectType)
	}
}

type failingRecords struct {
	collections.Repository
	failCreate bool
	failDelete bool
}

func (r *failingRecords) Create(ctx context.Context, record *collections.Record) (*collections.Record, error) {
	if r.failCreate {
		return nil, errors.New("insert rejected")
	}
	return r.Repository.Create(ctx, record)
}

func (r *failingRecords) Delete(ctx context.Context, id uuid.UUID) error {
	if r.failDelete {
		return errors.New("delete rejected")
	}
	return r.Repository.Delete(ctx, id)
}

func TestFailedWritesLeaveNoOrphanVersions(t *testing.T) {
	ctx := context.Background()
	history := versions.NewService(versions.NewMemoryRepository())
	records := &failingRecords{Repository: collections.NewMemoryRepository(), failCreate: true}
	id := uuid.New()
	svc, err := collections.NewService(postsSet(t), records, history, collections.WithIDGenerator(func() uuid.UUID { return id }))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	parent := versions.Parent{Kind: domain.KindCollection, Slug: "posts", ID: id}

	if _, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "lost"}}); err == nil {
		t.Fatal("expected create to fail when the record insert fails")
	}
	if _, total, err := history.List(ctx, versions.ListFilter{Parent: parent}); err != nil || total != 0 {
		t.Fatalf("expected no versions after failed create, got %d err=%v", total, err)
	}

	records.failCreate = false
	if _, err := svc.Create(ctx, collections.CreateRequest{Request: local(), Collection: "posts", Data: map[string]any{"text": "kept"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	records.failDelete = true
	if _, err := svc.Delete(ctx, collections.DeleteRequest{Request: local(), Collection: "posts", ID: id}); err == nil {
		t.Fatal("expected delete to fail when the record delete fails")
	}
	if _, total, err := history.List(ctx, versions.ListFilter{Parent: parent}); err != nil || total != 0 {
		t.Fatalf("expected history dropped before the record, got %d err=%v", total, err)
	}
	doc, err := svc.FindByID(ctx, collections.FindByIDRequest{Request: local(), Collection: "posts", ID: id})
	if err != nil || doc.Get("text") != "kept" {
		t.Fatalf("expected document still readable, got %v err=%v", doc, err)
	}
}
