package versions_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/google/uuid"
)

func newService() *versions.Service {
	tick := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return versions.NewService(versions.NewMemoryRepository(), versions.WithClock(func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}))
}

func postParent() versions.Parent {
	return versions.Parent{Kind: domain.KindCollection, Slug: "posts", ID: uuid.New()}
}

func TestSaveNumbersVersionsAndMovesLatest(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	parent := postParent()

	first, err := svc.Save(ctx, versions.SaveRequest{Parent: parent, Status: domain.StatusPublished, Snapshot: map[string]any{"text": "one"}})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := svc.Save(ctx, versions.SaveRequest{Parent: parent, Status: domain.StatusDraft, Snapshot: map[string]any{"text": "two"}})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first.Version != 1 || second.Version != 2 {
		t.Fatalf("unexpected numbering %d %d", first.Version, second.Version)
	}

	records, total, err := svc.List(ctx, versions.ListFilter{Parent: parent})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || records[0].ID != second.ID {
		t.Fatalf("expected newest first, got %+v", records)
	}
	if !records[0].Latest || records[1].Latest {
		t.Fatalf("latest flag not moved: %v %v", records[0].Latest, records[1].Latest)
	}

	latest, err := svc.Latest(ctx, parent)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	doc := latest.Document()
	if doc.Status != domain.StatusDraft || doc.Get("text") != "two" || doc.ID != parent.ID {
		t.Fatalf("unexpected latest document %+v", doc)
	}
}

func TestSavePrunesOldestVersions(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	parent := postParent()

	for i := 0; i < 5; i++ {
		if _, err := svc.Save(ctx, versions.SaveRequest{Parent: parent, Status: domain.StatusDraft, MaxPerDoc: 3}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	records, total, err := svc.List(ctx, versions.ListFilter{Parent: parent})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected 3 retained versions, got %d", total)
	}
	if records[0].Version != 5 || records[2].Version != 3 {
		t.Fatalf("expected versions 5..3, got %d..%d", records[0].Version, records[2].Version)
	}
}

func TestLatestWithoutHistory(t *testing.T) {
	latest, err := newService().Latest(context.Background(), postParent())
	if err != nil || latest != nil {
		t.Fatalf("expected no latest version, got %v %v", latest, err)
	}
}

func TestSaveRejectsInvalidRequests(t *testing.T) {
	svc := newService()
	if _, err := svc.Save(context.Background(), versions.SaveRequest{Status: domain.StatusDraft}); err == nil {
		t.Fatal("expected parent validation error")
	}
	if _, err := svc.Save(context.Background(), versions.SaveRequest{Parent: postParent(), Status: "archived"}); err == nil {
		t.Fatal("expected status validation error")
	}
}

func TestListPaginatesAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	svc := newService()
	parent := postParent()
	other := postParent()
	for i := 0; i < 4; i++ {
		if _, err := svc.Save(ctx, versions.SaveRequest{Parent: parent, Status: domain.StatusDraft}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if _, err := svc.Save(ctx, versions.SaveRequest{Parent: other, Status: domain.StatusPublished}); err != nil {
		t.Fatalf("save other: %v", err)
	}

	page, total, err := svc.List(ctx, versions.ListFilter{Parent: parent, Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 4 || len(page) != 2 || page[0].Version != 2 {
		t.Fatalf("unexpected page total=%d len=%d", total, len(page))
	}

	if err := svc.DeleteAll(ctx, parent); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if _, total, _ := svc.List(ctx, versions.ListFilter{Parent: parent}); total != 0 {
		t.Fatalf("expected history removed, got %d", total)
	}
	if _, total, _ := svc.List(ctx, versions.ListFilter{Parent: other}); total != 1 {
		t.Fatalf("expected other history kept, got %d", total)
	}
}
