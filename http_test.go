package cms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cms "github.com/goliatone/go-cms-community"
)

func TestHTTPHandlerServesPublishedDocuments(t *testing.T) {
	ctx := context.Background()
	module := newModule(t, testConfig(t))

	post, err := module.Create(ctx, cms.CreateOptions{Collection: "posts", Data: map[string]any{"text": "published example post"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := module.Update(ctx, cms.UpdateOptions{Collection: "posts", ID: post.ID, Draft: true, Data: map[string]any{"text": "draft example post"}}); err != nil {
		t.Fatalf("draft update: %v", err)
	}

	handler, err := module.HTTPHandler()
	if err != nil {
		t.Fatalf("http handler: %v", err)
	}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/api/posts/" + post.ID.String())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["text"] != "published example post" {
		t.Fatalf("expected published text over http, got %v", body)
	}

	create, err := http.Post(server.URL+"/api/posts", "application/json", strings.NewReader(`{"text":"anonymous"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer create.Body.Close()
	if create.StatusCode != http.StatusForbidden {
		t.Fatalf("expected anonymous create to be forbidden, got %d", create.StatusCode)
	}
}
