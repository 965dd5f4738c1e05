package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goliatone/go-cms-community/internal/di"
	"github.com/goliatone/go-cms-community/internal/runtimeconfig"
	"github.com/goliatone/go-cms-community/internal/users"
	"github.com/goliatone/go-cms-community/schema"
)

const (
	devEmail    = "dev@payloadcms.com"
	devPassword = "test"
)

func setupAPI(t *testing.T) http.Handler {
	t.Helper()
	posts := schema.Collection{
		Slug:     "posts",
		Fields:   []schema.Field{{Name: "text", Type: schema.FieldText}},
		Versions: &schema.Versions{Drafts: true},
		Access:   schema.Access{Read: schema.Anyone()},
	}
	menu := schema.Global{
		Slug:     "menu",
		Fields:   []schema.Field{{Name: "relationship", Type: schema.FieldRelationship, RelationTo: "posts"}},
		Versions: &schema.Versions{Drafts: true},
		Access:   schema.Access{Read: schema.Anyone()},
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
	if _, err := container.UserService().Create(context.Background(), users.CreateRequest{Email: devEmail, Password: devPassword}); err != nil {
		t.Fatalf("create user: %v", err)
	}

	api := NewAPI(set,
		WithCollectionService(container.CollectionService()),
		WithGlobalService(container.GlobalService()),
		WithUserService(container.UserService()),
		WithPopulator(container.Populator),
		WithDepth(0, 10),
	)
	handler, err := api.Handler()
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return handler
}

type requestOption func(*http.Request)

func basicAuth(email, password string) requestOption {
	return func(r *http.Request) {
		r.SetBasicAuth(email, password)
	}
}

func doJSONRequest(t *testing.T, handler http.Handler, method, path string, body any, expectedStatus int, opts ...requestOption) map[string]any {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != expectedStatus {
		t.Fatalf("%s %s: expected status %d got %d body=%s", method, path, expectedStatus, rec.Code, rec.Body.String())
	}
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response: %v body=%s", err, rec.Body.String())
		}
	}
	return out
}

func TestAPI_DraftLifecycle(t *testing.T) {
	handler := setupAPI(t)
	auth := basicAuth(devEmail, devPassword)

	doJSONRequest(t, handler, http.MethodPost, "/api/posts", map[string]any{"text": "x"}, http.StatusForbidden)

	created := doJSONRequest(t, handler, http.MethodPost, "/api/posts", map[string]any{"text": "published example post"}, http.StatusCreated, auth)
	doc := created["doc"].(map[string]any)
	id, _ := doc["id"].(string)
	if id == "" || doc["_status"] != "published" {
		t.Fatalf("unexpected created doc %v", doc)
	}

	doJSONRequest(t, handler, http.MethodPatch, "/api/posts/"+id+"?draft=true", map[string]any{"text": "draft example post"}, http.StatusOK, auth)

	published := doJSONRequest(t, handler, http.MethodGet, "/api/posts/"+id, nil, http.StatusOK)
	if published["text"] != "published example post" {
		t.Fatalf("draft leaked into published read: %v", published)
	}
	drafted := doJSONRequest(t, handler, http.MethodGet, "/api/posts/"+id+"?draft=true", nil, http.StatusOK)
	if drafted["text"] != "draft example post" || drafted["_status"] != "draft" {
		t.Fatalf("unexpected draft read %v", drafted)
	}

	versions := doJSONRequest(t, handler, http.MethodGet, "/api/posts/"+id+"/versions", nil, http.StatusOK, auth)
	if versions["totalDocs"] != float64(2) {
		t.Fatalf("expected 2 versions, got %v", versions["totalDocs"])
	}
	docs, _ := versions["docs"].([]any)
	if len(docs) == 0 {
		t.Fatalf("expected version docs, got %v", versions)
	}
	newest, _ := docs[0].(map[string]any)
	snapshot, _ := newest["version"].(map[string]any)
	if snapshot["text"] != "draft example post" || newest["versionNumber"] != float64(2) || newest["_status"] != "draft" {
		t.Fatalf("expected newest version to carry the draft snapshot, got %v", newest)
	}

	list := doJSONRequest(t, handler, http.MethodGet, "/api/posts?limit=5", nil, http.StatusOK)
	if list["totalDocs"] != float64(1) {
		t.Fatalf("expected 1 post, got %v", list)
	}
}

func TestAPI_GlobalPopulation(t *testing.T) {
	handler := setupAPI(t)
	auth := basicAuth(devEmail, devPassword)

	created := doJSONRequest(t, handler, http.MethodPost, "/api/posts", map[string]any{"text": "linked"}, http.StatusCreated, auth)
	id := created["doc"].(map[string]any)["id"].(string)

	doJSONRequest(t, handler, http.MethodPost, "/api/globals/menu", map[string]any{"relationship": id}, http.StatusForbidden)
	doJSONRequest(t, handler, http.MethodPost, "/api/globals/menu", map[string]any{"relationship": id}, http.StatusOK, auth)

	raw := doJSONRequest(t, handler, http.MethodGet, "/api/globals/menu", nil, http.StatusOK)
	if raw["relationship"] != id || raw["globalType"] != "menu" {
		t.Fatalf("expected raw relationship id, got %v", raw)
	}
	populated := doJSONRequest(t, handler, http.MethodGet, "/api/globals/menu?depth=1", nil, http.StatusOK)
	related, ok := populated["relationship"].(map[string]any)
	if !ok || related["text"] != "linked" {
		t.Fatalf("expected populated relationship, got %v", populated["relationship"])
	}

	versions := doJSONRequest(t, handler, http.MethodGet, "/api/globals/menu/versions", nil, http.StatusOK)
	if versions["totalDocs"] != float64(1) {
		t.Fatalf("expected 1 global version, got %v", versions)
	}
	globalDocs, _ := versions["docs"].([]any)
	if len(globalDocs) != 1 {
		t.Fatalf("expected one global version doc, got %v", versions)
	}
	globalVersion, _ := globalDocs[0].(map[string]any)
	if snapshot, _ := globalVersion["version"].(map[string]any); snapshot["relationship"] != id {
		t.Fatalf("expected global snapshot to keep the relationship id, got %v", globalVersion)
	}
}

func TestAPI_Authentication(t *testing.T) {
	handler := setupAPI(t)

	login := doJSONRequest(t, handler, http.MethodPost, "/api/users/login", map[string]any{"email": devEmail, "password": devPassword}, http.StatusOK)
	user, ok := login["user"].(map[string]any)
	if !ok || user["email"] != devEmail {
		t.Fatalf("unexpected login response %v", login)
	}
	if _, leaked := user["password"]; leaked {
		t.Fatal("password must not be serialized")
	}

	doJSONRequest(t, handler, http.MethodPost, "/api/users/login", map[string]any{"email": devEmail, "password": "wrong"}, http.StatusUnauthorized)
	doJSONRequest(t, handler, http.MethodPost, "/api/posts", map[string]any{"text": "x"}, http.StatusUnauthorized, basicAuth(devEmail, "wrong"))

	doJSONRequest(t, handler, http.MethodPost, "/api/users", map[string]any{"email": "new@example.com", "password": "secret"}, http.StatusForbidden)
	doJSONRequest(t, handler, http.MethodPost, "/api/users", map[string]any{"email": "new@example.com", "password": "secret"}, http.StatusCreated, basicAuth(devEmail, devPassword))
	doJSONRequest(t, handler, http.MethodPost, "/api/users", map[string]any{"email": "new@example.com", "password": "secret"}, http.StatusConflict, basicAuth(devEmail, devPassword))
}

func TestAPI_FindUserByID(t *testing.T) {
	handler := setupAPI(t)
	auth := basicAuth(devEmail, devPassword)

	login := doJSONRequest(t, handler, http.MethodPost, "/api/users/login", map[string]any{"email": devEmail, "password": devPassword}, http.StatusOK)
	id, _ := login["user"].(map[string]any)["id"].(string)
	if id == "" {
		t.Fatalf("expected user id in login response %v", login)
	}

	doJSONRequest(t, handler, http.MethodGet, "/api/users/"+id, nil, http.StatusForbidden)
	found := doJSONRequest(t, handler, http.MethodGet, "/api/users/"+id, nil, http.StatusOK, auth)
	if found["email"] != devEmail || found["id"] != id {
		t.Fatalf("unexpected user document %v", found)
	}
	if _, leaked := found["password"]; leaked {
		t.Fatal("password must not be serialized")
	}
	doJSONRequest(t, handler, http.MethodGet, "/api/users/2b1f8c9e-4c1d-4b7e-9a0b-1f5d2f0e8c11", nil, http.StatusNotFound, auth)
}

func TestAPI_ErrorMapping(t *testing.T) {
	handler := setupAPI(t)

	doJSONRequest(t, handler, http.MethodGet, "/api/posts/not-a-uuid", nil, http.StatusBadRequest)
	doJSONRequest(t, handler, http.MethodGet, "/api/pages", nil, http.StatusNotFound)
	doJSONRequest(t, handler, http.MethodGet, "/api/posts/2b1f8c9e-4c1d-4b7e-9a0b-1f5d2f0e8c11", nil, http.StatusNotFound)
	doJSONRequest(t, handler, http.MethodGet, "/api/globals/nav", nil, http.StatusNotFound)
	resp := doJSONRequest(t, handler, http.MethodPost, "/api/posts", map[string]any{"text": 42}, http.StatusBadRequest, basicAuth(devEmail, devPassword))
	if resp["error"] != "validation_failed" {
		t.Fatalf("expected validation error, got %v", resp)
	}
}

func TestJoinPath(t *testing.T) {
	cases := map[[2]string]string{
		{"", ""}:          "/",
		{"/api/", ""}:     "/api",
		{"api", "posts"}:  "/api/posts",
		{"", "/globals/"}: "/globals",
	}
	for input, want := range cases {
		if got := joinPath(input[0], input[1]); got != want {
			t.Fatalf("joinPath(%q, %q) = %q, want %q", input[0], input[1], got, want)
		}
	}
}
