package http

import (
	"net/http"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/relationships"
	"github.com/goliatone/go-cms-community/internal/users"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
)

func (api *API) registerCollectionRoutes(mux *http.ServeMux, base string) {
	if api.collections == nil {
		return
	}
	root := joinPath(base, "{collection}")
	mux.HandleFunc("GET "+root, api.withUser(api.handleFind))
	mux.HandleFunc("POST "+root, api.withUser(api.handleCreate))
	mux.HandleFunc("GET "+root+"/{id}", api.withUser(api.handleFindByID))
	mux.HandleFunc("PATCH "+root+"/{id}", api.withUser(api.handleUpdate))
	mux.HandleFunc("DELETE "+root+"/{id}", api.withUser(api.handleDelete))
	mux.HandleFunc("GET "+root+"/{id}/versions", api.withUser(api.handleVersions))
	mux.HandleFunc("POST "+root+"/versions/{versionID}", api.withUser(api.handleRestore))
}

func (api *API) request(r *http.Request, user *schema.User) collections.Request {
	return collections.Request{
		Draft: parseBoolQuery(r.URL.Query().Get("draft"), false),
		User:  user,
	}
}

func (api *API) handleFind(w http.ResponseWriter, r *http.Request, user *schema.User) {
	req := api.request(r, user)
	query := r.URL.Query()
	page, err := api.collections.Find(r.Context(), collections.FindRequest{
		Request:    req,
		Collection: r.PathValue("collection"),
		Limit:      parseIntQuery(query.Get("limit"), domain.DefaultLimit),
		Page:       parseIntQuery(query.Get("page"), 1),
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	depth := api.depth(r)
	for i, doc := range page.Docs {
		populated, err := api.populate(r.Context(), doc, depth, req.Draft, user)
		if err != nil {
			api.writeError(r.Context(), w, err)
			return
		}
		page.Docs[i] = populated
	}
	writeJSON(w, http.StatusOK, page)
}

func (api *API) handleCreate(w http.ResponseWriter, r *http.Request, user *schema.User) {
	slug := r.PathValue("collection")
	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}
	if api.users != nil && slug == api.schema.AuthSlug() {
		api.createUser(w, r, user, data)
		return
	}
	req := api.request(r, user)
	doc, err := api.collections.Create(r.Context(), collections.CreateRequest{
		Request:    req,
		Collection: slug,
		Data:       api.depopulate(slug, data),
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	api.logger.WithContext(r.Context()).Debug("document created", "collection", slug, "document_id", doc.ID.String())
	api.writeDoc(w, r, http.StatusCreated, doc, req.Draft, user, "Document successfully created.")
}

func (api *API) createUser(w http.ResponseWriter, r *http.Request, user *schema.User, data map[string]any) {
	slug := api.schema.AuthSlug()
	collection, _ := api.schema.Collection(slug)
	if err := access.Evaluate(r.Context(), collection.Access, access.Request{
		Operation: schema.OperationCreate,
		Slug:      slug,
		Data:      data,
		User:      user,
	}); err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	email, _ := data["email"].(string)
	password, _ := data["password"].(string)
	created, err := api.users.Create(r.Context(), users.CreateRequest{Email: email, Password: password})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, docResponse{Doc: created.Document(), Message: "User successfully created."})
}

func (api *API) handleFindByID(w http.ResponseWriter, r *http.Request, user *schema.User) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	if api.users != nil && r.PathValue("collection") == api.schema.AuthSlug() {
		api.findUser(w, r, user, id)
		return
	}
	req := api.request(r, user)
	doc, err := api.collections.FindByID(r.Context(), collections.FindByIDRequest{
		Request:    req,
		Collection: r.PathValue("collection"),
		ID:         id,
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	populated, err := api.populate(r.Context(), doc, api.depth(r), req.Draft, user)
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, populated)
}

func (api *API) findUser(w http.ResponseWriter, r *http.Request, user *schema.User, id uuid.UUID) {
	slug := api.schema.AuthSlug()
	collection, _ := api.schema.Collection(slug)
	if err := access.Evaluate(r.Context(), collection.Access, access.Request{
		Operation: schema.OperationRead,
		Slug:      slug,
		ID:        id.String(),
		User:      user,
	}); err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	found, err := api.users.GetByID(r.Context(), id)
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, found.Document())
}

func (api *API) handleUpdate(w http.ResponseWriter, r *http.Request, user *schema.User) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}
	slug := r.PathValue("collection")
	req := api.request(r, user)
	doc, err := api.collections.Update(r.Context(), collections.UpdateRequest{
		Request:    req,
		Collection: slug,
		ID:         id,
		Data:       api.depopulate(slug, data),
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	api.writeDoc(w, r, http.StatusOK, doc, req.Draft, user, "Updated successfully.")
}

func (api *API) handleDelete(w http.ResponseWriter, r *http.Request, user *schema.User) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	doc, err := api.collections.Delete(r.Context(), collections.DeleteRequest{
		Request:    collections.Request{User: user},
		Collection: r.PathValue("collection"),
		ID:         id,
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, docResponse{Doc: doc, Message: "Deleted successfully."})
}

func (api *API) handleVersions(w http.ResponseWriter, r *http.Request, user *schema.User) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	query := r.URL.Query()
	page, err := api.collections.Versions(r.Context(), collections.VersionsRequest{
		Request:    collections.Request{User: user},
		Collection: r.PathValue("collection"),
		ID:         id,
		Limit:      parseIntQuery(query.Get("limit"), domain.DefaultLimit),
		Page:       parseIntQuery(query.Get("page"), 1),
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (api *API) handleRestore(w http.ResponseWriter, r *http.Request, user *schema.User) {
	versionID, err := parseUUID(r.PathValue("versionID"))
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	req := api.request(r, user)
	doc, err := api.collections.RestoreVersion(r.Context(), collections.RestoreRequest{
		Request:    req,
		Collection: r.PathValue("collection"),
		VersionID:  versionID,
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	api.writeDoc(w, r, http.StatusOK, doc, req.Draft, user, "Restored successfully.")
}

func (api *API) writeDoc(w http.ResponseWriter, r *http.Request, status int, doc *domain.Document, draft bool, user *schema.User, message string) {
	populated, err := api.populate(r.Context(), doc, api.depth(r), draft, user)
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, status, docResponse{Doc: populated, Message: message})
}

func (api *API) depopulate(slug string, data map[string]any) map[string]any {
	if collection, ok := api.schema.Collection(slug); ok {
		return relationships.Depopulate(collection.Fields, data)
	}
	if global, ok := api.schema.Global(slug); ok {
		return relationships.Depopulate(global.Fields, data)
	}
	return data
}
