package http

import (
	"net/http"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/globals"
	"github.com/goliatone/go-cms-community/schema"
)

func (api *API) registerGlobalRoutes(mux *http.ServeMux, base string) {
	if api.globals == nil {
		return
	}
	root := joinPath(base, "globals/{slug}")
	mux.HandleFunc("GET "+root, api.withUser(api.handleGlobalFind))
	mux.HandleFunc("POST "+root, api.withUser(api.handleGlobalUpdate))
	mux.HandleFunc("GET "+root+"/versions", api.withUser(api.handleGlobalVersions))
	mux.HandleFunc("POST "+root+"/versions/{versionID}", api.withUser(api.handleGlobalRestore))
}

func (api *API) globalRequest(r *http.Request, user *schema.User) globals.Request {
	return globals.Request{
		Draft: parseBoolQuery(r.URL.Query().Get("draft"), false),
		User:  user,
	}
}

func (api *API) handleGlobalFind(w http.ResponseWriter, r *http.Request, user *schema.User) {
	req := api.globalRequest(r, user)
	doc, err := api.globals.Find(r.Context(), globals.FindRequest{Request: req, Slug: r.PathValue("slug")})
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

func (api *API) handleGlobalUpdate(w http.ResponseWriter, r *http.Request, user *schema.User) {
	var data map[string]any
	if err := decodeJSON(r, &data); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}
	slug := r.PathValue("slug")
	req := api.globalRequest(r, user)
	doc, err := api.globals.Update(r.Context(), globals.UpdateRequest{
		Request: req,
		Slug:    slug,
		Data:    api.depopulate(slug, data),
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	api.writeDoc(w, r, http.StatusOK, doc, req.Draft, user, "Global saved successfully.")
}

func (api *API) handleGlobalVersions(w http.ResponseWriter, r *http.Request, user *schema.User) {
	query := r.URL.Query()
	page, err := api.globals.Versions(r.Context(), globals.VersionsRequest{
		Request: globals.Request{User: user},
		Slug:    r.PathValue("slug"),
		Limit:   parseIntQuery(query.Get("limit"), domain.DefaultLimit),
		Page:    parseIntQuery(query.Get("page"), 1),
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (api *API) handleGlobalRestore(w http.ResponseWriter, r *http.Request, user *schema.User) {
	versionID, err := parseUUID(r.PathValue("versionID"))
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	req := api.globalRequest(r, user)
	doc, err := api.globals.RestoreVersion(r.Context(), globals.RestoreRequest{
		Request:   req,
		Slug:      r.PathValue("slug"),
		VersionID: versionID,
	})
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	api.writeDoc(w, r, http.StatusOK, doc, req.Draft, user, "Restored successfully.")
}
