package http

import (
	"net/http"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/schema"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User    any    `json:"user"`
	Message string `json:"message"`
}

func (api *API) registerAuthRoutes(mux *http.ServeMux, base string) {
	if api.users == nil {
		return
	}
	slug := api.schema.AuthSlug()
	mux.HandleFunc("POST "+joinPath(base, slug+"/login"), api.handleLogin)
}

func (api *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_json", Message: err.Error()})
		return
	}
	user, err := api.users.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		api.writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{User: user.Document(), Message: "Authentication Passed"})
}

// authenticate resolves Basic credentials. Requests without credentials run
// anonymously; wrong credentials fail the request.
func (api *API) authenticate(r *http.Request) (*schema.User, error) {
	email, password, ok := r.BasicAuth()
	if !ok || api.users == nil {
		return access.UserFromContext(r.Context()), nil
	}
	user, err := api.users.Login(r.Context(), email, password)
	if err != nil {
		return nil, err
	}
	return user.Principal(), nil
}

// withUser wraps handlers that need the caller.
func (api *API) withUser(next func(http.ResponseWriter, *http.Request, *schema.User)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := api.authenticate(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="cms"`)
			api.writeError(r.Context(), w, err)
			return
		}
		if user != nil {
			r = r.WithContext(access.WithUser(r.Context(), user))
		}
		next(w, r, user)
	}
}
