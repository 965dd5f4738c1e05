package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/globals"
	"github.com/goliatone/go-cms-community/internal/users"
	"github.com/goliatone/go-cms-community/internal/validation"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
)

type errorResponse struct {
	Error   string                       `json:"error"`
	Message string                       `json:"message,omitempty"`
	Issues  []validation.ValidationIssue `json:"issues,omitempty"`
}

type docResponse struct {
	Doc     *domain.Document `json:"doc"`
	Message string           `json:"message"`
}

var errUUIDRequired = errors.New("uuid required")

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func (api *API) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		api.logger.WithContext(ctx).Error("request failed", "error", err)
	}
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	if collections.IsNotFound(err) || globals.IsNotFound(err) || versions.IsNotFound(err) || users.IsNotFound(err) ||
		errors.Is(err, collections.ErrCollectionUnknown) ||
		errors.Is(err, globals.ErrGlobalUnknown) {
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	}

	if errors.Is(err, users.ErrInvalidCredentials) {
		return http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: err.Error()}
	}

	if errors.Is(err, access.ErrForbidden) {
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()}
	}

	if errors.Is(err, collections.ErrUniqueValueConflict) || errors.Is(err, users.ErrEmailTaken) {
		return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}
	}

	var payloadErr *validation.PayloadValidationError
	if errors.As(err, &payloadErr) {
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_failed",
			Message: err.Error(),
			Issues:  validation.Issues(err),
		}
	}

	if errors.Is(err, errUUIDRequired) ||
		errors.Is(err, collections.ErrDocumentIDRequired) ||
		errors.Is(err, collections.ErrVersionIDRequired) ||
		errors.Is(err, collections.ErrVersioningDisabled) ||
		errors.Is(err, collections.ErrVersionMismatch) ||
		errors.Is(err, collections.ErrAuthCollection) ||
		errors.Is(err, globals.ErrVersionIDRequired) ||
		errors.Is(err, globals.ErrVersioningDisabled) ||
		errors.Is(err, globals.ErrVersionMismatch) ||
		errors.Is(err, users.ErrEmailRequired) ||
		errors.Is(err, users.ErrPasswordRequired) {
		return http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{
		Error:   "internal_error",
		Message: err.Error(),
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errUUIDRequired
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, errors.Join(errUUIDRequired, err)
	}
	return parsed, nil
}

func parseBoolQuery(value string, defaultValue bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func parseIntQuery(value string, defaultValue int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (api *API) depth(r *http.Request) int {
	depth := parseIntQuery(r.URL.Query().Get("depth"), api.defaultDepth)
	if depth < 0 {
		depth = 0
	}
	if api.maxDepth > 0 && depth > api.maxDepth {
		depth = api.maxDepth
	}
	return depth
}

func (api *API) populate(ctx context.Context, doc *domain.Document, depth int, draft bool, user *schema.User) (*domain.Document, error) {
	if api.populator == nil || depth <= 0 {
		return doc, nil
	}
	return api.populator(user, false).Populate(ctx, doc, depth, draft)
}
