package cms

import (
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

type (
	// Document is the value returned by every read and write.
	Document = domain.Document
	Status   = domain.Status
	Version  = versions.Version
	// User is the principal access rules receive.
	User = schema.User
	// UserService exports the auth collection service contract.
	UserService = users.Service
	// ValidationError lists the payload issues of a rejected write.
	ValidationError = validation.PayloadValidationError
	AccessError     = access.Error
)

// Page is a paginated result.
type Page[T any] = domain.Page[T]

const (
	StatusDraft     = domain.StatusDraft
	StatusPublished = domain.StatusPublished
)

var (
	ErrForbidden          = access.ErrForbidden
	ErrCollectionUnknown  = collections.ErrCollectionUnknown
	ErrGlobalUnknown      = globals.ErrGlobalUnknown
	ErrDocumentIDRequired = collections.ErrDocumentIDRequired
	ErrInvalidCredentials = users.ErrInvalidCredentials
)

// CallOptions carries the caller facts shared by every operation.
// OverrideAccess defaults to true: the local API is trusted server code.
// Depth defaults to the configured relationship depth.
type CallOptions struct {
	User           *User
	OverrideAccess *bool
	Depth          *int
}

type CreateOptions struct {
	CallOptions
	Collection string
	Data       map[string]any
	Draft      bool
}

type UpdateOptions struct {
	CallOptions
	Collection string
	ID         uuid.UUID
	Data       map[string]any
	Draft      bool
}

type FindByIDOptions struct {
	CallOptions
	Collection string
	ID         uuid.UUID
	Draft      bool
}

// FindOptions lists documents. Where matches top-level field values exactly.
type FindOptions struct {
	CallOptions
	Collection string
	Where      map[string]any
	Draft      bool
	Limit      int
	Page       int
}

type DeleteOptions struct {
	CallOptions
	Collection string
	ID         uuid.UUID
}

type FindVersionsOptions struct {
	CallOptions
	Collection string
	ID         uuid.UUID
	Limit      int
	Page       int
}

type RestoreVersionOptions struct {
	CallOptions
	Collection string
	VersionID  uuid.UUID
	Draft      bool
}

type FindGlobalOptions struct {
	CallOptions
	Slug  string
	Draft bool
}

type UpdateGlobalOptions struct {
	CallOptions
	Slug  string
	Data  map[string]any
	Draft bool
}

type FindGlobalVersionsOptions struct {
	CallOptions
	Slug  string
	Limit int
	Page  int
}

type RestoreGlobalVersionOptions struct {
	CallOptions
	Slug      string
	VersionID uuid.UUID
	Draft     bool
}

// Bool returns a pointer to v, for CallOptions.OverrideAccess.
func Bool(v bool) *bool {
	return &v
}

// Int returns a pointer to v, for CallOptions.Depth.
func Int(v int) *int {
	return &v
}
