package collections

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrCollectionUnknown   = errors.New("collections: collection is not configured")
	ErrDocumentIDRequired  = errors.New("collections: document id required")
	ErrVersionIDRequired   = errors.New("collections: version id required")
	ErrVersioningDisabled  = errors.New("collections: versions are not enabled for this collection")
	ErrVersionMismatch     = errors.New("collections: version does not belong to this document")
	ErrUniqueValueConflict = errors.New("collections: value must be unique")
	ErrAuthCollection      = errors.New("collections: auth collections are managed by the users service")
)

// Record is the stored main document of a collection.
type Record struct {
	bun.BaseModel `bun:"table:cms_documents,alias:d"`

	ID         uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Collection string         `bun:"collection,notnull" json:"collection"`
	Status     domain.Status  `bun:"status" json:"_status,omitempty"`
	Data       map[string]any `bun:"data,type:jsonb,notnull" json:"data"`
	Version    int            `bun:"version,notnull,default:0" json:"version"`
	CreatedBy  *uuid.UUID     `bun:"created_by,type:uuid,nullzero" json:"createdBy,omitempty"`
	UpdatedBy  *uuid.UUID     `bun:"updated_by,type:uuid,nullzero" json:"updatedBy,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// Document renders the record as the data API value.
func (r *Record) Document() *domain.Document {
	if r == nil {
		return nil
	}
	return &domain.Document{
		ID:        r.ID,
		Kind:      domain.KindCollection,
		Slug:      r.Collection,
		Status:    r.Status,
		Data:      domain.CloneData(r.Data),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ListQuery selects the records of one collection, newest first.
type ListQuery struct {
	Collection string
	Limit      int
	Offset     int
}

// Repository persists collection documents.
type Repository interface {
	Create(ctx context.Context, record *Record) (*Record, error)
	GetByID(ctx context.Context, collection string, id uuid.UUID) (*Record, error)
	List(ctx context.Context, query ListQuery) ([]*Record, int, error)
	Update(ctx context.Context, record *Record) (*Record, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// Request carries the caller facts shared by every operation.
type Request struct {
	Draft          bool
	User           *schema.User
	OverrideAccess bool
}

type CreateRequest struct {
	Request
	Collection string
	Data       map[string]any
}

type UpdateRequest struct {
	Request
	Collection string
	ID         uuid.UUID
	Data       map[string]any
}

type FindByIDRequest struct {
	Request
	Collection string
	ID         uuid.UUID
}

// FindRequest lists documents. Where matches top-level field values exactly.
type FindRequest struct {
	Request
	Collection string
	Where      map[string]any
	Limit      int
	Page       int
}

type DeleteRequest struct {
	Request
	Collection string
	ID         uuid.UUID
}

type VersionsRequest struct {
	Request
	Collection string
	ID         uuid.UUID
	Limit      int
	Page       int
}

type RestoreRequest struct {
	Request
	Collection string
	VersionID  uuid.UUID
}

func cloneRecord(src *Record) *Record {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Data = domain.CloneData(src.Data)
	if src.CreatedBy != nil {
		actor := *src.CreatedBy
		copied.CreatedBy = &actor
	}
	if src.UpdatedBy != nil {
		actor := *src.UpdatedBy
		copied.UpdatedBy = &actor
	}
	return &copied
}
