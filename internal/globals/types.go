package globals

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
	ErrGlobalUnknown      = errors.New("globals: global is not configured")
	ErrVersionIDRequired  = errors.New("globals: version id required")
	ErrVersioningDisabled = errors.New("globals: versions are not enabled for this global")
	ErrVersionMismatch    = errors.New("globals: version does not belong to this global")
)

// Record is the stored published state of a global.
type Record struct {
	bun.BaseModel `bun:"table:cms_globals,alias:g"`

	ID        uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Slug      string         `bun:"slug,notnull,unique" json:"globalType"`
	Status    domain.Status  `bun:"status" json:"_status,omitempty"`
	Data      map[string]any `bun:"data,type:jsonb,notnull" json:"data"`
	Version   int            `bun:"version,notnull,default:0" json:"version"`
	UpdatedBy *uuid.UUID     `bun:"updated_by,type:uuid,nullzero" json:"updatedBy,omitempty"`
	CreatedAt time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// Document renders the record as the data API value.
func (r *Record) Document() *domain.Document {
	if r == nil {
		return nil
	}
	return &domain.Document{
		ID:        r.ID,
		Kind:      domain.KindGlobal,
		Slug:      r.Slug,
		Status:    r.Status,
		Data:      domain.CloneData(r.Data),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Repository persists globals keyed by slug.
type Repository interface {
	GetBySlug(ctx context.Context, slug string) (*Record, error)
	Create(ctx context.Context, record *Record) (*Record, error)
	Update(ctx context.Context, record *Record) (*Record, error)
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

type FindRequest struct {
	Request
	Slug string
}

type UpdateRequest struct {
	Request
	Slug string
	Data map[string]any
}

type VersionsRequest struct {
	Request
	Slug  string
	Limit int
	Page  int
}

type RestoreRequest struct {
	Request
	Slug      string
	VersionID uuid.UUID
}

func cloneRecord(src *Record) *Record {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Data = domain.CloneData(src.Data)
	if src.UpdatedBy != nil {
		actor := *src.UpdatedBy
		copied.UpdatedBy = &actor
	}
	return &copied
}
