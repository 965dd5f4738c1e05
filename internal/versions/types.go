package versions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrParentRequired = errors.New("versions: parent slug and id are required")
	ErrStatusInvalid  = errors.New("versions: status must be draft or published")
)

// Version is an immutable snapshot of a document's field data.
type Version struct {
	bun.BaseModel `bun:"table:cms_versions,alias:v"`

	ID         uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	ParentType domain.Kind    `bun:"parent_type,notnull" json:"parentType"`
	Parent     string         `bun:"parent,notnull" json:"parent"`
	ParentID   uuid.UUID      `bun:"parent_id,notnull,type:uuid" json:"parentId"`
	Version    int            `bun:"version,notnull" json:"versionNumber"`
	Status     domain.Status  `bun:"status,notnull,default:'draft'" json:"_status"`
	Snapshot   map[string]any `bun:"snapshot,type:jsonb,notnull" json:"version"`
	Latest     bool           `bun:"latest,notnull,default:false" json:"latest"`
	Autosave   bool           `bun:"autosave,notnull,default:false" json:"autosave"`
	CreatedBy  *uuid.UUID     `bun:"created_by,type:uuid,nullzero" json:"createdBy,omitempty"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt  time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// Document renders the snapshot as the document it captured. CreatedAt is left
// for the caller, which owns the parent record.
func (v *Version) Document() *domain.Document {
	if v == nil {
		return nil
	}
	return &domain.Document{
		ID:        v.ParentID,
		Kind:      v.ParentType,
		Slug:      v.Parent,
		Status:    v.Status,
		Data:      domain.CloneData(v.Snapshot),
		Version:   v.Version,
		UpdatedAt: v.CreatedAt,
	}
}

// Parent identifies the document a version belongs to.
type Parent struct {
	Kind domain.Kind
	Slug string
	ID   uuid.UUID
}

func (p Parent) String() string {
	return fmt.Sprintf("%s:%s:%s", p.Kind, p.Slug, p.ID)
}

func (p Parent) valid() bool {
	return p.Slug != "" && p.ID != uuid.Nil
}

// ListFilter narrows a version listing. Results are newest first.
type ListFilter struct {
	Parent Parent
	Status domain.Status
	Limit  int
	Offset int
}

// Repository persists versions.
type Repository interface {
	Create(ctx context.Context, record *Version) (*Version, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Version, error)
	Latest(ctx context.Context, parent Parent) (*Version, error)
	List(ctx context.Context, filter ListFilter) ([]*Version, int, error)
	ClearLatest(ctx context.Context, parent Parent) error
	Delete(ctx context.Context, ids []uuid.UUID) error
	DeleteByParent(ctx context.Context, parent Parent) error
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

func cloneVersion(src *Version) *Version {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Snapshot = domain.CloneData(src.Snapshot)
	if src.CreatedBy != nil {
		actor := *src.CreatedBy
		copied.CreatedBy = &actor
	}
	return &copied
}
