package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrEmailRequired      = errors.New("users: email required")
	ErrPasswordRequired   = errors.New("users: password required")
	ErrEmailTaken         = errors.New("users: email already registered")
	ErrInvalidCredentials = errors.New("users: invalid email or password")
)

// User is a stored account of the auth collection.
type User struct {
	bun.BaseModel `bun:"table:cms_users,alias:u"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Collection   string    `bun:"collection,notnull" json:"collection"`
	Email        string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt    time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt"`
}

// Principal returns the identity handed to access functions.
func (u *User) Principal() *schema.User {
	if u == nil {
		return nil
	}
	return &schema.User{ID: u.ID, Email: u.Email, Collection: u.Collection}
}

// Document renders the user without credentials.
func (u *User) Document() *domain.Document {
	if u == nil {
		return nil
	}
	return &domain.Document{
		ID:        u.ID,
		Kind:      domain.KindCollection,
		Slug:      u.Collection,
		Data:      map[string]any{"email": u.Email},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
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

// CreateRequest registers a user.
type CreateRequest struct {
	Email    string
	Password string
}

func cloneUser(src *User) *User {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
