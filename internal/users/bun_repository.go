package users

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewUserRepository creates the generic repository for users, identified by email.
func NewUserRepository(db *bun.DB) repository.Repository[*User] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier: func() string {
			return "email"
		},
		GetIdentifierValue: func(u *User) string {
			return u.Email
		},
	})
}

// BunRepository implements Repository. Users are not cached so credential
// checks always see the stored hash.
type BunRepository struct {
	repo repository.Repository[*User]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{repo: NewUserRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, user *User) (*User, error) {
	if _, err := r.repo.GetByIdentifier(ctx, user.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return nil, mapRepositoryError(err, user.Email)
	}
	created, err := r.repo.Create(ctx, user)
	if err != nil {
		return nil, mapRepositoryError(err, user.Email)
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return user, nil
}

func (r *BunRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := r.repo.GetByIdentifier(ctx, email)
	if err != nil {
		return nil, mapRepositoryError(err, email)
	}
	return user, nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: "user", Key: key}
	}
	return fmt.Errorf("user repository error: %w", err)
}
