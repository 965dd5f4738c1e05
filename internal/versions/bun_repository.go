package versions

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewVersionRepository creates the generic repository for Version records.
func NewVersionRepository(db *bun.DB) repository.Repository[*Version] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Version]{
		NewRecord: func() *Version { return &Version{} },
		GetID: func(v *Version) uuid.UUID {
			return v.ID
		},
		SetID: func(v *Version, id uuid.UUID) {
			v.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(v *Version) string {
			if v == nil {
				return ""
			}
			return v.ID.String()
		},
	})
}

// BunRepository implements Repository on top of go-repository-bun. Versions are
// never cached: every save rewrites the latest flag of its siblings.
type BunRepository struct {
	db   *bun.DB
	repo repository.Repository[*Version]
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db, repo: NewVersionRepository(db)}
}

func (r *BunRepository) Create(ctx context.Context, record *Version) (*Version, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Version, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "version", id.String())
	}
	return record, nil
}

func (r *BunRepository) Latest(ctx context.Context, parent Parent) (*Version, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return whereParent(q, parent).OrderExpr("?TableAlias.version DESC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "version", Key: parent.String()}
	}
	return records[0], nil
}

func (r *BunRepository) List(ctx context.Context, filter ListFilter) ([]*Version, int, error) {
	selector := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		q = whereParent(q, filter.Parent)
		if filter.Status != "" {
			q = q.Where("?TableAlias.status = ?", filter.Status)
		}
		return q.OrderExpr("?TableAlias.version DESC")
	})
	if filter.Limit > 0 {
		return r.repo.List(ctx, selector, repository.SelectPaginate(filter.Limit, max(filter.Offset, 0)))
	}
	return r.repo.List(ctx, selector)
}

func (r *BunRepository) ClearLatest(ctx context.Context, parent Parent) error {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return whereParent(q, parent).Where("?TableAlias.latest = ?", true)
		}),
	)
	if err != nil {
		return err
	}
	for _, record := range records {
		record.Latest = false
		record.UpdatedAt = time.Now().UTC()
		if _, err := r.repo.Update(ctx, record,
			repository.UpdateByID(record.ID.String()),
			repository.UpdateColumns("latest", "updated_at"),
		); err != nil {
			return mapRepositoryError(err, "version", record.ID.String())
		}
	}
	return nil
}

func (r *BunRepository) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.NewDelete().
		Model((*Version)(nil)).
		Where("?TableAlias.id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete versions: %w", err)
	}
	return nil
}

func (r *BunRepository) DeleteByParent(ctx context.Context, parent Parent) error {
	if !parent.valid() {
		return ErrParentRequired
	}
	_, err := r.db.NewDelete().
		Model((*Version)(nil)).
		Where("?TableAlias.parent_type = ?", parent.Kind).
		Where("?TableAlias.parent = ?", parent.Slug).
		Where("?TableAlias.parent_id = ?", parent.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete versions for %s: %w", parent, err)
	}
	return nil
}

func whereParent(q *bun.SelectQuery, parent Parent) *bun.SelectQuery {
	if parent.Kind != "" {
		q = q.Where("?TableAlias.parent_type = ?", parent.Kind)
	}
	if parent.Slug != "" {
		q = q.Where("?TableAlias.parent = ?", parent.Slug)
	}
	if parent.ID != uuid.Nil {
		q = q.Where("?TableAlias.parent_id = ?", parent.ID)
	}
	return q
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
