package di

import (
	"context"
	"errors"

	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/markdown"
	"github.com/google/uuid"
)

// markdownStore runs imports as trusted server code.
type markdownStore struct {
	service collections.Service
}

func newMarkdownStore(service collections.Service) markdown.DocumentStore {
	return &markdownStore{service: service}
}

func (s *markdownStore) Create(ctx context.Context, collection string, data map[string]any, draft bool) (*domain.Document, error) {
	if s.service == nil {
		return nil, errors.New("collections service unavailable")
	}
	return s.service.Create(ctx, collections.CreateRequest{
		Request:    collections.Request{Draft: draft, OverrideAccess: true},
		Collection: collection,
		Data:       data,
	})
}

func (s *markdownStore) Update(ctx context.Context, collection string, id uuid.UUID, data map[string]any, draft bool) (*domain.Document, error) {
	if s.service == nil {
		return nil, errors.New("collections service unavailable")
	}
	return s.service.Update(ctx, collections.UpdateRequest{
		Request:    collections.Request{Draft: draft, OverrideAccess: true},
		Collection: collection,
		ID:         id,
		Data:       data,
	})
}

// FindOne compares against the latest draft so re-imports of unpublished
// files are detected as unchanged.
func (s *markdownStore) FindOne(ctx context.Context, collection string, where map[string]any) (*domain.Document, error) {
	if s.service == nil {
		return nil, errors.New("collections service unavailable")
	}
	page, err := s.service.Find(ctx, collections.FindRequest{
		Request:    collections.Request{Draft: true, OverrideAccess: true},
		Collection: collection,
		Where:      where,
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(page.Docs) == 0 {
		return nil, nil
	}
	return page.Docs[0], nil
}
