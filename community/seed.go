package community

import (
	"context"
	"encoding/json"
	"fmt"

	cms "github.com/goliatone/go-cms-community"
)

// Seed runs Seeder(DevUser).
func Seed(ctx context.Context, m *cms.Module) error {
	return Seeder(DevUser)(ctx, m)
}

// Seeder creates a user, publishes a post, saves a draft over it, points the
// menu at the post and prints the draft reads of both.
func Seeder(user Credentials) cms.InitFunc {
	return func(ctx context.Context, m *cms.Module) error {
		result, err := Run(ctx, m, user)
		if err != nil {
			return err
		}
		logger := m.Logger()
		for _, doc := range []*cms.Document{result.Menu, result.Post} {
			payload, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("community seed: encode %s: %w", doc.Slug, err)
			}
			logger.Info("community seed read", "slug", doc.Slug, "document_id", doc.ID.String(), "status", string(doc.Status))
			if _, err := fmt.Fprintln(m.Output(), string(payload)); err != nil {
				return fmt.Errorf("community seed: print %s: %w", doc.Slug, err)
			}
		}
		return nil
	}
}

// SeedResult holds the documents read back by the seed.
type SeedResult struct {
	User *cms.Document
	Menu *cms.Document
	Post *cms.Document
}

// Run performs the seed writes and returns the draft reads without printing.
func Run(ctx context.Context, m *cms.Module, user Credentials) (*SeedResult, error) {
	account, err := m.Create(ctx, cms.CreateOptions{
		Collection: m.Schema().AuthSlug(),
		Data: map[string]any{
			"email":    user.Email,
			"password": user.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("community seed: create user: %w", err)
	}

	post, err := m.Create(ctx, cms.CreateOptions{
		Collection: PostsSlug,
		Data:       map[string]any{"text": "published example post"},
	})
	if err != nil {
		return nil, fmt.Errorf("community seed: create post: %w", err)
	}

	if _, err := m.Update(ctx, cms.UpdateOptions{
		Collection: PostsSlug,
		ID:         post.ID,
		Draft:      true,
		Data:       map[string]any{"text": "draft example post"},
	}); err != nil {
		return nil, fmt.Errorf("community seed: draft post: %w", err)
	}

	if _, err := m.UpdateGlobal(ctx, cms.UpdateGlobalOptions{
		Slug: MenuSlug,
		Data: map[string]any{"relationship": post.ID.String()},
	}); err != nil {
		return nil, fmt.Errorf("community seed: update menu: %w", err)
	}

	menu, err := m.FindGlobal(ctx, cms.FindGlobalOptions{Slug: MenuSlug, Draft: true})
	if err != nil {
		return nil, fmt.Errorf("community seed: find menu: %w", err)
	}
	draft, err := m.FindByID(ctx, cms.FindByIDOptions{Collection: PostsSlug, ID: post.ID, Draft: true})
	if err != nil {
		return nil, fmt.Errorf("community seed: find post: %w", err)
	}
	return &SeedResult{User: account, Menu: menu, Post: draft}, nil
}
