package markdown

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/validation"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	ErrCollectionRequired = errors.New("markdown: collection required")
	ErrBodyFieldRequired  = errors.New("markdown: body field required")
)

// DocumentStore is the slice of the data API the importer writes through.
// FindOne returns nil without error when nothing matches.
type DocumentStore interface {
	Create(ctx context.Context, collection string, data map[string]any, draft bool) (*domain.Document, error)
	Update(ctx context.Context, collection string, id uuid.UUID, data map[string]any, draft bool) (*domain.Document, error)
	FindOne(ctx context.Context, collection string, where map[string]any) (*domain.Document, error)
}

// ImportOptions selects the target collection and how files map onto it.
type ImportOptions struct {
	Collection string
	// BodyField receives the rendered HTML.
	BodyField string
	// MatchField names the front matter key used to find an existing document.
	MatchField string
	Draft      bool
	DryRun     bool
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Created []uuid.UUID
	Updated []uuid.UUID
	Skipped []string
	Errors  []error
}

// Importer writes parsed Markdown documents into a collection.
type Importer struct {
	store    DocumentStore
	renderer Renderer
	logger   interfaces.Logger
}

func NewImporter(store DocumentStore, renderer Renderer, logger interfaces.Logger) *Importer {
	if renderer == nil {
		renderer = NewGoldmarkParser(ParseOptions{})
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Importer{store: store, renderer: renderer, logger: logger}
}

// Import creates or updates one document per file. Per-file failures are
// collected in the result; the first one is also returned.
func (i *Importer) Import(ctx context.Context, docs []*Document, opts ImportOptions) (*ImportResult, error) {
	if strings.TrimSpace(opts.Collection) == "" {
		return nil, ErrCollectionRequired
	}
	if strings.TrimSpace(opts.BodyField) == "" {
		return nil, ErrBodyFieldRequired
	}

	result := &ImportResult{}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if err := i.importOne(ctx, doc, opts, result); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("%s: %w", doc.Path, err))
		}
	}
	if len(result.Errors) > 0 {
		return result, result.Errors[0]
	}
	return result, nil
}

func (i *Importer) importOne(ctx context.Context, doc *Document, opts ImportOptions, result *ImportResult) error {
	html, err := i.renderer.Render(doc.Body)
	if err != nil {
		return err
	}
	data := make(map[string]any, len(doc.FrontMatter.Fields)+1)
	for key, value := range doc.FrontMatter.Fields {
		data[key] = value
	}
	data[opts.BodyField] = string(html)
	data, err = validation.Normalize(data)
	if err != nil {
		return err
	}
	draft := opts.Draft || doc.FrontMatter.Draft

	var existing *domain.Document
	if match := strings.TrimSpace(opts.MatchField); match != "" && data[match] != nil {
		existing, err = i.store.FindOne(ctx, opts.Collection, map[string]any{match: data[match]})
		if err != nil {
			return err
		}
	}

	logger := i.logger.WithContext(ctx)
	switch {
	case existing != nil && unchanged(existing.Data, data):
		result.Skipped = append(result.Skipped, doc.Path)
		logger.Debug("markdown document unchanged", "path", doc.Path)
	case opts.DryRun:
		result.Skipped = append(result.Skipped, doc.Path)
	case existing != nil:
		updated, err := i.store.Update(ctx, opts.Collection, existing.ID, data, draft)
		if err != nil {
			return err
		}
		result.Updated = append(result.Updated, updated.ID)
		logger.Info("markdown document updated", "path", doc.Path, "document_id", updated.ID.String())
	default:
		created, err := i.store.Create(ctx, opts.Collection, data, draft)
		if err != nil {
			return err
		}
		result.Created = append(result.Created, created.ID)
		logger.Info("markdown document created", "path", doc.Path, "document_id", created.ID.String())
	}
	return nil
}

func unchanged(current, next map[string]any) bool {
	for key, value := range next {
		if !reflect.DeepEqual(current[key], value) {
			return false
		}
	}
	return true
}
