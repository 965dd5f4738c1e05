package relationships

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
)

// Loader fetches the related document. Implementations return a nil document
// and a nil error when the target cannot be seen by the caller.
type Loader interface {
	Load(ctx context.Context, collection string, id uuid.UUID, draft bool) (*domain.Document, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, collection string, id uuid.UUID, draft bool) (*domain.Document, error)

func (fn LoaderFunc) Load(ctx context.Context, collection string, id uuid.UUID, draft bool) (*domain.Document, error) {
	return fn(ctx, collection, id, draft)
}

// Populator replaces relationship ids with the related documents.
type Populator struct {
	schema *schema.Set
	loader Loader
}

func NewPopulator(set *schema.Set, loader Loader) *Populator {
	return &Populator{schema: set, loader: loader}
}

// Populate returns a copy of doc whose relationship fields hold the flattened
// related documents, nested up to depth levels. Depth 0 returns the copy
// untouched. Ids that do not resolve stay as they are.
func (p *Populator) Populate(ctx context.Context, doc *domain.Document, depth int, draft bool) (*domain.Document, error) {
	if doc == nil {
		return nil, nil
	}
	out := doc.Clone()
	if depth <= 0 || p == nil || p.loader == nil {
		return out, nil
	}
	fields, ok := p.fields(doc.Kind, doc.Slug)
	if !ok {
		return out, nil
	}
	data, err := p.populateFields(ctx, fields, out.Data, depth, draft)
	if err != nil {
		return nil, err
	}
	out.Data = data
	return out, nil
}

func (p *Populator) fields(kind domain.Kind, slug string) ([]schema.Field, bool) {
	if p.schema == nil {
		return nil, false
	}
	if kind == domain.KindGlobal {
		global, ok := p.schema.Global(slug)
		return global.Fields, ok
	}
	collection, ok := p.schema.Collection(slug)
	return collection.Fields, ok
}

func (p *Populator) populateFields(ctx context.Context, fields []schema.Field, data map[string]any, depth int, draft bool) (map[string]any, error) {
	if data == nil {
		return nil, nil
	}
	for _, field := range fields {
		if field.Type != schema.FieldRelationship {
			continue
		}
		value, ok := data[field.Name]
		if !ok || value == nil {
			continue
		}
		if items, isList := value.([]any); isList {
			populated := make([]any, len(items))
			for i, item := range items {
				resolved, err := p.resolve(ctx, field.RelationTo, item, depth, draft)
				if err != nil {
					return nil, err
				}
				populated[i] = resolved
			}
			data[field.Name] = populated
			continue
		}
		resolved, err := p.resolve(ctx, field.RelationTo, value, depth, draft)
		if err != nil {
			return nil, err
		}
		data[field.Name] = resolved
	}
	return data, nil
}

func (p *Populator) resolve(ctx context.Context, target string, value any, depth int, draft bool) (any, error) {
	id, ok := RelationID(value)
	if !ok {
		return value, nil
	}
	related, err := p.loader.Load(ctx, target, id, draft)
	if err != nil {
		return nil, fmt.Errorf("relationships: load %s %s: %w", target, id, err)
	}
	if related == nil {
		return value, nil
	}
	if depth > 1 {
		if fields, ok := p.fields(related.Kind, related.Slug); ok {
			data, err := p.populateFields(ctx, fields, related.Data, depth-1, draft)
			if err != nil {
				return nil, err
			}
			related.Data = data
		}
	}
	return related.Map(), nil
}

// RelationID extracts the related document id from a raw value or from an
// already populated document map.
func RelationID(value any) (uuid.UUID, bool) {
	switch typed := value.(type) {
	case uuid.UUID:
		return typed, typed != uuid.Nil
	case string:
		id, err := uuid.Parse(strings.TrimSpace(typed))
		if err != nil || id == uuid.Nil {
			return uuid.Nil, false
		}
		return id, true
	case map[string]any:
		return RelationID(typed[domain.KeyID])
	default:
		return uuid.Nil, false
	}
}

// Depopulate collapses populated relationship values back to their ids so a
// document read with depth can be written back.
func Depopulate(fields []schema.Field, data map[string]any) map[string]any {
	out := domain.CloneData(data)
	for _, field := range fields {
		if field.Type != schema.FieldRelationship {
			continue
		}
		switch typed := out[field.Name].(type) {
		case map[string]any:
			if id, ok := RelationID(typed); ok {
				out[field.Name] = id.String()
			}
		case []any:
			for i, item := range typed {
				if id, ok := RelationID(item); ok {
					typed[i] = id.String()
				}
			}
		}
	}
	return out
}
