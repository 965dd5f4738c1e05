package schema

import (
	"fmt"
	"sort"
)

// UsersSlug is the slug of the built-in auth collection.
const UsersSlug = "users"

// UsersCollection is the auth collection added when no collection declares Auth.
func UsersCollection() Collection {
	return Collection{
		Slug:       UsersSlug,
		Labels:     Labels{Singular: "User", Plural: "Users"},
		Auth:       true,
		Timestamps: true,
		Fields: []Field{
			{Name: "email", Type: FieldEmail, Required: true, Unique: true},
		},
	}
}

// Set is a validated, slug-indexed view over collections and globals.
type Set struct {
	collections map[string]Collection
	globals     map[string]Global
	order       []string
	globalOrder []string
	auth        string
}

// NewSet validates every declaration, cross-checks relationship targets and
// appends the default auth collection when none is declared.
func NewSet(collections []Collection, globals []Global) (*Set, error) {
	set := &Set{
		collections: make(map[string]Collection, len(collections)+1),
		globals:     make(map[string]Global, len(globals)),
	}

	for _, collection := range collections {
		if err := collection.Validate(); err != nil {
			return nil, err
		}
		if _, ok := set.collections[collection.Slug]; ok {
			return nil, fmt.Errorf("%w: collection %s", ErrSlugDuplicate, collection.Slug)
		}
		if collection.Auth && set.auth == "" {
			set.auth = collection.Slug
		}
		set.collections[collection.Slug] = collection
		set.order = append(set.order, collection.Slug)
	}
	if set.auth == "" {
		users := UsersCollection()
		if _, ok := set.collections[users.Slug]; ok {
			return nil, fmt.Errorf("%w: collection %s must declare Auth", ErrSlugDuplicate, users.Slug)
		}
		set.collections[users.Slug] = users
		set.order = append(set.order, users.Slug)
		set.auth = users.Slug
	}

	for _, global := range globals {
		if err := global.Validate(); err != nil {
			return nil, err
		}
		if _, ok := set.globals[global.Slug]; ok {
			return nil, fmt.Errorf("%w: global %s", ErrSlugDuplicate, global.Slug)
		}
		set.globals[global.Slug] = global
		set.globalOrder = append(set.globalOrder, global.Slug)
	}

	for _, slug := range set.order {
		if err := set.checkRelations(slug, set.collections[slug].Fields); err != nil {
			return nil, err
		}
	}
	for _, slug := range set.globalOrder {
		if err := set.checkRelations(slug, set.globals[slug].Fields); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *Set) checkRelations(owner string, fields []Field) error {
	for _, field := range fields {
		if field.Type != FieldRelationship {
			continue
		}
		if _, ok := s.collections[field.RelationTo]; !ok {
			return fmt.Errorf("%s.%s: %w: %s", owner, field.Name, ErrRelationTargetUnknown, field.RelationTo)
		}
	}
	return nil
}

// Collection returns the collection declared under slug.
func (s *Set) Collection(slug string) (Collection, bool) {
	if s == nil {
		return Collection{}, false
	}
	c, ok := s.collections[slug]
	return c, ok
}

// Global returns the global declared under slug.
func (s *Set) Global(slug string) (Global, bool) {
	if s == nil {
		return Global{}, false
	}
	g, ok := s.globals[slug]
	return g, ok
}

// Collections lists collections in declaration order.
func (s *Set) Collections() []Collection {
	if s == nil {
		return nil
	}
	out := make([]Collection, 0, len(s.order))
	for _, slug := range s.order {
		out = append(out, s.collections[slug])
	}
	return out
}

// Globals lists globals in declaration order.
func (s *Set) Globals() []Global {
	if s == nil {
		return nil
	}
	out := make([]Global, 0, len(s.globalOrder))
	for _, slug := range s.globalOrder {
		out = append(out, s.globals[slug])
	}
	return out
}

// AuthSlug is the slug of the collection that stores users.
func (s *Set) AuthSlug() string {
	if s == nil {
		return ""
	}
	return s.auth
}

// Slugs returns every collection and global slug, sorted.
func (s *Set) Slugs() []string {
	if s == nil {
		return nil
	}
	out := append(append([]string(nil), s.order...), s.globalOrder...)
	sort.Strings(out)
	return out
}
