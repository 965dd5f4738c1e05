package schema

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-slug"
)

// DefaultMaxPerDoc is the retention applied when Versions.MaxPerDoc is zero.
const DefaultMaxPerDoc = 100

// Versions enables version history. Drafts additionally allows unpublished saves.
type Versions struct {
	Drafts    bool
	MaxPerDoc int
}

// Labels holds the singular and plural display names of a collection.
type Labels struct {
	Singular string
	Plural   string
}

// Collection declares a document type with many documents.
type Collection struct {
	Slug       string
	Labels     Labels
	Fields     []Field
	Versions   *Versions
	Access     Access
	Timestamps bool
	Auth       bool
}

// Validate checks the collection declaration.
func (c Collection) Validate() error {
	if err := validateSlug(c.Slug); err != nil {
		return err
	}
	if c.Versions != nil && c.Versions.MaxPerDoc < 0 {
		return fmt.Errorf("%s: %w", c.Slug, ErrRetentionNegative)
	}
	return validateFields(c.Slug, c.Fields)
}

// Versioned reports whether saves record versions.
func (c Collection) Versioned() bool {
	return c.Versions != nil
}

// DraftsEnabled reports whether draft saves are allowed.
func (c Collection) DraftsEnabled() bool {
	return c.Versions != nil && c.Versions.Drafts
}

// MaxVersions resolves the retention for this collection, falling back to fallback
// and then DefaultMaxPerDoc.
func (c Collection) MaxVersions(fallback int) int {
	return maxVersions(c.Versions, fallback)
}

// Field returns the named field.
func (c Collection) Field(name string) (Field, bool) {
	return findField(c.Fields, name)
}

// SingularLabel falls back to a title-cased slug.
func (c Collection) SingularLabel() string {
	if label := strings.TrimSpace(c.Labels.Singular); label != "" {
		return label
	}
	return titleFromSlug(strings.TrimSuffix(c.Slug, "s"))
}

// PluralLabel falls back to a title-cased slug.
func (c Collection) PluralLabel() string {
	if label := strings.TrimSpace(c.Labels.Plural); label != "" {
		return label
	}
	return titleFromSlug(c.Slug)
}

func validateSlug(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ErrSlugRequired
	}
	normalized, err := slug.Normalize(trimmed)
	if err != nil || normalized != trimmed {
		return fmt.Errorf("%w: %q", ErrSlugInvalid, value)
	}
	return nil
}

// NormalizeSlug returns the canonical form of value.
func NormalizeSlug(value string) (string, error) {
	normalized, err := slug.Normalize(strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrSlugInvalid, value)
	}
	if normalized == "" {
		return "", ErrSlugRequired
	}
	return normalized, nil
}

func maxVersions(v *Versions, fallback int) int {
	if v != nil && v.MaxPerDoc > 0 {
		return v.MaxPerDoc
	}
	if fallback > 0 {
		return fallback
	}
	return DefaultMaxPerDoc
}

func findField(fields []Field, name string) (Field, bool) {
	for _, field := range fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

func titleFromSlug(value string) string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == '-' || r == '_' })
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, "")
}
