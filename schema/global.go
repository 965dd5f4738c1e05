package schema

import (
	"fmt"
	"strings"
)

// Global declares a singleton document.
type Global struct {
	Slug     string
	Label    string
	Fields   []Field
	Versions *Versions
	Access   Access
}

// Validate checks the global declaration.
func (g Global) Validate() error {
	if err := validateSlug(g.Slug); err != nil {
		return err
	}
	if g.Versions != nil && g.Versions.MaxPerDoc < 0 {
		return fmt.Errorf("%s: %w", g.Slug, ErrRetentionNegative)
	}
	return validateFields(g.Slug, g.Fields)
}

func (g Global) Versioned() bool {
	return g.Versions != nil
}

func (g Global) DraftsEnabled() bool {
	return g.Versions != nil && g.Versions.Drafts
}

func (g Global) MaxVersions(fallback int) int {
	return maxVersions(g.Versions, fallback)
}

func (g Global) Field(name string) (Field, bool) {
	return findField(g.Fields, name)
}

// DisplayLabel falls back to a title-cased slug.
func (g Global) DisplayLabel() string {
	if label := strings.TrimSpace(g.Label); label != "" {
		return label
	}
	return titleFromSlug(g.Slug)
}
