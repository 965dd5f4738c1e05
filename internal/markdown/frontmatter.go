package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"
)

// FrontMatter is the metadata block of a Markdown file. Fields holds every key
// other than draft, ready to be written as document data.
type FrontMatter struct {
	Title  string
	Slug   string
	Draft  bool
	Fields map[string]any
}

// Document is a parsed Markdown file.
type Document struct {
	Path         string
	FrontMatter  FrontMatter
	Body         []byte
	LastModified time.Time
}

type frontMatterEnvelope struct {
	Title  string         `yaml:"title"`
	Slug   string         `yaml:"slug"`
	Draft  bool           `yaml:"draft"`
	Custom map[string]any `yaml:",inline"`
}

// ParseFrontMatter splits source into its front matter and Markdown body.
func ParseFrontMatter(source []byte) (FrontMatter, []byte, error) {
	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	fields := make(map[string]any, len(meta.Custom)+2)
	for key, value := range meta.Custom {
		fields[key] = value
	}
	if meta.Title != "" {
		fields["title"] = meta.Title
	}
	if meta.Slug != "" {
		fields["slug"] = meta.Slug
	}
	return FrontMatter{Title: meta.Title, Slug: meta.Slug, Draft: meta.Draft, Fields: fields}, body, nil
}

// BuildDocument parses source read from path.
func BuildDocument(path string, source []byte, modified time.Time) (*Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Document{Path: path, FrontMatter: fm, Body: body, LastModified: modified}, nil
}
