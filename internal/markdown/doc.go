// Package markdown imports Markdown files with YAML front matter as collection
// documents. Front matter keys become field values and the rendered body is
// stored in a configurable field.
package markdown
