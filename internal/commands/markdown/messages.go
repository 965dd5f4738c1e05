package markdowncmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const importDirectoryMessageType = "cms.markdown.import_directory"

// ImportDirectoryCommand loads the Markdown files under Directory and writes
// one document per file into Collection.
type ImportDirectoryCommand struct {
	Directory string `json:"directory"`
	// Pattern filters file names, "*.md" when empty.
	Pattern    string `json:"pattern,omitempty"`
	Recursive  bool   `json:"recursive,omitempty"`
	Collection string `json:"collection"`
	// BodyField receives the rendered HTML.
	BodyField string `json:"body_field"`
	// MatchField names the front matter key used to update existing documents.
	MatchField string `json:"match_field,omitempty"`
	Draft      bool   `json:"draft,omitempty"`
	DryRun     bool   `json:"dry_run,omitempty"`
}

func (ImportDirectoryCommand) Type() string { return importDirectoryMessageType }

func (cmd ImportDirectoryCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Directory, validation.By(required("cms.markdown.import_directory.directory_required", "directory is required"))),
		validation.Field(&cmd.Collection, validation.By(required("cms.markdown.import_directory.collection_required", "collection is required"))),
		validation.Field(&cmd.BodyField, validation.By(required("cms.markdown.import_directory.body_field_required", "body_field is required"))),
	)
}

func required(code, message string) validation.RuleFunc {
	return func(value any) error {
		if text, _ := value.(string); strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
