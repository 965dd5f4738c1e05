package documentscmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

const (
	publishDocumentMessageType = "cms.documents.publish"
	restoreVersionMessageType  = "cms.documents.restore_version"
	publishGlobalMessageType   = "cms.globals.publish"
)

// PublishDocumentCommand promotes the latest draft of a collection document
// to the published record.
type PublishDocumentCommand struct {
	Collection string    `json:"collection"`
	ID         uuid.UUID `json:"id"`
}

func (PublishDocumentCommand) Type() string { return publishDocumentMessageType }

func (m PublishDocumentCommand) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(m.Collection) == "" {
		errs["collection"] = validation.NewError("cms.documents.publish.collection_required", "collection is required")
	}
	if m.ID == uuid.Nil {
		errs["id"] = validation.NewError("cms.documents.publish.id_required", "id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RestoreVersionCommand restores a stored version onto a collection document
// or, when Global is set, onto a global. Draft keeps the restored data as a
// new draft instead of publishing it.
type RestoreVersionCommand struct {
	Collection string    `json:"collection,omitempty"`
	Global     string    `json:"global,omitempty"`
	VersionID  uuid.UUID `json:"version_id"`
	Draft      bool      `json:"draft,omitempty"`
}

func (RestoreVersionCommand) Type() string { return restoreVersionMessageType }

func (m RestoreVersionCommand) Validate() error {
	collection := strings.TrimSpace(m.Collection)
	global := strings.TrimSpace(m.Global)
	return validation.ValidateStruct(&m,
		validation.Field(&m.Collection, validation.By(func(any) error {
			switch {
			case collection == "" && global == "":
				return validation.NewError("cms.documents.restore_version.target_required", "collection or global is required")
			case collection != "" && global != "":
				return validation.NewError("cms.documents.restore_version.target_ambiguous", "collection and global are mutually exclusive")
			}
			return nil
		})),
		validation.Field(&m.VersionID, validation.By(func(value any) error {
			if id, _ := value.(uuid.UUID); id == uuid.Nil {
				return validation.NewError("cms.documents.restore_version.version_id_required", "version_id is required")
			}
			return nil
		})),
	)
}

// PublishGlobalCommand publishes the latest draft of a global.
type PublishGlobalCommand struct {
	Slug string `json:"slug"`
}

func (PublishGlobalCommand) Type() string { return publishGlobalMessageType }

func (m PublishGlobalCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Slug, validation.Required.ErrorObject(
			validation.NewError("cms.globals.publish.slug_required", "slug is required"),
		)),
	)
}
