package schema

import "errors"

var (
	ErrSlugRequired          = errors.New("schema: slug is required")
	ErrSlugInvalid           = errors.New("schema: slug contains invalid characters")
	ErrSlugDuplicate         = errors.New("schema: slug declared more than once")
	ErrFieldNameRequired     = errors.New("schema: field name is required")
	ErrFieldNameInvalid      = errors.New("schema: field name is invalid")
	ErrFieldNameReserved     = errors.New("schema: field name is reserved")
	ErrFieldDuplicate        = errors.New("schema: field declared more than once")
	ErrFieldTypeUnknown      = errors.New("schema: field type is unknown")
	ErrSelectOptionsRequired = errors.New("schema: select field requires options")
	ErrRelationToRequired    = errors.New("schema: relationship field requires relationTo")
	ErrRelationTargetUnknown = errors.New("schema: relationship target is not a collection")
	ErrRetentionNegative     = errors.New("schema: versions maxPerDoc must be zero or positive")
)
