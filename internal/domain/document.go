package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes documents of collections from global singletons.
type Kind string

const (
	KindCollection Kind = "collection"
	KindGlobal     Kind = "global"
)

// Reserved keys in the flattened JSON form of a document.
const (
	KeyID         = "id"
	KeyStatus     = "_status"
	KeyCreatedAt  = "createdAt"
	KeyUpdatedAt  = "updatedAt"
	KeyGlobalType = "globalType"
)

// Document is the value returned by every read and write of the data API.
// Data holds field values keyed by field name; relationship fields hold either
// the related id or, once populated, the related document as a map.
type Document struct {
	ID        uuid.UUID
	Kind      Kind
	Slug      string
	Status    Status
	Data      map[string]any
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Get returns the value stored for field.
func (d *Document) Get(field string) any {
	if d == nil || d.Data == nil {
		return nil
	}
	return d.Data[field]
}

// Map flattens the document the same way MarshalJSON does.
func (d *Document) Map() map[string]any {
	if d == nil {
		return nil
	}
	out := CloneData(d.Data)
	if out == nil {
		out = map[string]any{}
	}
	out[KeyID] = d.ID.String()
	if d.Kind == KindGlobal {
		out[KeyGlobalType] = d.Slug
	}
	if d.Status != "" {
		out[KeyStatus] = string(d.Status)
	}
	if !d.CreatedAt.IsZero() {
		out[KeyCreatedAt] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !d.UpdatedAt.IsZero() {
		out[KeyUpdatedAt] = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return out
}

// MarshalJSON renders the flattened document.
func (d Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Map())
}

// Clone deep copies the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	copied := *d
	copied.Data = CloneData(d.Data)
	return &copied
}

// CloneData deep copies nested maps and slices of a field payload.
func CloneData(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return CloneData(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

// StripReserved drops the keys MarshalJSON adds so a flattened document can be
// written back as field data.
func StripReserved(data map[string]any) map[string]any {
	out := CloneData(data)
	for _, key := range []string{KeyID, KeyStatus, KeyCreatedAt, KeyUpdatedAt, KeyGlobalType} {
		delete(out, key)
	}
	return out
}
