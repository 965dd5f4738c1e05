package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// GlobalUUID is the id of the singleton document stored under slug.
func GlobalUUID(slug string) uuid.UUID {
	return UUID("go-cms:global:" + strings.ToLower(strings.TrimSpace(slug)))
}

// ActorUUID maps a principal that has no stored user record, such as a command
// dispatcher or the markdown importer, onto a stable id.
func ActorUUID(name string) uuid.UUID {
	return UUID("go-cms:actor:" + strings.ToLower(strings.TrimSpace(name)))
}
