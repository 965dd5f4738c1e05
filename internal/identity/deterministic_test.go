package identity_test

import (
	"testing"

	"github.com/goliatone/go-cms-community/internal/identity"
	"github.com/google/uuid"
)

func TestGlobalUUIDIsStable(t *testing.T) {
	first := identity.GlobalUUID("menu")
	second := identity.GlobalUUID(" Menu ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil id")
	}
	if first != second {
		t.Fatalf("expected normalized slugs to map to the same id, got %s and %s", first, second)
	}
	if first == identity.GlobalUUID("footer") {
		t.Fatal("different globals must not share an id")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if identity.UUID("   ") != uuid.Nil {
		t.Fatal("blank keys must map to uuid.Nil")
	}
	if identity.ActorUUID("markdown") == identity.GlobalUUID("markdown") {
		t.Fatal("actor and global namespaces must not collide")
	}
}
