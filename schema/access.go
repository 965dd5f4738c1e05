package schema

import (
	"context"

	"github.com/google/uuid"
)

// Operation names the data API action being gated by an access rule.
type Operation string

const (
	OperationRead   Operation = "read"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// User is the authenticated principal passed to access rules.
type User struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Collection string    `json:"collection"`
}

// AccessArgs carries the request facts available to an AccessFunc.
type AccessArgs struct {
	User *User
	Slug string
	ID   string
	Data map[string]any
}

// AccessFunc decides whether the operation may proceed.
type AccessFunc func(ctx context.Context, args AccessArgs) (bool, error)

// Access groups the per-operation rules. A nil rule only admits authenticated users.
type Access struct {
	Read   AccessFunc
	Create AccessFunc
	Update AccessFunc
	Delete AccessFunc
}

// Rule returns the function configured for op.
func (a Access) Rule(op Operation) AccessFunc {
	switch op {
	case OperationRead:
		return a.Read
	case OperationCreate:
		return a.Create
	case OperationUpdate:
		return a.Update
	case OperationDelete:
		return a.Delete
	default:
		return nil
	}
}

// Anyone admits every request, authenticated or not.
func Anyone() AccessFunc {
	return func(context.Context, AccessArgs) (bool, error) {
		return true, nil
	}
}

// Authenticated admits requests that carry a user.
func Authenticated() AccessFunc {
	return func(_ context.Context, args AccessArgs) (bool, error) {
		return args.User != nil, nil
	}
}
