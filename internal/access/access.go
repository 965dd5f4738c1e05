package access

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-cms-community/schema"
)

var ErrForbidden = errors.New("access: forbidden")

// Error reports a denied operation on a collection or global.
type Error struct {
	Operation schema.Operation
	Slug      string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Slug) == "" {
		return "access denied: " + string(e.Operation)
	}
	return fmt.Sprintf("access denied: %s %s", e.Operation, e.Slug)
}

func (e Error) Unwrap() error {
	return ErrForbidden
}

type contextKey string

const userKey contextKey = "cms.access.user"

// WithUser stores the authenticated user on the context.
func WithUser(ctx context.Context, user *schema.User) context.Context {
	if ctx == nil || user == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) *schema.User {
	if ctx == nil {
		return nil
	}
	user, _ := ctx.Value(userKey).(*schema.User)
	return user
}

// Request describes one gated call.
type Request struct {
	Operation      schema.Operation
	Slug           string
	ID             string
	Data           map[string]any
	User           *schema.User
	OverrideAccess bool
}

// Evaluate runs the rule for req.Operation. Missing rules only admit
// authenticated users. An explicit user wins over the one stored on ctx.
func Evaluate(ctx context.Context, rules schema.Access, req Request) error {
	if req.OverrideAccess {
		return nil
	}
	user := req.User
	if user == nil {
		user = UserFromContext(ctx)
	}
	rule := rules.Rule(req.Operation)
	if rule == nil {
		rule = schema.Authenticated()
	}
	allowed, err := rule(ctx, schema.AccessArgs{
		User: user,
		Slug: req.Slug,
		ID:   req.ID,
		Data: req.Data,
	})
	if err != nil {
		return fmt.Errorf("access: evaluate %s %s: %w", req.Operation, req.Slug, err)
	}
	if !allowed {
		return Error{Operation: req.Operation, Slug: req.Slug}
	}
	return nil
}
