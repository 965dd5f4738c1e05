// Package activity fans document mutations out to activity hooks such as the
// go-users sink in the usersink subpackage.
package activity

import (
	"context"
	"errors"
	"maps"
	"strings"
	"time"
)

// DefaultChannel tags records emitted by the CMS.
const DefaultChannel = "cms"

// Event describes one mutation. IDs are strings so hooks that do not use UUIDs
// can consume events unchanged.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Hook receives emitted events.
type Hook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc adapts a function into a Hook.
type HookFunc func(ctx context.Context, event Event) error

func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks is an ordered list of hooks.
type Hooks []Hook

// Config toggles emission.
type Config struct {
	Enabled bool
	Channel string
}

// Emitter stamps events and forwards them to every hook.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter builds an emitter. It is disabled when cfg.Enabled is false or no
// hooks are registered.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	filtered := make(Hooks, 0, len(hooks))
	for _, hook := range hooks {
		if hook != nil {
			filtered = append(filtered, hook)
		}
	}
	if strings.TrimSpace(cfg.Channel) == "" {
		cfg.Channel = DefaultChannel
	}
	return &Emitter{
		hooks: filtered,
		cfg:   cfg,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the timestamp source and returns the emitter.
func (e *Emitter) WithClock(clock func() time.Time) *Emitter {
	if e != nil && clock != nil {
		e.now = clock
	}
	return e
}

func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit notifies every hook, returning the joined hook errors.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Verb) == "" {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = e.now()
	}
	event.Metadata = maps.Clone(event.Metadata)

	var errs []error
	for _, hook := range e.hooks {
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
