package activity_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-cms-community/pkg/activity"
)

func TestEmitterDisabledWithoutHooks(t *testing.T) {
	emitter := activity.NewEmitter(nil, activity.Config{Enabled: true})
	if emitter.Enabled() {
		t.Fatal("emitter without hooks must be disabled")
	}
	if err := emitter.Emit(context.Background(), activity.Event{Verb: "create"}); err != nil {
		t.Fatalf("disabled emitter returned %v", err)
	}
}

func TestEmitterStampsEvents(t *testing.T) {
	var received []activity.Event
	hook := activity.HookFunc(func(_ context.Context, event activity.Event) error {
		received = append(received, event)
		return nil
	})
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	emitter := activity.NewEmitter(activity.Hooks{hook, nil}, activity.Config{Enabled: true}).WithClock(func() time.Time { return now })

	if err := emitter.Emit(context.Background(), activity.Event{Verb: "create", ObjectType: "collection:posts"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if err := emitter.Emit(context.Background(), activity.Event{}); err != nil {
		t.Fatalf("emit empty: %v", err)
	}
	if len(received) != 1 {
		t.Fatalf("expected one event, got %d", len(received))
	}
	if received[0].Channel != activity.DefaultChannel || !received[0].OccurredAt.Equal(now) {
		t.Fatalf("event not stamped: %+v", received[0])
	}
}

func TestEmitterJoinsHookErrors(t *testing.T) {
	boom := errors.New("boom")
	failing := activity.HookFunc(func(context.Context, activity.Event) error { return boom })
	called := false
	ok := activity.HookFunc(func(context.Context, activity.Event) error {
		called = true
		return nil
	})
	emitter := activity.NewEmitter(activity.Hooks{failing, ok}, activity.Config{Enabled: true, Channel: "community"})
	err := emitter.Emit(context.Background(), activity.Event{Verb: "delete"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected hook error, got %v", err)
	}
	if !called {
		t.Fatal("later hooks must still run after a failure")
	}
}
