package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord reuses the go-users record so hosts already running go-users
// can forward document activity into their existing feeds.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink receives an activity record for every successful mutation.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}

// ActivitySinkFunc adapts a function into an ActivitySink.
type ActivitySinkFunc func(ctx context.Context, record ActivityRecord) error

// Log implements ActivitySink.
func (fn ActivitySinkFunc) Log(ctx context.Context, record ActivityRecord) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, record)
}
