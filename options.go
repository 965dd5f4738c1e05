package cms

import (
	"time"

	"github.com/goliatone/go-cms-community/internal/di"
	"github.com/goliatone/go-cms-community/pkg/activity"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// Option overrides a dependency of the module.
type Option = di.Option

// WithBunDB stores documents in db. The caller keeps ownership of db.
func WithBunDB(db *bun.DB) Option {
	return di.WithBunDB(db)
}

func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return di.WithCache(service, serializer)
}

func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return di.WithLoggerProvider(provider)
}

func WithActivityHooks(hooks ...activity.Hook) Option {
	return di.WithActivityHooks(hooks...)
}

// WithActivitySink forwards mutation events to a go-users activity sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return di.WithActivitySink(sink)
}

func WithClock(clock func() time.Time) Option {
	return di.WithClock(clock)
}
