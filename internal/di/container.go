package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/globals"
	"github.com/goliatone/go-cms-community/internal/graphql"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/logging/gologger"
	"github.com/goliatone/go-cms-community/internal/markdown"
	"github.com/goliatone/go-cms-community/internal/migrations"
	"github.com/goliatone/go-cms-community/internal/relationships"
	"github.com/goliatone/go-cms-community/internal/runtimeconfig"
	"github.com/goliatone/go-cms-community/internal/users"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/pkg/activity"
	"github.com/goliatone/go-cms-community/pkg/activity/usersink"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-cms-community/pkg/storage"
	"github.com/goliatone/go-cms-community/schema"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Container wires repositories and services for one schema set.
type Container struct {
	Config runtimeconfig.Config

	schema *schema.Set

	loggerProvider interfaces.LoggerProvider

	bunDB         *bun.DB
	ownsDB        bool
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	collectionRepo collections.Repository
	globalRepo     globals.Repository
	versionRepo    versions.Repository
	userRepo       users.Repository

	activityHooks activity.Hooks
	activity      *activity.Emitter
	now           func() time.Time

	versionSvc    *versions.Service
	collectionSvc collections.Service
	globalSvc     globals.Service
	userSvc       users.Service
	schemaWriter  *graphql.Writer
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB uses db instead of opening the configured storage. The caller keeps
// ownership of db.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the default cache service.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithLoggerProvider overrides the configured logger provider.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithActivityHooks registers hooks that receive mutation events.
func WithActivityHooks(hooks ...activity.Hook) Option {
	return func(c *Container) {
		c.activityHooks = append(c.activityHooks, hooks...)
	}
}

// WithActivitySink forwards mutation events to a go-users activity sink.
func WithActivitySink(sink interfaces.ActivitySink) Option {
	return func(c *Container) {
		if sink != nil {
			c.activityHooks = append(c.activityHooks, usersink.Hook{Sink: sink})
		}
	}
}

// WithClock overrides the clock used by every service.
func WithClock(clock func() time.Time) Option {
	return func(c *Container) {
		if clock != nil {
			c.now = clock
		}
	}
}

// NewContainer validates cfg, opens storage when a SQL provider is selected
// and builds the services.
func NewContainer(ctx context.Context, cfg runtimeconfig.Config, set *schema.Set, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if set == nil {
		return nil, errors.New("di: schema set is required")
	}

	c := &Container{
		Config:   cfg,
		schema:   set,
		cacheTTL: cfg.Cache.DefaultTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = time.Minute
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	if err := c.configureStorage(ctx); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()

	if err := c.configureServices(); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}
	provider, err := gologger.NewProvider(gologger.Config{
		Level:     c.Config.Logging.Level,
		Format:    c.Config.Logging.Format,
		AddSource: c.Config.Logging.AddSource,
		Focus:     c.Config.Logging.Focus,
	})
	if err != nil {
		return err
	}
	c.loggerProvider = provider
	return nil
}

func (c *Container) configureStorage(ctx context.Context) error {
	if c.bunDB != nil {
		return nil
	}
	var driver string
	switch c.Config.StorageProvider() {
	case runtimeconfig.StorageSQLite:
		driver = storage.DriverSQLite
	case runtimeconfig.StoragePostgres:
		driver = storage.DriverPostgres
	default:
		return nil
	}
	db, err := storage.Open(ctx, storage.Config{
		Driver:       driver,
		DSN:          c.Config.Storage.DSN,
		MaxOpenConns: c.Config.Storage.MaxOpenConns,
	})
	if err != nil {
		return fmt.Errorf("di: open storage: %w", err)
	}
	c.bunDB = db
	c.ownsDB = true
	logging.RootLogger(c.loggerProvider).Info("storage opened", "provider", c.Config.StorageProvider())
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Cache.Enabled || c.bunDB == nil {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		cfg.TTL = c.cacheTTL
		service, err := repocache.NewCacheService(cfg)
		if err != nil {
			logging.RootLogger(c.loggerProvider).Warn("repository cache disabled", "error", err)
			return
		}
		c.cacheService = service
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		c.collectionRepo = collections.NewMemoryRepository()
		c.globalRepo = globals.NewMemoryRepository()
		c.versionRepo = versions.NewMemoryRepository()
		c.userRepo = users.NewMemoryRepository()
		return
	}

	if c.cacheService != nil {
		c.collectionRepo = collections.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
		c.globalRepo = globals.NewBunRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	} else {
		c.collectionRepo = collections.NewBunRepository(c.bunDB)
		c.globalRepo = globals.NewBunRepository(c.bunDB)
	}
	c.versionRepo = versions.NewBunRepository(c.bunDB)
	c.userRepo = users.NewBunRepository(c.bunDB)
}

func (c *Container) configureServices() error {
	c.activity = activity.NewEmitter(c.activityHooks, activity.Config{Enabled: c.Config.Features.Activity}).WithClock(c.now)
	c.versionSvc = versions.NewService(c.versionRepo, versions.WithClock(c.now))

	collectionSvc, err := collections.NewService(c.schema, c.collectionRepo, c.versionSvc,
		collections.WithClock(c.now),
		collections.WithLogger(logging.CollectionsLogger(c.loggerProvider)),
		collections.WithActivityEmitter(c.activity),
		collections.WithDefaultMaxPerDoc(c.Config.Versions.MaxPerDoc),
	)
	if err != nil {
		return err
	}
	c.collectionSvc = collectionSvc

	globalSvc, err := globals.NewService(c.schema, c.globalRepo, c.versionSvc,
		globals.WithClock(c.now),
		globals.WithLogger(logging.GlobalsLogger(c.loggerProvider)),
		globals.WithActivityEmitter(c.activity),
		globals.WithDefaultMaxPerDoc(c.Config.Versions.MaxPerDoc),
	)
	if err != nil {
		return err
	}
	c.globalSvc = globalSvc

	if c.schema.AuthSlug() != "" {
		userSvc, err := users.NewService(c.schema, c.userRepo,
			users.WithClock(c.now),
			users.WithLogger(logging.UsersLogger(c.loggerProvider)),
			users.WithActivityEmitter(c.activity),
		)
		if err != nil {
			return err
		}
		c.userSvc = userSvc
	}

	c.schemaWriter = graphql.NewWriter(logging.GraphQLLogger(c.loggerProvider))
	return nil
}

// Migrate applies the embedded SQL migrations. It is a no-op for memory storage.
func (c *Container) Migrate(ctx context.Context) ([]string, error) {
	if c.bunDB == nil {
		return nil, nil
	}
	return migrations.NewRunner(c.bunDB, logging.RootLogger(c.loggerProvider)).Up(ctx)
}

// Close releases the database when the container opened it.
func (c *Container) Close() error {
	if c == nil || c.bunDB == nil || !c.ownsDB {
		return nil
	}
	err := c.bunDB.Close()
	c.bunDB = nil
	return err
}

// Populator returns a relationship populator whose lookups run as user.
func (c *Container) Populator(user *schema.User, overrideAccess bool) *relationships.Populator {
	loader := relationships.LoaderFunc(func(ctx context.Context, collection string, id uuid.UUID, draft bool) (*domain.Document, error) {
		var (
			doc *domain.Document
			err error
		)
		if c.IsAuthCollection(collection) {
			doc, err = c.FindUser(ctx, id, user, overrideAccess)
		} else {
			doc, err = c.collectionSvc.FindByID(ctx, collections.FindByIDRequest{
				Request:    collections.Request{Draft: draft, User: user, OverrideAccess: overrideAccess},
				Collection: collection,
				ID:         id,
			})
		}
		switch {
		case err == nil:
			return doc, nil
		case collections.IsNotFound(err), users.IsNotFound(err),
			errors.Is(err, access.ErrForbidden), errors.Is(err, collections.ErrAuthCollection):
			return nil, nil
		default:
			return nil, err
		}
	})
	return relationships.NewPopulator(c.schema, loader)
}

// IsAuthCollection reports whether slug is the auth collection served by the
// users service.
func (c *Container) IsAuthCollection(slug string) bool {
	auth := c.schema.AuthSlug()
	return auth != "" && auth == strings.TrimSpace(slug) && c.userSvc != nil
}

// FindUser reads an account of the auth collection as a document, evaluating
// the collection's read access unless overrideAccess is set.
func (c *Container) FindUser(ctx context.Context, id uuid.UUID, user *schema.User, overrideAccess bool) (*domain.Document, error) {
	slug := c.schema.AuthSlug()
	collection, _ := c.schema.Collection(slug)
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationRead,
		Slug:           slug,
		ID:             id.String(),
		User:           user,
		OverrideAccess: overrideAccess,
	}); err != nil {
		return nil, err
	}
	found, err := c.userSvc.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return found.Document(), nil
}

// MarkdownImporter returns an importer that writes through the collections service.
func (c *Container) MarkdownImporter(opts markdown.ParseOptions) *markdown.Importer {
	return markdown.NewImporter(newMarkdownStore(c.collectionSvc), markdown.NewGoldmarkParser(opts), logging.RootLogger(c.loggerProvider))
}

func (c *Container) Schema() *schema.Set {
	return c.schema
}

func (c *Container) DB() *bun.DB {
	return c.bunDB
}

func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

func (c *Container) Activity() *activity.Emitter {
	return c.activity
}

func (c *Container) CollectionService() collections.Service {
	return c.collectionSvc
}

func (c *Container) GlobalService() globals.Service {
	return c.globalSvc
}

// UserService is nil when the schema has no auth collection.
func (c *Container) UserService() users.Service {
	return c.userSvc
}

func (c *Container) VersionService() *versions.Service {
	return c.versionSvc
}

func (c *Container) SchemaWriter() *graphql.Writer {
	return c.schemaWriter
}
