package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/globals"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/relationships"
	"github.com/goliatone/go-cms-community/internal/users"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-cms-community/schema"
)

// PopulatorFactory builds a relationship populator acting as user.
type PopulatorFactory func(user *schema.User, overrideAccess bool) *relationships.Populator

// API registers the REST endpoints.
type API struct {
	basePath     string
	schema       *schema.Set
	collections  collections.Service
	globals      globals.Service
	users        users.Service
	populator    PopulatorFactory
	defaultDepth int
	maxDepth     int
	logger       interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(set *schema.Set, opts ...Option) *API {
	api := &API{
		basePath: "/api",
		schema:   set,
		maxDepth: 10,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

func WithCollectionService(service collections.Service) Option {
	return func(api *API) {
		api.collections = service
	}
}

func WithGlobalService(service globals.Service) Option {
	return func(api *API) {
		api.globals = service
	}
}

// WithUserService enables Basic authentication and the login route.
func WithUserService(service users.Service) Option {
	return func(api *API) {
		api.users = service
	}
}

func WithPopulator(factory PopulatorFactory) Option {
	return func(api *API) {
		api.populator = factory
	}
}

// WithDepth sets the relationship depth used when a request omits ?depth.
func WithDepth(defaultDepth, maxDepth int) Option {
	return func(api *API) {
		api.defaultDepth = defaultDepth
		api.maxDepth = maxDepth
	}
}

func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches the endpoints to the provided mux.
func (api *API) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api == nil || api.schema == nil {
		return fmt.Errorf("http: api is not configured")
	}

	base := joinPath(api.basePath, "")
	api.registerAuthRoutes(mux, base)
	api.registerGlobalRoutes(mux, base)
	api.registerCollectionRoutes(mux, base)
	return nil
}

// Handler returns a mux with every endpoint registered.
func (api *API) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	if err := api.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}
