package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/collections"
	"github.com/goliatone/go-cms-community/internal/di"
	"github.com/goliatone/go-cms-community/internal/globals"
	"github.com/goliatone/go-cms-community/internal/graphql"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/relationships"
	"github.com/goliatone/go-cms-community/internal/users"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
)

// Module represents the top level CMS runtime façade. Its methods form the
// local data API: trusted server code whose access checks are skipped unless
// a call sets OverrideAccess to false.
type Module struct {
	cfg       Config
	container *di.Container
	output    io.Writer
	logger    interfaces.Logger
}

// New constructs a CMS module using the provided configuration and optional DI overrides.
func New(ctx context.Context, cfg Config, opts ...Option) (*Module, error) {
	set, err := schema.NewSet(cfg.Collections, cfg.Globals)
	if err != nil {
		return nil, err
	}
	container, err := di.NewContainer(ctx, cfg.Config, set, opts...)
	if err != nil {
		return nil, err
	}
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	return &Module{
		cfg:       cfg,
		container: container,
		output:    output,
		logger:    logging.RootLogger(container.LoggerProvider()),
	}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Schema returns the validated content model.
func (m *Module) Schema() *schema.Set {
	return m.container.Schema()
}

// Logger returns the root "cms" logger.
func (m *Module) Logger() interfaces.Logger {
	return m.logger
}

// Output is the writer startup hooks print to.
func (m *Module) Output() io.Writer {
	return m.output
}

// Users returns the auth collection service.
func (m *Module) Users() UserService {
	return m.container.UserService()
}

// GraphQLSchema renders the SDL for the content model.
func (m *Module) GraphQLSchema() string {
	return graphql.Generate(m.Schema())
}

// Init migrates storage, writes the GraphQL schema file and runs OnInit.
func (m *Module) Init(ctx context.Context) error {
	applied, err := m.container.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("cms init: migrate: %w", err)
	}
	if len(applied) > 0 {
		m.logger.Info("storage migrated", "migrations", len(applied))
	}

	if graphQL := m.cfg.GraphQL; !graphQL.Disable {
		if err := m.container.SchemaWriter().Write(ctx, m.Schema(), graphQL.SchemaOutputFile); err != nil {
			return fmt.Errorf("cms init: graphql schema: %w", err)
		}
	}

	if m.cfg.OnInit != nil {
		if err := m.cfg.OnInit(ctx, m); err != nil {
			return fmt.Errorf("cms init: on init: %w", err)
		}
	}
	m.logger.Debug("cms initialised")
	return nil
}

// Close releases storage opened by the module.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}

// Create stores a new document. The auth collection is routed to the users service.
func (m *Module) Create(ctx context.Context, opts CreateOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	if m.isAuthCollection(opts.Collection) {
		return m.createUser(ctx, opts.Collection, opts.Data, user, override)
	}
	doc, err := m.container.CollectionService().Create(ctx, collections.CreateRequest{
		Request:    collections.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Collection: opts.Collection,
		Data:       m.depopulate(opts.Collection, opts.Data),
	})
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
}

// Update merges data onto the latest revision. With Draft set on a drafts
// collection only a new draft version is written.
func (m *Module) Update(ctx context.Context, opts UpdateOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	doc, err := m.container.CollectionService().Update(ctx, collections.UpdateRequest{
		Request:    collections.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Collection: opts.Collection,
		ID:         opts.ID,
		Data:       m.depopulate(opts.Collection, opts.Data),
	})
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
}

// FindByID reads one document; Draft returns the newest version when it is
// ahead of the published record.
func (m *Module) FindByID(ctx context.Context, opts FindByIDOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	if m.isAuthCollection(opts.Collection) {
		return m.findUser(ctx, opts.ID, user, override)
	}
	doc, err := m.container.CollectionService().FindByID(ctx, collections.FindByIDRequest{
		Request:    collections.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Collection: opts.Collection,
		ID:         opts.ID,
	})
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
}

// Find lists documents of a collection, newest first.
func (m *Module) Find(ctx context.Context, opts FindOptions) (Page[*Document], error) {
	user, override := m.caller(ctx, opts.CallOptions)
	page, err := m.container.CollectionService().Find(ctx, collections.FindRequest{
		Request:    collections.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Collection: opts.Collection,
		Where:      opts.Where,
		Limit:      opts.Limit,
		Page:       opts.Page,
	})
	if err != nil {
		return Page[*Document]{}, err
	}
	for i, doc := range page.Docs {
		populated, err := m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
		if err != nil {
			return Page[*Document]{}, err
		}
		page.Docs[i] = populated
	}
	return page, nil
}

// Delete removes the document and its versions, returning what was deleted.
func (m *Module) Delete(ctx context.Context, opts DeleteOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	return m.container.CollectionService().Delete(ctx, collections.DeleteRequest{
		Request:    collections.Request{User: user, OverrideAccess: override},
		Collection: opts.Collection,
		ID:         opts.ID,
	})
}

// FindVersions lists the history of a document, newest first.
func (m *Module) FindVersions(ctx context.Context, opts FindVersionsOptions) (Page[*Version], error) {
	user, override := m.caller(ctx, opts.CallOptions)
	return m.container.CollectionService().Versions(ctx, collections.VersionsRequest{
		Request:    collections.Request{User: user, OverrideAccess: override},
		Collection: opts.Collection,
		ID:         opts.ID,
		Limit:      opts.Limit,
		Page:       opts.Page,
	})
}

// RestoreVersion writes a stored snapshot back as a new version.
func (m *Module) RestoreVersion(ctx context.Context, opts RestoreVersionOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	doc, err := m.container.CollectionService().RestoreVersion(ctx, collections.RestoreRequest{
		Request:    collections.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Collection: opts.Collection,
		VersionID:  opts.VersionID,
	})
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
}

// FindGlobal reads a global. A global never saved reads as an empty document.
func (m *Module) FindGlobal(ctx context.Context, opts FindGlobalOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	doc, err := m.container.GlobalService().Find(ctx, globals.FindRequest{
		Request: globals.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Slug:    opts.Slug,
	})
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
}

// UpdateGlobal saves a global, as a draft version when Draft is set.
func (m *Module) UpdateGlobal(ctx context.Context, opts UpdateGlobalOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	data := opts.Data
	if global, ok := m.Schema().Global(opts.Slug); ok {
		data = relationships.Depopulate(global.Fields, data)
	}
	doc, err := m.container.GlobalService().Update(ctx, globals.UpdateRequest{
		Request: globals.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Slug:    opts.Slug,
		Data:    data,
	})
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
}

// FindGlobalVersions lists the history of a global, newest first.
func (m *Module) FindGlobalVersions(ctx context.Context, opts FindGlobalVersionsOptions) (Page[*Version], error) {
	user, override := m.caller(ctx, opts.CallOptions)
	return m.container.GlobalService().Versions(ctx, globals.VersionsRequest{
		Request: globals.Request{User: user, OverrideAccess: override},
		Slug:    opts.Slug,
		Limit:   opts.Limit,
		Page:    opts.Page,
	})
}

// RestoreGlobalVersion writes a stored global snapshot back as a new version.
func (m *Module) RestoreGlobalVersion(ctx context.Context, opts RestoreGlobalVersionOptions) (*Document, error) {
	user, override := m.caller(ctx, opts.CallOptions)
	doc, err := m.container.GlobalService().RestoreVersion(ctx, globals.RestoreRequest{
		Request:   globals.Request{Draft: opts.Draft, User: user, OverrideAccess: override},
		Slug:      opts.Slug,
		VersionID: opts.VersionID,
	})
	if err != nil {
		return nil, err
	}
	return m.populate(ctx, doc, opts.Depth, opts.Draft, user, override)
}

// caller resolves the acting user, falling back to the user on ctx.
func (m *Module) caller(ctx context.Context, opts CallOptions) (*schema.User, bool) {
	user := opts.User
	if user == nil {
		user = access.UserFromContext(ctx)
	}
	override := true
	if opts.OverrideAccess != nil {
		override = *opts.OverrideAccess
	}
	return user, override
}

func (m *Module) depth(requested *int) int {
	depth := m.cfg.Depth.Default
	if requested != nil {
		depth = *requested
	}
	if depth < 0 {
		depth = 0
	}
	if limit := m.cfg.Depth.Max; limit > 0 && depth > limit {
		depth = limit
	}
	return depth
}

func (m *Module) populate(ctx context.Context, doc *Document, depth *int, draft bool, user *schema.User, override bool) (*Document, error) {
	return m.container.Populator(user, override).Populate(ctx, doc, m.depth(depth), draft)
}

func (m *Module) depopulate(slug string, data map[string]any) map[string]any {
	collection, ok := m.Schema().Collection(slug)
	if !ok {
		return data
	}
	return relationships.Depopulate(collection.Fields, data)
}

func (m *Module) isAuthCollection(slug string) bool {
	return m.container.IsAuthCollection(slug)
}

func (m *Module) createUser(ctx context.Context, slug string, data map[string]any, user *schema.User, override bool) (*Document, error) {
	collection, _ := m.Schema().Collection(slug)
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationCreate,
		Slug:           slug,
		Data:           data,
		User:           user,
		OverrideAccess: override,
	}); err != nil {
		return nil, err
	}
	email, _ := data["email"].(string)
	password, _ := data["password"].(string)
	created, err := m.Users().Create(ctx, users.CreateRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return created.Document(), nil
}

func (m *Module) findUser(ctx context.Context, id uuid.UUID, user *schema.User, override bool) (*Document, error) {
	return m.container.FindUser(ctx, id, user, override)
}

// IsNotFound reports whether err is a missing document, global, version or user.
func IsNotFound(err error) bool {
	return collections.IsNotFound(err) || globals.IsNotFound(err) || versions.IsNotFound(err) || users.IsNotFound(err)
}

// IsForbidden reports whether err is an access denial.
func IsForbidden(err error) bool {
	return errors.Is(err, access.ErrForbidden)
}
