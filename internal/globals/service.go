package globals

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/identity"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/validation"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/pkg/activity"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
)

// Service exposes the singleton document use-cases.
type Service interface {
	Find(ctx context.Context, req FindRequest) (*domain.Document, error)
	Update(ctx context.Context, req UpdateRequest) (*domain.Document, error)
	Versions(ctx context.Context, req VersionsRequest) (domain.Page[*versions.Version], error)
	RestoreVersion(ctx context.Context, req RestoreRequest) (*domain.Document, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

func WithDefaultMaxPerDoc(limit int) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.maxPerDoc = limit
		}
	}
}

type service struct {
	schema     *schema.Set
	records    Repository
	versions   *versions.Service
	validators map[string]*validation.Validator
	now        func() time.Time
	logger     interfaces.Logger
	activity   *activity.Emitter
	maxPerDoc  int
}

func NewService(set *schema.Set, records Repository, history *versions.Service, opts ...ServiceOption) (Service, error) {
	s := &service{
		schema:     set,
		records:    records,
		versions:   history,
		validators: make(map[string]*validation.Validator),
		now:        func() time.Time { return time.Now().UTC() },
		logger:     logging.NoOp(),
		activity:   activity.NewEmitter(nil, activity.Config{}),
		maxPerDoc:  schema.DefaultMaxPerDoc,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, global := range set.Globals() {
		validator, err := validation.Compile(global.Fields)
		if err != nil {
			return nil, fmt.Errorf("globals: %s: %w", global.Slug, err)
		}
		s.validators[global.Slug] = validator
	}
	return s, nil
}

func (s *service) global(slug string) (schema.Global, *validation.Validator, error) {
	global, ok := s.schema.Global(slug)
	if !ok {
		return schema.Global{}, nil, fmt.Errorf("%w: %q", ErrGlobalUnknown, slug)
	}
	return global, s.validators[slug], nil
}

// Find returns the global. A global that was never saved reads as an empty
// document carrying its deterministic id.
func (s *service) Find(ctx context.Context, req FindRequest) (*domain.Document, error) {
	global, _, err := s.global(req.Slug)
	if err != nil {
		return nil, err
	}
	if err := access.Evaluate(ctx, global.Access, access.Request{
		Operation:      schema.OperationRead,
		Slug:           global.Slug,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}
	record, err := s.load(ctx, global)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, global, record, req.Draft)
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (*domain.Document, error) {
	global, validator, err := s.global(req.Slug)
	if err != nil {
		return nil, err
	}
	if err := access.Evaluate(ctx, global.Access, access.Request{
		Operation:      schema.OperationUpdate,
		Slug:           global.Slug,
		Data:           req.Data,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}

	record, err := s.load(ctx, global)
	if err != nil {
		return nil, err
	}
	current, err := s.resolve(ctx, global, record, true)
	if err != nil {
		return nil, err
	}
	incoming, err := validation.Normalize(validation.Sanitize(global.Fields, domain.StripReserved(req.Data)))
	if err != nil {
		return nil, &validation.PayloadValidationError{Issues: []validation.ValidationIssue{{Message: err.Error()}}, Cause: err}
	}
	merged := current.Data
	if merged == nil {
		merged = map[string]any{}
	}
	for key, value := range incoming {
		merged[key] = value
	}
	return s.write(ctx, global, validator, record, merged, req.Draft, req.User, "update")
}

func (s *service) write(ctx context.Context, global schema.Global, validator *validation.Validator, record *Record, data map[string]any, requestedDraft bool, user *schema.User, verb string) (*domain.Document, error) {
	draft := requestedDraft && global.DraftsEnabled()
	if !record.exists() {
		data = validation.ApplyDefaults(global.Fields, data)
	}
	if err := validator.Validate(data, draft); err != nil {
		return nil, err
	}

	if draft {
		version, err := s.saveVersion(ctx, global, domain.StatusDraft, data, user)
		if err != nil {
			return nil, err
		}
		doc := version.Document()
		doc.CreatedAt = record.CreatedAt
		s.log(ctx, global.Slug, true).Debug("global draft saved", "version", version.Version)
		s.emit(ctx, verb, global.Slug, doc, user)
		return doc, nil
	}

	now := s.now()
	next := cloneRecord(record)
	next.Data = data
	next.UpdatedAt = now
	next.UpdatedBy = actorID(user)
	if global.DraftsEnabled() {
		next.Status = domain.StatusPublished
	}
	if global.Versioned() {
		version, err := s.saveVersion(ctx, global, domain.StatusPublished, data, user)
		if err != nil {
			return nil, err
		}
		next.Version = version.Version
	}

	var stored *Record
	var err error
	if record.exists() {
		stored, err = s.records.Update(ctx, next)
	} else {
		next.CreatedAt = now
		stored, err = s.records.Create(ctx, next)
	}
	if err != nil {
		return nil, err
	}
	doc := stored.Document()
	s.log(ctx, global.Slug, false).Debug("global published", "version", doc.Version)
	s.emit(ctx, verb, global.Slug, doc, user)
	return doc, nil
}

func (s *service) Versions(ctx context.Context, req VersionsRequest) (domain.Page[*versions.Version], error) {
	global, _, err := s.global(req.Slug)
	if err != nil {
		return domain.Page[*versions.Version]{}, err
	}
	if !global.Versioned() {
		return domain.Page[*versions.Version]{}, ErrVersioningDisabled
	}
	if err := access.Evaluate(ctx, global.Access, access.Request{
		Operation:      schema.OperationRead,
		Slug:           global.Slug,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return domain.Page[*versions.Version]{}, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	page := max(req.Page, 1)
	records, total, err := s.versions.List(ctx, versions.ListFilter{Parent: s.parent(global), Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return domain.Page[*versions.Version]{}, err
	}
	return domain.NewPage(records, total, limit, page), nil
}

func (s *service) RestoreVersion(ctx context.Context, req RestoreRequest) (*domain.Document, error) {
	global, validator, err := s.global(req.Slug)
	if err != nil {
		return nil, err
	}
	if !global.Versioned() {
		return nil, ErrVersioningDisabled
	}
	if req.VersionID == uuid.Nil {
		return nil, ErrVersionIDRequired
	}
	version, err := s.versions.Get(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}
	if version.ParentType != domain.KindGlobal || version.Parent != global.Slug {
		return nil, ErrVersionMismatch
	}
	if err := access.Evaluate(ctx, global.Access, access.Request{
		Operation:      schema.OperationUpdate,
		Slug:           global.Slug,
		Data:           version.Snapshot,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}
	record, err := s.load(ctx, global)
	if err != nil {
		return nil, err
	}
	data := validation.Sanitize(global.Fields, domain.CloneData(version.Snapshot))
	return s.write(ctx, global, validator, record, data, req.Draft, req.User, "restore")
}

// load returns the stored record or an unsaved placeholder.
func (s *service) load(ctx context.Context, global schema.Global) (*Record, error) {
	record, err := s.records.GetBySlug(ctx, global.Slug)
	if err == nil {
		return record, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	return &Record{
		ID:   identity.GlobalUUID(global.Slug),
		Slug: global.Slug,
		Data: map[string]any{},
	}, nil
}

func (s *service) resolve(ctx context.Context, global schema.Global, record *Record, draft bool) (*domain.Document, error) {
	doc := record.Document()
	if !draft || !global.DraftsEnabled() {
		return doc, nil
	}
	latest, err := s.versions.Latest(ctx, s.parent(global))
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.Version <= record.Version {
		return doc, nil
	}
	versionDoc := latest.Document()
	versionDoc.CreatedAt = record.CreatedAt
	return versionDoc, nil
}

func (s *service) saveVersion(ctx context.Context, global schema.Global, status domain.Status, data map[string]any, user *schema.User) (*versions.Version, error) {
	return s.versions.Save(ctx, versions.SaveRequest{
		Parent:    s.parent(global),
		Status:    status,
		Snapshot:  data,
		CreatedBy: actorID(user),
		MaxPerDoc: global.MaxVersions(s.maxPerDoc),
	})
}

func (s *service) parent(global schema.Global) versions.Parent {
	return versions.Parent{Kind: domain.KindGlobal, Slug: global.Slug, ID: identity.GlobalUUID(global.Slug)}
}

func (s *service) log(ctx context.Context, slug string, draft bool) interfaces.Logger {
	return logging.WithDocumentContext(s.logger.WithContext(ctx), logging.KindGlobal, slug, identity.GlobalUUID(slug).String(), draft)
}

func (s *service) emit(ctx context.Context, verb, slug string, doc *domain.Document, user *schema.User) {
	if s.activity == nil || !s.activity.Enabled() || doc == nil {
		return
	}
	event := activity.Event{
		Verb:           verb,
		ObjectType:     string(domain.KindGlobal) + ":" + slug,
		ObjectID:       doc.ID.String(),
		DefinitionCode: slug + ":" + verb,
		Metadata: map[string]any{
			"status":  string(doc.Status),
			"version": doc.Version,
		},
	}
	if user != nil {
		event.ActorID = user.ID.String()
		event.UserID = user.ID.String()
	}
	if err := s.activity.Emit(ctx, event); err != nil {
		s.log(ctx, slug, doc.Status == domain.StatusDraft).Warn("activity hook failed", "error", err)
	}
}

func (r *Record) exists() bool {
	return r != nil && !r.CreatedAt.IsZero()
}

func actorID(user *schema.User) *uuid.UUID {
	if user == nil || user.ID == uuid.Nil {
		return nil
	}
	id := user.ID
	return &id
}
