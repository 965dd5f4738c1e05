package collections

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/goliatone/go-cms-community/internal/access"
	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/validation"
	"github.com/goliatone/go-cms-community/internal/versions"
	"github.com/goliatone/go-cms-community/pkg/activity"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
)

// Service exposes the document use-cases of every configured collection.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*domain.Document, error)
	Update(ctx context.Context, req UpdateRequest) (*domain.Document, error)
	FindByID(ctx context.Context, req FindByIDRequest) (*domain.Document, error)
	Find(ctx context.Context, req FindRequest) (domain.Page[*domain.Document], error)
	Delete(ctx context.Context, req DeleteRequest) (*domain.Document, error)
	Versions(ctx context.Context, req VersionsRequest) (domain.Page[*versions.Version], error)
	RestoreVersion(ctx context.Context, req RestoreRequest) (*domain.Document, error)
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger sets the module logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithActivityEmitter wires the activity emitter used for activity records.
func WithActivityEmitter(emitter *activity.Emitter) ServiceOption {
	return func(s *service) {
		if emitter != nil {
			s.activity = emitter
		}
	}
}

// WithDefaultMaxPerDoc sets the retention used by collections that do not declare one.
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
	id         IDGenerator
	logger     interfaces.Logger
	activity   *activity.Emitter
	maxPerDoc  int
}

// NewService compiles a validator per collection and returns the service.
func NewService(set *schema.Set, records Repository, history *versions.Service, opts ...ServiceOption) (Service, error) {
	s := &service{
		schema:     set,
		records:    records,
		versions:   history,
		validators: make(map[string]*validation.Validator),
		now:        func() time.Time { return time.Now().UTC() },
		id:         uuid.New,
		logger:     logging.NoOp(),
		activity:   activity.NewEmitter(nil, activity.Config{}),
		maxPerDoc:  schema.DefaultMaxPerDoc,
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, collection := range set.Collections() {
		if collection.Auth {
			continue
		}
		validator, err := validation.Compile(collection.Fields)
		if err != nil {
			return nil, fmt.Errorf("collections: %s: %w", collection.Slug, err)
		}
		s.validators[collection.Slug] = validator
	}
	return s, nil
}

func (s *service) collection(slug string) (schema.Collection, *validation.Validator, error) {
	collection, ok := s.schema.Collection(slug)
	if !ok {
		return schema.Collection{}, nil, fmt.Errorf("%w: %q", ErrCollectionUnknown, slug)
	}
	if collection.Auth {
		return schema.Collection{}, nil, fmt.Errorf("%w: %q", ErrAuthCollection, slug)
	}
	return collection, s.validators[slug], nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*domain.Document, error) {
	collection, validator, err := s.collection(req.Collection)
	if err != nil {
		return nil, err
	}
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationCreate,
		Slug:           collection.Slug,
		Data:           req.Data,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}

	draft := req.Draft && collection.DraftsEnabled()
	data, err := prepare(collection.Fields, req.Data)
	if err != nil {
		return nil, err
	}
	data = validation.ApplyDefaults(collection.Fields, data)
	if err := validator.Validate(data, draft); err != nil {
		return nil, err
	}
	if !draft {
		if err := s.checkUnique(ctx, collection, uuid.Nil, data); err != nil {
			return nil, err
		}
	}

	now := s.now()
	record := &Record{
		ID:         s.id(),
		Collection: collection.Slug,
		Data:       data,
		CreatedBy:  actorID(req.User),
		UpdatedBy:  actorID(req.User),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if collection.DraftsEnabled() {
		record.Status = domain.StatusFor(draft)
	}
	if collection.Versioned() {
		version, err := s.saveVersion(ctx, collection, record.ID, record.statusOrPublished(), data, req.User)
		if err != nil {
			return nil, err
		}
		record.Version = version.Version
	}

	created, err := s.records.Create(ctx, record)
	if err != nil {
		if collection.Versioned() {
			if cleanupErr := s.versions.DeleteAll(ctx, s.parent(collection, record.ID)); cleanupErr != nil {
				return nil, errors.Join(err, cleanupErr)
			}
		}
		return nil, err
	}

	doc := created.Document()
	s.log(ctx, collection.Slug, doc.ID, draft).Debug("collection document created")
	s.emit(ctx, "create", collection.Slug, doc, req.User)
	return doc, nil
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (*domain.Document, error) {
	collection, validator, err := s.collection(req.Collection)
	if err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, ErrDocumentIDRequired
	}
	existing, err := s.records.GetByID(ctx, collection.Slug, req.ID)
	if err != nil {
		return nil, err
	}
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationUpdate,
		Slug:           collection.Slug,
		ID:             req.ID.String(),
		Data:           req.Data,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}

	base, err := s.latestData(ctx, collection, existing)
	if err != nil {
		return nil, err
	}
	incoming, err := prepare(collection.Fields, req.Data)
	if err != nil {
		return nil, err
	}
	merged := base
	for key, value := range incoming {
		merged[key] = value
	}
	return s.write(ctx, collection, validator, existing, merged, req.Draft, req.User, "update")
}

// write stores data either as a new draft version, leaving the main record
// untouched, or as the published main record.
func (s *service) write(ctx context.Context, collection schema.Collection, validator *validation.Validator, existing *Record, data map[string]any, requestedDraft bool, user *schema.User, verb string) (*domain.Document, error) {
	draft := requestedDraft && collection.DraftsEnabled()
	if err := validator.Validate(data, draft); err != nil {
		return nil, err
	}

	if draft {
		version, err := s.saveVersion(ctx, collection, existing.ID, domain.StatusDraft, data, user)
		if err != nil {
			return nil, err
		}
		doc := version.Document()
		doc.CreatedAt = existing.CreatedAt
		s.log(ctx, collection.Slug, doc.ID, true).Debug("collection draft saved", "version", version.Version)
		s.emit(ctx, verb, collection.Slug, doc, user)
		return doc, nil
	}

	if err := s.checkUnique(ctx, collection, existing.ID, data); err != nil {
		return nil, err
	}
	record := cloneRecord(existing)
	record.Data = data
	record.UpdatedBy = actorID(user)
	record.UpdatedAt = s.now()
	if collection.DraftsEnabled() {
		record.Status = domain.StatusPublished
	}
	if collection.Versioned() {
		version, err := s.saveVersion(ctx, collection, record.ID, domain.StatusPublished, data, user)
		if err != nil {
			return nil, err
		}
		record.Version = version.Version
	}
	updated, err := s.records.Update(ctx, record)
	if err != nil {
		return nil, err
	}
	doc := updated.Document()
	s.log(ctx, collection.Slug, doc.ID, false).Debug("collection document published", "version", doc.Version)
	s.emit(ctx, verb, collection.Slug, doc, user)
	return doc, nil
}

func (s *service) FindByID(ctx context.Context, req FindByIDRequest) (*domain.Document, error) {
	collection, _, err := s.collection(req.Collection)
	if err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, ErrDocumentIDRequired
	}
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationRead,
		Slug:           collection.Slug,
		ID:             req.ID.String(),
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}
	record, err := s.records.GetByID(ctx, collection.Slug, req.ID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, collection, record, req.Draft)
}

func (s *service) Find(ctx context.Context, req FindRequest) (domain.Page[*domain.Document], error) {
	collection, _, err := s.collection(req.Collection)
	if err != nil {
		return domain.Page[*domain.Document]{}, err
	}
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationRead,
		Slug:           collection.Slug,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return domain.Page[*domain.Document]{}, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultLimit
	}
	page := max(req.Page, 1)

	if len(req.Where) == 0 && !req.Draft {
		records, total, err := s.records.List(ctx, ListQuery{Collection: collection.Slug, Limit: limit, Offset: (page - 1) * limit})
		if err != nil {
			return domain.Page[*domain.Document]{}, err
		}
		docs := make([]*domain.Document, 0, len(records))
		for _, record := range records {
			docs = append(docs, record.Document())
		}
		return domain.NewPage(docs, total, limit, page), nil
	}

	records, _, err := s.records.List(ctx, ListQuery{Collection: collection.Slug})
	if err != nil {
		return domain.Page[*domain.Document]{}, err
	}
	matched := make([]*domain.Document, 0, len(records))
	for _, record := range records {
		doc, err := s.resolve(ctx, collection, record, req.Draft)
		if err != nil {
			return domain.Page[*domain.Document]{}, err
		}
		if matchesWhere(doc, req.Where) {
			matched = append(matched, doc)
		}
	}
	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))
	return domain.NewPage(matched[start:end], len(matched), limit, page), nil
}

func (s *service) Delete(ctx context.Context, req DeleteRequest) (*domain.Document, error) {
	collection, _, err := s.collection(req.Collection)
	if err != nil {
		return nil, err
	}
	if req.ID == uuid.Nil {
		return nil, ErrDocumentIDRequired
	}
	record, err := s.records.GetByID(ctx, collection.Slug, req.ID)
	if err != nil {
		return nil, err
	}
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationDelete,
		Slug:           collection.Slug,
		ID:             req.ID.String(),
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}
	// History is removed before the record so a failed delete never orphans versions.
	if collection.Versioned() {
		if err := s.versions.DeleteAll(ctx, s.parent(collection, record.ID)); err != nil {
			return nil, err
		}
	}
	if err := s.records.Delete(ctx, record.ID); err != nil {
		return nil, err
	}
	doc := record.Document()
	s.log(ctx, collection.Slug, doc.ID, false).Debug("collection document deleted")
	s.emit(ctx, "delete", collection.Slug, doc, req.User)
	return doc, nil
}

func (s *service) Versions(ctx context.Context, req VersionsRequest) (domain.Page[*versions.Version], error) {
	collection, _, err := s.collection(req.Collection)
	if err != nil {
		return domain.Page[*versions.Version]{}, err
	}
	if !collection.Versioned() {
		return domain.Page[*versions.Version]{}, ErrVersioningDisabled
	}
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationRead,
		Slug:           collection.Slug,
		ID:             req.ID.String(),
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
	parent := versions.Parent{Kind: domain.KindCollection, Slug: collection.Slug, ID: req.ID}
	records, total, err := s.versions.List(ctx, versions.ListFilter{Parent: parent, Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return domain.Page[*versions.Version]{}, err
	}
	return domain.NewPage(records, total, limit, page), nil
}

func (s *service) RestoreVersion(ctx context.Context, req RestoreRequest) (*domain.Document, error) {
	collection, validator, err := s.collection(req.Collection)
	if err != nil {
		return nil, err
	}
	if !collection.Versioned() {
		return nil, ErrVersioningDisabled
	}
	if req.VersionID == uuid.Nil {
		return nil, ErrVersionIDRequired
	}
	version, err := s.versions.Get(ctx, req.VersionID)
	if err != nil {
		return nil, err
	}
	if version.ParentType != domain.KindCollection || version.Parent != collection.Slug {
		return nil, ErrVersionMismatch
	}
	existing, err := s.records.GetByID(ctx, collection.Slug, version.ParentID)
	if err != nil {
		return nil, err
	}
	if err := access.Evaluate(ctx, collection.Access, access.Request{
		Operation:      schema.OperationUpdate,
		Slug:           collection.Slug,
		ID:             existing.ID.String(),
		Data:           version.Snapshot,
		User:           req.User,
		OverrideAccess: req.OverrideAccess,
	}); err != nil {
		return nil, err
	}
	data := validator.Sanitize(domain.CloneData(version.Snapshot))
	return s.write(ctx, collection, validator, existing, data, req.Draft, req.User, "restore")
}

// resolve returns the main record, or the latest version when a draft read
// finds one newer than the published state.
func (s *service) resolve(ctx context.Context, collection schema.Collection, record *Record, draft bool) (*domain.Document, error) {
	doc := record.Document()
	if !draft || !collection.DraftsEnabled() {
		return doc, nil
	}
	latest, err := s.versions.Latest(ctx, s.parent(collection, record.ID))
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

func (s *service) latestData(ctx context.Context, collection schema.Collection, record *Record) (map[string]any, error) {
	doc, err := s.resolve(ctx, collection, record, true)
	if err != nil {
		return nil, err
	}
	if doc.Data == nil {
		return map[string]any{}, nil
	}
	return doc.Data, nil
}

func (s *service) saveVersion(ctx context.Context, collection schema.Collection, id uuid.UUID, status domain.Status, data map[string]any, user *schema.User) (*versions.Version, error) {
	return s.versions.Save(ctx, versions.SaveRequest{
		Parent:    s.parent(collection, id),
		Status:    status,
		Snapshot:  data,
		CreatedBy: actorID(user),
		MaxPerDoc: collection.MaxVersions(s.maxPerDoc),
	})
}

func (s *service) parent(collection schema.Collection, id uuid.UUID) versions.Parent {
	return versions.Parent{Kind: domain.KindCollection, Slug: collection.Slug, ID: id}
}

func (s *service) checkUnique(ctx context.Context, collection schema.Collection, self uuid.UUID, data map[string]any) error {
	unique := make([]schema.Field, 0)
	for _, field := range collection.Fields {
		if field.Unique && data[field.Name] != nil {
			unique = append(unique, field)
		}
	}
	if len(unique) == 0 {
		return nil
	}
	records, _, err := s.records.List(ctx, ListQuery{Collection: collection.Slug})
	if err != nil {
		return err
	}
	for _, record := range records {
		if record.ID == self {
			continue
		}
		for _, field := range unique {
			if reflect.DeepEqual(record.Data[field.Name], data[field.Name]) {
				return fmt.Errorf("%w: %s.%s", ErrUniqueValueConflict, collection.Slug, field.Name)
			}
		}
	}
	return nil
}

func (s *service) log(ctx context.Context, slug string, id uuid.UUID, draft bool) interfaces.Logger {
	return logging.WithDocumentContext(s.logger.WithContext(ctx), logging.KindCollection, slug, id.String(), draft)
}

func (s *service) emit(ctx context.Context, verb, slug string, doc *domain.Document, user *schema.User) {
	if s.activity == nil || !s.activity.Enabled() || doc == nil {
		return
	}
	event := activity.Event{
		Verb:           verb,
		ObjectType:     string(domain.KindCollection) + ":" + slug,
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
		s.log(ctx, slug, doc.ID, doc.Status == domain.StatusDraft).Warn("activity hook failed", "error", err)
	}
}

// prepare drops reserved and undeclared keys and normalizes value types.
func prepare(fields []schema.Field, data map[string]any) (map[string]any, error) {
	normalized, err := validation.Normalize(validation.Sanitize(fields, domain.StripReserved(data)))
	if err != nil {
		return nil, &validation.PayloadValidationError{Issues: []validation.ValidationIssue{{Message: err.Error()}}, Cause: err}
	}
	return normalized, nil
}

func actorID(user *schema.User) *uuid.UUID {
	if user == nil || user.ID == uuid.Nil {
		return nil
	}
	id := user.ID
	return &id
}

func matchesWhere(doc *domain.Document, where map[string]any) bool {
	if len(where) == 0 {
		return true
	}
	flat := doc.Map()
	for key, want := range where {
		if fmt.Sprint(flat[key]) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

func (r *Record) statusOrPublished() domain.Status {
	if r.Status == "" {
		return domain.StatusPublished
	}
	return r.Status
}
