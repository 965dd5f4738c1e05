package versions

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-cms-community/internal/domain"
	"github.com/google/uuid"
)

// SaveRequest appends a version to a document's history.
type SaveRequest struct {
	Parent    Parent
	Status    domain.Status
	Snapshot  map[string]any
	CreatedBy *uuid.UUID
	Autosave  bool
	// MaxPerDoc bounds the history; zero keeps everything.
	MaxPerDoc int
}

// Service maintains version numbering, the latest flag and retention.
type Service struct {
	repo Repository
	now  func() time.Time
	ids  func() uuid.UUID
	mu   sync.Mutex
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*Service)

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides the version id generator.
func WithIDGenerator(gen func() uuid.UUID) ServiceOption {
	return func(s *Service) {
		if gen != nil {
			s.ids = gen
		}
	}
}

func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
		ids:  uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save records a new latest version and prunes the oldest ones beyond MaxPerDoc.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*Version, error) {
	if !req.Parent.valid() {
		return nil, ErrParentRequired
	}
	if req.Status != domain.StatusDraft && req.Status != domain.StatusPublished {
		return nil, fmt.Errorf("%w: %q", ErrStatusInvalid, req.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	latest, err := s.repo.Latest(ctx, req.Parent)
	switch {
	case err == nil:
		next = latest.Version + 1
	case IsNotFound(err):
	default:
		return nil, err
	}

	if err := s.repo.ClearLatest(ctx, req.Parent); err != nil {
		return nil, err
	}

	now := s.now()
	record := &Version{
		ID:         s.ids(),
		ParentType: req.Parent.Kind,
		Parent:     req.Parent.Slug,
		ParentID:   req.Parent.ID,
		Version:    next,
		Status:     req.Status,
		Snapshot:   domain.CloneData(req.Snapshot),
		Latest:     true,
		Autosave:   req.Autosave,
		CreatedBy:  req.CreatedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if record.Snapshot == nil {
		record.Snapshot = map[string]any{}
	}
	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	if err := s.prune(ctx, req.Parent, req.MaxPerDoc); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Service) prune(ctx context.Context, parent Parent, keep int) error {
	if keep <= 0 {
		return nil
	}
	records, total, err := s.repo.List(ctx, ListFilter{Parent: parent})
	if err != nil {
		return err
	}
	if total <= keep || len(records) <= keep {
		return nil
	}
	stale := make([]uuid.UUID, 0, len(records)-keep)
	for _, record := range records[keep:] {
		stale = append(stale, record.ID)
	}
	return s.repo.Delete(ctx, stale)
}

// Latest returns the newest version of parent, or nil when it has none.
func (s *Service) Latest(ctx context.Context, parent Parent) (*Version, error) {
	record, err := s.repo.Latest(ctx, parent)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// Get returns a version by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Version, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns versions newest first with the unpaginated total.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Version, int, error) {
	return s.repo.List(ctx, filter)
}

// DeleteAll drops the history of parent.
func (s *Service) DeleteAll(ctx context.Context, parent Parent) error {
	if err := s.repo.DeleteByParent(ctx, parent); err != nil && !errors.Is(err, ErrParentRequired) {
		return err
	}
	return nil
}
