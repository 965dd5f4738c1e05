package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-cms-community/internal/logging"
	"github.com/goliatone/go-cms-community/internal/validation"
	"github.com/goliatone/go-cms-community/pkg/activity"
	"github.com/goliatone/go-cms-community/pkg/interfaces"
	"github.com/goliatone/go-cms-community/schema"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service manages the accounts of the auth collection.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
}

type ServiceOption func(*service)

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

func WithIDGenerator(generator func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
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

// WithHashCost sets the bcrypt cost. Values outside bcrypt's range fall back
// to bcrypt.DefaultCost.
func WithHashCost(cost int) ServiceOption {
	return func(s *service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

type service struct {
	collection schema.Collection
	repo       Repository
	validator  *validation.Validator
	now        func() time.Time
	id         func() uuid.UUID
	logger     interfaces.Logger
	activity   *activity.Emitter
	cost       int
}

// NewService binds the service to the auth collection of set.
func NewService(set *schema.Set, repo Repository, opts ...ServiceOption) (Service, error) {
	collection, ok := set.Collection(set.AuthSlug())
	if !ok {
		return nil, fmt.Errorf("users: auth collection %q is not configured", set.AuthSlug())
	}
	validator, err := validation.Compile(collection.Fields)
	if err != nil {
		return nil, fmt.Errorf("users: %w", err)
	}
	s := &service{
		collection: collection,
		repo:       repo,
		validator:  validator,
		now:        func() time.Time { return time.Now().UTC() },
		id:         uuid.New,
		logger:     logging.NoOp(),
		activity:   activity.NewEmitter(nil, activity.Config{}),
		cost:       bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	email := NormalizeEmail(req.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, ErrPasswordRequired
	}
	if err := s.validator.Validate(map[string]any{"email": email}, false); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("users: hash password: %w", err)
	}

	now := s.now()
	created, err := s.repo.Create(ctx, &User{
		ID:           s.id(),
		Collection:   s.collection.Slug,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).Info("user created", "user_id", created.ID.String())
	if s.activity.Enabled() {
		err := s.activity.Emit(ctx, activity.Event{
			Verb:           "create",
			ObjectType:     "collection:" + s.collection.Slug,
			ObjectID:       created.ID.String(),
			ActorID:        created.ID.String(),
			UserID:         created.ID.String(),
			DefinitionCode: s.collection.Slug + ":create",
		})
		if err != nil {
			s.logger.WithContext(ctx).Warn("activity hook failed", "error", err)
		}
	}
	return created, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, NormalizeEmail(email))
}

// Login checks the credentials. Unknown emails and wrong passwords both
// return ErrInvalidCredentials.
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("users: compare password: %w", err)
	}
	s.logger.WithContext(ctx).Debug("user logged in", "user_id", user.ID.String())
	return user, nil
}
