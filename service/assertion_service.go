package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
)

// Settings are the deployment-wide values the service reads
type Settings struct {
	Salt      string
	Issuer    core.Issuer
	MountPath string
}

// AssertionService handles the assertion lifecycle
type AssertionService struct {
	store    ports.AssertionStore
	badges   ports.BadgeRepository
	users    ports.EmailResolver
	baker    ports.Baker
	eventPub ports.EventPublisher

	tokens     *core.TokenGenerator
	callbacksMu sync.RWMutex
	callbacks   core.CallbackURLBuilder
	serializer core.Serializer

	bakes  singleflight.Group
	tracer trace.Tracer
	logger *slog.Logger
}

// Option customizes an AssertionService
type Option func(*AssertionService)

// WithTokenGenerator replaces the crypto/rand token generator
func WithTokenGenerator(tokens *core.TokenGenerator) Option {
	return func(s *AssertionService) { s.tokens = tokens }
}

// WithLogger sets the service logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *AssertionService) { s.logger = logger }
}

// WithEventPublisher sets where lifecycle events go
func WithEventPublisher(eventPub ports.EventPublisher) Option {
	return func(s *AssertionService) { s.eventPub = eventPub }
}

// NewAssertionService creates a new assertion service
func NewAssertionService(
	settings Settings,
	store ports.AssertionStore,
	badges ports.BadgeRepository,
	users ports.EmailResolver,
	baker ports.Baker,
	opts ...Option,
) *AssertionService {
	s := &AssertionService{
		store:  store,
		badges: badges,
		users:  users,
		baker:  baker,
		tokens: core.NewTokenGenerator(),
		callbacks: core.CallbackURLBuilder{
			Origin:    settings.Issuer.Origin,
			MountPath: settings.MountPath,
		},
		serializer: core.Serializer{
			Salt:   settings.Salt,
			Issuer: settings.Issuer,
		},
		tracer: otel.Tracer("github.com/matehackers/badges-engine/service"),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and persists a new assertion
func (s *AssertionService) Create(ctx context.Context, params core.NewAssertionParams) (*core.Assertion, error) {
	ctx, span := s.tracer.Start(ctx, "AssertionService.Create", trace.WithAttributes(
		attribute.String("badge.id", params.BadgeID),
	))
	defer span.End()

	assertion, err := s.create(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("assertion.id", assertion.ID))

	if s.eventPub != nil {
		if err := s.eventPub.PublishCreated(ctx, assertion); err != nil {
			// The assertion is stored, which is the critical part
			s.logger.WarnContext(ctx, "failed to publish assertion created event",
				slog.String("assertion_id", assertion.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return assertion, nil
}

func (s *AssertionService) create(ctx context.Context, params core.NewAssertionParams) (*core.Assertion, error) {
	// Presence checks come before the badge lookup
	assertion, err := core.NewAssertion(params, s.tokens)
	if err != nil {
		return nil, err
	}

	badge, err := s.badges.Get(ctx, params.BadgeID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, &core.ValidationError{Field: "badge", Reason: "badge does not exist", Err: core.ErrInvalidBadge}
		}
		return nil, fmt.Errorf("failed to load badge: %w", err)
	}
	if err := badge.Validate(); err != nil {
		return nil, &core.ValidationError{Field: "badge", Reason: err.Error(), Err: core.ErrInvalidBadge}
	}

	_, err = s.store.FindByBadgeAndUser(ctx, params.BadgeID, params.UserID)
	switch {
	case err == nil:
		return nil, &core.ValidationError{Field: "user_id", Err: core.ErrTaken}
	case !errors.Is(err, core.ErrNotFound):
		return nil, fmt.Errorf("failed to check uniqueness: %w", err)
	}

	if err := s.store.Create(ctx, assertion); err != nil {
		if errors.Is(err, core.ErrAssertionExists) {
			return nil, &core.ValidationError{Field: "user_id", Err: core.ErrTaken}
		}
		return nil, fmt.Errorf("failed to store assertion: %w", err)
	}

	s.logger.InfoContext(ctx, "assertion created",
		slog.String("assertion_id", assertion.ID),
		slog.String("badge_id", assertion.BadgeID),
	)

	return assertion, nil
}

// SetMountPath changes the path prefix of callback URLs to where the routes are actually served
func (s *AssertionService) SetMountPath(mountPath string) {
	s.callbacksMu.Lock()
	defer s.callbacksMu.Unlock()
	s.callbacks.MountPath = mountPath
}

// Get returns the stored assertion
func (s *AssertionService) Get(ctx context.Context, id string) (*core.Assertion, error) {
	return s.store.Get(ctx, id)
}

// Bake sends the assertion to the baking service and records a successful bake.
// Unpersisted or already baked assertions are skipped without any network call.
func (s *AssertionService) Bake(ctx context.Context, assertion *core.Assertion) (core.BakeResult, error) {
	if !assertion.NeedsBaking() {
		return core.BakeResult{Status: core.BakeSkipped}, nil
	}

	ctx, span := s.tracer.Start(ctx, "AssertionService.Bake", trace.WithAttributes(
		attribute.String("assertion.id", assertion.ID),
	))
	defer span.End()

	// Concurrent bakes of the same assertion share one request to the baking service
	v, err, _ := s.bakes.Do(assertion.ID, func() (interface{}, error) {
		return s.bake(ctx, assertion.ID)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return core.BakeResult{}, err
	}

	result := v.(bakeOutcome)
	if result.baked {
		assertion.IsBaked = true
	}
	span.SetAttributes(attribute.String("bake.status", result.BakeResult.Status.String()))

	return result.BakeResult, nil
}

// bakeOutcome adds whether the stored assertion ended up baked
type bakeOutcome struct {
	core.BakeResult
	baked bool
}

func (s *AssertionService) bake(ctx context.Context, id string) (bakeOutcome, error) {
	stored, err := s.store.Get(ctx, id)
	if err != nil {
		return bakeOutcome{}, fmt.Errorf("failed to load assertion: %w", err)
	}
	if !stored.NeedsBaking() {
		return bakeOutcome{BakeResult: core.BakeResult{Status: core.BakeSkipped}, baked: true}, nil
	}

	s.callbacksMu.RLock()
	callbacks := s.callbacks
	s.callbacksMu.RUnlock()

	callbackURL, err := callbacks.Build(stored.ID, stored.Token)
	if err != nil {
		return bakeOutcome{}, fmt.Errorf("failed to build callback url: %w", err)
	}

	result, err := s.baker.Bake(ctx, callbackURL)
	if err != nil {
		s.logger.ErrorContext(ctx, "baking badge failed",
			slog.String("assertion_id", id),
			slog.String("error", err.Error()),
		)
		return bakeOutcome{}, err
	}

	if result.Status != core.BakeBaked {
		s.logger.WarnContext(ctx, "baking badge failed: response was blank",
			slog.String("assertion_id", id),
		)
		return bakeOutcome{BakeResult: core.BakeResult{Status: core.BakeEmpty}}, nil
	}

	flipped, err := s.store.MarkBaked(ctx, id)
	if err != nil {
		return bakeOutcome{}, fmt.Errorf("failed to mark assertion baked: %w", err)
	}
	if !flipped {
		// Another process recorded the bake first
		s.logger.InfoContext(ctx, "assertion already baked", slog.String("assertion_id", id))
		return bakeOutcome{BakeResult: core.BakeResult{Status: core.BakeSkipped}, baked: true}, nil
	}

	stored.IsBaked = true
	s.logger.InfoContext(ctx, "assertion baked",
		slog.String("assertion_id", id),
		slog.Int("image_bytes", len(result.Image)),
	)

	if s.eventPub != nil {
		if err := s.eventPub.PublishBaked(ctx, stored); err != nil {
			s.logger.WarnContext(ctx, "failed to publish assertion baked event",
				slog.String("assertion_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return bakeOutcome{BakeResult: result, baked: true}, nil
}

// BakeByID loads the assertion and bakes it
func (s *AssertionService) BakeByID(ctx context.Context, id string) (core.BakeResult, error) {
	assertion, err := s.store.Get(ctx, id)
	if err != nil {
		return core.BakeResult{}, err
	}
	return s.Bake(ctx, assertion)
}

// View renders the public representation of a stored assertion
func (s *AssertionService) View(ctx context.Context, assertion *core.Assertion) (core.AssertionView, error) {
	badge, err := s.badges.Get(ctx, assertion.BadgeID)
	if err != nil {
		return core.AssertionView{}, fmt.Errorf("failed to load badge: %w", err)
	}

	email, err := s.users.ResolveEmail(ctx, assertion.UserID)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			return core.AssertionView{}, fmt.Errorf("failed to resolve recipient: %w", err)
		}
		email = ""
	}
	if email == "" {
		s.logger.WarnContext(ctx, "recipient has no email, hashing empty string",
			slog.String("assertion_id", assertion.ID),
		)
	}

	return s.serializer.View(assertion, badge, email), nil
}

// PublicView serves the baking callback: the token must match the assertion's token
func (s *AssertionService) PublicView(ctx context.Context, id, token string) (core.AssertionView, error) {
	ctx, span := s.tracer.Start(ctx, "AssertionService.PublicView", trace.WithAttributes(
		attribute.String("assertion.id", id),
	))
	defer span.End()

	assertion, err := s.store.Get(ctx, id)
	if err != nil {
		return core.AssertionView{}, err
	}

	if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(assertion.Token)) != 1 {
		return core.AssertionView{}, core.ErrInvalidToken
	}

	return s.View(ctx, assertion)
}
