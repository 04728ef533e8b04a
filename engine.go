// Package badges issues Open Badges assertions and bakes them into badge images.
//
// An Engine wires the assertion service with its storage, baking service client,
// event publisher and HTTP routes. Host applications either run its router directly
// or mount the routes on their own gin router.
package badges

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/matehackers/badges-engine/adapters/baker"
	"github.com/matehackers/badges-engine/adapters/store"
	"github.com/matehackers/badges-engine/adapters/tokenizer"
	"github.com/matehackers/badges-engine/config"
	"github.com/matehackers/badges-engine/core"
	"github.com/matehackers/badges-engine/ports"
	"github.com/matehackers/badges-engine/service"
	transport "github.com/matehackers/badges-engine/transport/http"
)

// Engine represents the public interface for embedding the badges engine
type Engine struct {
	Service *service.AssertionService

	tokenizer ports.Tokenizer
	mountPath string
}

type options struct {
	store     ports.AssertionStore
	badges    ports.BadgeRepository
	users     ports.EmailResolver
	baker     ports.Baker
	eventPub  ports.EventPublisher
	tokenizer ports.Tokenizer
	logger    *slog.Logger
}

// Option overrides one of the engine's collaborators
type Option func(*options)

// WithStore sets where assertions are persisted. Defaults to memory.
func WithStore(s ports.AssertionStore) Option {
	return func(o *options) { o.store = s }
}

// WithBadges sets the badge repository. Defaults to an empty in-memory one.
func WithBadges(b ports.BadgeRepository) Option {
	return func(o *options) { o.badges = b }
}

// WithUsers sets how recipient emails are resolved. Defaults to an empty in-memory one.
func WithUsers(u ports.EmailResolver) Option {
	return func(o *options) { o.users = u }
}

// WithBaker replaces the HTTP baking client
func WithBaker(b ports.Baker) Option {
	return func(o *options) { o.baker = b }
}

// WithEventPublisher publishes lifecycle events
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(o *options) { o.eventPub = p }
}

// WithTokenizer replaces the admin token verifier built from the admin secret
func WithTokenizer(t ports.Tokenizer) Option {
	return func(o *options) { o.tokenizer = t }
}

// WithLogger sets the logger shared by the engine's components
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New validates cfg and assembles an engine
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	if o.store == nil {
		o.store = store.NewMemoryStore()
	}
	if o.badges == nil {
		o.badges = store.NewMemoryBadges()
	}
	if o.users == nil {
		o.users = store.NewMemoryUsers(nil)
	}
	if o.baker == nil {
		o.baker = baker.NewHTTPBaker(cfg.Baker.URL, cfg.Baker.Timeout, o.logger)
	}
	if o.tokenizer == nil && cfg.Server.AdminSecret != "" {
		o.tokenizer = tokenizer.NewJWTTokenizer([]byte(cfg.Server.AdminSecret), tokenizer.DefaultAdminTTL)
	}

	settings := service.Settings{
		Salt: cfg.Salt,
		Issuer: core.Issuer{
			Origin:  cfg.Issuer.Origin,
			Name:    cfg.Issuer.Name,
			Org:     cfg.Issuer.Org,
			Contact: cfg.Issuer.Contact,
		},
		MountPath: cfg.Server.MountPath,
	}

	svcOpts := []service.Option{service.WithLogger(o.logger)}
	if o.eventPub != nil {
		svcOpts = append(svcOpts, service.WithEventPublisher(o.eventPub))
	}

	return &Engine{
		Service:   service.NewAssertionService(settings, o.store, o.badges, o.users, o.baker, svcOpts...),
		tokenizer: o.tokenizer,
		mountPath: cfg.Server.MountPath,
	}, nil
}

// Router returns a standalone gin router serving the engine under its mount path
func (e *Engine) Router() *gin.Engine {
	e.Service.SetMountPath(e.mountPath)
	return transport.SetupRouter(e.Service, e.tokenizer, e.mountPath)
}

// Mount registers the engine's routes on a host router group.
// Callback URLs follow the group's base path from then on, overriding the configured mount path.
func (e *Engine) Mount(group *gin.RouterGroup) {
	e.Service.SetMountPath(group.BasePath())
	transport.RegisterRoutes(group, e.Service, e.tokenizer)
}
