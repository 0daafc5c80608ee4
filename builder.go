package authrail

import (
	"context"
	"errors"
	"time"

	"github.com/authrail/authrail/jwt"
	"github.com/authrail/authrail/route"
)

// SeedRole declares a system role created at build time if it does not
// already exist. Seeding is idempotent: existing roles are left untouched.
type SeedRole struct {
	Name           string
	Description    string
	Permissions    []string
	OrganizationID string
}

// Builder assembles an [Engine]. The zero-configuration path needs a store,
// a user provider, a registry, and signing key material; everything else has
// defaults.
type Builder struct {
	config Config

	store     Store
	users     UserProvider
	registry  *route.Registry
	auditSink AuditSink
	now       func() time.Time
	seedRoles []SeedRole

	built bool
}

// New returns a Builder with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		now:    time.Now,
	}
}

// WithConfig replaces the full configuration. Unset TTLs and names are
// filled from defaults at Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the store of record. Stores implementing
// [ManagementStore] also enable the engine's management operations.
func (b *Builder) WithStore(store Store) *Builder {
	b.store = store
	return b
}

// WithUserProvider sets the principal lookup collaborator.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// WithRegistry sets the route registry the gate evaluates against.
func (b *Builder) WithRegistry(registry *route.Registry) *Builder {
	b.registry = registry
	return b
}

// WithAuditSink sets the audit destination and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithClock injects the reference clock. Tests use this to pin "now" for
// expiry evaluation; production builds keep time.Now.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithSeedRoles declares system roles to create at build time.
func (b *Builder) WithSeedRoles(roles ...SeedRole) *Builder {
	b.seedRoles = append(b.seedRoles, roles...)
	return b
}

// Build validates the configuration, wires the token manager, seeds system
// roles, and returns the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already consumed")
	}

	applyConfigDefaults(&b.config)
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, errors.New("a store is required: use WithStore")
	}
	if b.users == nil {
		return nil, errors.New("a user provider is required: use WithUserProvider")
	}
	if b.registry == nil {
		return nil, errors.New("a route registry is required: use WithRegistry")
	}
	if b.now == nil {
		b.now = time.Now
	}

	tokens, err := jwt.NewManager(jwt.Config{
		SigningMethod: b.config.Token.SigningMethod,
		PrivateKey:    b.config.Token.PrivateKey,
		PublicKey:     b.config.Token.PublicKey,
		Issuer:        b.config.Token.Issuer,
		Audience:      b.config.Token.Audience,
		Leeway:        b.config.Token.Leeway,
		SessionTTL:    b.config.Token.SessionTTL,
		SnapshotTTL:   b.config.Token.SnapshotTTL,
		Now:           b.now,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:   b.config,
		registry: b.registry,
		store:    b.store,
		users:    b.users,
		tokens:   tokens,
		metrics:  NewMetrics(b.config.Metrics),
		audit:    newAuditDispatcher(b.config.Audit, b.auditSink),
		now:      b.now,
	}
	if mgmt, ok := b.store.(ManagementStore); ok {
		engine.mgmt = mgmt
	}

	if len(b.seedRoles) > 0 {
		if err := engine.seed(context.Background(), b.seedRoles); err != nil {
			engine.Close()
			return nil, err
		}
	}

	b.built = true
	return engine, nil
}

// applyConfigDefaults fills zero values so WithConfig callers only need to
// set what they care about.
func applyConfigDefaults(cfg *Config) {
	def := defaultConfig()

	if cfg.Token.SigningMethod == "" {
		cfg.Token.SigningMethod = def.Token.SigningMethod
	}
	if cfg.Token.SessionTTL == 0 {
		cfg.Token.SessionTTL = def.Token.SessionTTL
	}
	if cfg.Token.SnapshotTTL == 0 {
		cfg.Token.SnapshotTTL = def.Token.SnapshotTTL
	}
	if cfg.Token.Leeway == 0 {
		cfg.Token.Leeway = def.Token.Leeway
	}
	if cfg.Organization.Header == "" {
		cfg.Organization.Header = def.Organization.Header
	}
	if cfg.Organization.Query == "" {
		cfg.Organization.Query = def.Organization.Query
	}
	if cfg.Organization.Cookie == "" {
		cfg.Organization.Cookie = def.Organization.Cookie
	}
	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = def.Session.CookieName
	}
	if cfg.Store.RedisPrefix == "" {
		cfg.Store.RedisPrefix = def.Store.RedisPrefix
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}
}

func (e *Engine) seed(ctx context.Context, roles []SeedRole) error {
	mgmt, err := e.management()
	if err != nil {
		return err
	}

	for _, seed := range roles {
		_, err := mgmt.GetRoleByName(ctx, seed.OrganizationID, seed.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrRoleNotFound) {
			return err
		}

		if _, err := e.CreateRole(ctx, CreateRoleInput{
			Name:           seed.Name,
			Description:    seed.Description,
			Permissions:    seed.Permissions,
			OrganizationID: seed.OrganizationID,
			IsSystem:       true,
		}); err != nil && !errors.Is(err, ErrRoleExists) {
			return err
		}
	}

	return nil
}
