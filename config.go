package authrail

import (
	"errors"
	"time"

	"github.com/authrail/authrail/jwt"
)

// Config collects every tunable of the engine. Zero values are filled in
// from defaultConfig by the [Builder]; integrators normally set only key
// material and the organization extraction names.
type Config struct {
	Token        TokenConfig
	Organization OrganizationConfig
	Session      SessionConfig
	Store        StoreConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// TokenConfig configures the session and snapshot token manager.
type TokenConfig struct {
	SigningMethod jwt.SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration

	SessionTTL time.Duration
	// SnapshotTTL is the fixed validity window of client permission
	// snapshots. Keep it short: a revoked role stays visible to the client
	// for at most this long (the backend gate is unaffected).
	SnapshotTTL time.Duration
}

// OrganizationConfig names the request surfaces the gate inspects for the
// organization scope, in priority order: header, then query parameter, then
// cookie.
type OrganizationConfig struct {
	Header string
	Query  string
	Cookie string
}

// SessionConfig configures credential extraction. The Authorization header
// always takes priority; CookieName is the fallback for browser clients.
type SessionConfig struct {
	CookieName string
}

// StoreConfig configures the built-in Redis store of record.
type StoreConfig struct {
	RedisPrefix string
}

// AuditConfig configures the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig configures the in-process atomic metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: jwt.MethodEd25519,
			SessionTTL:    15 * time.Minute,
			SnapshotTTL:   4 * time.Hour,
			Leeway:        30 * time.Second,
		},
		Organization: OrganizationConfig{
			Header: "X-Organization-ID",
			Query:  "organizationId",
			Cookie: "organization_id",
		},
		Session: SessionConfig{
			CookieName: "session_token",
		},
		Store: StoreConfig{
			RedisPrefix: "ar",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = append([]byte(nil), cfg.Token.PrivateKey...)
	out.Token.PublicKey = append([]byte(nil), cfg.Token.PublicKey...)
	return out
}

func validateConfig(cfg Config) error {
	if cfg.Token.SessionTTL <= 0 {
		return errors.New("token session TTL must be positive")
	}
	if cfg.Token.SnapshotTTL <= 0 {
		return errors.New("token snapshot TTL must be positive")
	}
	if cfg.Token.SnapshotTTL > 24*time.Hour {
		return errors.New("snapshot TTL above 24h defeats revocation; shorten it")
	}
	if cfg.Session.CookieName == "" {
		return errors.New("session cookie name must not be empty")
	}
	if cfg.Store.RedisPrefix == "" {
		return errors.New("redis prefix must not be empty")
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive when audit is enabled")
	}
	return nil
}
