package snapshot

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/authrail/authrail/jwt"
	"github.com/authrail/authrail/permission"
)

var (
	// ErrInvalid is returned for malformed or forged snapshot tokens.
	ErrInvalid = errors.New("invalid snapshot token")
	// ErrExpired is returned when the snapshot's validity window has passed.
	// The caller must discard the snapshot and request a fresh one.
	ErrExpired = errors.New("snapshot expired")
)

// Snapshot is a decoded, verified permission snapshot. Its sets were
// resolved by the backend at IssuedAt and stay fixed until ExpiresAt.
type Snapshot struct {
	UserID         string
	OrganizationID string
	Roles          []string
	Permissions    []string
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// Config configures a [Decoder]. VerifyKey is the Ed25519 public key or the
// HS256 shared secret matching the issuing engine.
type Config struct {
	SigningMethod jwt.SigningMethod
	VerifyKey     []byte
	Issuer        string
	Audience      string
	Leeway        time.Duration

	// Now overrides the expiry reference clock; nil means time.Now.
	Now func() time.Time
}

// Decoder verifies and decodes snapshot tokens on the client.
type Decoder struct {
	config Config
	method jwtlib.SigningMethod
	key    interface{}
	now    func() time.Time
}

// NewDecoder validates the key material and returns a decoder.
func NewDecoder(cfg Config) (*Decoder, error) {
	d := &Decoder{config: cfg, now: cfg.Now}
	if d.now == nil {
		d.now = time.Now
	}

	switch cfg.SigningMethod {
	case jwt.MethodHS256:
		if len(cfg.VerifyKey) == 0 {
			return nil, errors.New("hs256 requires a verify key")
		}
		d.method = jwtlib.SigningMethodHS256
		d.key = cfg.VerifyKey
	case jwt.MethodEd25519, "":
		if len(cfg.VerifyKey) != ed25519.PublicKeySize {
			return nil, errors.New("invalid ed25519 public key")
		}
		d.method = jwtlib.SigningMethodEdDSA
		d.key = ed25519.PublicKey(cfg.VerifyKey)
	default:
		return nil, errors.New("unsupported signing method")
	}

	return d, nil
}

// Decode verifies the token signature and claims, checks expiry against the
// decoder's clock, and returns the snapshot. Expired tokens return
// [ErrExpired]; every other failure returns [ErrInvalid].
func (d *Decoder) Decode(token string) (*Snapshot, error) {
	options := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{d.method.Alg()}),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(d.now),
	}
	if d.config.Leeway > 0 {
		options = append(options, jwtlib.WithLeeway(d.config.Leeway))
	}
	if d.config.Issuer != "" {
		options = append(options, jwtlib.WithIssuer(d.config.Issuer))
	}
	if d.config.Audience != "" {
		options = append(options, jwtlib.WithAudience(d.config.Audience))
	}

	claims := &jwt.SnapshotClaims{}
	parsed, err := jwtlib.NewParser(options...).ParseWithClaims(token, claims,
		func(*jwtlib.Token) (interface{}, error) { return d.key, nil })
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !parsed.Valid || claims.ExpiresAt == nil {
		return nil, ErrInvalid
	}

	s := &Snapshot{
		UserID:         claims.Subject,
		OrganizationID: claims.OrganizationID,
		Roles:          claims.Roles,
		Permissions:    claims.Permissions,
		ExpiresAt:      claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	if s.Roles == nil {
		s.Roles = []string{}
	}
	if s.Permissions == nil {
		s.Permissions = []string{}
	}

	return s, nil
}

// Expired reports whether the snapshot's window has passed at now. Callers
// rendering long-lived pages should re-check before trusting cached
// snapshots.
func (s *Snapshot) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Can reports whether the snapshot satisfies a single permission string,
// with the same wildcard semantics as the backend gate.
func (s *Snapshot) Can(required string) bool {
	return permission.HasPermission(s.Permissions, required)
}

// CanAny mirrors permission.HasAny, including the empty-list-denies policy.
func (s *Snapshot) CanAny(required ...string) bool {
	return permission.HasAny(s.Permissions, required)
}

// CanAll mirrors permission.HasAll, including the empty-list-denies policy.
func (s *Snapshot) CanAll(required ...string) bool {
	return permission.HasAll(s.Permissions, required)
}

// Satisfies evaluates a full requirement. The snapshot holder is by
// definition authenticated, so KindAuthenticated always passes.
func (s *Snapshot) Satisfies(req permission.Requirement) bool {
	return req.SatisfiedBy(s.Permissions, true)
}

// HasRole reports exact role-name membership.
func (s *Snapshot) HasRole(role string) bool {
	return permission.HasRole(s.Roles, role)
}

// SatisfiesRole evaluates a role requirement against the snapshot's roles.
func (s *Snapshot) SatisfiesRole(req permission.RoleRequirement) bool {
	return req.SatisfiedBy(s.Roles)
}
