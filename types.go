package authrail

import (
	"context"
	"time"
)

// Role is a named bundle of permission strings. A role with an empty
// OrganizationID is global; otherwise it is scoped to one organization and
// only contributes to resolutions requesting that organization. System roles
// are seeded or platform-managed and cannot be deleted through the
// management API.
type Role struct {
	ID             string
	Name           string
	Description    string
	Permissions    []string
	OrganizationID string
	IsSystem       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ScopedTo reports whether the role applies under the given organization
// scope: global roles apply everywhere, scoped roles only to their own
// organization.
func (r *Role) ScopedTo(organizationID string) bool {
	return r.OrganizationID == "" || r.OrganizationID == organizationID
}

// RoleAssignment links a user to a role, optionally scoped to an
// organization and optionally expiring. Expiry is evaluated at resolution
// time; expired assignments are never pre-pruned from the store.
type RoleAssignment struct {
	ID             string
	UserID         string
	RoleID         string
	OrganizationID string
	ExpiresAt      *time.Time
	GrantedBy      string
	CreatedAt      time.Time
}

// PermissionGrant attaches permission strings directly to a user, bypassing
// roles. Scope and expiry semantics match [RoleAssignment].
type PermissionGrant struct {
	ID             string
	UserID         string
	Permissions    []string
	OrganizationID string
	ExpiresAt      *time.Time
	GrantedBy      string
	CreatedAt      time.Time
}

// active reports whether a record with the given expiry is live at now.
// A nil expiry never expires; otherwise the record is live strictly before
// the expiry instant.
func active(expiresAt *time.Time, now time.Time) bool {
	return expiresAt == nil || expiresAt.After(now)
}

// scopedTo reports whether a record scope applies under the requested
// organization: global records always apply, scoped records only when the
// requested organization matches.
func scopedTo(recordOrg, requestedOrg string) bool {
	return recordOrg == "" || recordOrg == requestedOrg
}

// ResolvedPermissions is the materialized authorization view for one
// (user, organization) pair at one instant. It is derived, never stored:
// every authorization decision recomputes it from roles and grants so a
// revocation takes effect on the next request.
//
// Permissions is the union used for decisions. RolePermissions and
// DirectPermissions are diagnostic views for auditing and support tooling.
type ResolvedPermissions struct {
	UserID         string
	OrganizationID string
	Roles          []string
	Permissions    []string

	RolePermissions   []string
	DirectPermissions []string
}

// AuthContext is attached to allowed requests for downstream handlers.
// For authenticated-only routes Roles and Permissions are empty slices; the
// resolver was never consulted.
type AuthContext struct {
	UserID         string
	Email          string
	OrganizationID string
	Roles          []string
	Permissions    []string
}

// UserRecord is the minimal principal record the gate needs from the
// integrator's user database.
type UserRecord struct {
	UserID   string
	Email    string
	Disabled bool
}

// UserProvider is implemented by the integrator to look up token subjects.
// A missing user must be reported via [ErrUserNotFound], not a nil record.
type UserProvider interface {
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
}

// Store is the read side of the store of record. Implementations return the
// complete per-user record sets; scope and expiry filtering happen in the
// resolver so the rules live in one tested place.
//
// All methods are reads with no side effects and must honor ctx
// cancellation. Unreachable backends are reported by wrapping
// [ErrStoreUnavailable].
type Store interface {
	ListAssignments(ctx context.Context, userID string) ([]RoleAssignment, error)
	GetRole(ctx context.Context, roleID string) (*Role, error)
	ListGrants(ctx context.Context, userID string) ([]PermissionGrant, error)
}

// ManagementStore extends [Store] with the mutation surface used by the
// Engine's role and grant management operations.
type ManagementStore interface {
	Store

	CreateRole(ctx context.Context, role *Role) error
	GetRoleByName(ctx context.Context, organizationID, name string) (*Role, error)
	UpdateRole(ctx context.Context, role *Role) error
	DeleteRole(ctx context.Context, roleID string) error

	CreateAssignment(ctx context.Context, a *RoleAssignment) error
	DeleteAssignment(ctx context.Context, userID, assignmentID string) error

	CreateGrant(ctx context.Context, g *PermissionGrant) error
	DeleteGrant(ctx context.Context, userID, grantID string) error
}
