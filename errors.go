package authrail

import "errors"

var (
	// ErrUnauthenticated is returned when no credential is presented or the
	// presented credential is invalid or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied is returned when an authenticated caller does not
	// satisfy the route's permission requirement.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrRouteNotRegistered is returned when no registry entry matches the
	// request. The registry is an allowlist; absence means deny.
	ErrRouteNotRegistered = errors.New("route not registered")
	// ErrStoreUnavailable is returned when the store of record cannot be
	// reached during resolution. Callers must fail closed.
	ErrStoreUnavailable = errors.New("authorization store unavailable")
	// ErrTokenInvalid is returned for malformed, forged, or expired tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrUserNotFound is returned when a token's subject no longer exists.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound is returned when a role id or name resolves to nothing.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleExists is returned when creating a role whose name is already
	// taken within the same scope.
	ErrRoleExists = errors.New("role already exists")
	// ErrSystemRoleImmutable is returned when deleting or renaming a role
	// flagged as system-managed.
	ErrSystemRoleImmutable = errors.New("system role cannot be modified")
	// ErrAssignmentNotFound is returned when revoking an unknown assignment.
	ErrAssignmentNotFound = errors.New("role assignment not found")
	// ErrGrantNotFound is returned when revoking an unknown direct grant.
	ErrGrantNotFound = errors.New("permission grant not found")
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrManagementNotSupported is returned by management operations when the
	// configured store implements only the read-side Store interface.
	ErrManagementNotSupported = errors.New("store does not support management operations")
	// ErrRoleScopeMismatch is returned when assigning an organization-scoped
	// role under a different organization.
	ErrRoleScopeMismatch = errors.New("role scope does not match assignment scope")
)
