package permission

import "strings"

// Roles match by exact name equality only. There is no wildcard or segment
// structure in role names; "Admin" and "admin" are distinct roles.

// HasRole reports whether required appears in the held role names.
func HasRole(held []string, required string) bool {
	for _, h := range held {
		if h == required {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether at least one of required is held.
// An empty required list denies, matching [HasAny].
func HasAnyRole(held []string, required []string) bool {
	if len(required) == 0 {
		return false
	}
	for _, r := range required {
		if HasRole(held, r) {
			return true
		}
	}
	return false
}

// HasAllRoles reports whether every one of required is held.
// An empty required list denies, matching [HasAll].
func HasAllRoles(held []string, required []string) bool {
	if len(required) == 0 {
		return false
	}
	for _, r := range required {
		if !HasRole(held, r) {
			return false
		}
	}
	return true
}

// RoleRequirementKind selects the variant of a [RoleRequirement].
type RoleRequirementKind uint8

const (
	// RoleKindSingle requires one named role.
	RoleKindSingle RoleRequirementKind = iota
	// RoleKindAnyOf requires at least one of a list of role names.
	RoleKindAnyOf
	// RoleKindAllOf requires every one of a list of role names.
	RoleKindAllOf
)

// RoleRequirement is the role-name counterpart of [Requirement], used by
// integrators gating on role membership rather than permission strings.
type RoleRequirement struct {
	Kind  RoleRequirementKind
	Role  string
	Roles []string
}

// RequireRole returns the requirement for a single named role.
func RequireRole(role string) RoleRequirement {
	return RoleRequirement{Kind: RoleKindSingle, Role: role}
}

// RequireAnyRole returns the requirement satisfied when at least one of
// roles is held. With no arguments it denies everyone.
func RequireAnyRole(roles ...string) RoleRequirement {
	return RoleRequirement{Kind: RoleKindAnyOf, Roles: roles}
}

// RequireAllRoles returns the requirement satisfied only when every one of
// roles is held. With no arguments it denies everyone.
func RequireAllRoles(roles ...string) RoleRequirement {
	return RoleRequirement{Kind: RoleKindAllOf, Roles: roles}
}

// SatisfiedBy evaluates the role requirement against the caller's held role
// names.
func (r RoleRequirement) SatisfiedBy(held []string) bool {
	switch r.Kind {
	case RoleKindSingle:
		return HasRole(held, r.Role)
	case RoleKindAnyOf:
		return HasAnyRole(held, r.Roles)
	case RoleKindAllOf:
		return HasAllRoles(held, r.Roles)
	}
	return false
}

// String renders the role requirement for deny responses and audit events.
func (r RoleRequirement) String() string {
	switch r.Kind {
	case RoleKindSingle:
		return "role(" + r.Role + ")"
	case RoleKindAnyOf:
		return "any_role(" + strings.Join(r.Roles, ", ") + ")"
	case RoleKindAllOf:
		return "all_roles(" + strings.Join(r.Roles, ", ") + ")"
	}
	return "unknown"
}
