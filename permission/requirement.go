package permission

import (
	"encoding/json"
	"strings"
)

// RequirementKind selects the variant of a [Requirement].
type RequirementKind uint8

const (
	// KindPublic grants to everyone, authenticated or not.
	KindPublic RequirementKind = iota
	// KindAuthenticated grants to any authenticated caller regardless of
	// which permissions it holds, including none.
	KindAuthenticated
	// KindPermission requires a single permission string to be satisfied.
	KindPermission
	// KindAnyOf requires at least one of a list of permission strings.
	KindAnyOf
	// KindAllOf requires every one of a list of permission strings.
	KindAllOf
)

// Requirement is the tagged access policy attached to a route registry entry.
// Exactly one variant is active, selected by Kind; Permission is meaningful
// only for KindPermission and Permissions only for KindAnyOf and KindAllOf.
//
// The zero value is KindPublic. Registry authors should construct values via
// [Public], [Authenticated], [Require], [RequireAny], and [RequireAll].
type Requirement struct {
	Kind        RequirementKind
	Permission  string
	Permissions []string
}

// Public returns the requirement satisfied by every caller.
func Public() Requirement {
	return Requirement{Kind: KindPublic}
}

// Authenticated returns the requirement satisfied by any authenticated
// caller, even one holding zero permissions.
func Authenticated() Requirement {
	return Requirement{Kind: KindAuthenticated}
}

// Require returns the requirement for a single permission string.
func Require(perm string) Requirement {
	return Requirement{Kind: KindPermission, Permission: perm}
}

// RequireAny returns the requirement satisfied when at least one of perms is
// held. With no arguments it denies everyone.
func RequireAny(perms ...string) Requirement {
	return Requirement{Kind: KindAnyOf, Permissions: perms}
}

// RequireAll returns the requirement satisfied only when every one of perms
// is held. With no arguments it denies everyone.
func RequireAll(perms ...string) Requirement {
	return Requirement{Kind: KindAllOf, Permissions: perms}
}

// SatisfiedBy evaluates the requirement against the caller's held permission
// strings and authentication state. held may be nil for anonymous callers;
// authenticated reports whether a valid principal was established, which is
// what KindAuthenticated checks (an authenticated caller with an empty held
// set still satisfies it).
func (r Requirement) SatisfiedBy(held []string, authenticated bool) bool {
	switch r.Kind {
	case KindPublic:
		return true
	case KindAuthenticated:
		return authenticated
	case KindPermission:
		return HasPermission(held, r.Permission)
	case KindAnyOf:
		return HasAny(held, r.Permissions)
	case KindAllOf:
		return HasAll(held, r.Permissions)
	}
	return false
}

// RequiresResolution reports whether evaluating the requirement needs the
// caller's resolved permission set. Public and authenticated-only routes can
// be decided without touching the store of record.
func (r Requirement) RequiresResolution() bool {
	switch r.Kind {
	case KindPublic, KindAuthenticated:
		return false
	}
	return true
}

// String renders the requirement for deny responses and audit events.
func (r Requirement) String() string {
	switch r.Kind {
	case KindPublic:
		return "public"
	case KindAuthenticated:
		return "authenticated"
	case KindPermission:
		return r.Permission
	case KindAnyOf:
		return "any_of(" + strings.Join(r.Permissions, ", ") + ")"
	case KindAllOf:
		return "all_of(" + strings.Join(r.Permissions, ", ") + ")"
	}
	return "unknown"
}

type requirementJSON struct {
	Kind        string   `json:"kind"`
	Permission  string   `json:"permission,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// MarshalJSON encodes the requirement with a string kind so deny responses
// stay readable without knowledge of the internal kind constants.
func (r Requirement) MarshalJSON() ([]byte, error) {
	out := requirementJSON{
		Permission:  r.Permission,
		Permissions: r.Permissions,
	}
	switch r.Kind {
	case KindPublic:
		out.Kind = "public"
	case KindAuthenticated:
		out.Kind = "authenticated"
	case KindPermission:
		out.Kind = "permission"
	case KindAnyOf:
		out.Kind = "any_of"
	case KindAllOf:
		out.Kind = "all_of"
	default:
		out.Kind = "unknown"
	}
	return json.Marshal(out)
}
