// Package authrail is a route-registry authorization engine: it resolves a
// user's effective permissions from role assignments and direct grants,
// matches wildcard permission strings, and gates HTTP requests against an
// ordered, declarative route allowlist.
//
// # Model
//
// Permissions are colon-delimited strings (resource:action:scope) with
// segment-level wildcards. Users hold permissions through roles — named
// permission bundles, optionally organization-scoped — and through direct
// grants. Both assignments and grants may expire; expiry is evaluated at
// resolution time against an injected clock, never pre-pruned.
//
// # Decisions
//
// [Engine.Authorize] walks a linear chain: registry lookup (a miss denies —
// the registry is an allowlist), public short-circuit, session token
// verification, principal load, organization scope extraction, then fresh
// permission resolution and requirement evaluation. Every outcome is a
// structured [Decision]; the engine never fails open, including when the
// store of record is unreachable.
//
// There is no cross-request caching: a revoked role takes effect on the very
// next request. The one deliberate exception is the client snapshot token
// (see the snapshot package), a short-lived signed copy of a resolved set
// used for UI gating only.
//
// # Integration
//
// Integrators supply a [Store] (or use the bundled redisstore), a
// [UserProvider] for principal lookup, and a route registry, then mount
// middleware.Guard in front of their handlers:
//
//	engine, err := authrail.New().
//	    WithConfig(cfg).
//	    WithStore(store).
//	    WithUserProvider(users).
//	    WithRegistry(registry).
//	    Build()
package authrail
