// Package route implements the ordered route registry: the declarative
// allowlist mapping HTTP method and path patterns to access requirements.
//
// # Patterns
//
// The pattern language is deliberately minimal: literal segments, ":name"
// placeholders matching exactly one path segment, and a standalone "*"
// segment matching any remainder (normally trailing, as in "/api/admin/*").
// Compiled matchers are anchored; a pattern never matches a path prefix.
//
// # Ordering
//
// Entries are evaluated in declared order and the first structural match
// wins, so more specific patterns must be registered before broader wildcard
// patterns. The registry preserves declaration order, whether built in code
// or loaded from YAML.
//
// # Architecture boundaries
//
// The registry only answers "which entry governs this method and path". A
// miss means the route is not registered; callers must treat that as deny by
// default, never as public.
//
// # What this package must NOT do
//
//   - Evaluate requirements or touch resolved permissions.
//   - Grow the pattern language toward a general regex DSL.
//   - Reorder, merge, or deduplicate entries.
package route
