// Package permission implements wildcard permission-string matching, exact
// role-name matching, and the tagged access requirement evaluated by the
// authorization gate and the client snapshot mirror.
//
// # Permission strings
//
// A permission string is a colon-delimited identifier, conventionally
// resource:action:scope (for example "projects:read:all"). A held string
// matches a required string when they are equal segment by segment; a "*"
// segment in the held string matches any value in that position. The bare
// held string "*" matches every requirement. Strings with different segment
// counts never match.
//
// # Requirements
//
// [Requirement] is a tagged variant over the five access policies a route can
// declare: public, authenticated-only, a single permission string, any-of a
// list, or all-of a list. Empty any-of and all-of lists deny: an empty list
// means no acceptable permission was defined, and misconfiguration must not
// silently grant.
//
// # Architecture boundaries
//
// This package is pure string evaluation with no I/O. The same functions run
// on the server inside the gate and on the client against a cached snapshot,
// so both sides agree on every decision.
//
// # What this package must NOT do
//
//   - Access Redis, databases, or the network.
//   - Import authrail, jwt, route, or snapshot.
//   - Interpret "*" as a substring wildcard within a segment.
package permission
