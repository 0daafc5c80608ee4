// Package middleware adapts the authrail gate to net/http. [Guard] runs
// every request through Engine.AuthorizeHTTP, writes the structured deny
// response on rejection, and injects the auth context into the request
// context on allow.
//
// # Responses
//
// Denies are JSON: {"error","reason"} plus, on permission denials, the
// unmet requirement and the caller's own roles for debuggability. Statuses
// follow the decision: 404 for unregistered routes, 401 for missing or
// invalid credentials, 403 for insufficient permissions, 503 when the store
// of record is unreachable (fail closed, retryable).
//
// # Architecture boundaries
//
// This package translates HTTP semantics into gate calls. It makes no
// authorization decisions of its own — everything is delegated to
// Engine.AuthorizeHTTP.
package middleware
