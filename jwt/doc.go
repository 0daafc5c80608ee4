// Package jwt signs and verifies the two token kinds authrail deals in:
// session tokens, which authenticate a request principal, and snapshot
// tokens, which carry a resolved permission set to the client for local UI
// gating.
//
// # Tokens
//
// Session tokens hold only the subject identifier and email; authorization
// state is never trusted from them and is resolved fresh on every request.
// Snapshot tokens hold the resolved roles and permissions plus the resolving
// organization scope, with a short fixed validity window — they are advisory
// for clients; the backend gate remains authoritative.
//
// # Signing
//
// Ed25519 is the default; HS256 is available for deployments that cannot
// manage key pairs. Verification enforces the configured algorithm, issuer,
// audience, and leeway.
//
// # Architecture boundaries
//
// This package wraps github.com/golang-jwt/jwt/v5 and holds key material.
// It never decides access and never performs I/O.
package jwt
