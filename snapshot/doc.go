// Package snapshot is the client-side mirror of the authorization gate: it
// decodes a signed permission snapshot token and re-runs the exact matcher
// functions the backend uses, so UI gating and page navigation agree with
// the server without a resolver round trip per render.
//
// # Staleness
//
// A snapshot is a cache with a fixed validity window. Revocations do not
// reach it until it expires and is refreshed, which is acceptable for UI
// gating only — the backend gate re-resolves on every request and remains
// authoritative. Expired snapshots are rejected by [Decoder.Decode] and must
// be refreshed via the engine's IssueSnapshot.
//
// # Architecture boundaries
//
// The decoder holds verification key material only (public key or shared
// secret), never signing keys, and performs no I/O.
package snapshot
