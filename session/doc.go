// Package session provides Redis-backed session persistence and compact
// binary session encoding.
//
// A session binds an opaque identifier to the user it authenticates and the
// provider that established it. The engine never reads sessions itself —
// callers resolve a session here and pass the resulting state into engine
// operations explicitly.
//
// # Binary encoding
//
// Sessions are stored in Redis as a compact versioned binary value. The
// encoder is append-only: future versions add fields but never reinterpret
// old ones.
//
// # What this package must NOT do
//
//   - Import the credauth root package (no upward imports).
//   - Make authentication policy decisions.
//   - Store credentials or password hashes in [Session] fields.
package session
