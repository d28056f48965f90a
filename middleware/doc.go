// Package middleware exposes HTTP adapters that resolve an inbound
// request's session into a credauth.SessionState and inject it into the
// request context, so handlers can pass it to Engine operations
// explicitly.
//
// # Resolvers
//
//   - [WithSessionStore] — resolves a session cookie against the
//     Redis-backed session store.
//   - [WithTokenManager] — resolves a bearer token against the stateless
//     jwt manager.
//
// Resolution is best-effort: a request without a valid session proceeds
// with no state in context, and the engine returns ErrUnauthenticated
// where a session is required. Guarding routes outright is left to the
// application.
//
// # What this package must NOT do
//
//   - Make authentication decisions (the Engine does).
//   - Establish or destroy sessions (handlers own session lifecycle).
package middleware
