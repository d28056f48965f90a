// Package credauth implements the credential authentication and
// password-lifecycle policy for web applications: email/password sign-in,
// provider-gated password changes, display-name updates, and idempotent
// OAuth account materialization.
//
// The package is a pure policy engine. Every operation takes its inputs
// explicitly — including the [SessionState] of the caller — reads and
// writes accounts through the narrow [UserStore] contract, and reports
// expected failures as sentinel error values ([ErrInvalidCredentials],
// [ErrProviderMismatch], ...). Nothing here touches HTTP, cookies, or
// ambient request state; the session, middleware, and userstore
// sub-packages provide those collaborators for applications that want
// them.
//
// # Architecture boundaries
//
// credauth is the public decision surface. It exposes [Engine], [Builder],
// [Config], and value types. Rate-limit plumbing lives under internal/ and
// is never exported.
//
// # What this package must NOT do
//
//   - Return a password hash from any operation: [User] has no hash field.
//   - Read session state ambiently: sessions arrive as arguments.
//   - Report a store outage as a missing user: [ErrStoreUnavailable] and
//     [ErrUserNotFound] are distinct outcomes.
//
// Engine methods are safe to call from multiple goroutines after
// construction through [Builder.Build].
package credauth
