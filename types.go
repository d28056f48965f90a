package credauth

import "context"

// Provider identifies the authentication method that created an account or
// established a session. The credential policy only ever compares against
// [ProviderCredentials]; OAuth providers are open-ended strings so new
// identity providers need no code change here.
type Provider string

const (
	// ProviderCredentials marks accounts with a local password and sessions
	// established by email/password sign-in.
	ProviderCredentials Provider = "credentials"
	// ProviderGoogle marks accounts created through Google OAuth.
	ProviderGoogle Provider = "google"
	// ProviderGitHub marks accounts created through GitHub OAuth.
	ProviderGitHub Provider = "github"
)

// UserRecord is the full stored account document, including the password
// hash. It crosses the [UserStore] boundary only; Engine operations return
// the sanitized [User] view instead.
//
// Invariant: a record with Provider == ProviderCredentials carries a
// non-empty PasswordHash. OAuth-created records carry none.
type UserRecord struct {
	ID           string
	Email        string
	Name         string
	Picture      string
	Provider     Provider
	PasswordHash string
}

// Sanitize returns the externally visible view of the record.
func (r UserRecord) Sanitize() *User {
	return &User{
		ID:       r.ID,
		Email:    r.Email,
		Name:     r.Name,
		Picture:  r.Picture,
		Provider: r.Provider,
	}
}

// User is a sanitized account view. It has no password hash field at all,
// so a hash cannot leak past the engine by omission.
type User struct {
	ID       string
	Email    string
	Name     string
	Picture  string
	Provider Provider
}

// SessionState is the caller-supplied proof of an established session.
// Engine operations receive it explicitly; the engine never reads ambient
// session state. Provider records the method used at sign-in time, which
// may differ from the account's creation provider.
type SessionState struct {
	UserID   string
	Provider Provider
}

// OAuthProfile carries the identity fields an OAuth callback hands over
// when upserting a local account.
type OAuthProfile struct {
	Provider Provider
	Email    string
	Name     string
	Picture  string
}

// UserFields is a partial update applied by [UserStore.UpdateFields].
// Nil pointers leave the stored field untouched.
type UserFields struct {
	Name         *string
	PasswordHash *string
}

// UserStore is the credential store contract the Engine depends on.
//
// Lookups distinguish a miss from an infrastructure failure: a missing
// record is (nil, nil), a store problem is (nil, err). The engine relies
// on that split to keep [ErrUserNotFound] and [ErrStoreUnavailable] apart.
//
// Implementations must make UpdateFields atomic per document; the engine
// issues exactly one update call per mutation and never expects to observe
// intermediate states.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	FindByID(ctx context.Context, id string) (*UserRecord, error)
	Insert(ctx context.Context, record UserRecord) (*UserRecord, error)
	UpdateFields(ctx context.Context, id string, fields UserFields) (*UserRecord, error)
}
