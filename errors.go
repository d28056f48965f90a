package credauth

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by SignIn for every verification
	// failure: unknown email, account without a local password, or wrong
	// password. The cases are deliberately indistinguishable so a caller
	// cannot probe for account existence.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthenticated is returned when an operation that requires a
	// session is called without one.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrProviderMismatch is the errors.Is target for password changes
	// attempted on a session that was not established with the local
	// credential scheme. The concrete error is a [ProviderMismatchError]
	// naming the provider actually used.
	ErrProviderMismatch = errors.New("provider mismatch")
	// ErrIncorrectPassword is returned by ChangePassword when the supplied
	// old password does not verify against the stored hash.
	ErrIncorrectPassword = errors.New("incorrect old password")
	// ErrUserNotFound is returned when a session's user id no longer
	// resolves to a stored record.
	ErrUserNotFound = errors.New("user not found")
	// ErrOAuthProfileIncomplete is returned when an OAuth upsert is called
	// without a profile email.
	ErrOAuthProfileIncomplete = errors.New("oauth profile missing email")
	// ErrSignInRateLimited is returned when the optional sign-in throttle
	// rejects an attempt before credential verification.
	ErrSignInRateLimited = errors.New("sign-in rate limited")
	// ErrStoreUnavailable wraps any credential store failure. It is never
	// conflated with ErrUserNotFound: a failed lookup is not a missing user.
	ErrStoreUnavailable = errors.New("credential store unavailable")

	// ErrEngineNotReady is returned when an Engine method is called on a
	// partially constructed engine.
	ErrEngineNotReady = errors.New("engine not ready")
	// ErrEngineAlreadyBuilt is returned when Build is called twice on the
	// same Builder.
	ErrEngineAlreadyBuilt = errors.New("engine already built")
	// ErrUserStoreRequired is returned by Build when no user store was
	// configured.
	ErrUserStoreRequired = errors.New("user store is required")
	// ErrRedisRequired is returned by Build when a configured feature needs
	// a Redis client and none was provided.
	ErrRedisRequired = errors.New("redis client is required")
)

// ProviderMismatchError reports a password change attempted on a session
// established through an OAuth provider. It names the provider used at
// sign-in so the caller can surface it, and matches [ErrProviderMismatch]
// under errors.Is.
type ProviderMismatchError struct {
	Provider Provider
}

func (e *ProviderMismatchError) Error() string {
	return fmt.Sprintf("signed in via %s: password changes are not allowed with this method", e.Provider)
}

// Is reports whether target is [ErrProviderMismatch].
func (e *ProviderMismatchError) Is(target error) bool {
	return target == ErrProviderMismatch
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
