package credauth

import (
	"context"
	"errors"

	"github.com/hexfray/credauth/internal/rate"
)

// SignIn verifies an email/password pair against the credential store and
// returns the matching sanitized user.
//
// Every verification failure — unknown email, account without a local
// password, wrong password — returns [ErrInvalidCredentials] with no
// distinguishing detail, so callers cannot probe for account existence.
// SignIn performs no session establishment; that belongs to the session
// provider wired by the application.
func (e *Engine) SignIn(ctx context.Context, email, plaintext string) (*User, error) {
	if e == nil || e.userStore == nil || e.passwordHash == nil {
		return nil, ErrEngineNotReady
	}

	if email == "" || plaintext == "" {
		e.metricInc(MetricSignInFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, "", "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "empty_input"}
		})
		return nil, ErrInvalidCredentials
	}

	ip := clientIPFromContext(ctx)
	if e.throttle != nil {
		if err := e.throttle.Check(ctx, email, ip); errors.Is(err, rate.ErrRateLimited) {
			e.metricInc(MetricSignInRateLimited)
			e.emitAudit(ctx, auditEventSignInRateLimited, false, "", "", ErrSignInRateLimited, nil)
			return nil, ErrSignInRateLimited
		}
		// A throttle backend outage must not take sign-in down.
	}

	record, err := e.userStore.FindByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventSignInFailure, false, "", "", ErrStoreUnavailable, nil)
		return nil, storeFailure(err)
	}
	if record == nil || record.PasswordHash == "" {
		// Missing record and password-less OAuth account take the same
		// path: consume an attempt, return the same failure.
		return nil, e.rejectSignIn(ctx, email, ip, "no_local_password")
	}

	ok, err := e.passwordHash.Verify(plaintext, record.PasswordHash)
	if err != nil || !ok {
		return nil, e.rejectSignIn(ctx, email, ip, "verification_failed")
	}

	if e.throttle != nil {
		// Best-effort; a reset failure must not block the sign-in.
		_ = e.throttle.Reset(ctx, email, ip)
	}

	e.maybeUpgradeHash(ctx, record, plaintext)

	e.metricInc(MetricSignInSuccess)
	e.emitAudit(ctx, auditEventSignInSuccess, true, record.ID, record.Provider, nil, nil)
	return record.Sanitize(), nil
}

func (e *Engine) rejectSignIn(ctx context.Context, email, ip, reason string) error {
	if e.throttle != nil {
		_ = e.throttle.RecordFailure(ctx, email, ip)
	}
	e.metricInc(MetricSignInFailure)
	e.emitAudit(ctx, auditEventSignInFailure, false, "", "", ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	return ErrInvalidCredentials
}

// maybeUpgradeHash rehashes a verified password when the stored digest is
// legacy bcrypt or under-parameterized. Failures are swallowed: the user
// already proved the password, and the old digest keeps working.
func (e *Engine) maybeUpgradeHash(ctx context.Context, record *UserRecord, plaintext string) {
	if !e.config.SignInUpgrade.Enabled {
		return
	}

	needs, err := e.passwordHash.NeedsRehash(record.PasswordHash)
	if err != nil || !needs {
		return
	}

	upgraded, err := e.passwordHash.Hash(plaintext)
	if err != nil {
		return
	}
	if _, err := e.userStore.UpdateFields(ctx, record.ID, UserFields{PasswordHash: &upgraded}); err != nil {
		return
	}

	e.metricInc(MetricSignInHashUpgraded)
	e.emitAudit(ctx, auditEventSignInHashUpgrade, true, record.ID, record.Provider, nil, nil)
}
