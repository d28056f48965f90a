package credauth

import (
	"context"
	"fmt"
)

// ChangePassword replaces the password of the signed-in user identified by
// sess. Only sessions established with the local credential scheme may
// change a password: an OAuth session has no local password to change
// relative to, and honoring one would let a hijacked OAuth session plant a
// local backdoor password. The rejection names the provider actually used.
//
// The stored hash is replaced with a single store update; no intermediate
// state is observable. Existing sessions are not revoked here — session
// lifecycle belongs to the caller.
func (e *Engine) ChangePassword(ctx context.Context, sess *SessionState, oldPassword, newPassword string) error {
	if e == nil || e.userStore == nil || e.passwordHash == nil {
		return ErrEngineNotReady
	}

	if sess == nil || sess.UserID == "" {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, "", "", ErrUnauthenticated, nil)
		return ErrUnauthenticated
	}

	if sess.Provider != ProviderCredentials {
		mismatch := &ProviderMismatchError{Provider: sess.Provider}
		e.metricInc(MetricPasswordChangeProviderMismatch)
		e.emitAudit(ctx, auditEventPasswordChangeMismatch, false, sess.UserID, sess.Provider, mismatch, nil)
		return mismatch
	}

	record, err := e.userStore.FindByID(ctx, sess.UserID)
	if err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, sess.UserID, sess.Provider, ErrStoreUnavailable, nil)
		return storeFailure(err)
	}
	if record == nil || record.PasswordHash == "" {
		// Unreachable given the provider check unless the stored data
		// drifted; checked anyway.
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, sess.UserID, sess.Provider, ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	ok, err := e.passwordHash.Verify(oldPassword, record.PasswordHash)
	if err != nil || !ok {
		e.metricInc(MetricPasswordChangeIncorrectOld)
		e.emitAudit(ctx, auditEventPasswordChangeIncorrectOld, false, record.ID, sess.Provider, ErrIncorrectPassword, nil)
		return ErrIncorrectPassword
	}

	replacement, err := e.passwordHash.Hash(newPassword)
	if err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, record.ID, sess.Provider, err, func() map[string]string {
			return map[string]string{"reason": "hash_failed"}
		})
		return fmt.Errorf("hash new password: %w", err)
	}

	updated, err := e.userStore.UpdateFields(ctx, record.ID, UserFields{PasswordHash: &replacement})
	if err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, record.ID, sess.Provider, ErrStoreUnavailable, nil)
		return storeFailure(err)
	}
	if updated == nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, record.ID, sess.Provider, ErrUserNotFound, nil)
		return ErrUserNotFound
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, record.ID, sess.Provider, nil, nil)
	return nil
}
