package credauth

import "context"

// UpdateProfile changes the signed-in user's display name and returns the
// updated sanitized record. Name is the only field this operation can
// touch; email, provider, and password hash are not reachable through it.
func (e *Engine) UpdateProfile(ctx context.Context, sess *SessionState, name string) (*User, error) {
	if e == nil || e.userStore == nil {
		return nil, ErrEngineNotReady
	}

	if sess == nil || sess.UserID == "" {
		e.emitAudit(ctx, auditEventProfileUpdateFailure, false, "", "", ErrUnauthenticated, nil)
		return nil, ErrUnauthenticated
	}

	updated, err := e.userStore.UpdateFields(ctx, sess.UserID, UserFields{Name: &name})
	if err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventProfileUpdateFailure, false, sess.UserID, sess.Provider, ErrStoreUnavailable, nil)
		return nil, storeFailure(err)
	}
	if updated == nil {
		e.emitAudit(ctx, auditEventProfileUpdateFailure, false, sess.UserID, sess.Provider, ErrUserNotFound, nil)
		return nil, ErrUserNotFound
	}

	e.metricInc(MetricProfileUpdateSuccess)
	e.emitAudit(ctx, auditEventProfileUpdateSuccess, true, updated.ID, sess.Provider, nil, nil)
	return updated.Sanitize(), nil
}
