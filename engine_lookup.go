package credauth

import "context"

// GetUserByEmail returns the sanitized user registered under email, or
// [ErrUserNotFound]. A store outage surfaces as [ErrStoreUnavailable], never
// as a missing user.
//
// The lookup is a plain read: it consumes no throttle attempt and emits no
// audit event.
func (e *Engine) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if e == nil || e.userStore == nil {
		return nil, ErrEngineNotReady
	}
	if email == "" {
		return nil, ErrUserNotFound
	}

	record, err := e.userStore.FindByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricStoreFailure)
		return nil, storeFailure(err)
	}
	if record == nil {
		return nil, ErrUserNotFound
	}
	return record.Sanitize(), nil
}
