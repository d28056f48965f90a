package credauth

import (
	"context"
	"time"
)

const (
	auditEventSignInSuccess     = "sign_in_success"
	auditEventSignInFailure     = "sign_in_failure"
	auditEventSignInRateLimited = "sign_in_rate_limited"
	auditEventSignInHashUpgrade = "sign_in_hash_upgraded"

	auditEventPasswordChangeSuccess      = "password_change_success"
	auditEventPasswordChangeIncorrectOld = "password_change_incorrect_old"
	auditEventPasswordChangeMismatch     = "password_change_provider_mismatch"
	auditEventPasswordChangeFailure      = "password_change_failure"

	auditEventProfileUpdateSuccess = "profile_update_success"
	auditEventProfileUpdateFailure = "profile_update_failure"

	auditEventOAuthUserCreated  = "oauth_user_created"
	auditEventOAuthUserExisting = "oauth_user_existing"
	auditEventOAuthUpsertFailed = "oauth_upsert_failed"
)

// emitAudit queues one event. metadata is built lazily so failure paths
// that are never audited (audit disabled) pay no allocation.
func (e *Engine) emitAudit(ctx context.Context, eventType string, success bool, userID string, provider Provider, failure error, metadata func() map[string]string) {
	if e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		Provider:  string(provider),
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	e.audit.Emit(ctx, event)
}
