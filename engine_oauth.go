package credauth

import "context"

// UpsertOAuthUser materializes a local account the first time an external
// identity provider authenticates an email, and is a no-op on every later
// call for that email.
//
// First provider wins: an existing record is returned untouched even when
// the profile arrives under a different provider or with a changed name or
// picture. Refreshing those fields would silently rewrite account
// provenance, so the engine deliberately does not.
func (e *Engine) UpsertOAuthUser(ctx context.Context, profile OAuthProfile) (*User, error) {
	if e == nil || e.userStore == nil {
		return nil, ErrEngineNotReady
	}

	if profile.Email == "" || profile.Provider == "" {
		e.emitAudit(ctx, auditEventOAuthUpsertFailed, false, "", profile.Provider, ErrOAuthProfileIncomplete, nil)
		return nil, ErrOAuthProfileIncomplete
	}

	existing, err := e.userStore.FindByEmail(ctx, profile.Email)
	if err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventOAuthUpsertFailed, false, "", profile.Provider, ErrStoreUnavailable, nil)
		return nil, storeFailure(err)
	}
	if existing != nil {
		e.metricInc(MetricOAuthUserExisting)
		e.emitAudit(ctx, auditEventOAuthUserExisting, true, existing.ID, existing.Provider, nil, func() map[string]string {
			return map[string]string{"attempted_provider": string(profile.Provider)}
		})
		return existing.Sanitize(), nil
	}

	created, err := e.userStore.Insert(ctx, UserRecord{
		Email:    profile.Email,
		Name:     profile.Name,
		Picture:  profile.Picture,
		Provider: profile.Provider,
		// No password hash: OAuth accounts have no local password.
	})
	if err != nil {
		e.metricInc(MetricStoreFailure)
		e.emitAudit(ctx, auditEventOAuthUpsertFailed, false, "", profile.Provider, ErrStoreUnavailable, nil)
		return nil, storeFailure(err)
	}

	e.metricInc(MetricOAuthUserCreated)
	e.emitAudit(ctx, auditEventOAuthUserCreated, true, created.ID, created.Provider, nil, nil)
	return created.Sanitize(), nil
}
