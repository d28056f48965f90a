package credauth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

func TestSignInSuccess(t *testing.T) {
	store := newMockUserStore()
	store.seed(UserRecord{
		ID:           "u1",
		Email:        "a@x.com",
		Name:         "Alice",
		Provider:     ProviderCredentials,
		PasswordHash: testHash(t, "secret"),
	})
	engine := newTestEngine(t, store)

	user, err := engine.SignIn(context.Background(), "a@x.com", "secret")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
	if user.ID != "u1" || user.Email != "a@x.com" || user.Name != "Alice" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.Provider != ProviderCredentials {
		t.Fatalf("unexpected provider: %s", user.Provider)
	}
	if got := engine.MetricsSnapshot().Counters[MetricSignInSuccess]; got != 1 {
		t.Fatalf("expected 1 sign-in success, got %d", got)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	store := newMockUserStore()
	store.seed(UserRecord{
		ID:           "u1",
		Email:        "a@x.com",
		Provider:     ProviderCredentials,
		PasswordHash: testHash(t, "secret"),
	})
	engine := newTestEngine(t, store)

	if _, err := engine.SignIn(context.Background(), "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignInFailuresAreIndistinguishable(t *testing.T) {
	store := newMockUserStore()
	// OAuth-only account: no local password.
	store.seed(UserRecord{
		ID:       "u2",
		Email:    "b@x.com",
		Provider: ProviderGoogle,
	})
	engine := newTestEngine(t, store)
	ctx := context.Background()

	_, unknownErr := engine.SignIn(ctx, "ghost@x.com", "whatever")
	_, passwordlessErr := engine.SignIn(ctx, "b@x.com", "whatever")

	if !errors.Is(unknownErr, ErrInvalidCredentials) || !errors.Is(passwordlessErr, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", unknownErr, passwordlessErr)
	}
	if unknownErr.Error() != passwordlessErr.Error() {
		t.Fatalf("expected identical messages, got %q / %q", unknownErr, passwordlessErr)
	}
}

func TestSignInEmptyInput(t *testing.T) {
	store := newMockUserStore()
	engine := newTestEngine(t, store)
	ctx := context.Background()

	if _, err := engine.SignIn(ctx, "", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := engine.SignIn(ctx, "a@x.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.findEmailCalls != 0 {
		t.Fatalf("expected no store lookups for empty input, got %d", store.findEmailCalls)
	}
}

func TestSignInStoreFailure(t *testing.T) {
	store := newMockUserStore()
	store.findEmailErr = errors.New("connection refused")
	engine := newTestEngine(t, store)

	_, err := engine.SignIn(context.Background(), "a@x.com", "secret")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("store failure must not read as a credential failure")
	}
}

func TestSignInNeverReturnsHash(t *testing.T) {
	store := newMockUserStore()
	digest := testHash(t, "secret")
	store.seed(UserRecord{
		ID:           "u1",
		Email:        "a@x.com",
		Provider:     ProviderCredentials,
		PasswordHash: digest,
	})
	engine := newTestEngine(t, store)

	user, err := engine.SignIn(context.Background(), "a@x.com", "secret")
	if err != nil {
		t.Fatalf("SignIn error: %v", err)
	}

	// The sanitized view has no hash field; make sure nothing resembling
	// the digest leaks through the string fields either.
	for _, field := range []string{user.ID, user.Email, user.Name, user.Picture, string(user.Provider)} {
		if strings.Contains(field, digest) || strings.Contains(field, "$argon2id$") {
			t.Fatalf("digest leaked into sanitized user: %+v", user)
		}
	}
}

func TestSignInUpgradesLegacyBcryptHash(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	store := newMockUserStore()
	store.seed(UserRecord{
		ID:           "u1",
		Email:        "a@x.com",
		Provider:     ProviderCredentials,
		PasswordHash: string(legacy),
	})
	engine := newTestEngine(t, store)
	ctx := context.Background()

	if _, err := engine.SignIn(ctx, "a@x.com", "secret"); err != nil {
		t.Fatalf("SignIn error: %v", err)
	}

	record, ok := store.get("u1")
	if !ok {
		t.Fatal("record vanished")
	}
	if !strings.HasPrefix(record.PasswordHash, "$argon2id$") {
		t.Fatalf("expected rehashed digest, got %q", record.PasswordHash)
	}
	if got := engine.MetricsSnapshot().Counters[MetricSignInHashUpgraded]; got != 1 {
		t.Fatalf("expected 1 hash upgrade, got %d", got)
	}

	// The upgraded digest still verifies.
	if _, err := engine.SignIn(ctx, "a@x.com", "secret"); err != nil {
		t.Fatalf("SignIn after upgrade error: %v", err)
	}
}

func TestSignInUpgradeFailureDoesNotBlockSignIn(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	store := newMockUserStore()
	store.seed(UserRecord{
		ID:           "u1",
		Email:        "a@x.com",
		Provider:     ProviderCredentials,
		PasswordHash: string(legacy),
	})
	store.updateErr = errors.New("write refused")
	engine := newTestEngine(t, store)

	if _, err := engine.SignIn(context.Background(), "a@x.com", "secret"); err != nil {
		t.Fatalf("SignIn error: %v", err)
	}
}

func TestSignInThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newMockUserStore()
	store.seed(UserRecord{
		ID:           "u1",
		Email:        "a@x.com",
		Provider:     ProviderCredentials,
		PasswordHash: testHash(t, "secret"),
	})

	cfg := DefaultConfig()
	cfg.Password = testPasswordConfig()
	cfg.Audit.Enabled = false
	cfg.Throttle.Enabled = true
	cfg.Throttle.MaxAttempts = 2

	engine, err := New().WithConfig(cfg).WithRedis(client).WithUserStore(store).Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := engine.SignIn(ctx, "a@x.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Budget exhausted: even the correct password is rejected before
	// verification.
	if _, err := engine.SignIn(ctx, "a@x.com", "secret"); !errors.Is(err, ErrSignInRateLimited) {
		t.Fatalf("expected ErrSignInRateLimited, got %v", err)
	}

	mr.FastForward(cfg.Throttle.Cooldown + 1)

	user, err := engine.SignIn(ctx, "a@x.com", "secret")
	if err != nil {
		t.Fatalf("SignIn after cooldown error: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestSignInOnNilEngine(t *testing.T) {
	var engine *Engine
	if _, err := engine.SignIn(context.Background(), "a@x.com", "secret"); !errors.Is(err, ErrEngineNotReady) {
		t.Fatalf("expected ErrEngineNotReady, got %v", err)
	}
}
