package credauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/hexfray/credauth/password"
)

type mockUserStore struct {
	mu      sync.Mutex
	byID    map[string]UserRecord
	byEmail map[string]string

	findEmailErr error
	findIDErr    error
	insertErr    error
	updateErr    error

	findEmailCalls int
	findIDCalls    int
	insertCalls    int
	updateCalls    int
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{
		byID:    make(map[string]UserRecord),
		byEmail: make(map[string]string),
	}
}

func (m *mockUserStore) seed(record UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[record.ID] = record
	m.byEmail[record.Email] = record.ID
}

func (m *mockUserStore) get(id string) (UserRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.byID[id]
	return record, ok
}

func (m *mockUserStore) FindByEmail(_ context.Context, email string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.findEmailCalls++
	if m.findEmailErr != nil {
		return nil, m.findEmailErr
	}

	id, ok := m.byEmail[email]
	if !ok {
		return nil, nil
	}
	record := m.byID[id]
	return &record, nil
}

func (m *mockUserStore) FindByID(_ context.Context, id string) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.findIDCalls++
	if m.findIDErr != nil {
		return nil, m.findIDErr
	}

	record, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (m *mockUserStore) Insert(_ context.Context, record UserRecord) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCalls++
	if m.insertErr != nil {
		return nil, m.insertErr
	}

	record.ID = fmt.Sprintf("u%d", len(m.byID)+1)
	m.byID[record.ID] = record
	m.byEmail[record.Email] = record.ID
	return &record, nil
}

func (m *mockUserStore) UpdateFields(_ context.Context, id string, fields UserFields) (*UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateCalls++
	if m.updateErr != nil {
		return nil, m.updateErr
	}

	record, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	if fields.Name != nil {
		record.Name = *fields.Name
	}
	if fields.PasswordHash != nil {
		record.PasswordHash = *fields.PasswordHash
	}
	m.byID[id] = record
	return &record, nil
}

func testPasswordConfig() PasswordConfig {
	// Minimum-cost parameters keep the test suite fast.
	return PasswordConfig{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func testHash(t *testing.T, plaintext string) string {
	t.Helper()

	cfg := testPasswordConfig()
	hasher, err := password.New(password.Config{
		Memory:      cfg.Memory,
		Time:        cfg.Time,
		Parallelism: cfg.Parallelism,
		SaltLength:  cfg.SaltLength,
		KeyLength:   cfg.KeyLength,
	})
	if err != nil {
		t.Fatalf("password.New error: %v", err)
	}
	digest, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	return digest
}

func newTestEngine(t *testing.T, store UserStore) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Password = testPasswordConfig()
	cfg.Audit.Enabled = false

	engine, err := New().WithConfig(cfg).WithUserStore(store).Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func TestBuildRequiresUserStore(t *testing.T) {
	if _, err := New().Build(); !errors.Is(err, ErrUserStoreRequired) {
		t.Fatalf("expected ErrUserStoreRequired, got %v", err)
	}
}

func TestBuildOnlyOnce(t *testing.T) {
	builder := New().WithUserStore(newMockUserStore())

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := builder.Build(); !errors.Is(err, ErrEngineAlreadyBuilt) {
		t.Fatalf("expected ErrEngineAlreadyBuilt, got %v", err)
	}
}

func TestBuildThrottleNeedsRedis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = testPasswordConfig()
	cfg.Throttle.Enabled = true

	if _, err := New().WithConfig(cfg).WithUserStore(newMockUserStore()).Build(); !errors.Is(err, ErrRedisRequired) {
		t.Fatalf("expected ErrRedisRequired, got %v", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = testPasswordConfig()
	cfg.Throttle.Enabled = true
	cfg.Throttle.MaxAttempts = 0

	if _, err := New().WithConfig(cfg).WithUserStore(newMockUserStore()).Build(); err == nil {
		t.Fatal("expected config rejection")
	}
}
