package password

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func testConfig() Config {
	return Config{
		Memory:      16384,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	digest, err := hasher.Hash("correct-horse-battery")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(digest, "$argon2id$v=19$m=16384,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", digest)
	}

	ok, err := hasher.Verify("correct-horse-battery", digest)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected verification to succeed")
	}
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	digest, err := hasher.Hash("correct-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	ok, err := hasher.Verify("wrong-password", digest)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password verification to fail")
	}
}

func TestHashesAreSalted(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	first, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	second, err := hasher.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct digests for the same password")
	}
}

func TestVerifyBcryptLegacy(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	legacy, err := bcrypt.GenerateFromPassword([]byte("migrated-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}

	ok, err := hasher.Verify("migrated-secret", string(legacy))
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("expected legacy bcrypt digest to verify")
	}

	ok, err = hasher.Verify("not-the-secret", string(legacy))
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("expected wrong password against bcrypt digest to fail")
	}
}

func TestNeedsRehash(t *testing.T) {
	weak, err := New(Config{
		Memory:      8192,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("New(weak) error: %v", err)
	}
	weakDigest, err := weak.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	strong, err := New(Config{
		Memory:      65536,
		Time:        3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	})
	if err != nil {
		t.Fatalf("New(strong) error: %v", err)
	}

	upgrade, err := strong.NeedsRehash(weakDigest)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected NeedsRehash for weaker parameters")
	}

	strongDigest, err := strong.Hash("test-password")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	upgrade, err = strong.NeedsRehash(strongDigest)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if upgrade {
		t.Fatal("did not expect NeedsRehash for current parameters")
	}

	legacy, err := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt error: %v", err)
	}
	upgrade, err = strong.NeedsRehash(string(legacy))
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected NeedsRehash for bcrypt digest")
	}
}

func TestVerifyRejectsMalformedDigests(t *testing.T) {
	hasher, err := New(testConfig())
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	cases := []string{
		"",
		"plaintext",
		"$argon2i$v=19$m=16384,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=18$m=16384,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=16384,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=16384,t=1,p=1$%%%$aGFzaA",
	}
	for _, digest := range cases {
		if _, err := hasher.Verify("whatever", digest); err == nil {
			t.Fatalf("expected error for malformed digest %q", digest)
		}
	}
}

func TestNewRejectsWeakConfig(t *testing.T) {
	cases := []Config{
		{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: 16384, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 32},
		{Memory: 16384, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 32},
		{Memory: 16384, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 32},
		{Memory: 16384, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8},
	}
	for i, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Fatalf("case %d: expected config rejection", i)
		}
	}
}
