package credauth

import (
	"errors"
	"time"
)

// Config defines the engine's tuning parameters. It is consumed once by
// [Builder.Build]; mutating it afterwards has no effect on a built Engine.
type Config struct {
	Password      PasswordConfig
	SignInUpgrade SignInUpgradeConfig
	Throttle      SignInThrottleConfig
	Audit         AuditConfig
	Metrics       MetricsConfig
}

// PasswordConfig holds argon2id parameters for new hashes. Verification
// reads parameters out of the stored digest, so raising these values only
// affects hashes written after the change.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// SignInUpgradeConfig controls opportunistic rehashing after a successful
// sign-in. When enabled, digests that are legacy bcrypt or weaker than the
// current [PasswordConfig] are replaced best-effort; an upgrade failure
// never fails the sign-in itself.
type SignInUpgradeConfig struct {
	Enabled bool
}

// SignInThrottleConfig configures the optional Redis-backed sign-in
// throttle. Disabled by default; when enabled, Build requires a Redis
// client.
type SignInThrottleConfig struct {
	Enabled bool
	// RedisPrefix namespaces the throttle counters. Defaults to "credauth".
	RedisPrefix      string
	MaxAttempts      int
	Cooldown         time.Duration
	EnableIPThrottle bool
}

// AuditConfig configures the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull makes Emit non-blocking: events beyond the buffer are
	// counted and discarded instead of backpressuring engine operations.
	DropIfFull bool
}

// MetricsConfig enables the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the engine ships with: OWASP
// argon2id baseline parameters, rehash-on-sign-in enabled, throttling off,
// audit and metrics on.
func DefaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		SignInUpgrade: SignInUpgradeConfig{Enabled: true},
		Throttle: SignInThrottleConfig{
			Enabled:          false,
			MaxAttempts:      10,
			Cooldown:         15 * time.Minute,
			EnableIPThrottle: true,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Throttle.Enabled {
		if cfg.Throttle.MaxAttempts <= 0 {
			return errors.New("throttle max attempts must be > 0")
		}
		if cfg.Throttle.Cooldown <= 0 {
			return errors.New("throttle cooldown must be > 0")
		}
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize < 0 {
		return errors.New("audit buffer size must be >= 0")
	}
	return nil
}
