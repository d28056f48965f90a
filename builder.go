package credauth

import (
	"github.com/redis/go-redis/v9"

	"github.com/hexfray/credauth/internal/rate"
	"github.com/hexfray/credauth/password"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens before the first Engine method call.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	userStore UserStore
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{config: DefaultConfig()}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis supplies the Redis client backing the optional sign-in
// throttle. Only required when Config.Throttle.Enabled is set.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserStore supplies the credential store. Required.
func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

// WithAuditSink supplies the audit event consumer. Optional; without one,
// an enabled audit config dispatches to a no-op sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and wires the engine. A Builder can
// build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrEngineAlreadyBuilt
	}
	if b.userStore == nil {
		return nil, ErrUserStoreRequired
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	hasher, err := password.New(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:       b.config,
		userStore:    b.userStore,
		passwordHash: hasher,
		audit:        newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:      newMetrics(b.config.Metrics),
	}

	if b.config.Throttle.Enabled {
		if b.redis == nil {
			engine.Close()
			return nil, ErrRedisRequired
		}
		engine.throttle = rate.New(b.redis, rate.Config{
			RedisPrefix:      b.config.Throttle.RedisPrefix,
			MaxAttempts:      b.config.Throttle.MaxAttempts,
			Cooldown:         b.config.Throttle.Cooldown,
			EnableIPThrottle: b.config.Throttle.EnableIPThrottle,
		})
	}

	b.built = true
	return engine, nil
}
