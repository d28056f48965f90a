package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned when an identifier or IP exhausted its attempt
// budget for the current window.
var ErrRateLimited = errors.New("rate limited")

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Config holds throttle tuning parameters.
type Config struct {
	// RedisPrefix namespaces all counter keys. Defaults to "credauth".
	RedisPrefix      string
	MaxAttempts      int
	Cooldown         time.Duration
	EnableIPThrottle bool
}

// Limiter enforces per-email and per-IP sign-in attempt budgets using
// Redis fixed-window counters.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a Limiter backed by the given Redis client.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "credauth"
	}
	return &Limiter{redis: client, config: cfg}
}

// Check reports whether the email+IP pair is still within its attempt
// budget. It does not consume an attempt.
func (l *Limiter) Check(ctx context.Context, email, ip string) error {
	if err := l.checkCounter(ctx, l.emailKey(email)); err != nil {
		return err
	}
	if l.config.EnableIPThrottle && ip != "" {
		return l.checkCounter(ctx, l.ipKey(ip))
	}
	return nil
}

// RecordFailure consumes one attempt for the email+IP pair. It returns
// [ErrRateLimited] when this failure crossed the budget.
func (l *Limiter) RecordFailure(ctx context.Context, email, ip string) error {
	count, err := l.increment(ctx, l.emailKey(email))
	if err != nil {
		return err
	}
	if count > int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}

	if l.config.EnableIPThrottle && ip != "" {
		count, err = l.increment(ctx, l.ipKey(ip))
		if err != nil {
			return err
		}
		if count > int64(l.config.MaxAttempts) {
			return ErrRateLimited
		}
	}
	return nil
}

// Reset clears the counters for the email+IP pair. Called after a
// successful sign-in.
func (l *Limiter) Reset(ctx context.Context, email, ip string) error {
	keys := []string{l.emailKey(email)}
	if l.config.EnableIPThrottle && ip != "" {
		keys = append(keys, l.ipKey(ip))
	}
	if err := l.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (l *Limiter) checkCounter(ctx context.Context, key string) error {
	count, err := l.redis.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxAttempts) {
		return ErrRateLimited
	}
	return nil
}

func (l *Limiter) increment(ctx context.Context, key string) (int64, error) {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.config.Cooldown).Err(); err != nil {
			return count, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
	}
	return count, nil
}

func (l *Limiter) emailKey(email string) string {
	return l.config.RedisPrefix + ":se:" + email
}

func (l *Limiter) ipKey(ip string) string {
	return l.config.RedisPrefix + ":si:" + ip
}
