package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a session id does not resolve or the
// session has expired.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionCorrupt is returned when a stored session value cannot be
// decoded.
var ErrSessionCorrupt = errors.New("session corrupt")

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

const minTTL = time.Second

// Config tunes session storage.
type Config struct {
	// RedisPrefix namespaces all keys written by the store.
	RedisPrefix string
	// TTL is the session lifetime. Values below one second are rejected.
	TTL time.Duration
	// Sliding renews the TTL on every successful Get.
	Sliding bool
}

// Store persists sessions in Redis under opaque UUID identifiers. Each user
// additionally gets an index set of live session ids so all sessions for a
// user can be revoked in one call.
type Store struct {
	redis  redis.UniversalClient
	config Config
}

// NewStore validates cfg and returns a Store backed by client.
func NewStore(client redis.UniversalClient, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.TTL < minTTL {
		return nil, errors.New("session TTL must be >= 1s")
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "credauth"
	}
	return &Store{redis: client, config: cfg}, nil
}

// Create mints a session for userID established via provider and persists
// it with the configured TTL.
func (s *Store) Create(ctx context.Context, userID, provider string) (*Session, error) {
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Provider:  provider,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(s.config.TTL).Unix(),
	}

	blob, err := Encode(sess)
	if err != nil {
		return nil, err
	}

	pipe := s.redis.TxPipeline()
	pipe.Set(ctx, s.sessionKey(sess.ID), blob, s.config.TTL)
	pipe.SAdd(ctx, s.userKey(userID), sess.ID)
	pipe.Expire(ctx, s.userKey(userID), s.config.TTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return sess, nil
}

// Get resolves a session id. Expired and unknown ids both return
// [ErrSessionNotFound]. With Sliding enabled, a hit renews the TTL.
func (s *Store) Get(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	blob, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	sess.ID = sessionID

	// Redis TTL normally reaps expired sessions; the timestamp check covers
	// values written by a store configured with a longer TTL.
	if sess.ExpiresAt <= time.Now().Unix() {
		_ = s.Delete(ctx, sessionID)
		return nil, ErrSessionNotFound
	}

	if s.config.Sliding {
		sess.ExpiresAt = time.Now().Add(s.config.TTL).Unix()
		if renewed, err := Encode(sess); err == nil {
			pipe := s.redis.TxPipeline()
			pipe.Set(ctx, s.sessionKey(sessionID), renewed, s.config.TTL)
			pipe.Expire(ctx, s.userKey(sess.UserID), s.config.TTL)
			_, _ = pipe.Exec(ctx)
		}
	}

	return sess, nil
}

// Delete removes one session. Deleting an unknown id is a no-op. The raw
// value is read directly, bypassing Get, so a sliding store never renews a
// session it is about to delete.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	raw, err := s.redis.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, s.sessionKey(sessionID))
	// A corrupt value still gets deleted; it just cannot be unlinked from
	// its user index.
	if sess, decErr := Decode(raw); decErr == nil {
		pipe.SRem(ctx, s.userKey(sess.UserID), sessionID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// DeleteAllForUser revokes every live session of userID. Callers typically
// invoke it after a password change.
func (s *Store) DeleteAllForUser(ctx context.Context, userID string) error {
	ids, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, s.sessionKey(id))
	}
	keys = append(keys, s.userKey(userID))

	if err := s.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) sessionKey(sessionID string) string {
	return s.config.RedisPrefix + ":s:" + sessionID
}

func (s *Store) userKey(userID string) string {
	return s.config.RedisPrefix + ":u:" + userID
}
