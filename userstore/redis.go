package userstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hexfray/credauth"
)

// ErrEmailTaken is returned by Insert when another account already owns the
// email address.
var ErrEmailTaken = errors.New("email already registered")

// ErrRedisUnavailable wraps Redis transport failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Insert claims the email index and writes the document only if the email
// was free.
const insertScript = `
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("SET", KEYS[2], ARGV[2])
return 1
`

// UpdateFields rewrites the whole document in one script call so a reader
// never observes a half-applied update.
const updateScript = `
local raw = redis.call("GET", KEYS[1])
if not raw then
  return false
end
local doc = cjson.decode(raw)
if ARGV[1] == "1" then
  doc["name"] = ARGV[2]
end
if ARGV[3] == "1" then
  doc["password_hash"] = ARGV[4]
end
local updated = cjson.encode(doc)
redis.call("SET", KEYS[1], updated)
return updated
`

var (
	insertLua = redis.NewScript(insertScript)
	updateLua = redis.NewScript(updateScript)
)

type userDoc struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Picture      string `json:"picture,omitempty"`
	Provider     string `json:"provider"`
	PasswordHash string `json:"password_hash,omitempty"`
}

func docFromRecord(r credauth.UserRecord) userDoc {
	return userDoc{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		Picture:      r.Picture,
		Provider:     string(r.Provider),
		PasswordHash: r.PasswordHash,
	}
}

func (d userDoc) record() *credauth.UserRecord {
	return &credauth.UserRecord{
		ID:           d.ID,
		Email:        d.Email,
		Name:         d.Name,
		Picture:      d.Picture,
		Provider:     credauth.Provider(d.Provider),
		PasswordHash: d.PasswordHash,
	}
}

// RedisConfig tunes the Redis document store.
type RedisConfig struct {
	// RedisPrefix namespaces all keys written by the store.
	RedisPrefix string
}

// Redis is a credauth.UserStore backed by Redis JSON documents.
type Redis struct {
	redis  redis.UniversalClient
	config RedisConfig
}

// NewRedis returns a Redis user store backed by client.
func NewRedis(client redis.UniversalClient, cfg RedisConfig) (*Redis, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.RedisPrefix == "" {
		cfg.RedisPrefix = "credauth:users"
	}
	return &Redis{redis: client, config: cfg}, nil
}

// FindByEmail resolves the email index and loads the document. A missing
// index entry or document is a miss, not an error.
func (s *Redis) FindByEmail(ctx context.Context, email string) (*credauth.UserRecord, error) {
	id, err := s.redis.Get(ctx, s.emailKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return s.FindByID(ctx, id)
}

// FindByID loads one document. A missing document is a miss, not an error.
func (s *Redis) FindByID(ctx context.Context, id string) (*credauth.UserRecord, error) {
	raw, err := s.redis.Get(ctx, s.docKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	var doc userDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode user document %s: %w", id, err)
	}
	return doc.record(), nil
}

// Insert assigns a fresh id, claims the email index, and writes the
// document. Returns [ErrEmailTaken] if the email is already indexed.
func (s *Redis) Insert(ctx context.Context, record credauth.UserRecord) (*credauth.UserRecord, error) {
	if record.Email == "" {
		return nil, errors.New("email is required")
	}

	record.ID = uuid.NewString()
	raw, err := json.Marshal(docFromRecord(record))
	if err != nil {
		return nil, err
	}

	claimed, err := insertLua.Run(ctx, s.redis,
		[]string{s.emailKey(record.Email), s.docKey(record.ID)},
		record.ID, raw,
	).Int()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if claimed == 0 {
		return nil, ErrEmailTaken
	}

	return &record, nil
}

// UpdateFields applies a partial update atomically and returns the updated
// record, or (nil, nil) when the id does not resolve.
func (s *Redis) UpdateFields(ctx context.Context, id string, fields credauth.UserFields) (*credauth.UserRecord, error) {
	setName, name := "0", ""
	if fields.Name != nil {
		setName, name = "1", *fields.Name
	}
	setHash, hash := "0", ""
	if fields.PasswordHash != nil {
		setHash, hash = "1", *fields.PasswordHash
	}

	res, err := updateLua.Run(ctx, s.redis,
		[]string{s.docKey(id)},
		setName, name, setHash, hash,
	).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	raw, ok := res.(string)
	if !ok {
		return nil, nil
	}

	var doc userDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode user document %s: %w", id, err)
	}
	return doc.record(), nil
}

func (s *Redis) docKey(id string) string {
	return s.config.RedisPrefix + ":d:" + id
}

func (s *Redis) emailKey(email string) string {
	return s.config.RedisPrefix + ":e:" + email
}
