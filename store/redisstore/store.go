package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goCred "github.com/MrEthical07/goCred"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis command failure.
var ErrRedisUnavailable = errors.New("redis unavailable")

// ErrDuplicateUser is returned by Create when the username or email is already indexed.
var ErrDuplicateUser = errors.New("username or email already registered")

const (
	fieldID           = "id"
	fieldUsername     = "username"
	fieldEmail        = "email"
	fieldPasswordHash = "password_hash"
)

// KEYS[1] user hash, KEYS[2] username index, KEYS[3] email index (may be "").
// ARGV: id, username, email, password_hash.
const createUserScript = `
if redis.call("EXISTS", KEYS[2]) == 1 then
  return 0
end
if KEYS[3] ~= "" and redis.call("EXISTS", KEYS[3]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "id", ARGV[1], "username", ARGV[2], "email", ARGV[3], "password_hash", ARGV[4])
redis.call("SET", KEYS[2], ARGV[1])
if KEYS[3] ~= "" then
  redis.call("SET", KEYS[3], ARGV[1])
end
return 1
`

var createUserLua = redis.NewScript(createUserScript)

// Only rewrites password_hash of an existing user; never creates a partial hash.
const updatePasswordHashScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1])
return 1
`

var updatePasswordHashLua = redis.NewScript(updatePasswordHashScript)

// NewUser is the input to [Store.Create].
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}

// Store is a Redis-backed [goCred.UserProvider].
//
// Layout, with prefix p:
//
//	p:user:<id>          hash {id, username, email, password_hash}
//	p:username:<lower>   string -> id
//	p:email:<lower>      string -> id
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

var _ goCred.UserProvider = (*Store)(nil)

// New returns a Store using client. An empty prefix defaults to "gc".
func New(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "gc"
	}
	return &Store{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Store) userKey(id string) string {
	return s.prefix + ":user:" + id
}

func (s *Store) indexKey(kind goCred.IdentifierKind, identifier string) string {
	return s.prefix + ":" + kind.String() + ":" + strings.ToLower(strings.TrimSpace(identifier))
}

// Create stores a new user under a fresh UUID and indexes its username and email.
func (s *Store) Create(ctx context.Context, in NewUser) (goCred.UserRecord, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if username == "" {
		return goCred.UserRecord{}, errors.New("username required")
	}

	id := uuid.NewString()
	emailKey := ""
	if email != "" {
		emailKey = s.indexKey(goCred.IdentifierEmail, email)
	}

	created, err := createUserLua.Run(ctx, s.redis,
		[]string{s.userKey(id), s.indexKey(goCred.IdentifierUsername, username), emailKey},
		id, username, email, in.PasswordHash,
	).Int64()
	if err != nil {
		return goCred.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if created == 0 {
		return goCred.UserRecord{}, ErrDuplicateUser
	}

	return goCred.UserRecord{
		UserID:       id,
		Username:     username,
		Email:        email,
		PasswordHash: in.PasswordHash,
	}, nil
}

// GetUserByIdentifier resolves identifier through the matching index and loads the user.
// A dangling index entry is reported as [goCred.ErrUserNotFound].
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string, kind goCred.IdentifierKind) (goCred.UserRecord, error) {
	id, err := s.redis.Get(ctx, s.indexKey(kind, identifier)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return goCred.UserRecord{}, goCred.ErrUserNotFound
		}
		return goCred.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID loads a user by its ID.
func (s *Store) GetUserByID(ctx context.Context, id string) (goCred.UserRecord, error) {
	fields, err := s.redis.HGetAll(ctx, s.userKey(id)).Result()
	if err != nil {
		return goCred.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return goCred.UserRecord{}, goCred.ErrUserNotFound
	}

	return recordFromHash(fields), nil
}

// UpdatePasswordHash overwrites the stored credential of userID. It returns
// [goCred.ErrUserNotFound] when the user hash does not exist.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	updated, err := updatePasswordHashLua.Run(ctx, s.redis, []string{s.userKey(userID)}, newHash).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if updated == 0 {
		return goCred.ErrUserNotFound
	}
	return nil
}

// ForEach calls fn for every stored user, in SCAN order. It stops at the first error.
func (s *Store) ForEach(ctx context.Context, fn func(goCred.UserRecord) error) error {
	iter := s.redis.Scan(ctx, 0, s.prefix+":user:*", 256).Iterator()
	for iter.Next(ctx) {
		fields, err := s.redis.HGetAll(ctx, iter.Val()).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if len(fields) == 0 {
			continue
		}
		if err := fn(recordFromHash(fields)); err != nil {
			return err
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func recordFromHash(fields map[string]string) goCred.UserRecord {
	return goCred.UserRecord{
		UserID:       fields[fieldID],
		Username:     fields[fieldUsername],
		Email:        fields[fieldEmail],
		PasswordHash: fields[fieldPasswordHash],
	}
}
