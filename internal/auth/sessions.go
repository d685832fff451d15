package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore tracks live access tokens in Redis so they can be revoked
// before they expire.
type SessionStore struct {
	client *redis.Client
	prefix string
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client, prefix: "salesdesk:session:"}
}

// Register records session id for userID until ttl elapses.
func (s *SessionStore) Register(ctx context.Context, id string, userID int64, ttl time.Duration) error {
	return s.client.Set(ctx, s.redisKey(id), strconv.FormatInt(userID, 10), ttl).Err()
}

// Lookup returns the user that owns session id. ok is false when the
// session expired or was revoked.
func (s *SessionStore) Lookup(ctx context.Context, id string) (userID int64, ok bool, err error) {
	raw, err := s.client.Get(ctx, s.redisKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	userID, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return userID, true, nil
}

// Revoke deletes session id.
func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.redisKey(id)).Err()
}

func (s *SessionStore) redisKey(id string) string {
	return s.prefix + id
}
