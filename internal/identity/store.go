package identity

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// SessionStore answers whether a username currently holds an active session.
// Sessions are written by the auth service; this service only reads them.
type SessionStore interface {
	IsActive(ctx context.Context, username string) (bool, error)
}

type redisSessionStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSessionStore returns a SessionStore backed by Redis key existence.
func NewRedisSessionStore(client *redis.Client, keyPrefix string) SessionStore {
	return &redisSessionStore{client: client, keyPrefix: keyPrefix}
}

func (s *redisSessionStore) IsActive(ctx context.Context, username string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+username).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
