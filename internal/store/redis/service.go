package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/icebreaker/internal/store"
)

// Store keeps one JSON document per user in Redis
type Store struct {
	client *redis.Client
	now    func() time.Time
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		now:    time.Now,
	}
}

func (s *Store) Backend() string { return "redis" }

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return store.Unavailable("ping redis", err)
	}
	return nil
}

// CountUsers returns the number of users owning a document
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.client.SCard(ctx, AllUsersKey()).Result()
	if err != nil {
		return 0, store.Unavailable("count users", err)
	}
	return n, nil
}

// Close closes the underlying client
func (s *Store) Close() error {
	return s.client.Close()
}
