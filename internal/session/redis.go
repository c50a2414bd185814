// Package session keeps volatile dialog state in Redis under a TTL.
// Expiry is the abandonment mechanism: a silent customer simply ages
// out and the next message starts a fresh dialog.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"AutoLead/bot/chat"
	"AutoLead/internal/config"
)

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, conf *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{
		client: client,
		ttl:    time.Duration(conf.Redis.SessionTTL) * time.Second,
	}, nil
}

// NewRedisStoreWithClient wraps an existing client. Used by tests.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(shopID, userID string) string {
	return fmt.Sprintf("session:%s:%s", shopID, userID)
}

// Get returns the stored state, or nil when the session does not exist
// or has expired.
func (s *RedisStore) Get(ctx context.Context, shopID, userID string) (*chat.SessionState, error) {
	raw, err := s.client.Get(ctx, sessionKey(shopID, userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var state chat.SessionState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}

// Save stores the state and resets the TTL, so every turn extends the
// session's life.
func (s *RedisStore) Save(ctx context.Context, shopID, userID string, state *chat.SessionState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(shopID, userID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, shopID, userID string) error {
	if err := s.client.Del(ctx, sessionKey(shopID, userID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
