package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Keys used in the token store.
const (
	UserTokenKey = "userToken"
	FCMTokenKey  = "fcmToken"
)

// TokenStorePrefix is the prefix used for Redis token store keys.
const TokenStorePrefix = "token:"

// TokenStore is keyed persistent storage for session tokens. The stored
// values are caches of the identity provider's state, never the source of
// truth. A missing key is not an error: Get returns an empty string.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// RedisTokenStore persists tokens in Redis so they survive agent restarts.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisClient connects a Redis client for the token store and verifies the
// connection with a short ping.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis (token store): %w", err)
	}
	return client, nil
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, TokenStorePrefix+key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token %q: %w", key, err)
	}
	return val, nil
}

func (s *RedisTokenStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, TokenStorePrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to store token %q: %w", key, err)
	}
	return nil
}

func (s *RedisTokenStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, TokenStorePrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to remove token %q: %w", key, err)
	}
	return nil
}

// MemoryTokenStore is an in-process TokenStore used in tests and as a
// fallback when Redis is not configured.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens[key], nil
}

func (s *MemoryTokenStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[key] = value
	return nil
}

func (s *MemoryTokenStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, key)
	return nil
}
