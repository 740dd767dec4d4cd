package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hardikSrivastav/cal.it/internal/types"
)

// Compile-time interface check
var _ Store = (*RedisStore)(nil)

const redisKeyPrefix = "calit:pending:"

// redisCommands is the slice of the Redis API the store needs; narrow so
// tests can fake it without a server.
type redisCommands interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps pending interactions in Redis so they survive restarts
// and can be shared across replicas. Expiry rides on the key TTL.
type RedisStore struct {
	rdb redisCommands
}

// NewRedisStore wraps an established Redis client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// NewRedisClient connects to a redis:// URL and verifies the connection.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return client, nil
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

// Get returns the user's pending interaction if present and unexpired.
func (s *RedisStore) Get(ctx context.Context, userID string) (*types.PendingInteraction, error) {
	data, err := s.rdb.Get(ctx, redisKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoPendingInteraction
		}
		return nil, fmt.Errorf("reading pending interaction: %w", err)
	}

	var p types.PendingInteraction
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshaling pending interaction: %w", err)
	}
	if p.Expired(time.Now().UTC()) {
		return nil, ErrNoPendingInteraction
	}
	return &p, nil
}

// Put stores the interaction under the user's key with a TTL matching its
// expiry, replacing any existing one.
func (s *RedisStore) Put(ctx context.Context, p *types.PendingInteraction) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshaling pending interaction: %w", err)
	}

	ttl := time.Until(p.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.rdb.Set(ctx, redisKey(p.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("storing pending interaction: %w", err)
	}
	return nil
}

// Delete removes the user's pending interaction if present.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("deleting pending interaction: %w", err)
	}
	return nil
}
