package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"LiquiMind/internal/model"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key of the global course cache record.
const DefaultRedisKey = "liquimind:courses"

// RedisStore keeps the cache record in Redis, shared across replicas.
type RedisStore struct {
	client *redis.Client
	key    string
	// expire is a safety expiry on the key; freshness is still judged by FetchedAt.
	expire time.Duration
}

func NewRedisStore(client *redis.Client, key string, expire time.Duration) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key, expire: expire}
}

func (r *RedisStore) Load(ctx context.Context) (*model.CachedCourseList, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: redis get %s: %w", model.ErrCollaboratorUnavailable, r.key, err)
	}
	var list model.CachedCourseList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.key, err)
	}
	return &list, nil
}

func (r *RedisStore) Save(ctx context.Context, list *model.CachedCourseList) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, r.expire).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %w", model.ErrCollaboratorUnavailable, r.key, err)
	}
	return nil
}
