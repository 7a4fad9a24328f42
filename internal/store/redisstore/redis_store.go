package redisstore

import (
	"context"
	"encoding/json"

	"github.com/example/tempo/internal/store"
	"github.com/go-redis/redis/v8"
)

// RedisStore keeps cache values in Redis under a common key prefix,
// JSON-encoded. Values that round-trip through here come back as the
// generic JSON shapes (map[string]any, []any, float64, string, bool).
type RedisStore struct {
	client *redis.Client
	prefix string
}

func New(addr, password, prefix string) store.Store {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr, Password: password}),
		prefix: prefix + ":",
	}
}

func (r *RedisStore) Get(key string) (any, bool, error) {
	ctx := context.Background()
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *RedisStore) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(context.Background(), r.prefix+key, raw, 0).Err()
}

func (r *RedisStore) Clear() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (r *RedisStore) ForEach(fn func(key string, value any)) error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		raw, err := r.client.Get(ctx, full).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return err
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		fn(full[len(r.prefix):], v)
	}
	return iter.Err()
}

func (r *RedisStore) Close() error { return r.client.Close() }
