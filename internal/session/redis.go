// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package session

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// DefaultRedisPrefix namespaces session keys in a shared Redis.
const DefaultRedisPrefix = "quill:session:"

// RedisKV stores session keys in Redis. Writes go through MULTI/EXEC.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV wraps an existing client. An empty prefix uses DefaultRedisPrefix.
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisKV{client: client, prefix: prefix}
}

// OpenRedis connects to Redis and verifies the connection with PING.
func OpenRedis(ctx context.Context, opts *redis.Options, prefix string) (*RedisKV, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("REDIS_CONNECT_FAILED").With("addr", opts.Addr).Wrap(err)
	}
	return NewRedisKV(client, prefix), nil
}

// Load returns the values present for keys using MGET.
func (r *RedisKV) Load(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := r.client.MGet(ctx, r.keys(keys)...).Result()
	if err != nil {
		return nil, oops.Code("REDIS_LOAD_FAILED").With("keys", keys).Wrap(err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

// Store writes every entry in one transaction.
func (r *RedisKV) Store(ctx context.Context, values map[string]string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.prefix+k, v, 0)
		}
		return nil
	})
	if err != nil {
		return oops.Code("REDIS_STORE_FAILED").Wrap(err)
	}
	return nil
}

// Delete removes keys with a single DEL.
func (r *RedisKV) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, r.keys(keys)...).Err(); err != nil {
		return oops.Code("REDIS_DELETE_FAILED").With("keys", keys).Wrap(err)
	}
	return nil
}

// Close closes the client.
func (r *RedisKV) Close() error {
	if err := r.client.Close(); err != nil {
		return oops.Code("REDIS_CLOSE_FAILED").Wrap(err)
	}
	return nil
}

func (r *RedisKV) keys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = r.prefix + k
	}
	return out
}
