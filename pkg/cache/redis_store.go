package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// KV RedisStore 依赖的最小键值接口，pkg/redis.Client 实现了它
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// RedisStore 以 JSON 形式把条目存入 Redis，多实例共享
// retention 为 Redis 键的保留时长，需大于业务 ttl 才能在刷新失败时取到旧值
type RedisStore[V any] struct {
	kv        KV
	prefix    string
	retention time.Duration
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore[V any](kv KV, prefix string, retention time.Duration) *RedisStore[V] {
	return &RedisStore[V]{kv: kv, prefix: prefix, retention: retention}
}

func (s *RedisStore[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	var entry Entry[V]
	b, ok, err := s.kv.Get(ctx, s.prefix+key)
	if err != nil || !ok {
		return entry, false, err
	}
	if err := json.Unmarshal(b, &entry); err != nil {
		return entry, false, fmt.Errorf("解码缓存条目失败: %w", err)
	}
	return entry, true, nil
}

func (s *RedisStore[V]) Set(ctx context.Context, key string, entry Entry[V]) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("编码缓存条目失败: %w", err)
	}
	return s.kv.Set(ctx, s.prefix+key, b, s.retention)
}

func (s *RedisStore[V]) Delete(ctx context.Context, key string) error {
	return s.kv.Del(ctx, s.prefix+key)
}

func (s *RedisStore[V]) Clear(ctx context.Context) error {
	return s.kv.DeleteByPrefix(ctx, s.prefix)
}
