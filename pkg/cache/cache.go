// Package cache 提供按 key 缓存读结果的 TTL 缓存。
//
// 缓存对象由调用方持有并注入存储后端（内存或 Redis），不存在包级共享状态。
// 同一 key 的并发未命中只会触发一次 fetch；fetch 失败时不驱逐旧条目。
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Entry 带获取时间戳的缓存条目
type Entry[V any] struct {
	Value     V         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Store 缓存存储后端
type Store[V any] interface {
	Get(ctx context.Context, key string) (Entry[V], bool, error)
	Set(ctx context.Context, key string, entry Entry[V]) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Fetcher 未命中时加载数据
type Fetcher[V any] func(ctx context.Context) (V, error)

// StaleError 刷新失败但返回了旧值
type StaleError struct {
	Key       string
	FetchedAt time.Time
	Err       error
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("cache: serving stale %q fetched at %s: %v", e.Key, e.FetchedAt.Format(time.RFC3339), e.Err)
}

func (e *StaleError) Unwrap() error { return e.Err }

// IsStale 判断错误是否为返回旧值的刷新失败
func IsStale(err error) bool {
	var se *StaleError
	return errors.As(err, &se)
}

type options struct {
	name         string
	now          func() time.Time
	staleOnError bool
	fetchTimeout time.Duration
	logger       *zap.Logger
}

// Option 缓存可选项
type Option func(*options)

// WithName 指标标签中的缓存名
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithClock 注入时钟（测试用）
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithStaleOnError fetch 失败且存在旧条目时，返回旧值和 *StaleError
func WithStaleOnError() Option {
	return func(o *options) { o.staleOnError = true }
}

// WithFetchTimeout 共享 fetch 的超时；fetch 不随调用方取消，需单独设上限
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) { o.fetchTimeout = d }
}

// WithLogger 记录存储层读写失败
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Cache TTL 缓存
type Cache[V any] struct {
	store Store[V]
	group singleflight.Group
	opts  options
}

// New 使用给定存储创建缓存
func New[V any](store Store[V], opts ...Option) *Cache[V] {
	o := options{
		name:   "default",
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[V]{store: store, opts: o}
}

// GetOrFetch 条目存在且未超过 ttl 时直接返回，否则调用 fetch 并写回缓存。
// fetch 失败时旧条目保持不变；开启 WithStaleOnError 时同时返回旧值。
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch Fetcher[V]) (V, error) {
	entry, found, err := c.store.Get(ctx, key)
	if err != nil {
		// 存储不可用时按未命中处理
		c.opts.logger.Warn("读取缓存失败", zap.String("key", key), zap.Error(err))
		found = false
	}

	if found && c.opts.now().Sub(entry.FetchedAt) < ttl {
		requestsTotal.WithLabelValues(c.opts.name, resultHit).Inc()
		return entry.Value, nil
	}
	requestsTotal.WithLabelValues(c.opts.name, resultMiss).Inc()

	v, err := c.load(ctx, key, fetch)
	if err != nil {
		if found && c.opts.staleOnError {
			requestsTotal.WithLabelValues(c.opts.name, resultStale).Inc()
			return entry.Value, &StaleError{Key: key, FetchedAt: entry.FetchedAt, Err: err}
		}
		requestsTotal.WithLabelValues(c.opts.name, resultError).Inc()
		var zero V
		return zero, err
	}
	return v, nil
}

// Refresh 忽略新鲜度强制重新加载
func (c *Cache[V]) Refresh(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	v, err := c.load(ctx, key, fetch)
	if err != nil {
		requestsTotal.WithLabelValues(c.opts.name, resultError).Inc()
	}
	return v, err
}

// Poll 每隔 interval 刷新一次 key，直到 ctx 取消；interval<=0 时不启动。
// onUpdate 可为 nil。
func (c *Cache[V]) Poll(ctx context.Context, key string, interval time.Duration, fetch Fetcher[V], onUpdate func(V, error)) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				v, err := c.Refresh(ctx, key, fetch)
				if err != nil && ctx.Err() == nil {
					c.opts.logger.Warn("轮询刷新缓存失败", zap.String("key", key), zap.Error(err))
				}
				if onUpdate != nil {
					onUpdate(v, err)
				}
			}
		}
	}()
}

// Invalidate 删除单个条目
func (c *Cache[V]) Invalidate(ctx context.Context, key string) error {
	return c.store.Delete(ctx, key)
}

// InvalidateAll 清空缓存
func (c *Cache[V]) InvalidateAll(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// load 同 key 的并发加载合并为一次；等待方在自身 ctx 结束时提前返回。
// 共享的 fetch 运行在与首个调用方取消解绑的 ctx 上，任一等待方断开都不影响其他等待方。
func (c *Cache[V]) load(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		fctx := context.WithoutCancel(ctx)
		if c.opts.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fctx, cancel = context.WithTimeout(fctx, c.opts.fetchTimeout)
			defer cancel()
		}

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		entry := Entry[V]{Value: v, FetchedAt: c.opts.now()}
		if err := c.store.Set(fctx, key, entry); err != nil {
			c.opts.logger.Warn("写入缓存失败", zap.String("key", key), zap.Error(err))
		}
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}
