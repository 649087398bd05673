package xcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/sync/singleflight"

	"github.com/omeyang/flashkit/pkg/distributed/xdlock"
)

// LoadFunc 回源加载函数。
// 返回 (nil, nil) 表示后端确认该 id 不存在；返回错误表示后端不可用或查询失败。
type LoadFunc func(ctx context.Context, id string) (any, error)

// Cache 旁路缓存门面。
// 封装穿透防护（空值缓存）与击穿防护（逻辑过期 + 互斥重建）两种读取策略，
// 以及配套的写入、失效操作。
//
// 设计决策: 写路径采用"先写库、再删缓存"。调用方在数据库提交成功后调用
// [Cache.Delete]，下次读取按需回填，避免并发写导致缓存与库长期不一致。
type Cache struct {
	client  redis.UniversalClient
	options *Options

	lockFactory xdlock.Factory
	ownsFactory bool

	refresher *refresher
	flight    singleflight.Group
	breaker   *gobreaker.CircuitBreaker[json.RawMessage]

	closed atomic.Bool
}

// New 创建缓存门面。
// client 必须是已初始化的 redis.UniversalClient，生命周期由调用方管理。
func New(client redis.UniversalClient, opts ...Option) (*Cache, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	c := &Cache{
		client:  client,
		options: options,
		breaker: newBreaker(options.BreakerSettings),
	}

	if options.LockFactory != nil {
		c.lockFactory = options.LockFactory
	} else {
		factory, err := xdlock.NewRedisFactory(client)
		if err != nil {
			return nil, fmt.Errorf("xcache: create lock factory: %w", err)
		}
		c.lockFactory = factory
		c.ownsFactory = true
	}

	c.refresher = newRefresher(options.RebuildWorkers, options.RebuildQueueSize, options.Logger)
	return c, nil
}

// Set 以物理 TTL 写入缓存。
// value 被编码为普通信封；ttl ≤ 0 时写入不过期的键。
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}

	raw, err := encodeEntry(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, normalizeTTL(ttl)).Err(); err != nil {
		return fmt.Errorf("xcache: set %q: %w", key, err)
	}
	return nil
}

// SetWithLogicalExpire 以逻辑过期写入缓存。
// 键本身不设物理 TTL，过期时刻记录在信封内，由读取方判定陈旧并触发重建。
// 用于热点键预热：键永不因 TTL 消失，击穿窗口被彻底关闭。
func (c *Cache) SetWithLogicalExpire(ctx context.Context, key string, value any, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrClosed
	}

	raw, err := encodeEntryWithExpiry(value, time.Now().Add(ttl))
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("xcache: set %q: %w", key, err)
	}
	return nil
}

// Delete 删除缓存键。键不存在时不报错。
// 写路径在数据库提交成功后调用，使后续读取回源拿到新值。
func (c *Cache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrClosed
	}

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("xcache: delete %q: %w", key, err)
	}
	return nil
}

// Client 返回底层 Redis 客户端，供需要直接执行命令的调用方使用。
func (c *Cache) Client() redis.UniversalClient {
	return c.client
}

// Close 停止后台重建 worker 并释放内部资源。
// 等待已入队的重建任务执行完毕；不关闭外部传入的 Redis 客户端与锁工厂。
func (c *Cache) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.refresher.stop()
	if c.ownsFactory {
		return c.lockFactory.Close()
	}
	return nil
}

// load 执行回源，按配置经过熔断器与 singleflight。
// 返回的 raw 为 nil 表示后端确认不存在。
func (c *Cache) load(ctx context.Context, key, id string, loadFn LoadFunc) (json.RawMessage, error) {
	doLoad := func() (json.RawMessage, error) {
		value, err := loadFn(ctx, id)
		if err != nil {
			return nil, err
		}
		if value == nil {
			return nil, nil
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("xcache: marshal value for %q: %w", key, err)
		}
		return raw, nil
	}

	if c.breaker != nil {
		inner := doLoad
		doLoad = func() (json.RawMessage, error) {
			raw, err := c.breaker.Execute(inner)
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return nil, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
			}
			return raw, err
		}
	}

	if !c.options.EnableSingleflight {
		return doLoad()
	}

	result, err, _ := c.flight.Do(key, func() (any, error) {
		return doLoad()
	})
	if err != nil {
		return nil, err
	}
	raw, _ := result.(json.RawMessage)
	return raw, nil
}

func normalizeTTL(ttl time.Duration) time.Duration {
	if ttl < 0 {
		return 0
	}
	return ttl
}
