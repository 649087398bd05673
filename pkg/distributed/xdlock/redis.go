package xdlock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	retry "github.com/avast/retry-go/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript 释放锁的 Lua 脚本：token 匹配才删除。
// 返回 1 表示成功释放，0 表示锁已不属于当前持有者（过期或被抢走）。
// 比较与删除必须在服务端原子完成，客户端 GET 再 DEL 存在误删窗口。
var unlockScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	else
		return 0
	end
`)

// =============================================================================
// Redis 工厂实现
// =============================================================================

// redisFactory 基于单节点 Redis 的锁工厂。
// 获取 = SET key token NX PX ttl，释放 = Lua 比较删除。
type redisFactory struct {
	client redis.UniversalClient
	closed atomic.Bool
}

// NewRedisFactory 创建单节点 Redis 锁工厂。
// client 必须是已初始化的 redis.UniversalClient，生命周期由调用方管理。
func NewRedisFactory(client redis.UniversalClient) (Factory, error) {
	if client == nil {
		return nil, ErrNilClient
	}
	return &redisFactory{client: client}, nil
}

// TryLock 非阻塞式获取锁。锁被占用返回 (nil, nil)。
func (f *redisFactory) TryLock(ctx context.Context, key string, opts ...Option) (Handle, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	options := defaultLockOptions()
	for _, opt := range opts {
		opt(options)
	}

	return f.tryAcquire(ctx, options.keyPrefix+key, options)
}

// Lock 有界阻塞式获取锁：指数退避 + 抖动，次数耗尽返回 ErrLockFailed。
func (f *redisFactory) Lock(ctx context.Context, key string, opts ...Option) (Handle, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	options := defaultLockOptions()
	for _, opt := range opts {
		opt(options)
	}
	fullKey := options.keyPrefix + key

	h, err := retry.NewWithData[Handle](
		retry.Context(ctx),
		retry.Attempts(uint(options.retryAttempts)),
		retry.Delay(options.retryDelay),
		retry.MaxDelay(options.maxRetryDelay),
		retry.MaxJitter(options.retryDelay),
		retry.DelayType(retry.CombineDelay(retry.BackOffDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			// 仅对"锁被占用"重试；锁服务异常直接向调用方暴露
			return errors.Is(err, ErrLockFailed)
		}),
	).Do(func() (Handle, error) {
		h, err := f.tryAcquire(ctx, fullKey, options)
		if err != nil {
			return nil, err
		}
		if h == nil {
			return nil, ErrLockFailed
		}
		return h, nil
	})
	if err != nil {
		// retry-go 不保证透传 ctx 错误，单独检查
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return h, nil
}

// tryAcquire 执行单次原子获取：不存在则建 key 并同时设置 TTL。
func (f *redisFactory) tryAcquire(ctx context.Context, fullKey string, options *lockOptions) (Handle, error) {
	token := uuid.NewString()
	acquired, err := f.client.SetNX(ctx, fullKey, token, options.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("xdlock: setnx %s: %w", fullKey, err)
	}
	if !acquired {
		return nil, nil
	}
	return &redisHandle{client: f.client, key: fullKey, token: token}, nil
}

// Close 关闭工厂。不关闭传入的 Redis 客户端。
func (f *redisFactory) Close() error {
	f.closed.Store(true)
	return nil
}

// Health 对底层 Redis 执行 PING。
func (f *redisFactory) Health(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	return f.client.Ping(ctx).Err()
}

// =============================================================================
// Redis Handle 实现
// =============================================================================

// redisHandle 封装一次获取的 key + token。
type redisHandle struct {
	client redis.UniversalClient
	key    string
	token  string
}

// Unlock 释放锁。token 不匹配（锁已过期或被抢走）返回 ErrNotLocked。
//
// 设计决策: 允许在 factory 关闭后解锁，避免锁悬挂等待 TTL 过期。
func (h *redisHandle) Unlock(ctx context.Context) error {
	released, err := unlockScript.Run(ctx, h.client, []string{h.key}, h.token).Int64()
	if err != nil {
		return fmt.Errorf("xdlock: unlock %s: %w", h.key, err)
	}
	if released == 0 {
		return ErrNotLocked
	}
	return nil
}

func (h *redisHandle) Key() string {
	return h.key
}

// 编译期接口检查。
var (
	_ Factory = (*redisFactory)(nil)
	_ Handle  = (*redisHandle)(nil)
)
