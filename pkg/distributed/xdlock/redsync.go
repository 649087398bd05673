package xdlock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/go-redsync/redsync/v4"
	rsredis "github.com/go-redsync/redsync/v4/redis"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// Redsync（Redlock）工厂实现
// =============================================================================

// redsyncFactory 基于 redsync 的多节点锁工厂。
// 单节点时退化为标准 Redis 锁；多节点时使用 Redlock 算法（需过半成功）。
// 适用于不接受单点 Redis 故障导致锁失效的部署。
type redsyncFactory struct {
	clients []redis.UniversalClient
	rs      *redsync.Redsync
	closed  atomic.Bool
}

// NewRedsyncFactory 创建 Redlock 锁工厂。
// 至少提供一个客户端；客户端的生命周期由调用方管理。
func NewRedsyncFactory(clients ...redis.UniversalClient) (Factory, error) {
	if len(clients) == 0 {
		return nil, ErrNilClient
	}
	pools := make([]rsredis.Pool, len(clients))
	for i, client := range clients {
		if client == nil {
			return nil, fmt.Errorf("%w: client at index %d", ErrNilClient, i)
		}
		pools[i] = goredis.NewPool(client)
	}
	return &redsyncFactory{
		clients: clients,
		rs:      redsync.New(pools...),
	}, nil
}

func (f *redsyncFactory) TryLock(ctx context.Context, key string, opts ...Option) (Handle, error) {
	if f.closed.Load() {
		return nil, ErrFactoryClosed
	}
	if err := validateKey(key); err != nil {
		return nil, err
	}

	mutex, fullKey := f.newMutex(key, 1, opts)
	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) {
			return nil, nil // 锁被占用，正常信号
		}
		return nil, fmt.Errorf("xdlock: redsync trylock %s: %w", fullKey, err)
	}
	return &redsyncHandle{mutex: mutex, key: fullKey}, nil
}

func (f *redsyncFactory) Lock(ctx context.Context, key string, opts ...Option) (Handle, error) {
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
	mutex, fullKey := f.newMutex(key, options.retryAttempts, opts)
	if err := mutex.LockContext(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, redsync.ErrFailed) {
			return nil, fmt.Errorf("%w: %w", ErrLockFailed, err)
		}
		return nil, fmt.Errorf("xdlock: redsync lock %s: %w", fullKey, err)
	}
	return &redsyncHandle{mutex: mutex, key: fullKey}, nil
}

// newMutex 按本包的锁选项构建 redsync.Mutex。
// tries 单独传入：TryLock 固定为 1，Lock 使用配置的重试次数。
func (f *redsyncFactory) newMutex(key string, tries int, opts []Option) (*redsync.Mutex, string) {
	options := defaultLockOptions()
	for _, opt := range opts {
		opt(options)
	}
	fullKey := options.keyPrefix + key
	return f.rs.NewMutex(fullKey,
		redsync.WithExpiry(options.ttl),
		redsync.WithTries(tries),
		redsync.WithRetryDelay(options.retryDelay),
	), fullKey
}

func (f *redsyncFactory) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *redsyncFactory) Health(ctx context.Context) error {
	if f.closed.Load() {
		return ErrFactoryClosed
	}
	for _, client := range f.clients {
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Redsync Handle 实现
// =============================================================================

type redsyncHandle struct {
	mutex *redsync.Mutex
	key   string
}

func (h *redsyncHandle) Unlock(ctx context.Context) error {
	ok, err := h.mutex.UnlockContext(ctx)
	if err != nil {
		if errors.Is(err, redsync.ErrLockAlreadyExpired) {
			return ErrNotLocked
		}
		return fmt.Errorf("xdlock: redsync unlock %s: %w", h.key, err)
	}
	if !ok {
		return ErrNotLocked
	}
	return nil
}

func (h *redsyncHandle) Key() string {
	return h.key
}

var (
	_ Factory = (*redsyncFactory)(nil)
	_ Handle  = (*redsyncHandle)(nil)
)
