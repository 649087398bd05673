package xcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omeyang/flashkit/pkg/distributed/xdlock"
)

// GetWithLogicalExpire 击穿防护读取（逻辑过期策略）。
// 键为 keyPrefix+id；命中时将缓存值解码到 dest。
//
// 前置约束：热点键必须先通过 [Cache.SetWithLogicalExpire] 预热。缓存未命中
// 直接返回 [ErrNotFound]，本策略不做未命中自愈——回源由重建路径独占。
//
// 陈旧处理：信封内过期时刻已过时，尝试获取重建互斥锁；拿到锁的请求把重建
// 任务交给后台 worker 后立即返回，没拿到锁说明已有人在重建。两种情况下
// 本次调用都返回当前的陈旧值，调用方无感知。
func (c *Cache) GetWithLogicalExpire(
	ctx context.Context,
	keyPrefix, id string,
	dest any,
	loadFn LoadFunc,
	ttl time.Duration,
) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if loadFn == nil {
		return ErrNilLoader
	}

	key := keyPrefix + id

	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("xcache: get %q: %w", key, err)
	}
	if string(raw) == emptyMarker {
		return ErrNotFound
	}

	env, err := decodeEntry(raw)
	if err != nil {
		return err
	}

	// 缺失过期时刻的信封（经 Set 写入）视为未过期。
	if env.expired(time.Now()) {
		c.tryRebuild(ctx, key, id, loadFn, ttl)
	}
	return unmarshalInto(env.Data, key, dest)
}

// tryRebuild 竞争重建锁，成功后把重建任务投递给后台 worker。
// 锁竞争失败或投递失败都静默返回——调用方拿陈旧值继续，重建会由
// 后续读取再次触发。
func (c *Cache) tryRebuild(ctx context.Context, key, id string, loadFn LoadFunc, ttl time.Duration) {
	handle, err := c.lockFactory.TryLock(ctx, key, xdlock.WithTTL(c.options.LockTTL))
	if err != nil {
		c.options.Logger.Warn("xcache: acquire rebuild lock failed",
			"key", key, "error", err)
		return
	}
	if handle == nil {
		// 其他请求正在重建。
		return
	}

	submitted := c.refresher.submit(func() {
		// 任务脱离触发请求的取消链运行，用独立超时兜底。
		jobCtx, cancel := context.WithTimeout(context.Background(), c.options.RebuildTimeout)
		defer cancel()
		defer func() {
			if unlockErr := handle.Unlock(jobCtx); unlockErr != nil {
				c.options.Logger.Warn("xcache: release rebuild lock failed",
					"key", key, "error", unlockErr)
			}
		}()

		// 双重检查：拿锁前可能已有持有者完成了重建。
		if fresh, checkErr := c.isFresh(jobCtx, key); checkErr == nil && fresh {
			return
		}

		value, loadErr := loadFn(jobCtx, id)
		if loadErr != nil {
			c.options.Logger.Warn("xcache: rebuild load failed",
				"key", key, "error", loadErr)
			return
		}
		if value == nil {
			// 热点数据从后端消失：删除缓存键，后续读取得到 ErrNotFound。
			if delErr := c.client.Del(jobCtx, key).Err(); delErr != nil {
				c.options.Logger.Warn("xcache: rebuild delete failed",
					"key", key, "error", delErr)
			}
			return
		}
		if setErr := c.SetWithLogicalExpire(jobCtx, key, value, ttl); setErr != nil {
			c.options.Logger.Warn("xcache: rebuild set failed",
				"key", key, "error", setErr)
		}
	})

	if !submitted {
		// 队列满或已关闭：立刻释放锁，让后续读取重新竞争。
		if unlockErr := handle.Unlock(ctx); unlockErr != nil {
			c.options.Logger.Warn("xcache: release rebuild lock failed",
				"key", key, "error", unlockErr)
		}
	}
}

// isFresh 读取键当前的信封并判断是否未过期。
func (c *Cache) isFresh(ctx context.Context, key string) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false, err
	}
	env, err := decodeEntry(raw)
	if err != nil {
		return false, err
	}
	return !env.expired(time.Now()), nil
}
