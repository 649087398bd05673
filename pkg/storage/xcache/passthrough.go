package xcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GetWithPassThrough 穿透防护读取。
// 键为 keyPrefix+id；命中时将缓存值解码到 dest。
//
// 防护逻辑：后端确认 id 不存在时，以 [DefaultNullTTL]（可配）写入空值标记，
// 后续对同一 id 的查询直接命中标记返回 [ErrNotFound]，不再打到后端。
//
// 空值标记命中与后端确认不存在都返回 [ErrNotFound]；回源失败返回原始错误，
// 此时不写入任何标记（失败 ≠ 不存在）。
func (c *Cache) GetWithPassThrough(
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
	switch {
	case err == nil:
		if string(raw) == emptyMarker {
			return ErrNotFound
		}
		env, decErr := decodeEntry(raw)
		if decErr != nil {
			return decErr
		}
		return unmarshalInto(env.Data, key, dest)
	case errors.Is(err, redis.Nil):
		// 未命中，回源。
	default:
		return fmt.Errorf("xcache: get %q: %w", key, err)
	}

	data, err := c.load(ctx, key, id, loadFn)
	if err != nil {
		return err
	}

	if data == nil {
		// 后端确认不存在：写入空值标记阻断后续穿透。
		// 标记写失败不影响本次结果，只损失一次防护。
		if setErr := c.client.Set(ctx, key, emptyMarker, c.options.NullTTL).Err(); setErr != nil {
			c.options.Logger.Warn("xcache: set null marker failed",
				"key", key, "error", setErr)
		}
		return ErrNotFound
	}

	if setErr := c.setRaw(ctx, key, data, ttl); setErr != nil {
		c.options.Logger.Warn("xcache: backfill failed",
			"key", key, "error", setErr)
	}
	return unmarshalInto(data, key, dest)
}

// setRaw 将已编码的 payload 包入普通信封写回缓存。
func (c *Cache) setRaw(ctx context.Context, key string, data json.RawMessage, ttl time.Duration) error {
	raw, err := json.Marshal(envelope{Data: data})
	if err != nil {
		return fmt.Errorf("xcache: encode entry for %q: %w", key, err)
	}
	return c.client.Set(ctx, key, raw, normalizeTTL(ttl)).Err()
}

func unmarshalInto(data json.RawMessage, key string, dest any) error {
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("xcache: decode value for %q: %w", key, err)
	}
	return nil
}
