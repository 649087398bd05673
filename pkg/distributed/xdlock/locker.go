package xdlock

import (
	"context"
	"strings"
)

// maxKeyLength 锁 key 的最大字节数。
const maxKeyLength = 512

// Handle 表示一次成功的锁获取。
//
// 每次 TryLock/Lock 成功都会返回一个新的 handle，内部封装了本次获取的
// 唯一 token。通过 handle 进行 Unlock，确保不同获取之间不会互相干扰：
// 只有持有该 token 的 handle 才能删除锁 key。
type Handle interface {
	// Unlock 释放锁。
	//
	// 只释放本次获取建立的锁。锁已过期或被其他持有者覆盖时
	// 返回 [ErrNotLocked]，key 不会被删除。
	Unlock(ctx context.Context) error

	// Key 返回锁的完整 key（包含前缀），用于日志记录等场景。
	Key() string
}

// Factory 定义锁工厂接口。
// 工厂持有底层客户端引用，并按需创建锁。
type Factory interface {
	// TryLock 非阻塞式获取锁。
	//
	// 成功时返回 Handle；锁被其他持有者占用时返回 (nil, nil)，
	// 这是正常的"锁被持有"信号而非错误。err 非 nil 仅表示锁服务异常。
	TryLock(ctx context.Context, key string, opts ...Option) (Handle, error)

	// Lock 有界阻塞式获取锁。
	//
	// 按指数退避 + 抖动重试，重试次数由 WithRetryAttempts 控制（默认 10 次）。
	// 次数耗尽仍未获取到返回 [ErrLockFailed]；ctx 取消/超时返回对应的 ctx 错误。
	Lock(ctx context.Context, key string, opts ...Option) (Handle, error)

	// Close 关闭工厂。关闭后不应再获取新锁；已持有的 Handle 仍可 Unlock，
	// 避免锁悬挂等待 TTL 过期。不会关闭传入的客户端。
	Close() error

	// Health 健康检查，探测底层锁介质是否可达。
	Health(ctx context.Context) error
}

// validateKey 校验锁 key。
func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	if len(key) > maxKeyLength {
		return ErrKeyTooLong
	}
	return nil
}
