package xdlock

import "errors"

// 预定义错误。
// 使用 errors.Is 进行错误匹配，例如：
//
//	if errors.Is(err, xdlock.ErrLockFailed) {
//	    // 重试耗尽仍未获取到锁
//	}
var (
	// ErrLockFailed 获取锁失败。
	// Lock 的重试次数耗尽仍未获取到锁时返回此错误，属于可重试的瞬时失败。
	ErrLockFailed = errors.New("xdlock: failed to acquire lock")

	// ErrNotLocked 锁未被当前句柄持有。
	// Unlock 时发现锁已过期或被其他持有者覆盖返回此错误。
	ErrNotLocked = errors.New("xdlock: not locked")

	// ErrNilClient 客户端为空。
	ErrNilClient = errors.New("xdlock: client is nil")

	// ErrFactoryClosed 工厂已关闭。
	// 在已关闭的工厂上获取锁时返回此错误。
	ErrFactoryClosed = errors.New("xdlock: factory is closed")

	// ErrEmptyKey 锁 key 为空。
	ErrEmptyKey = errors.New("xdlock: key must not be empty")

	// ErrKeyTooLong 锁 key 超过长度限制（512 字节）。
	ErrKeyTooLong = errors.New("xdlock: key exceeds maximum length of 512 bytes")
)
