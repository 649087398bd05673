package xkeylock

import "errors"

var (
	// ErrClosed Locker 已关闭。
	ErrClosed = errors.New("xkeylock: locker is closed")

	// ErrInvalidKey key 为空字符串。
	ErrInvalidKey = errors.New("xkeylock: key must not be empty")

	// ErrNotHeld 锁未被当前句柄持有。
	// Handle.Unlock 第二次及以后的调用返回此错误。
	ErrNotHeld = errors.New("xkeylock: lock not held")
)
