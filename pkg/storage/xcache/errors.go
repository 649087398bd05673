package xcache

import "errors"

var (
	// ErrNilClient 传入的客户端为 nil。
	ErrNilClient = errors.New("xcache: nil client")

	// ErrNilLoader 回源函数为 nil。
	ErrNilLoader = errors.New("xcache: nil loader function")

	// ErrNotFound 权威性缺失：后端确认不存在，或命中空值标记。
	// 这是正常的业务信号，穿透防护场景下可被负缓存。
	ErrNotFound = errors.New("xcache: not found")

	// ErrBackendUnavailable 回源被熔断器拒绝。
	// 属于瞬时失败，后端恢复后熔断器半开放行。
	ErrBackendUnavailable = errors.New("xcache: backend unavailable (circuit open)")

	// ErrClosed 缓存实例已关闭。
	ErrClosed = errors.New("xcache: closed")
)
