package xcache

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/omeyang/flashkit/pkg/distributed/xdlock"
)

// =============================================================================
// 默认值
// =============================================================================

const (
	// DefaultNullTTL 空值标记的默认 TTL。
	// 决定一个不存在的 id 被"负记忆"多久；过长会延迟新数据可见，
	// 过短会削弱穿透防护。
	DefaultNullTTL = 2 * time.Minute

	// DefaultLockTTL 重建互斥锁的默认 TTL。
	// 取值需覆盖一次回源重建的最坏耗时，持有者崩溃后锁最多悬挂这么久。
	DefaultLockTTL = 10 * time.Second

	// DefaultRebuildWorkers 异步重建 worker 的默认数量。
	DefaultRebuildWorkers = 10

	// DefaultRebuildQueueSize 异步重建队列的默认容量。
	// 队列满时新任务被丢弃（旧值继续可用，下次读取会再次触发重建）。
	DefaultRebuildQueueSize = 100

	// DefaultRebuildTimeout 单个重建任务的默认超时。
	// 重建任务脱离触发请求的取消链运行，必须有独立超时兜底。
	DefaultRebuildTimeout = 30 * time.Second
)

// Options Cache 的配置集合。
type Options struct {
	// LockFactory 重建互斥锁工厂。
	// 默认基于传入的客户端创建单节点 xdlock 工厂。
	LockFactory xdlock.Factory

	// LockTTL 重建互斥锁的 TTL。
	LockTTL time.Duration

	// NullTTL 空值标记的 TTL。
	NullTTL time.Duration

	// RebuildWorkers 异步重建 worker 数量。
	RebuildWorkers int

	// RebuildQueueSize 异步重建队列容量。
	RebuildQueueSize int

	// RebuildTimeout 单个重建任务的超时。
	RebuildTimeout time.Duration

	// EnableSingleflight 穿透策略未命中回源时是否合并同 key 并发请求。
	// 默认关闭：冷 key 的并发未命中窗口小，回源幂等即可承受；
	// 打开后同一进程内同 key 只回源一次。
	EnableSingleflight bool

	// BreakerSettings 回源熔断配置。nil 表示不启用熔断。
	// 熔断打开时回源请求直接返回 [ErrBackendUnavailable]，保护故障中的后端。
	BreakerSettings *gobreaker.Settings

	// Logger 用于记录重建失败等警告日志。默认 slog.Default()。
	Logger *slog.Logger
}

// Option 配置 Cache 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		LockTTL:          DefaultLockTTL,
		NullTTL:          DefaultNullTTL,
		RebuildWorkers:   DefaultRebuildWorkers,
		RebuildQueueSize: DefaultRebuildQueueSize,
		RebuildTimeout:   DefaultRebuildTimeout,
		Logger:           slog.Default(),
	}
}

// WithLockFactory 设置外部锁工厂（如多节点 Redlock 部署）。
// 不设置时基于传入的客户端创建单节点工厂，并随 Cache 一起关闭。
func WithLockFactory(factory xdlock.Factory) Option {
	return func(o *Options) {
		o.LockFactory = factory
	}
}

// WithLockTTL 设置重建互斥锁的 TTL。
func WithLockTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.LockTTL = ttl
		}
	}
}

// WithNullTTL 设置空值标记的 TTL。
func WithNullTTL(ttl time.Duration) Option {
	return func(o *Options) {
		if ttl > 0 {
			o.NullTTL = ttl
		}
	}
}

// WithRebuildWorkers 设置异步重建 worker 数量与队列容量。
func WithRebuildWorkers(workers, queueSize int) Option {
	return func(o *Options) {
		if workers > 0 {
			o.RebuildWorkers = workers
		}
		if queueSize > 0 {
			o.RebuildQueueSize = queueSize
		}
	}
}

// WithRebuildTimeout 设置单个重建任务的超时。
func WithRebuildTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.RebuildTimeout = d
		}
	}
}

// WithSingleflight 设置是否在穿透策略回源时合并同 key 并发请求。
func WithSingleflight(enable bool) Option {
	return func(o *Options) {
		o.EnableSingleflight = enable
	}
}

// WithBreaker 启用回源熔断。
// 典型配置：连续失败若干次后打开，Timeout 后半开试探。
func WithBreaker(settings gobreaker.Settings) Option {
	return func(o *Options) {
		o.BreakerSettings = &settings
	}
}

// WithLogger 设置自定义 Logger。
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// newBreaker 按配置构建熔断器。
func newBreaker(settings *gobreaker.Settings) *gobreaker.CircuitBreaker[json.RawMessage] {
	if settings == nil {
		return nil
	}
	return gobreaker.NewCircuitBreaker[json.RawMessage](*settings)
}
