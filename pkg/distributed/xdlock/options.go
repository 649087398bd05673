package xdlock

import "time"

// =============================================================================
// 默认值
// =============================================================================

const (
	// DefaultTTL 默认锁 TTL。
	// 持有者崩溃后锁最多悬挂这么久，取值需覆盖临界区的最坏执行时间。
	DefaultTTL = 10 * time.Second

	// DefaultKeyPrefix 默认锁 key 前缀。
	// 与缓存条目共用一个 Redis 实例时通过前缀隔离命名空间，
	// 最终 key 格式为 "lock:{key}"。
	DefaultKeyPrefix = "lock:"

	// DefaultRetryAttempts Lock 的默认总尝试次数（含首次）。
	DefaultRetryAttempts = 10

	// DefaultRetryDelay Lock 的默认基础重试间隔。
	DefaultRetryDelay = 50 * time.Millisecond

	// DefaultMaxRetryDelay Lock 的默认最大重试间隔（退避上限）。
	DefaultMaxRetryDelay = 1 * time.Second
)

// lockOptions 单次获取锁的配置。
type lockOptions struct {
	ttl           time.Duration
	keyPrefix     string
	retryAttempts int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
}

// Option 配置单次锁获取的选项函数。
type Option func(*lockOptions)

func defaultLockOptions() *lockOptions {
	return &lockOptions{
		ttl:           DefaultTTL,
		keyPrefix:     DefaultKeyPrefix,
		retryAttempts: DefaultRetryAttempts,
		retryDelay:    DefaultRetryDelay,
		maxRetryDelay: DefaultMaxRetryDelay,
	}
}

// WithTTL 设置锁的 TTL。非正值被忽略并使用默认值。
func WithTTL(ttl time.Duration) Option {
	return func(o *lockOptions) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithKeyPrefix 设置锁 key 前缀。
// 传入空字符串表示不加前缀，由调用方自行保证命名空间隔离。
func WithKeyPrefix(prefix string) Option {
	return func(o *lockOptions) {
		o.keyPrefix = prefix
	}
}

// WithRetryAttempts 设置 Lock 的总尝试次数（含首次尝试）。
// 最小为 1，即只尝试一次不重试。
func WithRetryAttempts(n int) Option {
	return func(o *lockOptions) {
		if n >= 1 {
			o.retryAttempts = n
		}
	}
}

// WithRetryDelay 设置 Lock 的基础重试间隔。
// 实际间隔按指数退避增长并叠加随机抖动，上限为 WithMaxRetryDelay。
func WithRetryDelay(d time.Duration) Option {
	return func(o *lockOptions) {
		if d > 0 {
			o.retryDelay = d
		}
	}
}

// WithMaxRetryDelay 设置 Lock 重试间隔的退避上限。
func WithMaxRetryDelay(d time.Duration) Option {
	return func(o *lockOptions) {
		if d > 0 {
			o.maxRetryDelay = d
		}
	}
}
