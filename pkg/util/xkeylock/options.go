package xkeylock

// DefaultShardCount 默认分片数。
const DefaultShardCount = 64

type options struct {
	shardCount uint
}

// Option 配置选项函数。
type Option func(*options)

func defaultOptions() options {
	return options{shardCount: DefaultShardCount}
}

// WithShardCount 设置分片数，降低高并发下的 map 锁竞争。
// 必须是 2 的幂；非法值被静默忽略并使用默认值。
func WithShardCount(n uint) Option {
	return func(o *options) {
		if n > 0 && n&(n-1) == 0 {
			o.shardCount = n
		}
	}
}
