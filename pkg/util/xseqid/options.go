package xseqid

import "time"

// Option 配置选项函数。
type Option func(*Generator)

// WithEpoch 设置自定义纪元。
// 所有签发节点必须使用同一纪元，部署后不可变更。
// 零值时间被静默忽略。
func WithEpoch(epoch time.Time) Option {
	return func(g *Generator) {
		if !epoch.IsZero() {
			g.epoch = epoch.UTC()
		}
	}
}

// WithKeyPrefix 设置计数器 key 前缀（默认 "icr:"）。
// 变更前缀会切换到全新的序列空间，仅在与既有部署无互操作需求时使用。
func WithKeyPrefix(prefix string) Option {
	return func(g *Generator) {
		if prefix != "" {
			g.keyPrefix = prefix
		}
	}
}

// WithNow 注入时钟函数，用于测试固定时间。
func WithNow(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}
