package xseckill

import (
	"log/slog"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// DefaultOrderPrefix 订单号在 xseqid 中的业务前缀。
const DefaultOrderPrefix = "order"

// Options Controller 的配置集合。
type Options struct {
	// OrderPrefix 订单号业务前缀，决定序号计数器的命名空间。
	OrderPrefix string

	// RateClient 非 nil 时启用按用户限流。
	RateClient redis.UniversalClient

	// RateLimit 限流阈值。默认每用户每秒 10 次。
	RateLimit redis_rate.Limit

	// Now 当前时间来源，测试时可注入固定时钟。
	Now func() time.Time

	// Logger 用于记录限流器故障等警告日志。默认 slog.Default()。
	Logger *slog.Logger
}

// Option 配置 Controller 的函数类型。
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		OrderPrefix: DefaultOrderPrefix,
		RateLimit:   redis_rate.PerSecond(10),
		Now:         time.Now,
		Logger:      slog.Default(),
	}
}

// WithOrderPrefix 设置订单号业务前缀。
func WithOrderPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.OrderPrefix = prefix
		}
	}
}

// WithRateLimit 启用按用户限流。
// 限流计数存在 Redis 中，多实例部署时共享同一配额。
func WithRateLimit(client redis.UniversalClient, limit redis_rate.Limit) Option {
	return func(o *Options) {
		o.RateClient = client
		o.RateLimit = limit
	}
}

// WithNow 设置时间来源。
func WithNow(now func() time.Time) Option {
	return func(o *Options) {
		if now != nil {
			o.Now = now
		}
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
