package xseqid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// 错误定义
// =============================================================================

var (
	// ErrNilClient 客户端为空。
	ErrNilClient = errors.New("xseqid: client is nil")

	// ErrEmptyBusinessPrefix 业务前缀为空。
	// 前缀用于隔离不同业务的序列空间，不允许为空或仅含空白。
	ErrEmptyBusinessPrefix = errors.New("xseqid: business prefix must not be empty")

	// ErrSequenceOverflow 当日序列号超出 32 位预算。
	// 单日单前缀签发超过 2^32-1 个 ID 时返回，继续拼接会污染时间戳位。
	ErrSequenceOverflow = errors.New("xseqid: daily sequence overflow")

	// ErrTimeBeforeEpoch 当前时间早于纪元。
	// 通常意味着纪元配置错误或系统时钟严重回拨。
	ErrTimeBeforeEpoch = errors.New("xseqid: current time is before epoch")

	// ErrTimeOverflow 时间戳分量超出 31 位。
	// 自纪元起约 68 年后到达，属于不可恢复错误，需要迁移纪元。
	ErrTimeOverflow = errors.New("xseqid: timestamp component overflow")
)

// =============================================================================
// 位布局常量
// =============================================================================

const (
	// sequenceBits 序列号位数。
	sequenceBits = 32
	// sequenceMask 序列号掩码（2^32-1）。
	sequenceMask = (1 << sequenceBits) - 1
	// maxTimestamp 时间戳分量最大值（31 位，保证 ID 为正的 int64）。
	maxTimestamp = (1 << 31) - 1
)

// DefaultEpoch 默认纪元：2022-01-01T00:00:00Z（Unix 秒 1640995200）。
// 纪元在部署期约定后不可变更，否则新旧 ID 失去可比性。
var DefaultEpoch = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultKeyPrefix 计数器 key 的默认前缀。
// 完整 key 格式为 "icr:{businessPrefix}:{yyyyMMdd}"，
// 该格式是与外部工具的互操作约定，不要轻易变更。
const DefaultKeyPrefix = "icr:"

// dayLayout 日历日的 key 编码格式。
const dayLayout = "20060102"

// =============================================================================
// Generator
// =============================================================================

// Generator 基于 Redis INCR 的分布式 ID 生成器。
// 所有方法并发安全；多个进程共用同一 Redis 时 ID 全局唯一。
type Generator struct {
	client    redis.UniversalClient
	epoch     time.Time
	keyPrefix string
	now       func() time.Time
}

// NewGenerator 创建 ID 生成器。
// client 必须是已初始化的 redis.UniversalClient，生命周期由调用方管理。
func NewGenerator(client redis.UniversalClient, opts ...Option) (*Generator, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	g := &Generator{
		client:    client,
		epoch:     DefaultEpoch,
		keyPrefix: DefaultKeyPrefix,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// NextID 为指定业务前缀生成下一个 ID。
//
// 同一前缀同一秒内的 ID 严格递增，跨秒单调不减；
// 计数器存于 Redis，进程重启后不会回退。
func (g *Generator) NextID(ctx context.Context, businessPrefix string) (int64, error) {
	if strings.TrimSpace(businessPrefix) == "" {
		return 0, ErrEmptyBusinessPrefix
	}

	now := g.now().UTC()
	seconds := now.Unix() - g.epoch.Unix()
	if seconds < 0 {
		return 0, fmt.Errorf("%w: now=%s epoch=%s", ErrTimeBeforeEpoch, now.Format(time.RFC3339), g.epoch.Format(time.RFC3339))
	}
	if seconds > maxTimestamp {
		return 0, ErrTimeOverflow
	}

	// 计数器按 (业务前缀, UTC 日历日) 命名空间化，每天自然从 1 重新计数
	key := g.keyPrefix + businessPrefix + ":" + now.Format(dayLayout)
	seq, err := g.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("xseqid: incr %s: %w", key, err)
	}
	if seq > sequenceMask {
		return 0, fmt.Errorf("%w: prefix=%s day=%s seq=%d", ErrSequenceOverflow, businessPrefix, now.Format(dayLayout), seq)
	}

	return seconds<<sequenceBits | seq, nil
}

// =============================================================================
// ID 解析
// =============================================================================

// Components 表示 ID 分解后的各组成部分。
type Components struct {
	// ID 原始 ID 值
	ID int64
	// Time 签发时刻（秒精度，基于生成器的纪元还原）
	Time time.Time
	// Sequence 当日序列号（32 位）
	Sequence int64
}

// Decompose 按本生成器的纪元分解 ID。
// 用于排障时从订单号还原签发时刻。
func (g *Generator) Decompose(id int64) Components {
	return Components{
		ID:       id,
		Time:     g.epoch.Add(time.Duration(id>>sequenceBits) * time.Second),
		Sequence: id & sequenceMask,
	}
}
