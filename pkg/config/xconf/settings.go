package xconf

import (
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/flashkit/pkg/business/xseckill"
	"github.com/omeyang/flashkit/pkg/distributed/xdlock"
	"github.com/omeyang/flashkit/pkg/storage/xcache"
	"github.com/omeyang/flashkit/pkg/util/xseqid"
)

// Settings 套件的全量配置。
type Settings struct {
	Redis    RedisSettings    `koanf:"redis"`
	Cache    CacheSettings    `koanf:"cache"`
	Lock     LockSettings     `koanf:"lock"`
	Sequence SequenceSettings `koanf:"sequence"`
	Seckill  SeckillSettings  `koanf:"seckill"`
}

// RedisSettings Redis 连接配置。
// 多地址时创建集群客户端，单地址创建普通客户端。
type RedisSettings struct {
	Addrs    []string `koanf:"addrs"`
	Password string   `koanf:"password"`
	DB       int      `koanf:"db"`
}

// CacheSettings 缓存门面配置。
type CacheSettings struct {
	NullTTL          time.Duration `koanf:"nullTtl"`
	LockTTL          time.Duration `koanf:"lockTtl"`
	RebuildWorkers   int           `koanf:"rebuildWorkers"`
	RebuildQueueSize int           `koanf:"rebuildQueueSize"`
	RebuildTimeout   time.Duration `koanf:"rebuildTimeout"`
	Singleflight     bool          `koanf:"singleflight"`
}

// LockSettings 分布式锁配置。
type LockSettings struct {
	TTL           time.Duration `koanf:"ttl"`
	KeyPrefix     string        `koanf:"keyPrefix"`
	RetryAttempts int           `koanf:"retryAttempts"`
	RetryDelay    time.Duration `koanf:"retryDelay"`
	MaxRetryDelay time.Duration `koanf:"maxRetryDelay"`
}

// SequenceSettings 序号 ID 生成器配置。
// Epoch 为 "2006-01-02" 格式的日期，缺省为 2022-01-01（UTC）。
type SequenceSettings struct {
	KeyPrefix string `koanf:"keyPrefix"`
	Epoch     string `koanf:"epoch"`
}

// SeckillSettings 秒杀控制器配置。
// RatePerSecond 为 0 时不启用限流。
type SeckillSettings struct {
	OrderPrefix   string `koanf:"orderPrefix"`
	RatePerSecond int    `koanf:"ratePerSecond"`
	Database      struct {
		Driver string `koanf:"driver"`
		DSN    string `koanf:"dsn"`
	} `koanf:"database"`
}

// DefaultSettings 返回各组件缺省值对齐的配置。
func DefaultSettings() Settings {
	return Settings{
		Redis: RedisSettings{
			Addrs: []string{"127.0.0.1:6379"},
		},
		Cache: CacheSettings{
			NullTTL:          xcache.DefaultNullTTL,
			LockTTL:          xcache.DefaultLockTTL,
			RebuildWorkers:   xcache.DefaultRebuildWorkers,
			RebuildQueueSize: xcache.DefaultRebuildQueueSize,
			RebuildTimeout:   xcache.DefaultRebuildTimeout,
		},
		Lock: LockSettings{
			TTL:           xdlock.DefaultTTL,
			KeyPrefix:     xdlock.DefaultKeyPrefix,
			RetryAttempts: xdlock.DefaultRetryAttempts,
			RetryDelay:    xdlock.DefaultRetryDelay,
			MaxRetryDelay: xdlock.DefaultMaxRetryDelay,
		},
		Sequence: SequenceSettings{
			KeyPrefix: xseqid.DefaultKeyPrefix,
			Epoch:     xseqid.DefaultEpoch.Format(epochLayout),
		},
		Seckill: SeckillSettings{
			OrderPrefix: xseckill.DefaultOrderPrefix,
		},
	}
}

const epochLayout = "2006-01-02"

// Validate 校验配置值。
func (s *Settings) Validate() error {
	if len(s.Redis.Addrs) == 0 {
		return fmt.Errorf("%w: redis.addrs must not be empty", ErrInvalidSettings)
	}
	if s.Cache.NullTTL <= 0 || s.Cache.LockTTL <= 0 {
		return fmt.Errorf("%w: cache TTLs must be positive", ErrInvalidSettings)
	}
	if s.Cache.RebuildWorkers <= 0 || s.Cache.RebuildQueueSize <= 0 {
		return fmt.Errorf("%w: cache rebuild pool must be positive", ErrInvalidSettings)
	}
	if s.Lock.TTL <= 0 {
		return fmt.Errorf("%w: lock.ttl must be positive", ErrInvalidSettings)
	}
	if _, err := s.SequenceEpoch(); err != nil {
		return err
	}
	if s.Seckill.RatePerSecond < 0 {
		return fmt.Errorf("%w: seckill.ratePerSecond must not be negative", ErrInvalidSettings)
	}
	return nil
}

// SequenceEpoch 解析序号生成器的参考纪元。
func (s *Settings) SequenceEpoch() (time.Time, error) {
	epoch, err := time.ParseInLocation(epochLayout, s.Sequence.Epoch, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: sequence.epoch %q: %w", ErrInvalidSettings, s.Sequence.Epoch, err)
	}
	return epoch, nil
}

// CacheOptions 转换为 xcache 选项。
func (s *Settings) CacheOptions() []xcache.Option {
	return []xcache.Option{
		xcache.WithNullTTL(s.Cache.NullTTL),
		xcache.WithLockTTL(s.Cache.LockTTL),
		xcache.WithRebuildWorkers(s.Cache.RebuildWorkers, s.Cache.RebuildQueueSize),
		xcache.WithRebuildTimeout(s.Cache.RebuildTimeout),
		xcache.WithSingleflight(s.Cache.Singleflight),
	}
}

// LockOptions 转换为 xdlock 的单次加锁选项。
func (s *Settings) LockOptions() []xdlock.Option {
	return []xdlock.Option{
		xdlock.WithTTL(s.Lock.TTL),
		xdlock.WithKeyPrefix(s.Lock.KeyPrefix),
		xdlock.WithRetryAttempts(s.Lock.RetryAttempts),
		xdlock.WithRetryDelay(s.Lock.RetryDelay),
		xdlock.WithMaxRetryDelay(s.Lock.MaxRetryDelay),
	}
}

// SequenceOptions 转换为 xseqid 选项。
// 调用方需先经 Validate 保证 epoch 可解析。
func (s *Settings) SequenceOptions() ([]xseqid.Option, error) {
	epoch, err := s.SequenceEpoch()
	if err != nil {
		return nil, err
	}
	return []xseqid.Option{
		xseqid.WithKeyPrefix(s.Sequence.KeyPrefix),
		xseqid.WithEpoch(epoch),
	}, nil
}

// SeckillOptions 转换为 xseckill 选项。
// 限流需要 Redis 客户端，由调用方传入以复用连接。
func (s *Settings) SeckillOptions(client redis.UniversalClient) []xseckill.Option {
	opts := []xseckill.Option{
		xseckill.WithOrderPrefix(s.Seckill.OrderPrefix),
	}
	if s.Seckill.RatePerSecond > 0 && client != nil {
		opts = append(opts, xseckill.WithRateLimit(client, redis_rate.PerSecond(s.Seckill.RatePerSecond)))
	}
	return opts
}

// SeckillDBConfig 转换为订单库连接配置。
func (s *Settings) SeckillDBConfig() xseckill.DBConfig {
	return xseckill.DBConfig{
		Driver: s.Seckill.Database.Driver,
		DSN:    s.Seckill.Database.DSN,
	}
}

// NewRedisClient 按配置创建 Redis 客户端。
// 利用 UniversalClient 的地址数量语义：单地址为普通客户端，多地址为集群客户端。
func NewRedisClient(settings RedisSettings) redis.UniversalClient {
	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    settings.Addrs,
		Password: settings.Password,
		DB:       settings.DB,
	})
}
