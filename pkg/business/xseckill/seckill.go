package xseckill

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis_rate/v10"

	"github.com/omeyang/flashkit/pkg/util/xkeylock"
	"github.com/omeyang/flashkit/pkg/util/xseqid"
)

// Controller 秒杀下单控制器。
// 单个实例可被任意多 goroutine 并发调用。
type Controller struct {
	store   Store
	idgen   *xseqid.Generator
	users   *xkeylock.Locker
	limiter *redis_rate.Limiter
	options *Options
}

// New 创建秒杀控制器。
// store 与 idgen 必须非 nil；用户锁为进程内资源，由 Controller 自持。
func New(store Store, idgen *xseqid.Generator, opts ...Option) (*Controller, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if idgen == nil {
		return nil, ErrNilIDGenerator
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	c := &Controller{
		store:   store,
		idgen:   idgen,
		users:   xkeylock.New(),
		options: options,
	}
	if options.RateClient != nil {
		c.limiter = redis_rate.NewLimiter(options.RateClient)
	}
	return c, nil
}

// Purchase 执行一次购买请求，成功返回订单号。
//
// userID 由调用方显式传入（通常来自已验证的会话），不从任何环境状态读取。
// 业务拒绝以哨兵错误返回：[ErrNotStarted]、[ErrEnded]、[ErrOutOfStock]、
// [ErrAlreadyPurchased]、[ErrTooManyRequests]；其余错误为存储或基础设施故障。
func (c *Controller) Purchase(ctx context.Context, userID, voucherID int64) (int64, error) {
	if userID <= 0 {
		return 0, ErrInvalidUser
	}

	if err := c.allow(ctx, userID); err != nil {
		return 0, err
	}

	// 快速路径校验，不预留库存；权威判定在条件更新处。
	voucher, err := c.store.GetVoucher(ctx, voucherID)
	if err != nil {
		return 0, err
	}
	now := c.options.Now()
	switch {
	case now.Before(voucher.BeginTime):
		return 0, ErrNotStarted
	case now.After(voucher.EndTime):
		return 0, ErrEnded
	case voucher.Stock < 1:
		return 0, ErrOutOfStock
	}

	// 按用户串行化：同一用户的并发请求只放一个进入事务，
	// 其余在此排队后撞上事务内的重复检查。锁必须持有到订单决议完成。
	lock, err := c.users.Acquire(ctx, strconv.FormatInt(userID, 10))
	if err != nil {
		return 0, err
	}
	defer func() { _ = lock.Unlock() }()

	orderID, err := c.idgen.NextID(ctx, c.options.OrderPrefix)
	if err != nil {
		return 0, fmt.Errorf("xseckill: mint order id: %w", err)
	}

	order := &Order{
		OrderID:   orderID,
		UserID:    userID,
		VoucherID: voucherID,
		CreatedAt: now,
	}
	if err := c.store.CreateOrder(ctx, order); err != nil {
		return 0, err
	}
	return orderID, nil
}

// allow 按用户限流。限流器未启用时直接放行。
// 设计决策: Redis 限流器故障时放行而非拒绝——限流是保护手段，
// 不能因为它自身故障把全部请求拒之门外。
func (c *Controller) allow(ctx context.Context, userID int64) error {
	if c.limiter == nil {
		return nil
	}

	res, err := c.limiter.Allow(ctx, "seckill:user:"+strconv.FormatInt(userID, 10), c.options.RateLimit)
	if err != nil {
		c.options.Logger.Warn("xseckill: rate limiter unavailable, allowing request",
			"user", userID, "error", err)
		return nil
	}
	if res.Allowed == 0 {
		return ErrTooManyRequests
	}
	return nil
}

// Close 释放控制器持有的进程内资源。
func (c *Controller) Close() error {
	return c.users.Close()
}
