package xseckill

import "errors"

var (
	// ErrVoucherNotFound 秒杀券不存在。
	ErrVoucherNotFound = errors.New("xseckill: voucher not found")

	// ErrNotStarted 活动尚未开始。
	ErrNotStarted = errors.New("xseckill: seckill has not started")

	// ErrEnded 活动已经结束。
	ErrEnded = errors.New("xseckill: seckill has ended")

	// ErrOutOfStock 库存不足。
	// 快速路径检查与条件更新失败都返回本错误，属终态拒绝，不应重试。
	ErrOutOfStock = errors.New("xseckill: out of stock")

	// ErrAlreadyPurchased 该用户已购买过此券（一人一单）。
	ErrAlreadyPurchased = errors.New("xseckill: user already purchased this voucher")

	// ErrTooManyRequests 用户请求被限流。
	ErrTooManyRequests = errors.New("xseckill: too many requests")

	// ErrNilStore 传入的订单存储为 nil。
	ErrNilStore = errors.New("xseckill: nil store")

	// ErrNilIDGenerator 传入的 ID 生成器为 nil。
	ErrNilIDGenerator = errors.New("xseckill: nil id generator")

	// ErrInvalidUser 用户 ID 非法。
	ErrInvalidUser = errors.New("xseckill: invalid user id")
)
