package xseckill

import "context"

// Store 秒杀数据的存取接口。
// CreateOrder 必须把重复检查、库存扣减、订单插入放进同一个事务：
// 三步要么全部提交，要么全部回滚。
type Store interface {
	// GetVoucher 按 id 读取秒杀券（新鲜读，不走缓存）。
	// 不存在时返回 [ErrVoucherNotFound]。
	GetVoucher(ctx context.Context, voucherID int64) (*Voucher, error)

	// CreateOrder 事务内完成下单：
	//  1. 查询 (UserID, VoucherID) 是否已有订单 → [ErrAlreadyPurchased]
	//  2. 条件扣减库存（仅当 stock > 0）→ 影响行数为 0 时 [ErrOutOfStock]
	//  3. 插入订单行
	CreateOrder(ctx context.Context, order *Order) error
}
