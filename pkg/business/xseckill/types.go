package xseckill

import "time"

// Voucher 秒杀券：限时限量。
// Stock 只能通过条件更新扣减，任何路径都不得读后写。
type Voucher struct {
	VoucherID int64     `gorm:"column:voucher_id;primaryKey" json:"voucherId"`
	Stock     int       `gorm:"column:stock" json:"stock"`
	BeginTime time.Time `gorm:"column:begin_time" json:"beginTime"`
	EndTime   time.Time `gorm:"column:end_time" json:"endTime"`
}

// TableName 指定 GORM 表名。
func (Voucher) TableName() string {
	return "seckill_vouchers"
}

// Order 秒杀订单。每个 (UserID, VoucherID) 至多一条，创建后不可变。
type Order struct {
	OrderID   int64     `gorm:"column:order_id;primaryKey" json:"orderId"`
	UserID    int64     `gorm:"column:user_id;index:idx_user_voucher,unique" json:"userId"`
	VoucherID int64     `gorm:"column:voucher_id;index:idx_user_voucher,unique" json:"voucherId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName 指定 GORM 表名。
func (Order) TableName() string {
	return "voucher_orders"
}
