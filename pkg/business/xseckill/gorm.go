package xseckill

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// gormStore 基于 GORM 的 Store 实现，兼容 MySQL 与 SQLite。
type gormStore struct {
	db *gorm.DB
}

// NewGormStore 创建基于 GORM 的订单存储。
// db 必须是已初始化的 *gorm.DB，生命周期由调用方管理。
func NewGormStore(db *gorm.DB) (Store, error) {
	if db == nil {
		return nil, ErrNilStore
	}
	return &gormStore{db: db}, nil
}

// GetVoucher 按 id 读取秒杀券。
func (s *gormStore) GetVoucher(ctx context.Context, voucherID int64) (*Voucher, error) {
	var voucher Voucher
	err := s.db.WithContext(ctx).
		Where("voucher_id = ?", voucherID).
		First(&voucher).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVoucherNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("xseckill: get voucher %d: %w", voucherID, err)
	}
	return &voucher, nil
}

// CreateOrder 事务内完成重复检查、条件扣减与订单插入。
func (s *gormStore) CreateOrder(ctx context.Context, order *Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Order{}).
			Where("user_id = ? AND voucher_id = ?", order.UserID, order.VoucherID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("xseckill: check duplicate order: %w", err)
		}
		if count > 0 {
			return ErrAlreadyPurchased
		}

		// 扣减下推为条件更新：WHERE stock > 0 与 SET stock = stock - 1
		// 在存储端原子完成，关闭"两个请求都看到余量"的竞态。
		result := tx.Model(&Voucher{}).
			Where("voucher_id = ? AND stock > 0", order.VoucherID).
			Update("stock", gorm.Expr("stock - ?", 1))
		if result.Error != nil {
			return fmt.Errorf("xseckill: decrement stock: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrOutOfStock
		}

		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("xseckill: insert order: %w", err)
		}
		return nil
	})
	return err
}
