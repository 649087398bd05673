package xseckill

import (
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DBConfig 订单库连接配置。
type DBConfig struct {
	// Driver 数据库驱动："mysql" 或 "sqlite"。
	Driver string

	// DSN 连接串。MySQL 必填；SQLite 为空时使用进程内共享内存库。
	DSN string
}

// OpenDB 按配置打开订单库并迁移表结构。
// 生产部署用 MySQL；SQLite 用于本地开发与测试。
func OpenDB(cfg DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(cfg.Driver) {
	case "mysql":
		if cfg.DSN == "" {
			return nil, fmt.Errorf("xseckill: mysql requires a dsn")
		}
		dialector = mysql.Open(cfg.DSN)
	case "sqlite", "":
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file::memory:?cache=shared&_foreign_keys=1"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("xseckill: unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("xseckill: open database: %w", err)
	}

	if err := db.AutoMigrate(&Voucher{}, &Order{}); err != nil {
		return nil, fmt.Errorf("xseckill: auto migrate: %w", err)
	}
	return db, nil
}
