package xcache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Warmer 热点键预热器。
// 支持一次性预热与按 cron 表达式周期刷新，写入逻辑过期信封，
// 配合 [Cache.GetWithLogicalExpire] 使用。
type Warmer struct {
	cache  *Cache
	cron   *cron.Cron
	logger *slog.Logger
}

// NewWarmer 创建预热器。cron 表达式为标准五字段格式。
func NewWarmer(cache *Cache) (*Warmer, error) {
	if cache == nil {
		return nil, ErrNilClient
	}
	return &Warmer{
		cache:  cache,
		cron:   cron.New(),
		logger: cache.options.Logger,
	}, nil
}

// WarmNow 立即预热单个键：回源加载后以逻辑过期写入。
// 后端确认 id 不存在时返回 [ErrNotFound]，不写入任何内容。
func (w *Warmer) WarmNow(ctx context.Context, keyPrefix, id string, loadFn LoadFunc, ttl time.Duration) error {
	if loadFn == nil {
		return ErrNilLoader
	}

	value, err := loadFn(ctx, id)
	if err != nil {
		return err
	}
	if value == nil {
		return ErrNotFound
	}
	return w.cache.SetWithLogicalExpire(ctx, keyPrefix+id, value, ttl)
}

// Register 注册周期预热任务。
// 任务执行即 [Warmer.WarmNow]，失败记录警告日志，下个周期重试。
// 返回的 EntryID 可用于 [Warmer.Remove]。
func (w *Warmer) Register(spec, keyPrefix, id string, loadFn LoadFunc, ttl time.Duration) (cron.EntryID, error) {
	if loadFn == nil {
		return 0, ErrNilLoader
	}

	entryID, err := w.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), w.cache.options.RebuildTimeout)
		defer cancel()
		if warmErr := w.WarmNow(ctx, keyPrefix, id, loadFn, ttl); warmErr != nil {
			w.logger.Warn("xcache: scheduled warm failed",
				"key", keyPrefix+id, "error", warmErr)
		}
	})
	if err != nil {
		return 0, fmt.Errorf("xcache: register warm task: %w", err)
	}
	return entryID, nil
}

// Remove 移除周期预热任务。
func (w *Warmer) Remove(id cron.EntryID) {
	w.cron.Remove(id)
}

// Start 启动周期调度。
func (w *Warmer) Start() {
	w.cron.Start()
}

// Stop 停止调度并等待执行中的任务结束。
func (w *Warmer) Stop() {
	<-w.cron.Stop().Done()
}
