package xkeylock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Handle 表示一次成功的锁获取。
type Handle interface {
	// Unlock 释放锁。第一次调用返回 nil，后续调用返回 [ErrNotHeld]。
	Unlock() error

	// Key 返回锁的 key。
	Key() string
}

// Locker 提供基于 key 的进程内互斥锁。所有方法并发安全。
//
// 锁是非可重入的，与 sync.Mutex 一致；同一 goroutine 对同一 key
// 重复 Acquire 会死锁，建议始终使用带 deadline 的 context。
type Locker struct {
	shards []lockShard
	mask   uint64
	closed atomic.Bool
}

type lockShard struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// lockEntry 一个 key 的锁条目。
// sema 是容量 1 的 channel：发送成功即持有锁，接收即释放。
// refs 记录持有者 + 等待者数量，受所属分片的 mu 保护，归零时删除条目。
type lockEntry struct {
	sema chan struct{}
	refs int
}

// New 创建 Locker。
func New(opts ...Option) *Locker {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	shards := make([]lockShard, o.shardCount)
	for i := range shards {
		shards[i].entries = make(map[string]*lockEntry)
	}
	return &Locker{
		shards: shards,
		mask:   uint64(o.shardCount - 1),
	}
}

func (l *Locker) shardFor(key string) *lockShard {
	return &l.shards[xxhash.Sum64String(key)&l.mask]
}

// retain 获取或创建 key 对应的条目并增加引用计数。
func (l *Locker) retain(key string) (*lockEntry, *lockShard) {
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &lockEntry{sema: make(chan struct{}, 1)}
		s.entries[key] = e
	}
	e.refs++
	return e, s
}

// release 减少引用计数，归零时回收条目。
func (l *Locker) release(key string, e *lockEntry, s *lockShard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(s.entries, key)
	}
}

// Acquire 阻塞式获取锁，支持 ctx 超时/取消。
// Locker 已关闭返回 [ErrClosed]；key 为空返回 [ErrInvalidKey]。
func (l *Locker) Acquire(ctx context.Context, key string) (Handle, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.closed.Load() {
		return nil, ErrClosed
	}

	e, s := l.retain(key)
	select {
	case e.sema <- struct{}{}:
		return &handle{locker: l, key: key, entry: e, shard: s}, nil
	case <-ctx.Done():
		l.release(key, e, s)
		return nil, ctx.Err()
	}
}

// TryAcquire 非阻塞获取锁。
// 锁被占用时返回 (nil, nil)，与分布式锁的 TryLock 约定一致。
func (l *Locker) TryAcquire(key string) (Handle, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	if l.closed.Load() {
		return nil, ErrClosed
	}

	e, s := l.retain(key)
	select {
	case e.sema <- struct{}{}:
		return &handle{locker: l, key: key, entry: e, shard: s}, nil
	default:
		l.release(key, e, s)
		return nil, nil
	}
}

// Len 返回当前活跃的 key 数量（持有者 + 等待者），用于监控。
func (l *Locker) Len() int {
	n := 0
	for i := range l.shards {
		s := &l.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// Close 关闭 Locker，拒绝后续获取。
// 已持有的 Handle 仍可正常 Unlock。
func (l *Locker) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	return nil
}

// =============================================================================
// Handle 实现
// =============================================================================

type handle struct {
	locker *Locker
	key    string
	entry  *lockEntry
	shard  *lockShard
	done   atomic.Bool
}

func (h *handle) Unlock() error {
	if !h.done.CompareAndSwap(false, true) {
		return ErrNotHeld
	}
	<-h.entry.sema
	h.locker.release(h.key, h.entry, h.shard)
	return nil
}

func (h *handle) Key() string {
	return h.key
}

var _ Handle = (*handle)(nil)
