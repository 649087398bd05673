package xcache

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// refresher 后台重建 worker 池。
// 固定数量的 worker 消费有界队列；队列满时投递失败而非阻塞，
// 陈旧值继续可用，重建由后续读取再次触发。
type refresher struct {
	jobs   chan func()
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func newRefresher(workers, queueSize int, logger *slog.Logger) *refresher {
	r := &refresher{
		jobs:   make(chan func(), queueSize),
		logger: logger,
	}
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}
	return r
}

// submit 非阻塞投递任务。队列满或池已停止时返回 false。
func (r *refresher) submit(job func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	select {
	case r.jobs <- job:
		return true
	default:
		r.logger.Warn("xcache: rebuild queue full, job dropped")
		return false
	}
}

// stop 关闭队列并等待已入队的任务执行完毕。幂等。
func (r *refresher) stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.jobs)
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *refresher) worker() {
	defer r.wg.Done()
	for job := range r.jobs {
		r.run(job)
	}
}

// run 执行单个任务并吞掉 panic，避免单个重建失败杀死 worker。
func (r *refresher) run(job func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("xcache: rebuild job panicked",
				"panic", rec, "stack", string(debug.Stack()))
		}
	}()
	job()
}
