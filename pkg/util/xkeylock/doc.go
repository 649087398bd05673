// Package xkeylock 提供基于 key 的进程内互斥锁。
//
// 典型用途是秒杀下单路径上的"一人一单"串行化：以规范化的用户 ID 为 key，
// 保证同一进程内同一用户同时只有一个在途下单请求。相等的 key 必然映射到
// 同一把锁，锁在最后一个引用释放后自动回收，key 空间不会无限增长。
//
// 注意这只是吞吐优化：跨进程的正确性由存储层的条件更新与事务边界保证，
// 进程内锁的作用是减少对同一行的无谓竞争。
//
// # 使用模式
//
//	locker := xkeylock.New()
//	defer locker.Close()
//
//	handle, err := locker.Acquire(ctx, strconv.FormatInt(userID, 10))
//	if err != nil {
//	    return err
//	}
//	defer handle.Unlock()
//	// 临界区：查重 + 扣减 + 建单
package xkeylock
