// Package xdlock 提供基于 Redis 的分布式互斥锁。
//
// # 核心组件
//
//   - Factory：锁工厂接口，管理底层客户端并创建锁
//   - Handle：一次成功获取的锁句柄，通过它 Unlock
//   - NewRedisFactory：单节点实现，SET NX + TTL 获取，Lua 比较删除释放
//   - NewRedsyncFactory：多节点 Redlock 实现（基于 redsync）
//
// # 语义
//
// TryLock 永不阻塞：锁被占用返回 (nil, nil)，这是正常信号而非错误。
// Lock 是有界阻塞变体：指数退避 + 抖动重试，次数耗尽返回 [ErrLockFailed]，
// 不会无限循环等待。
//
// 每次获取都会生成唯一 token 写入锁值，Unlock 通过 Lua 脚本比较 token
// 后才删除，避免误删其他持有者在 TTL 竞争后建立的锁。
// 持有者崩溃时锁随 TTL 自动过期，不可用时间上界为一个 TTL。
//
// # 使用模式
//
//	factory, _ := xdlock.NewRedisFactory(client)
//	handle, err := factory.TryLock(ctx, "shop:1", xdlock.WithTTL(10*time.Second))
//	if err != nil {
//	    return err // 锁服务异常
//	}
//	if handle == nil {
//	    return nil // 被其他持有者占用，按业务策略跳过或稍后再试
//	}
//	defer handle.Unlock(ctx)
package xdlock
