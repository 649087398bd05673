// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xkeylock: 基于 key 的进程内互斥锁，支持 context 超时和非阻塞获取
//   - xseqid: 基于 Redis INCR 的序号 ID 生成器，按业务前缀和日历日命名空间化
//
// 设计原则：
//   - 并发安全，所有公开 API 可被任意多 goroutine 调用
//   - 资源有界：锁条目随持有者释放即回收，计数器按日自然轮换
package util
