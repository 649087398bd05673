// Package xseqid 提供基于 Redis 原子自增的分布式 ID 生成器。
//
// # ID 结构
//
// 生成的 ID 为 63 位正整数：(秒级时间戳 << 32) | 当日序列号。
//
//   - 时间戳：自固定纪元（默认 2022-01-01T00:00:00Z）起的秒数，占高 31 位
//   - 序列号：按 (业务前缀, UTC 日历日) 维度的 Redis INCR 计数，占低 32 位
//
// 计数器 key 按日期命名空间化（icr:{prefix}:{yyyyMMdd}），每天自然重置，
// 每个业务前缀每天有 2^32-1 的序列预算。计数器持久化在 Redis 中，
// 进程重启后 ID 不会回退。
//
// # 有序性
//
// 同一业务前缀下，同一秒内签发的 ID 依赖 INCR 的线性一致性严格递增；
// 跨秒时时间戳分量占主导，按签发顺序单调不减。
// 唯一性完全依赖 Redis 原子自增，因此仅在单一权威序列源（单实例或
// 代理后的单逻辑实例）下成立；分片集群需按前缀做分区，本包不处理。
//
// # 溢出
//
// 单日单前缀签发超过 2^32-1 个 ID 时返回 [ErrSequenceOverflow]，
// 不会静默污染时间戳位。
package xseqid
