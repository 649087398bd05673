// Package xseckill 提供限量秒杀的下单控制器，保证不超卖与一人一单。
//
// # 功能概述
//
//   - 时间窗校验：活动未开始 / 已结束分别返回明确的拒绝原因
//   - 一人一单：进程内按用户加锁 + 事务内重复订单检查
//   - 不超卖：库存扣减下推为条件更新（stock > 0 时才扣减），原子完成
//   - 订单号：基于 xseqid 的单调递增 ID
//   - 限流（可选）：基于 redis_rate 的按用户滑动窗口限流
//
// # 正确性来源
//
// 按用户的进程内锁只是吞吐优化：它减少同一用户并发请求对条件更新的
// 冗余竞争。正确性来自两点——条件更新的原子性（不超卖），以及重复检查
// 与扣减、插入处于同一事务边界内（一人一单）。
//
// # 错误语义
//
// 所有业务层拒绝都返回具名哨兵错误（[ErrNotStarted]、[ErrEnded]、
// [ErrOutOfStock]、[ErrAlreadyPurchased]、[ErrTooManyRequests]），
// 调用方用 errors.Is 区分；只有存储连接类失败才是普通错误。
package xseckill
