// Package distributed 提供分布式协调相关的子包。
//
// 子包列表：
//   - xdlock: 分布式锁，支持单节点 Redis 与 Redsync（多节点）后端
//
// 设计原则：
//   - 提供统一的锁接口，支持多种后端实现
//   - 释放经持有者令牌校验，只删除自己的锁
//   - 阻塞式获取为有界重试 + 指数退避，不做无限等待
package distributed
