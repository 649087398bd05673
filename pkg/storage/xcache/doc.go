// Package xcache 提供 Cache-Aside 模式的缓存门面，内置缓存穿透与缓存击穿防护。
//
// # 设计理念
//
// xcache 不包装底层客户端的所有 API，而是提供：
//   - 统一的读写入口（Set / SetWithLogicalExpire / Delete）
//   - 两种按数据"温度"选择的读取策略
//   - 底层客户端直接暴露（Client() 方法）
//
// # 两种读取策略
//
// GetWithPassThrough（防穿透，适用于冷数据/长尾 key）：
// 未命中时回源，回源为空则写入短 TTL 的空值标记，后续对同一不存在 id
// 的查询直接短路返回 [ErrNotFound]，不再打到后端存储。
//
// GetWithLogicalExpire（防击穿，适用于已预热的热点 key）：
// 缓存条目携带逻辑过期时间，物理上不过期。逻辑过期后由抢到互斥锁的
// 读请求提交异步重建任务，所有读请求（包括抢锁成功者）立即返回旧值，
// 不阻塞等待重建。可用性优先于新鲜度是此策略的刻意取舍；
// 旧值的滞后上界为一次重建耗时加一个锁 TTL。
// 注意此策略不自愈：key 不存在直接返回 [ErrNotFound]，需要预热写入。
//
// # 条目编码
//
// 所有条目统一为带标记的 JSON 信封 {"data":...,"expireAt":...}，
// expireAt 缺失表示普通写入（无逻辑过期），读取方始终知道如何解码，
// 不依赖调用方约定。空值标记为长度为零的字符串，与"key 不存在"严格区分。
//
// # 失效
//
// 对底层行的更新必须在事务提交后显式 Delete 对应缓存 key
//（先写库再删缓存），而不是双写，以避免在途事务与并发读之间的竞态。
package xcache
