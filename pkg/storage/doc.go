// Package storage 提供数据存储相关的子包。
//
// 子包列表：
//   - xcache: 旁路缓存门面，穿透防护（空值缓存）与击穿防护（逻辑过期）
//
// 设计原则：
//   - 缓存条目统一用带标记的信封编码，读取方始终知道该用哪种解码
//   - 读路径不阻塞：陈旧值立即返回，重建交给后台 worker
//   - 写路径先写库再删缓存，避免与并发读者的竞态
package storage
