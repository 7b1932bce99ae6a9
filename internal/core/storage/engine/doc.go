// Package engine 定义存储引擎接口
//
// engine 在 interfaces.Engine 之上补充带 TTL 的写入、批量写入和前缀迭代，
// 供 kv 层和持久化 DHT 客户端使用。
//
// # 实现
//
//   - badger: BadgerDB 实现（默认，支持磁盘和内存模式）
package engine
