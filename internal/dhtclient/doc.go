// Package dhtclient 提供 interfaces.DHTClient 的实现
//
// 三种实现遵守同一契约：键下无记录时返回 types.ErrNotFound，
// 传输故障与超时返回 *types.TransportError，失败的 Put 不改变已存储的值。
//
//   - MemoryClient: 进程内 map，带 TTL，用于测试和嵌入
//   - PersistentClient: BadgerDB 持久化（kv 前缀 d/v/），内存索引加速查询
//   - RelayClient: 通过 HTTP 网关访问 DHT（PUT/GET {base}/{hex(key)}）
//
// 客户端只搬运字节，不解析也不校验记录；签名与序列号校验在 record 包完成。
package dhtclient
