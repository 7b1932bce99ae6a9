// Package interfaces 定义 go-diddht 公共接口
//
// # 接口
//
//   - DHTClient  - 外部 DHT 传输的最小 put/get 契约
//   - Engine     - 可替换的键值存储后端
//   - Resolver   - 文档发布与解析服务
//
// 实现位于 internal/ 下，通过 fx 装配。
package interfaces
