// Package types 定义 go-diddht 的公共基础类型
//
// 这是最底层包，不依赖任何其他内部包。
//
// # 文件组织
//
//   - errors.go - DHT 客户端错误分类（ErrNotFound、TransportError）
//   - key.go    - 存储键
package types
