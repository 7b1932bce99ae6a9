// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - crypto: 密钥类型、签名与加密密钥库（Ed25519、secp256k1）
//
// # 与 pkg/ 其他目录的关系
//
//   - did/: 文档模型与 DNS 报文编解码
//   - interfaces/: 组件公共接口
//   - types/: 公共类型与错误
//   - lib/: 基础设施工具库（本目录）
//
// # 使用示例
//
//	import "github.com/dep2p/go-diddht/pkg/lib/crypto"
//
//	priv, pub, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
package lib
