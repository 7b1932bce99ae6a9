// Package crypto 提供 did:dht 使用的密码学工具
//
// 本包提供身份密钥生成、签名验证和加密密钥存储。
//
// # 支持的密钥类型
//
//   - Ed25519（默认）：did:dht 身份密钥
//   - Secp256k1：附加验证方法，压缩公钥 33 字节
//
// # 快速开始
//
// 生成密钥对：
//
//	priv, pub, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
//
// 签名和验证：
//
//	sig, err := priv.Sign(data)
//	ok, err := pub.Verify(data, sig)
//
// 密钥存储：
//
//	ks, err := crypto.NewFSKeystore("/path/to/keys", password)
//	err = ks.Put("identity", priv)
//	priv, err := ks.Get("identity")
//
// # 安全特性
//
//   - 常量时间比较
//   - AES-GCM + Argon2id 加密存储
//   - Secp256k1 签名使用 RFC6979 确定性 nonce
package crypto
