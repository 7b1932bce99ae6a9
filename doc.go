// Package diddht 提供 did:dht 文档的发布与解析
//
// did:dht 将 DID 文档编码为二进制 DNS 报文，以身份密钥签名后作为带序列号的
// 可变记录存入 DHT。本包把编解码器、记录协议、DHT 客户端与解析器组装为一个
// 可启动、可关闭的 Client。
//
// 快速开始：
//
//	client, err := diddht.Start(ctx, diddht.WithPreset(diddht.PresetNameMemory))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	doc, keys, err := client.Create(did.CreateOptions{})
//	res, err := client.Publish(ctx, doc, keys.IdentityKey.PrivateKey, 0)
//	got, err := client.Resolve(ctx, res.ID)
//
// DHT 实现：
//   - memory: 进程内存储，用于测试与单机
//   - persistent: BadgerDB 持久化，重启后记录仍在
//   - relay: 通过 HTTP 网关访问公共 DHT
//
// 错误：
//
// 解析失败按原因区分，使用 errors.Is 判断：
// ErrNotFound、ErrMalformedRecord、ErrSignatureInvalid、ErrIdentityMismatch、
// ErrStaleWrite；传输错误可用 IsRetryable 判断是否应重试。
package diddht
