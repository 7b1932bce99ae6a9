// Package resolver 实现 interfaces.Resolver
//
// 发布：校验文档与身份 ──▶ dnspacket 编码 ──▶ record.Publisher 签名写入
// 解析：文档缓存 ──▶ singleflight 合并 ──▶ record.Retriever 读取校验 ──▶ dnspacket 解码
//
// 签名或身份校验失败的记录不会进入解码，也不会进入缓存。
package resolver
