// Package record 实现签名、带序列号的可变 DHT 记录
//
// 写入路径：
//
//	packet ──▶ SignablePayload(seq, packet) ──▶ 身份私钥签名 ──▶ PutRequest
//	       ──▶ Marshal ──▶ DHTClient.Put(StorageKey(pub), envelope)
//
// 读取路径：
//
//	DHTClient.Get(StorageKeyForDID(id)) ──▶ Open(id, envelope)
//	       ──▶ 身份绑定校验 ──▶ 签名校验 ──▶ packet
//
// 存储键由身份公钥派生（SHA-1，BEP44 target），同一身份的多次写入覆盖同一个槽位。
// 序列号只增不减：Publisher 在写入前重新读取已存储的记录，
// 序列号不大于已存储值时返回 ErrStaleWrite，不会发出写入。
//
// 信封格式（大端序）：
//
//	version(1)=1 | keyType(1) | pubLen(2) | pub | seq(8) | sigLen(2) | sig | payloadLen(2) | payload
package record
