// Package did 定义 did:dht 文档数据模型
//
// 文档由一个身份密钥派生出标识符 did:dht:<z-base-32 公钥>，包含有序的验证方法、
// 五类用途引用和有序的服务列表。验证方法顺序具有语义，编解码必须保持。
//
// # 快速开始
//
// 创建文档：
//
//	doc, keys, err := did.Create(did.CreateOptions{
//	    Services: []did.Service{{ID: "dwn", Type: "DecentralizedWebNode",
//	        ServiceEndpoint: did.Endpoints{"https://example.com/dwn"}}},
//	})
//
// 校验文档：
//
//	if err := doc.Validate(); err != nil { ... }
//
// 文档是值类型，派生新版本请先 Clone。
package did
