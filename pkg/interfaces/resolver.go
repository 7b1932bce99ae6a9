package interfaces

import (
	"context"

	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// PublishResult 发布结果
type PublishResult struct {
	// ID 文档标识符
	ID string

	// Key 存储键
	Key []byte

	// Seq 使用的序列号
	Seq uint64

	// Size 编码后报文字节数
	Size int
}

// Resolver 文档发布与解析服务
//
// 实现位置：internal/resolver/
type Resolver interface {
	// Publish 编码、签名并发布文档
	//
	// seq 为 0 时从序列号源获取下一个值。
	Publish(ctx context.Context, doc *did.Document, identity crypto.PrivateKey, seq uint64) (*PublishResult, error)

	// Resolve 按标识符读取、校验并解码文档
	Resolve(ctx context.Context, id string) (*did.Document, error)
}
