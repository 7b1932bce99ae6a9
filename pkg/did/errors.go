package did

import "errors"

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrInvalidIdentifier 标识符不是合法的 did:dht 标识符
	ErrInvalidIdentifier = errors.New("did: invalid did:dht identifier")

	// ErrInvalidDocument 文档结构不合法
	ErrInvalidDocument = errors.New("did: invalid document")

	// ErrInvalidJWK JWK 字段缺失或无法解析
	ErrInvalidJWK = errors.New("did: invalid jwk")

	// ErrUnsupportedKey 不支持的密钥类型
	ErrUnsupportedKey = errors.New("did: unsupported key type")
)
