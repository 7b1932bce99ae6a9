package diddht

import (
	"errors"

	"github.com/dep2p/go-diddht/internal/record"
	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/did/dnspacket"
	"github.com/dep2p/go-diddht/pkg/types"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// 客户端生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted 客户端未启动
	ErrNotStarted = errors.New("diddht: client not started")

	// ErrAlreadyStarted 客户端已启动
	ErrAlreadyStarted = errors.New("diddht: client already started")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("diddht: client closed")

	// ────────────────────────────────────────────────────────────────────────
	// 文档与报文错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrInvalidIdentifier 标识符格式错误
	ErrInvalidIdentifier = did.ErrInvalidIdentifier

	// ErrInvalidDocument 文档结构不合法
	ErrInvalidDocument = did.ErrInvalidDocument

	// ErrMalformedRecord 报文或记录无法解析
	ErrMalformedRecord = dnspacket.ErrMalformedRecord

	// ErrPacketTooLarge 编码后报文超过大小上限
	ErrPacketTooLarge = dnspacket.ErrPacketTooLarge

	// ────────────────────────────────────────────────────────────────────────
	// 记录协议错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrSignatureInvalid 记录签名校验失败
	ErrSignatureInvalid = record.ErrSignatureInvalid

	// ErrIdentityMismatch 记录公钥与标识符不符
	ErrIdentityMismatch = record.ErrIdentityMismatch

	// ErrStaleWrite 序列号不大于已存储记录
	ErrStaleWrite = record.ErrStaleWrite

	// ────────────────────────────────────────────────────────────────────────
	// DHT 错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotFound 标识符下没有记录
	ErrNotFound = types.ErrNotFound
)

// TransportError DHT 传输错误，可退避重试
type TransportError = types.TransportError

// IsNotFound 检查错误是否表示无记录
func IsNotFound(err error) bool {
	return types.IsNotFound(err)
}

// IsRetryable 检查错误是否可重试
func IsRetryable(err error) bool {
	return types.IsRetryable(err)
}

// IsAuthFailure 检查错误是否为身份或签名校验失败
func IsAuthFailure(err error) bool {
	return record.IsAuthFailure(err)
}
