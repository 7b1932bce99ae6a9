package record

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrStaleWrite 序列号不大于已存储的序列号，调用方需刷新后重试
	ErrStaleWrite = errors.New("record: stale write")

	// ErrSignatureInvalid 签名校验失败，记录必须丢弃
	ErrSignatureInvalid = errors.New("record: signature invalid")

	// ErrIdentityMismatch 信封中的公钥与请求的身份不符
	ErrIdentityMismatch = errors.New("record: identity mismatch")

	// ErrMalformedEnvelope 信封格式错误
	ErrMalformedEnvelope = errors.New("record: malformed envelope")

	// ErrNilKey 身份密钥为空
	ErrNilKey = errors.New("record: nil identity key")

	// ErrPayloadTooLarge 载荷超过信封长度字段上限
	ErrPayloadTooLarge = errors.New("record: payload too large")
)

// RecordError 记录操作错误
type RecordError struct {
	Op      string // 操作名称
	Err     error  // 底层错误
	Message string // 错误消息
}

// Error 实现 error 接口
func (e *RecordError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("record %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("record %s: %v", e.Op, e.Err)
}

// Unwrap 实现错误解包
func (e *RecordError) Unwrap() error {
	return e.Err
}

// NewRecordError 创建记录错误
func NewRecordError(op string, err error, message string) *RecordError {
	return &RecordError{
		Op:      op,
		Err:     err,
		Message: message,
	}
}

// IsAuthFailure 检查是否为身份或签名校验失败
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrSignatureInvalid) || errors.Is(err, ErrIdentityMismatch)
}
