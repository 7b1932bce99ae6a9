package types

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ============================================================================
//                              DHT 客户端错误
// ============================================================================

var (
	// ErrNotFound 存储键下没有记录，属于正常结果
	ErrNotFound = errors.New("dht: record not found")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("dht: client closed")

	// ErrInvalidKey 存储键为空或长度不合法
	ErrInvalidKey = errors.New("dht: invalid storage key")

	// ErrValueTooLarge 值超过客户端允许的大小
	ErrValueTooLarge = errors.New("dht: value too large")
)

// TransportError 传输层错误，调用方可退避重试
//
// 超时与 context 截止都包装为 TransportError。
type TransportError struct {
	Op  string // 操作：put / get
	Err error  // 原始错误
}

// Error 实现 error 接口
func (e *TransportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("dht transport %s failed", e.Op)
	}
	return fmt.Sprintf("dht transport %s failed: %v", e.Op, e.Err)
}

// Unwrap 返回原始错误
func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError 创建传输错误
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// IsNotFound 检查是否为未找到
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRetryable 检查错误是否可重试
//
// TransportError、context 超时和网络超时可重试；未找到与校验失败不可重试。
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// WrapContextError 将 context 错误包装为传输错误，其他错误原样返回
func WrapContextError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		var te *TransportError
		if errors.As(err, &te) {
			return err
		}
		return NewTransportError(op, err)
	}
	return err
}
