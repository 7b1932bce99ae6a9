package engine

import "errors"

// 预定义错误
var (
	// ErrNotFound 键不存在或已过期
	ErrNotFound = errors.New("storage: key not found")

	// ErrEmptyKey 空键
	ErrEmptyKey = errors.New("storage: empty key")

	// ErrClosed 引擎已关闭
	ErrClosed = errors.New("storage: engine closed")

	// ErrReadOnly 只读模式下写入
	ErrReadOnly = errors.New("storage: read-only mode")

	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// ErrInvalidTTL TTL 非正
	ErrInvalidTTL = errors.New("storage: ttl must be positive")

	// ErrBatchClosed 批量对象已关闭
	ErrBatchClosed = errors.New("storage: batch closed")
)

// IsNotFound 检查是否为键不存在错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsClosed 检查是否为引擎已关闭错误
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
