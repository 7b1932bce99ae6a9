package engine

import (
	"time"

	"github.com/dep2p/go-diddht/pkg/interfaces"
)

// ============================================================================
//                              引擎接口
// ============================================================================

// InternalEngine 内部存储引擎接口
//
// 在公共 interfaces.Engine 基础上提供 TTL、批量和迭代能力。
type InternalEngine interface {
	interfaces.Engine

	// PutWithTTL 写入键值对，ttl 到期后键自动失效
	PutWithTTL(key, value []byte, ttl time.Duration) error

	// NewBatch 创建批量写入对象
	NewBatch() Batch

	// NewIterator 创建迭代器
	NewIterator(opts *IteratorOptions) Iterator

	// NewPrefixIterator 创建前缀迭代器
	NewPrefixIterator(prefix []byte) Iterator

	// Start 启动后台任务（GC）
	Start() error

	// Sync 同步数据到磁盘
	Sync() error

	// Stats 获取统计信息
	Stats() *Stats
}

// Batch 批量写入
//
// 操作在 Write 时一次性提交；Write 之后对象可继续使用。
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)
	Write() error
	Size() int
	Close()
}

// Iterator 迭代器
//
// 使用方式:
//
//	it := eng.NewPrefixIterator(prefix)
//	defer it.Close()
//	for it.First(); it.Valid(); it.Next() {
//	    _ = it.Key()
//	}
type Iterator interface {
	// First 移动到第一个键
	First() bool

	// Next 移动到下一个键
	Next() bool

	// Valid 当前位置是否有效
	Valid() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	// ExpiresAt 返回当前键的过期时间，未设置 TTL 时为零值
	ExpiresAt() time.Time

	// Close 释放资源，多次调用安全
	Close()

	// Error 返回迭代过程中的错误
	Error() error
}

// IteratorOptions 迭代器选项
type IteratorOptions struct {
	// Prefix 只遍历以此为前缀的键
	Prefix []byte

	// Reverse 逆序遍历
	Reverse bool

	// PrefetchValues 是否预取值
	PrefetchValues bool
}

// DefaultIteratorOptions 返回默认迭代器选项
func DefaultIteratorOptions() *IteratorOptions {
	return &IteratorOptions{PrefetchValues: true}
}

// Stats 引擎统计
type Stats struct {
	KeyCount    int64 `json:"key_count"`
	DiskSize    int64 `json:"disk_size"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	NumWrites   int64 `json:"num_writes"`
	NumReads    int64 `json:"num_reads"`
	NumDeletes  int64 `json:"num_deletes"`
}
