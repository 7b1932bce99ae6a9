package badger

import (
	"bytes"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-diddht/internal/core/storage/engine"
)

// Iterator BadgerDB 迭代器
//
// 持有一个只读事务，Close 时释放。
type Iterator struct {
	txn     *badger.Txn
	iter    *badger.Iterator
	prefix  []byte
	reverse bool
	started bool
	done    bool
	closed  atomic.Bool
	err     error
}

// First 移动到第一个键
func (it *Iterator) First() bool {
	if it.done || it.closed.Load() {
		return false
	}
	it.started = true
	switch {
	case it.reverse && len(it.prefix) > 0:
		// 逆序时从前缀的最大可能键开始
		it.iter.Seek(append(append([]byte{}, it.prefix...), 0xff))
	case len(it.prefix) > 0:
		it.iter.Seek(it.prefix)
	default:
		it.iter.Rewind()
	}
	return it.Valid()
}

// Next 移动到下一个键
func (it *Iterator) Next() bool {
	if it.done || it.closed.Load() {
		return false
	}
	if !it.started {
		return it.First()
	}
	it.iter.Next()
	return it.Valid()
}

// Valid 当前位置是否有效
func (it *Iterator) Valid() bool {
	if it.done || it.closed.Load() || !it.iter.Valid() {
		return false
	}
	return len(it.prefix) == 0 || bytes.HasPrefix(it.iter.Item().Key(), it.prefix)
}

// Key 返回当前键的副本
func (it *Iterator) Key() []byte {
	if !it.Valid() {
		return nil
	}
	return it.iter.Item().KeyCopy(nil)
}

// Value 返回当前值的副本
func (it *Iterator) Value() []byte {
	if !it.Valid() {
		return nil
	}
	value, err := it.iter.Item().ValueCopy(nil)
	if err != nil {
		it.err = err
		return nil
	}
	return value
}

// ExpiresAt 返回当前键的过期时间
func (it *Iterator) ExpiresAt() time.Time {
	if !it.Valid() {
		return time.Time{}
	}
	exp := it.iter.Item().ExpiresAt()
	if exp == 0 {
		return time.Time{}
	}
	return time.Unix(int64(exp), 0)
}

// Close 释放迭代器和事务
func (it *Iterator) Close() {
	if it.closed.Swap(true) || it.iter == nil {
		return
	}
	it.iter.Close()
	it.txn.Discard()
}

// Error 返回迭代过程中的错误
func (it *Iterator) Error() error {
	return it.err
}

var _ engine.Iterator = (*Iterator)(nil)
