package badger

import (
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/dep2p/go-diddht/internal/core/storage/engine"
)

// WriteBatch BadgerDB 批量写入
type WriteBatch struct {
	db     *Engine
	batch  *badger.WriteBatch
	count  atomic.Int32
	closed atomic.Bool
	err    error
}

// Put 添加写入操作
func (b *WriteBatch) Put(key, value []byte) {
	if b.closed.Load() || len(key) == 0 || b.err != nil {
		return
	}
	b.err = b.batch.Set(key, value)
	b.count.Add(1)
}

// Delete 添加删除操作
func (b *WriteBatch) Delete(key []byte) {
	if b.closed.Load() || len(key) == 0 || b.err != nil {
		return
	}
	b.err = b.batch.Delete(key)
	b.count.Add(1)
}

// Write 提交批量操作，之后可继续添加新操作
func (b *WriteBatch) Write() error {
	if b.closed.Load() {
		return engine.ErrBatchClosed
	}
	if b.db.closed.Load() {
		return engine.ErrClosed
	}
	if b.db.config.ReadOnly {
		return engine.ErrReadOnly
	}
	if b.err != nil {
		err := b.err
		b.batch.Cancel()
		b.reset()
		return convertError(err)
	}

	// Flush 失败时 WriteBatch 同样已结束，无需 Cancel
	if err := b.batch.Flush(); err != nil {
		b.reset()
		return convertError(err)
	}
	b.db.stats.numWrites.Add(int64(b.count.Load()))
	b.reset()
	return nil
}

// reset 换一个新的 WriteBatch
func (b *WriteBatch) reset() {
	b.count.Store(0)
	b.err = nil
	b.batch = b.db.db.NewWriteBatch()
}

// Size 返回未提交的操作数量
func (b *WriteBatch) Size() int {
	return int(b.count.Load())
}

// Close 丢弃未提交操作
func (b *WriteBatch) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.batch.Cancel()
}

var _ engine.Batch = (*WriteBatch)(nil)
