// Package kv 提供带前缀隔离的 KV 存储抽象层
//
// Store 在底层存储引擎之上提供命名空间隔离，每个组件使用不同的前缀。
//
// # 键空间设计
//
//   - d/v/ - 持久化 DHT 客户端的值存储
//   - s/   - 序列号计数器
//
// # 使用示例
//
//	eng, _ := badger.New(engine.DefaultConfig(dir))
//	dht := kv.New(eng, []byte("d/"))
//
//	// 实际键: d/v/<key>
//	dht.PutWithTTL([]byte("v/"+hex), value, time.Hour)
package kv

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/dep2p/go-diddht/internal/core/storage/engine"
)

// ErrCorrupted 存储的值无法按预期格式解析
var ErrCorrupted = errors.New("kv: corrupted value")

// Store 带前缀隔离的 KV 存储
//
// 所有键自动添加前缀；计数器操作在同一 Store 内串行化。
type Store struct {
	engine engine.InternalEngine
	prefix []byte
	mu     *sync.Mutex
}

// New 创建 Store
func New(eng engine.InternalEngine, prefix []byte) *Store {
	return &Store{
		engine: eng,
		prefix: append([]byte(nil), prefix...),
		mu:     &sync.Mutex{},
	}
}

// SubStore 创建子命名空间，与父 Store 共享计数器锁
func (s *Store) SubStore(prefix []byte) *Store {
	return &Store{
		engine: s.engine,
		prefix: s.prefixKey(prefix),
		mu:     s.mu,
	}
}

// Prefix 返回完整前缀
func (s *Store) Prefix() []byte {
	return append([]byte(nil), s.prefix...)
}

// prefixKey 为键添加前缀
func (s *Store) prefixKey(key []byte) []byte {
	prefixed := make([]byte, len(s.prefix)+len(key))
	copy(prefixed, s.prefix)
	copy(prefixed[len(s.prefix):], key)
	return prefixed
}

// stripPrefix 从键中移除前缀
func (s *Store) stripPrefix(key []byte) []byte {
	if len(key) < len(s.prefix) {
		return key
	}
	return key[len(s.prefix):]
}

// ============================================================================
//                              基础操作
// ============================================================================

// Get 获取值，不存在时返回 engine.ErrNotFound
func (s *Store) Get(key []byte) ([]byte, error) {
	return s.engine.Get(s.prefixKey(key))
}

// Put 设置键值对
func (s *Store) Put(key, value []byte) error {
	return s.engine.Put(s.prefixKey(key), value)
}

// PutWithTTL 设置带过期时间的键值对
func (s *Store) PutWithTTL(key, value []byte, ttl time.Duration) error {
	return s.engine.PutWithTTL(s.prefixKey(key), value, ttl)
}

// Delete 删除键
func (s *Store) Delete(key []byte) error {
	return s.engine.Delete(s.prefixKey(key))
}

// Has 检查键是否存在
func (s *Store) Has(key []byte) (bool, error) {
	return s.engine.Has(s.prefixKey(key))
}

// ============================================================================
//                              编码值
// ============================================================================

// GetJSON 获取并反序列化 JSON 值
func (s *Store) GetJSON(key []byte, v any) error {
	data, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(ErrCorrupted, err)
	}
	return nil
}

// PutJSON 序列化并存储 JSON 值
func (s *Store) PutJSON(key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Put(key, data)
}

// PutJSONWithTTL 序列化并存储带过期时间的 JSON 值
func (s *Store) PutJSONWithTTL(key []byte, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.PutWithTTL(key, data, ttl)
}

// GetUint64 获取 uint64 值
func (s *Store) GetUint64(key []byte) (uint64, error) {
	data, err := s.Get(key)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, ErrCorrupted
	}
	return binary.BigEndian.Uint64(data), nil
}

// PutUint64 存储 uint64 值
func (s *Store) PutUint64(key []byte, value uint64) error {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], value)
	return s.Put(key, data[:])
}

// IncrUint64 递增 uint64 值并返回新值
//
// 键不存在时视为 0。
func (s *Store) IncrUint64(key []byte, delta uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetUint64(key)
	if err != nil && !engine.IsNotFound(err) {
		return 0, err
	}
	next := current + delta
	if next < current {
		return 0, errors.New("kv: counter overflow")
	}
	if err := s.PutUint64(key, next); err != nil {
		return 0, err
	}
	return next, nil
}

// MaxUint64 将存储值提升到不小于 floor，返回最终值
func (s *Store) MaxUint64(key []byte, floor uint64) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.GetUint64(key)
	if err != nil && !engine.IsNotFound(err) {
		return 0, err
	}
	if current >= floor && err == nil {
		return current, nil
	}
	if err := s.PutUint64(key, floor); err != nil {
		return 0, err
	}
	return floor, nil
}

// ============================================================================
//                              前缀迭代
// ============================================================================

// PrefixScan 扫描前缀下的所有键值对
//
// 回调返回 false 时停止。回调收到的 key 已去除 Store 前缀，但保留 subPrefix。
func (s *Store) PrefixScan(subPrefix []byte, fn func(key, value []byte) bool) error {
	it := s.engine.NewPrefixIterator(s.prefixKey(subPrefix))
	defer it.Close()

	for it.First(); it.Valid(); it.Next() {
		if !fn(s.stripPrefix(it.Key()), it.Value()) {
			break
		}
	}
	return it.Error()
}

// Keys 返回前缀下的所有键
func (s *Store) Keys(subPrefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := s.PrefixScan(subPrefix, func(key, _ []byte) bool {
		keys = append(keys, key)
		return true
	})
	return keys, err
}

// Count 统计前缀下的键数量
func (s *Store) Count(subPrefix []byte) (int64, error) {
	var count int64
	err := s.PrefixScan(subPrefix, func(_, _ []byte) bool {
		count++
		return true
	})
	return count, err
}

// DeletePrefix 删除前缀下的所有键
func (s *Store) DeletePrefix(subPrefix []byte) error {
	keys, err := s.Keys(subPrefix)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	batch := s.engine.NewBatch()
	defer batch.Close()
	for _, key := range keys {
		batch.Delete(s.prefixKey(key))
	}
	return batch.Write()
}
