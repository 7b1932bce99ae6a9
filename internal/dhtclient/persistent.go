package dhtclient

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-diddht/internal/core/storage/kv"
	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/types"
)

// ValuePrefix 持久化值在 kv 中的前缀
var ValuePrefix = []byte("d/v/")

// persistedValueRecord 持久化的值记录
type persistedValueRecord struct {
	// Value Base64 编码的值
	Value string `json:"value"`

	// ExpiresAt 过期时间（Unix 纳秒）
	ExpiresAt int64 `json:"expires_at"`
}

// errCorruptRecord 持久化记录格式错误
var errCorruptRecord = errors.New("corrupt persisted record")

// PersistentClient BadgerDB 持久化 DHT 客户端
//
// 写入先落盘再更新内存索引，落盘失败时已存储的值保持不变。
// 打开时从存储加载未过期的记录；BadgerDB TTL 作为过期兜底。
type PersistentClient struct {
	store *kv.Store
	index *MemoryClient
	clock clock.Clock
	ttl   time.Duration
}

var _ interfaces.DHTClient = (*PersistentClient)(nil)

// NewPersistentClient 创建持久化客户端
//
// store 为根 kv.Store，客户端在其下使用 ValuePrefix 子空间。
func NewPersistentClient(store *kv.Store, opts ...MemoryOption) (*PersistentClient, error) {
	index := NewMemoryClient(opts...)
	c := &PersistentClient{
		store: store.SubStore(ValuePrefix),
		index: index,
		clock: index.clock,
		ttl:   index.ttl,
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// load 从存储加载记录，跳过并删除过期或损坏的条目
func (c *PersistentClient) load() error {
	now := c.clock.Now()
	var stale [][]byte
	err := c.store.PrefixScan(nil, func(k, value []byte) bool {
		key, rec, err := decodePersisted(k, value)
		if err != nil {
			log.Warn("跳过损坏的持久化记录", "key", string(k), "error", err)
			stale = append(stale, k)
			return true
		}
		if !now.Before(rec.expiresAt) {
			stale = append(stale, k)
			return true
		}
		c.index.put(key, rec.value, rec.expiresAt)
		return true
	})
	if err != nil {
		return err
	}
	for _, k := range stale {
		if err := c.store.Delete(k); err != nil {
			log.Debug("删除过期记录失败", "key", string(k), "error", err)
		}
	}
	if n := c.index.Size(); n > 0 {
		log.Debug("加载持久化记录", "count", n)
	}
	return nil
}

// decodePersisted 解析持久化记录，k 为十六进制存储键
func decodePersisted(k, data []byte) ([]byte, *valueRecord, error) {
	key, err := hex.DecodeString(string(k))
	if err != nil || types.ValidateKey(key) != nil {
		return nil, nil, fmt.Errorf("%w: bad key", errCorruptRecord)
	}
	var p persistedValueRecord
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errCorruptRecord, err)
	}
	value, err := base64.StdEncoding.DecodeString(p.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", errCorruptRecord, err)
	}
	return key, &valueRecord{value: value, expiresAt: time.Unix(0, p.ExpiresAt)}, nil
}

// Put 存储值
func (c *PersistentClient) Put(ctx context.Context, key, value []byte) error {
	if err := c.index.checkPut(ctx, key, value); err != nil {
		return err
	}

	expiresAt := c.clock.Now().Add(c.ttl)
	persisted := persistedValueRecord{
		Value:     base64.StdEncoding.EncodeToString(value),
		ExpiresAt: expiresAt.UnixNano(),
	}
	if err := c.store.PutJSONWithTTL([]byte(hex.EncodeToString(key)), &persisted, c.ttl); err != nil {
		return types.NewTransportError("put", err)
	}
	c.index.put(key, value, expiresAt)
	return nil
}

// Get 读取值
func (c *PersistentClient) Get(ctx context.Context, key []byte) ([]byte, error) {
	return c.index.Get(ctx, key)
}

// Size 返回内存索引中的记录数量
func (c *PersistentClient) Size() int {
	return c.index.Size()
}

// CleanupExpired 删除过期记录，返回删除数量
func (c *PersistentClient) CleanupExpired() int {
	removed := c.index.removeExpired()
	for _, k := range removed {
		if err := c.store.Delete([]byte(hex.EncodeToString([]byte(k)))); err != nil {
			log.Debug("删除过期记录失败", "error", err)
		}
	}
	return len(removed)
}

// Close 关闭客户端，底层存储引擎由其所有者关闭
func (c *PersistentClient) Close() error {
	return c.index.Close()
}
