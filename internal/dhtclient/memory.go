package dhtclient

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/types"
)

const (
	// DefaultRecordTTL 本地记录默认有效期
	DefaultRecordTTL = 2 * time.Hour

	// DefaultMaxValueSize 单个值的默认大小上限
	DefaultMaxValueSize = 64 << 10

	// DefaultCleanupInterval 默认过期清理周期
	DefaultCleanupInterval = 5 * time.Minute
)

// valueRecord 值记录
type valueRecord struct {
	value     []byte
	expiresAt time.Time
}

func (r *valueRecord) expired(now time.Time) bool {
	return !now.Before(r.expiresAt)
}

// MemoryOption MemoryClient 选项
type MemoryOption func(*MemoryClient)

// WithTTL 设置记录有效期
func WithTTL(ttl time.Duration) MemoryOption {
	return func(c *MemoryClient) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock 设置时钟，测试中使用 clock.NewMock()
func WithClock(clk clock.Clock) MemoryOption {
	return func(c *MemoryClient) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithMaxValueSize 设置值大小上限
func WithMaxValueSize(n int) MemoryOption {
	return func(c *MemoryClient) {
		if n > 0 {
			c.maxValueSize = n
		}
	}
}

// MemoryClient 进程内 DHT 客户端
//
// 每个键只保留最后一次写入的值，过期后视为不存在。
type MemoryClient struct {
	mu     sync.RWMutex
	values map[string]*valueRecord
	closed bool

	ttl          time.Duration
	maxValueSize int
	clock        clock.Clock
}

var _ interfaces.DHTClient = (*MemoryClient)(nil)

// NewMemoryClient 创建内存客户端
func NewMemoryClient(opts ...MemoryOption) *MemoryClient {
	c := &MemoryClient{
		values:       make(map[string]*valueRecord),
		ttl:          DefaultRecordTTL,
		maxValueSize: DefaultMaxValueSize,
		clock:        clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put 存储值，覆盖旧值
func (c *MemoryClient) Put(ctx context.Context, key, value []byte) error {
	if err := c.checkPut(ctx, key, value); err != nil {
		return err
	}
	c.put(key, value, c.clock.Now().Add(c.ttl))
	return nil
}

// checkPut 写入前的公共校验
func (c *MemoryClient) checkPut(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return types.WrapContextError("put", err)
	}
	if err := types.ValidateKey(key); err != nil {
		return err
	}
	if len(value) > c.maxValueSize {
		return types.ErrValueTooLarge
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return types.ErrClientClosed
	}
	return nil
}

// put 写入副本
func (c *MemoryClient) put(key, value []byte, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[string(key)] = &valueRecord{
		value:     append([]byte(nil), value...),
		expiresAt: expiresAt,
	}
}

// Get 读取值，不存在或已过期时返回 types.ErrNotFound
func (c *MemoryClient) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, types.WrapContextError("get", err)
	}
	if err := types.ValidateKey(key); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, types.ErrClientClosed
	}
	rec, ok := c.values[string(key)]
	if !ok || rec.expired(c.clock.Now()) {
		return nil, types.ErrNotFound
	}
	return append([]byte(nil), rec.value...), nil
}

// Size 返回记录数量（含尚未清理的过期记录）
func (c *MemoryClient) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.values)
}

// CleanupExpired 删除过期记录，返回删除数量
func (c *MemoryClient) CleanupExpired() int {
	return len(c.removeExpired())
}

// removeExpired 删除过期记录并返回它们的键
func (c *MemoryClient) removeExpired() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	var removed []string
	for k, rec := range c.values {
		if rec.expired(now) {
			delete(c.values, k)
			removed = append(removed, k)
		}
	}
	return removed
}

// Close 关闭客户端并释放记录
func (c *MemoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.values = make(map[string]*valueRecord)
	return nil
}
