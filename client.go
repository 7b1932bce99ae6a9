package diddht

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/internal/core/metrics"
	"github.com/dep2p/go-diddht/internal/core/storage/engine"
	"github.com/dep2p/go-diddht/internal/resolver"
	"github.com/dep2p/go-diddht/internal/util/logger"
	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/did/dnspacket"
	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

var log = logger.Logger("diddht")

const (
	// startTimeout Start 未带截止时间时的默认超时
	startTimeout = 30 * time.Second

	// closeTimeout Close 停止组件的超时
	closeTimeout = 10 * time.Second
)

// ════════════════════════════════════════════════════════════════════════════
//                              状态
// ════════════════════════════════════════════════════════════════════════════

// State 客户端状态
type State int

const (
	// StateIdle 已创建，未启动
	StateIdle State = iota
	// StateStarting 启动中
	StateStarting
	// StateRunning 运行中
	StateRunning
	// StateStopping 停止中
	StateStopping
	// StateStopped 已停止
	StateStopped
	// StateClosed 已关闭，不可重启
	StateClosed
)

// String 返回状态名称
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// TrafficStats DHT 流量统计
type TrafficStats = metrics.Stats

// ════════════════════════════════════════════════════════════════════════════
//                              Client
// ════════════════════════════════════════════════════════════════════════════

// Client did:dht 客户端
//
// 由 New 创建，Start 后可发布和解析文档。Stop 或 Close 之后组件已释放，
// 不能再次 Start。并发安全。
type Client struct {
	cfg   *config.Config
	codec *dnspacket.Codec
	app   *fx.App

	// 由 Fx 注入
	resolver *resolver.Resolver
	dht      interfaces.DHTClient
	metrics  *metrics.Metrics
	engine   engine.InternalEngine

	mu    sync.RWMutex
	state State
}

var _ interfaces.Resolver = (*Client)(nil)

// New 创建客户端
//
// 不指定选项时使用内存预设。返回的客户端需调用 Start 启动。
func New(opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg, err := o.buildConfig()
	if err != nil {
		return nil, err
	}
	if err := validateConfig(cfg, o); err != nil {
		return nil, err
	}
	codec, err := cfg.Codec.NewCodec()
	if err != nil {
		return nil, err
	}

	c := &Client{cfg: cfg, codec: codec}
	c.app = buildFxApp(cfg, o, c)
	if err := c.app.Err(); err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}

	log.Debug("客户端已创建", "dht", cfg.DHT.Mode, "seq", cfg.Seq.Source)
	return c, nil
}

// Start 创建并启动客户端
func Start(ctx context.Context, opts ...Option) (*Client, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Start 启动存储引擎与 DHT 客户端
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateIdle:
	case StateRunning, StateStarting:
		return ErrAlreadyStarted
	default:
		return ErrClientClosed
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, startTimeout)
		defer cancel()
	}

	c.state = StateStarting
	if err := c.app.Start(ctx); err != nil {
		c.state = StateStopped
		log.Error("启动客户端失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}
	c.state = StateRunning
	log.Info("客户端已启动", "dht", c.cfg.DHT.Mode)
	return nil
}

// Stop 按启动的反向顺序停止组件
func (c *Client) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRunning:
		return c.stopLocked(ctx)
	case StateIdle:
		return ErrNotStarted
	default:
		return ErrClientClosed
	}
}

// stopLocked 停止 Fx 应用，调用方持有 mu
func (c *Client) stopLocked(ctx context.Context) error {
	c.state = StateStopping
	err := c.app.Stop(ctx)
	c.state = StateStopped
	if err != nil {
		log.Error("停止客户端失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}
	log.Info("客户端已停止")
	return nil
}

// Close 关闭客户端并释放资源，重复调用安全
//
// 存储引擎在 New 时已打开，未启动的客户端也需要 Close。
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil
	}

	var err error
	if c.state == StateRunning {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		err = c.stopLocked(ctx)
		cancel()
	}
	if c.engine != nil {
		// 引擎关闭幂等，运行后已由 OnStop 关闭
		err = multierr.Append(err, c.engine.Close())
	}
	c.state = StateClosed
	return err
}

// State 返回当前状态
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Config 返回生效配置的副本
func (c *Client) Config() *config.Config {
	return c.cfg.Clone()
}

// running 检查客户端可用
func (c *Client) running() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	switch c.state {
	case StateRunning:
		return nil
	case StateIdle, StateStarting:
		return ErrNotStarted
	default:
		return ErrClientClosed
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              文档操作
// ════════════════════════════════════════════════════════════════════════════

// Create 创建文档及其密钥，不发布
func (c *Client) Create(opts did.CreateOptions) (*did.Document, *did.KeySet, error) {
	return did.Create(opts)
}

// Publish 编码、签名并发布文档
//
// seq 为 0 时由配置的序列号来源分配。
func (c *Client) Publish(ctx context.Context, doc *did.Document, identity crypto.PrivateKey, seq uint64) (*interfaces.PublishResult, error) {
	if err := c.running(); err != nil {
		return nil, err
	}
	return c.resolver.Publish(ctx, doc, identity, seq)
}

// CreateAndPublish 创建文档并以分配的序列号发布
func (c *Client) CreateAndPublish(ctx context.Context, opts did.CreateOptions) (*did.Document, *did.KeySet, *interfaces.PublishResult, error) {
	doc, keys, err := c.Create(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := c.Publish(ctx, doc, keys.IdentityKey.PrivateKey, 0)
	if err != nil {
		return nil, nil, nil, err
	}
	return doc, keys, res, nil
}

// Resolve 读取、校验并解码文档
func (c *Client) Resolve(ctx context.Context, id string) (*did.Document, error) {
	if err := c.running(); err != nil {
		return nil, err
	}
	return c.resolver.Resolve(ctx, id)
}

// Invalidate 丢弃缓存的文档，下次 Resolve 重新读取
func (c *Client) Invalidate(id string) {
	if c.resolver != nil {
		c.resolver.Invalidate(id)
	}
}

// Encode 按配置的报文上限编码文档
func (c *Client) Encode(doc *did.Document) ([]byte, error) {
	return c.codec.Encode(doc)
}

// Decode 按配置的报文上限解码文档
func (c *Client) Decode(id string, data []byte) (*did.Document, error) {
	return c.codec.Decode(id, data)
}

// DHT 返回底层 DHT 客户端
func (c *Client) DHT() interfaces.DHTClient {
	return c.dht
}

// Traffic 返回 DHT 流量统计，关闭指标时为零值
func (c *Client) Traffic() TrafficStats {
	t := c.metrics.Traffic()
	if t == nil {
		return TrafficStats{}
	}
	return t.Totals()
}
