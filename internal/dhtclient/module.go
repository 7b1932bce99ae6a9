package dhtclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/internal/core/metrics"
	"github.com/dep2p/go-diddht/internal/core/storage/engine"
	"github.com/dep2p/go-diddht/internal/core/storage/kv"
	"github.com/dep2p/go-diddht/internal/util/logger"
	"github.com/dep2p/go-diddht/pkg/interfaces"
)

var log = logger.Logger("dhtclient")

// ErrStorageRequired persistent 模式缺少存储引擎
var ErrStorageRequired = errors.New("dhtclient: persistent mode requires a storage engine")

// ============================================================================
//                              配置
// ============================================================================

// Config DHT 客户端工厂配置
type Config struct {
	// Mode 实现选择: memory, persistent, relay
	Mode string

	// RecordTTL 本地记录有效期（memory/persistent）
	RecordTTL time.Duration

	// CleanupInterval 过期清理周期（memory/persistent）
	CleanupInterval time.Duration

	// Relay 网关配置（relay）
	Relay RelayConfig

	// Clock 本地记录使用的时钟，nil 使用系统时钟
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Mode:            config.DHTModeMemory,
		RecordTTL:       DefaultRecordTTL,
		CleanupInterval: DefaultCleanupInterval,
		Relay:           DefaultRelayConfig(""),
	}
}

// ConfigFromUnified 从统一配置创建客户端配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	d := cfg.DHT
	return Config{
		Mode:            d.Mode,
		RecordTTL:       d.RecordTTL.Duration(),
		CleanupInterval: DefaultCleanupInterval,
		Relay: RelayConfig{
			BaseURL:      d.RelayURL,
			Timeout:      d.Timeout.Duration(),
			RetryMax:     d.RetryMax,
			RetryWaitMin: d.RetryWaitMin.Duration(),
			RetryWaitMax: d.RetryWaitMax.Duration(),
			RateLimit:    d.RateLimit,
			RateBurst:    d.RateBurst,
			MaxValueSize: DefaultMaxValueSize,
		},
	}
}

// ============================================================================
//                              工厂
// ============================================================================

// Client 可关闭的 DHT 客户端
type Client interface {
	interfaces.DHTClient
	io.Closer
}

// Close 关闭网关客户端，释放空闲连接
func (c *RelayClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// New 按模式创建客户端
//
// persistent 模式需要 eng，其余模式忽略。
func New(cfg Config, eng engine.InternalEngine) (Client, error) {
	opts := []MemoryOption{WithTTL(cfg.RecordTTL), WithClock(cfg.Clock)}

	switch cfg.Mode {
	case "", config.DHTModeMemory:
		log.Debug("使用内存 DHT 客户端", "ttl", cfg.RecordTTL)
		return NewMemoryClient(opts...), nil
	case config.DHTModePersistent:
		if eng == nil {
			return nil, ErrStorageRequired
		}
		log.Debug("使用持久化 DHT 客户端", "ttl", cfg.RecordTTL)
		return NewPersistentClient(kv.New(eng, nil), opts...)
	case config.DHTModeRelay:
		log.Debug("使用网关 DHT 客户端", "url", cfg.Relay.BaseURL)
		return NewRelayClient(cfg.Relay)
	default:
		return nil, fmt.Errorf("dhtclient: unknown mode %q", cfg.Mode)
	}
}

// ============================================================================
//                              Fx 模块
// ============================================================================

// Params DHT 客户端依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config        `optional:"true"`
	Engine     engine.InternalEngine `optional:"true"`
	Metrics    *metrics.Metrics      `optional:"true"`
	Clock      clock.Clock           `optional:"true"`
	LC         fx.Lifecycle
}

// Result DHT 客户端模块输出
type Result struct {
	fx.Out

	Client interfaces.DHTClient
}

// Module 返回 DHT 客户端 Fx 模块
//
// 提供:
//   - interfaces.DHTClient: 按配置选择的客户端（启用指标时已包装）
//
// 生命周期:
//   - OnStart: 启动过期清理（memory/persistent）
//   - OnStop: 停止清理并关闭客户端
func Module() fx.Option {
	return fx.Module("dhtclient",
		fx.Provide(ProvideClient),
	)
}

// ProvideClient 创建客户端并注册生命周期
func ProvideClient(p Params) (Result, error) {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if p.Clock != nil {
		cfg.Clock = p.Clock
	}
	c, err := New(cfg, p.Engine)
	if err != nil {
		return Result{}, err
	}

	var stop func()
	p.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			if exp, ok := c.(Expirer); ok {
				clk := cfg.Clock
				if clk == nil {
					clk = clock.New()
				}
				stop = StartCleanup(clk, cfg.CleanupInterval, exp)
			}
			log.Info("DHT 客户端已启动", "mode", cfg.Mode)
			return nil
		},
		OnStop: func(_ context.Context) error {
			if stop != nil {
				stop()
			}
			if err := c.Close(); err != nil {
				log.Warn("DHT 客户端关闭失败", "error", err)
				return err
			}
			log.Debug("DHT 客户端已关闭")
			return nil
		},
	})

	return Result{Client: metrics.InstrumentDHT(c, p.Metrics)}, nil
}
