package diddht

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/pkg/interfaces"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置来源，优先级 config > configFile > preset
	config     *config.Config
	configFile string
	preset     string

	// 覆盖项
	dataDir   string
	inMemory  *bool
	dhtMode   string
	relayURL  string
	seqSource string
	metrics   *bool

	// 注入组件
	registerer prometheus.Registerer
	clock      clock.Clock
	dhtClient  interfaces.DHTClient

	// 用户自定义 Fx 选项
	fxOptions []fx.Option
}

// buildConfig 合并基础配置与覆盖项，返回验证前的配置
func (o *options) buildConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case o.config != nil:
		cfg = o.config.Clone()
	case o.configFile != "":
		loaded, err := config.LoadFile(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case o.preset != "":
		cfg = GetConfigByPreset(o.preset)
	default:
		cfg = GetMemoryConfig()
	}

	if o.dataDir != "" {
		cfg.Storage.DataDir = o.dataDir
		cfg.Storage.InMemory = false
	}
	if o.inMemory != nil {
		cfg.Storage.InMemory = *o.inMemory
	}
	if o.dhtMode != "" {
		cfg.DHT.Mode = o.dhtMode
	}
	if o.relayURL != "" {
		cfg.DHT.RelayURL = o.relayURL
	}
	if o.seqSource != "" {
		cfg.Seq.Source = o.seqSource
	}
	if o.metrics != nil {
		cfg.Metrics.Enabled = *o.metrics
	}
	return cfg, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置来源
// ════════════════════════════════════════════════════════════════════════════

// WithConfig 使用完整配置
//
// 配置会被复制，调用方之后的修改不影响客户端。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return errors.New("config cannot be nil")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return errors.New("config file path cannot be empty")
		}
		o.configFile = path
		return nil
	}
}

// WithPreset 使用预设配置
func WithPreset(name string) Option {
	return func(o *options) error {
		if !IsValidPreset(name) {
			return fmt.Errorf("unknown preset: %s", name)
		}
		o.preset = name
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              覆盖项
// ════════════════════════════════════════════════════════════════════════════

// WithDataDir 设置数据目录，同时关闭内存存储
func WithDataDir(dir string) Option {
	return func(o *options) error {
		if dir == "" {
			return errors.New("data dir cannot be empty")
		}
		o.dataDir = dir
		return nil
	}
}

// WithInMemory 设置是否使用内存存储引擎
func WithInMemory(inMemory bool) Option {
	return func(o *options) error {
		o.inMemory = &inMemory
		return nil
	}
}

// WithDHTMode 设置 DHT 客户端实现: memory, persistent, relay
func WithDHTMode(mode string) Option {
	return func(o *options) error {
		switch mode {
		case config.DHTModeMemory, config.DHTModePersistent, config.DHTModeRelay:
			o.dhtMode = mode
			return nil
		default:
			return fmt.Errorf("unknown dht mode: %s", mode)
		}
	}
}

// WithRelayURL 使用 HTTP 网关并设置地址
func WithRelayURL(url string) Option {
	return func(o *options) error {
		if url == "" {
			return errors.New("relay url cannot be empty")
		}
		o.dhtMode = config.DHTModeRelay
		o.relayURL = url
		return nil
	}
}

// WithSeqSource 设置序列号来源: clock, counter, kv
func WithSeqSource(source string) Option {
	return func(o *options) error {
		switch source {
		case config.SeqSourceClock, config.SeqSourceCounter, config.SeqSourceKV:
			o.seqSource = source
			return nil
		default:
			return fmt.Errorf("unknown seq source: %s", source)
		}
	}
}

// WithMetrics 启用或关闭指标采集
func WithMetrics(enabled bool) Option {
	return func(o *options) error {
		o.metrics = &enabled
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件注入
// ════════════════════════════════════════════════════════════════════════════

// WithRegisterer 将指标注册到给定的 Prometheus 注册表
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) error {
		o.registerer = reg
		return nil
	}
}

// WithClock 替换时钟，用于测试记录过期与时钟序列号
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		o.clock = clk
		return nil
	}
}

// WithDHTClient 使用自定义 DHT 客户端，忽略 DHT 模式配置
//
// 客户端的生命周期由调用方管理。
func WithDHTClient(c interfaces.DHTClient) Option {
	return func(o *options) error {
		if c == nil {
			return errors.New("dht client cannot be nil")
		}
		o.dhtClient = c
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.fxOptions = append(o.fxOptions, opts...)
		return nil
	}
}
