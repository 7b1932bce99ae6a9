package resolver

import (
	"errors"
	"fmt"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/internal/core/metrics"
	"github.com/dep2p/go-diddht/internal/core/storage/engine"
	"github.com/dep2p/go-diddht/internal/core/storage/kv"
	"github.com/dep2p/go-diddht/internal/record"
	"github.com/dep2p/go-diddht/pkg/interfaces"
)

// ErrStorageRequired kv 序列号来源缺少存储引擎
var ErrStorageRequired = errors.New("resolver: kv seq source requires a storage engine")

// ConfigFromUnified 从统一配置创建解析器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		CacheEnabled: cfg.Cache.Enabled,
		CacheSize:    cfg.Cache.DocumentSize,
		CacheTTL:     cfg.Cache.DocumentTTL.Duration(),
	}
}

// NewSeqSource 按名称创建序列号来源
//
// kv 来源需要 eng。
func NewSeqSource(source string, eng engine.InternalEngine, clk clock.Clock) (record.SeqSource, error) {
	switch source {
	case "", config.SeqSourceClock:
		return record.NewClockSeqSource(clk), nil
	case config.SeqSourceCounter:
		return record.NewCounterSeqSource(), nil
	case config.SeqSourceKV:
		if eng == nil {
			return nil, ErrStorageRequired
		}
		return record.NewKVSeqSource(kv.New(eng, nil)), nil
	default:
		return nil, fmt.Errorf("resolver: unknown seq source %q", source)
	}
}

// Params 解析器依赖参数
type Params struct {
	fx.In

	Client     interfaces.DHTClient
	UnifiedCfg *config.Config        `optional:"true"`
	Engine     engine.InternalEngine `optional:"true"`
	Metrics    *metrics.Metrics      `optional:"true"`
	Clock      clock.Clock           `optional:"true"`
}

// Result 解析器模块输出
type Result struct {
	fx.Out

	Resolver  *Resolver
	Interface interfaces.Resolver
	Publisher *record.Publisher
	Retriever *record.Retriever
}

// Module 返回解析器 Fx 模块
//
// 提供:
//   - *Resolver / interfaces.Resolver
//   - *record.Publisher / *record.Retriever
func Module() fx.Option {
	return fx.Module("resolver",
		fx.Provide(ProvideResolver),
	)
}

// ProvideResolver 组装编解码器、序列号来源、Publisher 与 Retriever
func ProvideResolver(p Params) (Result, error) {
	ucfg := p.UnifiedCfg
	if ucfg == nil {
		ucfg = config.NewConfig()
	}

	codec, err := ucfg.Codec.NewCodec()
	if err != nil {
		return Result{}, err
	}
	seqs, err := NewSeqSource(ucfg.Seq.Source, p.Engine, p.Clock)
	if err != nil {
		return Result{}, err
	}

	pub, err := record.NewPublisher(p.Client,
		record.WithSeqSource(seqs),
		record.WithSeqCacheSize(ucfg.Cache.SeqSize),
		record.WithMetrics(p.Metrics),
	)
	if err != nil {
		return Result{}, err
	}
	ret := record.NewRetriever(p.Client)

	r, err := New(ConfigFromUnified(ucfg), codec, pub, ret, p.Metrics)
	if err != nil {
		return Result{}, err
	}
	log.Debug("解析器已创建", "seqSource", ucfg.Seq.Source, "cache", ucfg.Cache.Enabled)
	return Result{Resolver: r, Interface: r, Publisher: pub, Retriever: ret}, nil
}
