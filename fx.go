package diddht

import (
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/internal/core/metrics"
	"github.com/dep2p/go-diddht/internal/core/storage"
	"github.com/dep2p/go-diddht/internal/core/storage/engine"
	"github.com/dep2p/go-diddht/internal/dhtclient"
	"github.com/dep2p/go-diddht/internal/resolver"
	"github.com/dep2p/go-diddht/internal/util/logger"
	"github.com/dep2p/go-diddht/pkg/interfaces"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Fx 应用构建
// ════════════════════════════════════════════════════════════════════════════

// buildFxApp 构建 Fx 应用
//
// 组装内部模块，采用条件加载策略：
//   - 存储：DHT 为 persistent 或序列号来源为 kv 时加载
//   - DHT 客户端：未注入自定义客户端时按配置创建
//   - 指标与解析器：必须加载
//
// 加载顺序（按依赖）：Storage → Metrics → DHTClient → Resolver
func buildFxApp(cfg *config.Config, o *options, c *Client) *fx.App {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置注入
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),
	}
	if o.clock != nil {
		clk := o.clock
		modules = append(modules, fx.Provide(func() clock.Clock { return clk }))
	}
	if o.registerer != nil {
		reg := o.registerer
		modules = append(modules, fx.Provide(func() prometheus.Registerer { return reg }))
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 存储（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if cfg.NeedsStorage() {
		modules = append(modules, storage.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 指标
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, metrics.Module)

	// ════════════════════════════════════════════════════════════════════════
	// 4. DHT 客户端
	// ════════════════════════════════════════════════════════════════════════
	if o.dhtClient != nil {
		modules = append(modules, fx.Provide(provideCustomClient(o.dhtClient)))
	} else {
		modules = append(modules, dhtclient.Module())
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. 解析器
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, resolver.Module())

	// ════════════════════════════════════════════════════════════════════════
	// 6. 用户扩展与组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, o.fxOptions...)
	modules = append(modules, fx.Invoke(injectClientComponents(c)))

	// ════════════════════════════════════════════════════════════════════════
	// 7. Fx 日志
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// Fx 事件只在 debug 级别输出
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger.ZapLogger("fx")}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
	)

	return fx.New(modules...)
}

// provideCustomClient 包装用户注入的 DHT 客户端
func provideCustomClient(dc interfaces.DHTClient) func(*metrics.Metrics) interfaces.DHTClient {
	return func(m *metrics.Metrics) interfaces.DHTClient {
		return metrics.InstrumentDHT(dc, m)
	}
}

// clientInjectParams Client 组件注入参数
type clientInjectParams struct {
	fx.In

	Resolver *resolver.Resolver
	DHT      interfaces.DHTClient
	Metrics  *metrics.Metrics      `optional:"true"`
	Engine   engine.InternalEngine `optional:"true"`
}

// injectClientComponents 创建 Client 组件注入函数
func injectClientComponents(c *Client) interface{} {
	return func(p clientInjectParams) {
		c.resolver = p.Resolver
		c.dht = p.DHT
		c.metrics = p.Metrics
		c.engine = p.Engine
	}
}

// validateConfig 构建前的配置检查
func validateConfig(cfg *config.Config, o *options) error {
	if o.dhtClient != nil {
		// 自定义客户端不使用 DHT 模式配置
		cfg.DHT.Mode = config.DHTModeMemory
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
