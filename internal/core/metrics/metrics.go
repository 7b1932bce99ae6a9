package metrics

import (
	"errors"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
)

// ============================================================================
//                              标签取值
// ============================================================================

// DHT 操作
const (
	OpPut = "put"
	OpGet = "get"
)

// 结果标签
const (
	ResultOK        = "ok"
	ResultNotFound  = "not_found"
	ResultError     = "error"
	ResultStale     = "stale"
	ResultMalformed = "malformed"
	ResultInvalid   = "invalid"
)

// 缓存名
const (
	CacheDocument = "document"
	CacheSeq      = "seq"
)

// ============================================================================
//                              Metrics
// ============================================================================

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool

	// Namespace 指标名前缀
	Namespace string

	// Clock 流量速率使用的时钟，nil 使用系统时钟
	Clock clock.Clock
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Enabled:   true,
		Namespace: "diddht",
	}
}

// Metrics 发布/解析路径的指标集合
//
// nil 或 Nop() 返回的实例上所有记录方法均为空操作。
type Metrics struct {
	dhtRequests *prometheus.CounterVec
	dhtLatency  *prometheus.HistogramVec
	publishes   *prometheus.CounterVec
	resolves    *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	packetSize  prometheus.Histogram

	traffic *TrafficCounter
}

// New 创建指标并注册到 reg
//
// reg 为 nil 时不注册，指标仍可采集（用于测试或嵌入）。
// cfg.Enabled 为 false 时返回 Nop()。
func New(cfg Config, reg prometheus.Registerer) (*Metrics, error) {
	if !cfg.Enabled {
		return Nop(), nil
	}
	ns := cfg.Namespace

	m := &Metrics{
		dhtRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "dht",
			Name:      "requests_total",
			Help:      "DHT requests by operation and result.",
		}, []string{"op", "result"}),
		dhtLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "dht",
			Name:      "request_duration_seconds",
			Help:      "DHT request latency by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"op"}),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "publishes_total",
			Help:      "Document publishes by result.",
		}, []string{"result"}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "resolves_total",
			Help:      "Document resolutions by result.",
		}, []string{"result"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Cache hits by cache.",
		}, []string{"cache"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Cache misses by cache.",
		}, []string{"cache"}),
		packetSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "packet_size_bytes",
			Help:      "Encoded DNS packet size.",
			Buckets:   prometheus.LinearBuckets(100, 100, 10),
		}),
		traffic: NewTrafficCounter(cfg.Clock),
	}

	if reg != nil {
		for _, c := range m.Collectors() {
			if err := reg.Register(c); err != nil {
				var are prometheus.AlreadyRegisteredError
				if errors.As(err, &are) {
					continue
				}
				return nil, err
			}
		}
	}
	return m, nil
}

// Nop 返回不采集任何数据的实例
func Nop() *Metrics {
	return nil
}

// Collectors 返回全部 Prometheus collector
func (m *Metrics) Collectors() []prometheus.Collector {
	if m == nil {
		return nil
	}
	return []prometheus.Collector{
		m.dhtRequests,
		m.dhtLatency,
		m.publishes,
		m.resolves,
		m.cacheHits,
		m.cacheMisses,
		m.packetSize,
	}
}

// Traffic 返回流量计数器，Nop 实例返回 nil
func (m *Metrics) Traffic() *TrafficCounter {
	if m == nil {
		return nil
	}
	return m.traffic
}

// ObserveDHT 记录一次 DHT 请求
func (m *Metrics) ObserveDHT(op, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.dhtRequests.WithLabelValues(op, result).Inc()
	m.dhtLatency.WithLabelValues(op).Observe(d.Seconds())
}

// ObservePublish 记录一次发布结果
func (m *Metrics) ObservePublish(result string) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(result).Inc()
}

// ObserveResolve 记录一次解析结果
func (m *Metrics) ObserveResolve(result string) {
	if m == nil {
		return
	}
	m.resolves.WithLabelValues(result).Inc()
}

// CacheHit 记录缓存命中
func (m *Metrics) CacheHit(cache string) {
	if m == nil {
		return
	}
	m.cacheHits.WithLabelValues(cache).Inc()
}

// CacheMiss 记录缓存未命中
func (m *Metrics) CacheMiss(cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// ObservePacketSize 记录编码后的报文大小
func (m *Metrics) ObservePacketSize(n int) {
	if m == nil {
		return
	}
	m.packetSize.Observe(float64(n))
}

// LogTraffic 记录 DHT 流量
func (m *Metrics) LogTraffic(op string, in, out int) {
	if m == nil {
		return
	}
	if in > 0 {
		m.traffic.LogIn(op, int64(in))
	}
	if out > 0 {
		m.traffic.LogOut(op, int64(out))
	}
}
