package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/pkg/types"
)

// stubDHT 按键返回预置结果
type stubDHT struct {
	values map[string][]byte
	putErr error
}

func (s *stubDHT) Put(_ context.Context, key, value []byte) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.values[string(key)] = value
	return nil
}

func (s *stubDHT) Get(_ context.Context, key []byte) ([]byte, error) {
	v, ok := s.values[string(key)]
	if !ok {
		return nil, types.ErrNotFound
	}
	return v, nil
}

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := New(DefaultConfig(), reg)
	require.NoError(t, err)
	require.NotNil(t, m)
	return m, reg
}

func TestNew_Registers(t *testing.T) {
	m, reg := newTestMetrics(t)

	m.ObservePublish(ResultOK)
	m.ObserveResolve(ResultNotFound)
	m.CacheHit(CacheDocument)
	m.CacheMiss(CacheSeq)
	m.ObservePacketSize(420)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["diddht_publishes_total"])
	assert.True(t, names["diddht_resolves_total"])
	assert.True(t, names["diddht_cache_hits_total"])
	assert.True(t, names["diddht_cache_misses_total"])
	assert.True(t, names["diddht_packet_size_bytes"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.publishes.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheHits.WithLabelValues(CacheDocument)))
}

func TestNew_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(DefaultConfig(), reg)
	require.NoError(t, err)

	// 同名指标已注册时跳过
	_, err = New(DefaultConfig(), reg)
	assert.NoError(t, err)
}

func TestNew_Disabled(t *testing.T) {
	m, err := New(Config{Enabled: false}, prometheus.NewRegistry())
	require.NoError(t, err)
	assert.Nil(t, m)

	// Nop 上的调用都是空操作
	m.ObserveDHT(OpGet, ResultOK, time.Millisecond)
	m.ObservePublish(ResultOK)
	m.CacheHit(CacheDocument)
	m.LogTraffic(OpPut, 0, 10)
	assert.Nil(t, m.Traffic())
	assert.Nil(t, m.Collectors())
}

func TestInstrumentDHT(t *testing.T) {
	m, _ := newTestMetrics(t)
	stub := &stubDHT{values: map[string][]byte{}}
	c := InstrumentDHT(stub, m)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, []byte("k"), []byte("hello")))
	v, err := c.Get(ctx, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), v)

	_, err = c.Get(ctx, []byte("missing"))
	assert.ErrorIs(t, err, types.ErrNotFound)

	stub.putErr = types.NewTransportError(OpPut, errors.New("boom"))
	assert.Error(t, c.Put(ctx, []byte("k"), []byte("x")))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.dhtRequests.WithLabelValues(OpPut, ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dhtRequests.WithLabelValues(OpPut, ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dhtRequests.WithLabelValues(OpGet, ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dhtRequests.WithLabelValues(OpGet, ResultNotFound)))

	totals := m.Traffic().Totals()
	assert.Equal(t, int64(5), totals.TotalOut)
	assert.Equal(t, int64(5), totals.TotalIn)
}

func TestInstrumentDHT_NilMetrics(t *testing.T) {
	stub := &stubDHT{values: map[string][]byte{}}
	assert.Same(t, stub, InstrumentDHT(stub, nil))
}

func TestModule(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Metrics.Namespace = "test"
	reg := prometheus.NewRegistry()

	var m *Metrics
	app := fxtest.New(t,
		fx.Supply(cfg),
		fx.Provide(func() prometheus.Registerer { return reg }),
		Module,
		fx.Populate(&m),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, m)
	m.ObserveResolve(ResultOK)

	families, err := reg.Gather()
	require.NoError(t, err)
	var found bool
	for _, f := range families {
		if f.GetName() == "test_resolves_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	cfg := config.NewConfig()
	cfg.Metrics.Enabled = false
	assert.False(t, ConfigFromUnified(cfg).Enabled)
}
