package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/internal/core/storage/engine"
)

// ============= Fx 模块测试 =============

func TestModule_Basic(t *testing.T) {
	unifiedCfg := config.NewConfig()
	unifiedCfg.Storage.DataDir = t.TempDir()

	var eng engine.InternalEngine
	var cfg Config

	app := fxtest.New(t,
		fx.Supply(unifiedCfg),
		Module(),
		fx.Populate(&eng, &cfg),
	)
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, eng)
	assert.Equal(t, unifiedCfg.Storage.DBPath(), cfg.Path)

	require.NoError(t, eng.Put([]byte("test-key"), []byte("test-value")))
	got, err := eng.Get([]byte("test-key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("test-value"), got)
}

func TestModule_StopClosesEngine(t *testing.T) {
	unifiedCfg := config.NewConfig()
	unifiedCfg.Storage.InMemory = true

	var eng engine.InternalEngine
	app := fxtest.New(t,
		fx.Supply(unifiedCfg),
		Module(),
		fx.Populate(&eng),
	)
	app.RequireStart()
	require.NoError(t, eng.Put([]byte("k"), []byte("v")))
	app.RequireStop()

	_, err := eng.Get([]byte("k"))
	assert.ErrorIs(t, err, engine.ErrClosed)
}

func TestModule_NoUnifiedConfig(t *testing.T) {
	var cfg Config
	app := fxtest.New(t,
		fx.Provide(func() *config.Config { return nil }),
		fx.Invoke(func(p Params) { cfg = ConfigFromUnified(p.UnifiedCfg) }),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.Equal(t, DefaultConfig(), cfg)
}

// ============= 配置转换 =============

func TestConfig_ToEngineConfig(t *testing.T) {
	cfg := DefaultConfig().WithPath("/tmp/x").WithInMemory(false)
	ec := cfg.ToEngineConfig()
	assert.Equal(t, "/tmp/x", ec.Path)
	assert.False(t, ec.InMemory)
	assert.Equal(t, cfg.GCInterval, ec.Badger.GCInterval)
	assert.NotNil(t, ec.Logger)

	mem := cfg.WithInMemory(true).ToEngineConfig()
	assert.True(t, mem.InMemory)
	assert.Zero(t, mem.Badger.GCInterval)
	assert.NoError(t, mem.Validate())
}

// ============= 前缀隔离 =============

func TestKVStore_PrefixIsolation(t *testing.T) {
	eng, err := NewMemoryEngine()
	require.NoError(t, err)
	defer eng.Close()

	dht := NewKVStore(eng, []byte("d/"))
	seq := NewKVStore(eng, []byte("s/"))

	require.NoError(t, dht.Put([]byte("key"), []byte("record")))
	require.NoError(t, seq.PutUint64([]byte("key"), 7))

	got, err := dht.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), got)

	n, err := seq.GetUint64([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)

	raw, err := eng.Get([]byte("d/key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), raw)
}

func TestNewEngine_PersistsAcrossReopen(t *testing.T) {
	cfg := DefaultConfig().WithPath(t.TempDir())

	eng, err := NewEngine(cfg)
	require.NoError(t, err)
	require.NoError(t, eng.Put([]byte("durable"), []byte("yes")))
	require.NoError(t, eng.Close())

	eng, err = NewEngine(cfg)
	require.NoError(t, err)
	defer eng.Close()

	got, err := eng.Get([]byte("durable"))
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), got)
}
