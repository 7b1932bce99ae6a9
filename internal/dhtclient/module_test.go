package dhtclient

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/internal/core/storage/engine"
	"github.com/dep2p/go-diddht/internal/core/storage/engine/badger"
	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/types"
)

func TestNew_Modes(t *testing.T) {
	c, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryClient{}, c)

	cfg := DefaultConfig()
	cfg.Mode = config.DHTModePersistent
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, ErrStorageRequired)

	eng, err := badger.New(engine.MemoryConfig())
	require.NoError(t, err)
	defer eng.Close()
	c, err = New(cfg, eng)
	require.NoError(t, err)
	assert.IsType(t, &PersistentClient{}, c)

	cfg.Mode = config.DHTModeRelay
	cfg.Relay.BaseURL = "http://127.0.0.1:1"
	c, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &RelayClient{}, c)

	cfg.Mode = "carrier-pigeon"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}

func TestConfigFromUnified(t *testing.T) {
	assert.Equal(t, DefaultConfig(), ConfigFromUnified(nil))

	ucfg := config.NewConfig()
	ucfg.DHT.Mode = config.DHTModeRelay
	ucfg.DHT.RelayURL = "https://relay.example"
	ucfg.DHT.RetryMax = 7

	cfg := ConfigFromUnified(ucfg)
	assert.Equal(t, config.DHTModeRelay, cfg.Mode)
	assert.Equal(t, "https://relay.example", cfg.Relay.BaseURL)
	assert.Equal(t, 7, cfg.Relay.RetryMax)
	assert.Equal(t, 2*time.Hour, cfg.RecordTTL)
}

func TestModule_Lifecycle(t *testing.T) {
	clk := clock.NewMock()
	ucfg := config.NewConfig()
	ucfg.DHT.RecordTTL = config.Duration(time.Second)

	var client interfaces.DHTClient
	app := fxtest.New(t,
		fx.Supply(ucfg),
		fx.Provide(func() clock.Clock { return clk }),
		Module(),
		fx.Populate(&client),
	)
	app.RequireStart()

	ctx := context.Background()
	require.NoError(t, client.Put(ctx, testKey(1), []byte("v")))
	got, err := client.Get(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	app.RequireStop()

	_, err = client.Get(ctx, testKey(1))
	assert.ErrorIs(t, err, types.ErrClientClosed)
}
