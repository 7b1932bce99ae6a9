package diddht

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/config"
)

func TestPresets(t *testing.T) {
	for _, p := range AvailablePresets() {
		assert.True(t, IsValidPreset(p.Name), p.Name)
		assert.NotNil(t, GetConfigByPreset(p.Name), p.Name)
	}
	assert.False(t, IsValidPreset("server"))
	assert.Nil(t, GetConfigByPreset("server"))

	require.NoError(t, GetMemoryConfig().Validate())
	require.NoError(t, GetTestConfig().Validate())
	require.NoError(t, GetLocalConfig(t.TempDir()).Validate())
	require.NoError(t, GetRelayConfig("https://gateway.example.com").Validate())
	assert.Error(t, GetRelayConfig("").Validate())
}

func TestApplyPresetToConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Storage.DataDir = "/var/lib/diddht"
	require.NoError(t, ApplyPresetToConfig(cfg, PresetNameLocal))
	assert.Equal(t, config.DHTModePersistent, cfg.DHT.Mode)
	assert.Equal(t, config.SeqSourceKV, cfg.Seq.Source)
	assert.Equal(t, "/var/lib/diddht", cfg.Storage.DataDir)

	assert.Error(t, ApplyPresetToConfig(cfg, "bogus"))
}

func TestOptions_BuildConfig(t *testing.T) {
	base := GetTestConfig()
	base.DHT.RelayURL = "https://a.example.com"

	o := &options{}
	for _, opt := range []Option{
		WithConfig(base),
		WithPreset(PresetNameLocal),
		WithRelayURL("https://b.example.com"),
		WithSeqSource(config.SeqSourceClock),
	} {
		require.NoError(t, opt(o))
	}
	cfg, err := o.buildConfig()
	require.NoError(t, err)

	// 完整配置优先于预设，覆盖项最后生效
	assert.Equal(t, config.DHTModeRelay, cfg.DHT.Mode)
	assert.Equal(t, "https://b.example.com", cfg.DHT.RelayURL)
	assert.Equal(t, config.SeqSourceClock, cfg.Seq.Source)
	assert.False(t, cfg.Cache.Enabled)

	// 调用方的配置不受影响
	assert.Equal(t, "https://a.example.com", base.DHT.RelayURL)
}

func TestVersionInfo(t *testing.T) {
	assert.Contains(t, VersionInfo(), Version)
}
