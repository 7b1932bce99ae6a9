package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("test")
	log.Info("test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.Contains(t, output, "key=value")
	assert.Contains(t, output, "subsystem=test")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("test2")

	buf := &bytes.Buffer{}
	SetOutput(buf)

	log.Info("after switch", "key", "value")
	assert.Contains(t, buf.String(), "after switch")
}

func TestLogger_Cached(t *testing.T) {
	assert.Same(t, Logger("cached"), Logger("cached"))
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("levels")
	SetLevel("levels", slog.LevelWarn)
	log.Info("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	// With 派生的 Logger 共享级别
	derived := log.With("k", "v")
	SetLevel("levels", slog.LevelDebug)
	derived.Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.Contains(t, buf.String(), "level=debug")
}

func TestParseLevelSpec(t *testing.T) {
	cfg := &Config{DefaultLevel: slog.LevelInfo}
	ParseLevelSpec(cfg, "record=debug, dhtclient=warn ,error,bogus=loud,nonsense")

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("record"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("dhtclient"))
	assert.Equal(t, slog.LevelError, cfg.LevelForSubsystem("resolver"))
	_, ok := cfg.SubsystemLevels["bogus"]
	assert.False(t, ok)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "codec=debug,warn")
	t.Setenv(EnvLogFormat, "JSON")
	ResetConfig()
	t.Cleanup(ResetConfig)

	cfg := ConfigFromEnv()
	require.NotNil(t, cfg)
	assert.Equal(t, slog.LevelWarn, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("codec"))
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.False(t, cfg.AddSource)
}

func TestConfigure(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(ResetConfig)

	log := Logger("configured")
	Configure(&Config{DefaultLevel: slog.LevelError})
	log.Warn("dropped")
	assert.NotContains(t, buf.String(), "dropped")

	cfg := &Config{DefaultLevel: slog.LevelError}
	ParseLevelSpec(cfg, "configured=debug")
	Configure(cfg)
	log.Debug("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestZapLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	t.Cleanup(ResetConfig)

	Configure(&Config{DefaultLevel: slog.LevelInfo})
	z := ZapLogger("fx")
	z.Debug("not written")
	z.Info("fx event")
	require.NoError(t, z.Sync())

	assert.NotContains(t, buf.String(), "not written")
	assert.Contains(t, buf.String(), "fx event")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
	log.Error("nothing")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc", TruncateID("abc", 8))
	assert.Equal(t, "abcdefgh", TruncateID("abcdefghij", 8))
}
