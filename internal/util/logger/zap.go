package logger

import (
	"log/slog"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger 为依赖 zap 的组件（fx 事件日志）构造 Logger
//
// 级别和格式遵循同一份配置，输出写入 SetOutput 设置的目标。
func ZapLogger(subsystem string) *zap.Logger {
	cfg := ConfigFromEnv()

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if cfg.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(&dynamicWriter{}), zapLevel(cfg.LevelForSubsystem(subsystem)))
	return zap.New(core).With(zap.String("subsystem", subsystem))
}

// zapLevel 将 slog 级别映射为 zap 级别
func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
