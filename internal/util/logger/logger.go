// Package logger 提供 go-diddht 的统一日志系统
//
// 基于标准库 log/slog，支持：
//   - 按子系统配置日志级别
//   - 环境变量配置（DIDDHT_LOG_LEVEL, DIDDHT_LOG_FORMAT）
//   - 结构化日志
//
// 使用示例:
//
//	package record
//
//	import "github.com/dep2p/go-diddht/internal/util/logger"
//
//	var log = logger.Logger("record")
//
//	func foo() {
//	    log.Info("record published", "did", id, "seq", seq)
//	    log.Debug("stored record replaced", "key", types.KeyHex(key))
//	}
//
// 环境变量配置:
//
//	# 所有子系统 info，record 子系统 debug
//	DIDDHT_LOG_LEVEL=record=debug,info
//
//	# JSON 格式输出
//	DIDDHT_LOG_FORMAT=json
//
// 输出格式在子系统 Logger 首次创建时确定，级别可随时调整。
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 缓存各子系统的 Logger
	loggers sync.Map // map[string]*slog.Logger

	// handlers 缓存各子系统的 Handler（用于动态调整级别）
	handlers sync.Map // map[string]*subsystemHandler
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回相同实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	h := newHandler(subsystem, ConfigFromEnv())
	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(h))
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// GlobalLogger 返回不属于特定子系统的 Logger
func GlobalLogger() *slog.Logger {
	return Logger("diddht")
}

// Configure 替换当前配置并调整已创建 Logger 的级别
//
// CLI 在解析完命令行参数后调用。
func Configure(cfg *Config) {
	configMu.Lock()
	configCache = cfg
	configMu.Unlock()

	handlers.Range(func(key, value any) bool {
		value.(*subsystemHandler).level.set(cfg.LevelForSubsystem(key.(string)))
		return true
	})
}

// SetLevel 动态设置子系统的日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).level.set(level)
	}
}

// SetGlobalLevel 设置所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	handlers.Range(func(_, value any) bool {
		value.(*subsystemHandler).level.set(level)
		return true
	})
}

// Discard 返回丢弃所有日志的 Logger，用于测试
func Discard() *slog.Logger {
	return slog.New(DiscardHandler())
}

// With 创建带有预设属性的 Logger
func With(subsystem string, args ...any) *slog.Logger {
	return Logger(subsystem).With(args...)
}

// SetOutput 设置全局日志输出目标
//
// 已创建的 Logger 同样重定向到新的 writer。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}

// TruncateID 截取标识用于日志显示
func TruncateID(id string, maxLen int) string {
	if len(id) <= maxLen {
		return id
	}
	return id[:maxLen]
}
