package storage

import (
	"time"

	"github.com/dep2p/go-diddht/config"
	"github.com/dep2p/go-diddht/internal/core/storage/engine"
)

// Config Storage 模块配置
type Config struct {
	// Path BadgerDB 数据库目录，InMemory 时忽略
	Path string

	// InMemory 内存模式
	InMemory bool

	// SyncWrites 每次写入后同步到磁盘
	SyncWrites bool

	// GCInterval 值日志 GC 周期，0 表示禁用
	GCInterval time.Duration

	// GCDiscardRatio GC 丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	def := config.DefaultStorageConfig()
	return Config{
		Path:           def.DBPath(),
		GCInterval:     def.GCInterval.Duration(),
		GCDiscardRatio: def.GCDiscardRatio,
	}
}

// ConfigFromUnified 从统一配置创建 Storage 配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	s := cfg.Storage
	return Config{
		Path:           s.DBPath(),
		InMemory:       s.InMemory,
		SyncWrites:     s.SyncWrites,
		GCInterval:     s.GCInterval.Duration(),
		GCDiscardRatio: s.GCDiscardRatio,
	}
}

// ToEngineConfig 转换为引擎配置
func (c Config) ToEngineConfig() *engine.Config {
	var cfg *engine.Config
	if c.InMemory {
		cfg = engine.MemoryConfig()
	} else {
		cfg = engine.DefaultConfig(c.Path)
		cfg.SyncWrites = c.SyncWrites
		cfg.Badger.GCInterval = c.GCInterval
		cfg.Badger.GCDiscardRatio = c.GCDiscardRatio
	}
	cfg.Logger = logger
	return cfg
}

// WithPath 设置存储路径
func (c Config) WithPath(path string) Config {
	c.Path = path
	return c
}

// WithInMemory 设置内存模式
func (c Config) WithInMemory(inMemory bool) Config {
	c.InMemory = inMemory
	return c
}
