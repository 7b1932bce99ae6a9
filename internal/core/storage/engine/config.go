package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Config 存储引擎配置
type Config struct {
	// Path 数据目录，InMemory 时忽略
	Path string

	// InMemory 使用内存模式，关闭后数据丢失
	InMemory bool

	// SyncWrites 每次写入后同步到磁盘
	SyncWrites bool

	// ReadOnly 只读打开
	ReadOnly bool

	// Logger 引擎日志，为 nil 时不输出 BadgerDB 内部日志
	Logger *slog.Logger

	// Badger BadgerDB 特定选项
	Badger BadgerOptions
}

// BadgerOptions BadgerDB 选项
//
// 记录值不超过几 KB，默认值按小数据集收紧。
type BadgerOptions struct {
	MemTableSize         int64
	ValueLogFileSize     int64
	ValueThreshold       int64
	BlockCacheSize       int64
	IndexCacheSize       int64
	NumCompactors        int
	ZSTDCompressionLevel int

	// GCInterval 值日志 GC 周期，0 表示禁用
	GCInterval time.Duration

	// GCDiscardRatio GC 丢弃比例
	GCDiscardRatio float64
}

// DefaultConfig 返回磁盘模式的默认配置
func DefaultConfig(path string) *Config {
	return &Config{
		Path:   path,
		Badger: DefaultBadgerOptions(),
	}
}

// MemoryConfig 返回内存模式配置
func MemoryConfig() *Config {
	cfg := DefaultConfig("")
	cfg.InMemory = true
	cfg.Badger.GCInterval = 0
	return cfg
}

// DefaultBadgerOptions 返回默认 BadgerDB 选项
func DefaultBadgerOptions() BadgerOptions {
	return BadgerOptions{
		MemTableSize:         16 << 20, // 16MB
		ValueLogFileSize:     64 << 20, // 64MB
		ValueThreshold:       1 << 10,  // 1KB
		BlockCacheSize:       32 << 20, // 32MB
		IndexCacheSize:       0,
		NumCompactors:        2,
		ZSTDCompressionLevel: 1,
		GCInterval:           10 * time.Minute,
		GCDiscardRatio:       0.5,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("%w: path required for on-disk engine", ErrInvalidConfig)
	}
	if c.InMemory && c.ReadOnly {
		return fmt.Errorf("%w: in-memory engine cannot be read-only", ErrInvalidConfig)
	}
	if c.Badger.MemTableSize < 1<<20 {
		return fmt.Errorf("%w: memtable size below 1MB", ErrInvalidConfig)
	}
	if c.Badger.ValueLogFileSize < 1<<20 {
		return fmt.Errorf("%w: value log file size below 1MB", ErrInvalidConfig)
	}
	if c.Badger.GCInterval > 0 && (c.Badger.GCDiscardRatio <= 0 || c.Badger.GCDiscardRatio >= 1) {
		return fmt.Errorf("%w: gc discard ratio must be in (0, 1)", ErrInvalidConfig)
	}
	return nil
}

// EnsureDir 将路径转为绝对路径并创建目录
func (c *Config) EnsureDir() error {
	if c.InMemory {
		return nil
	}
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	c.Path = absPath
	return os.MkdirAll(c.Path, 0o700)
}

// Clone 返回副本
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
