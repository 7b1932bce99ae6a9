package config

import (
	"errors"
	"path/filepath"
	"time"
)

// StorageConfig 存储配置
//
// 数据目录结构：
//
//	${DataDir}/
//	├── diddht.db/   # BadgerDB（持久化 DHT 值、序列号）
//	└── keys/        # 加密密钥文件
type StorageConfig struct {
	// DataDir 数据目录路径
	DataDir string `json:"data_dir"`

	// InMemory 使用内存存储，进程退出后数据丢失
	InMemory bool `json:"in_memory,omitempty"`

	// SyncWrites 每次写入后同步到磁盘
	SyncWrites bool `json:"sync_writes,omitempty"`

	// GCInterval 值日志 GC 周期，0 表示禁用
	GCInterval Duration `json:"gc_interval"`

	// GCDiscardRatio GC 丢弃比例
	GCDiscardRatio float64 `json:"gc_discard_ratio"`
}

// DefaultStorageConfig 返回默认存储配置
func DefaultStorageConfig() StorageConfig {
	return StorageConfig{
		DataDir:        "./data",
		GCInterval:     Duration(10 * time.Minute),
		GCDiscardRatio: 0.5,
	}
}

// Validate 验证存储配置
func (c StorageConfig) Validate() error {
	if !c.InMemory && c.DataDir == "" {
		return errors.New("storage: data_dir cannot be empty")
	}
	if c.GCInterval < 0 {
		return errors.New("storage: gc_interval cannot be negative")
	}
	if c.GCInterval > 0 && (c.GCDiscardRatio <= 0 || c.GCDiscardRatio >= 1) {
		return errors.New("storage: gc_discard_ratio must be in (0, 1)")
	}
	return nil
}

// DBPath 返回 BadgerDB 数据库路径
func (c StorageConfig) DBPath() string {
	return filepath.Join(c.DataDir, "diddht.db")
}

// KeysPath 返回默认密钥库路径
func (c StorageConfig) KeysPath() string {
	return filepath.Join(c.DataDir, "keys")
}
