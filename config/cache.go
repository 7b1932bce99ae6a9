package config

import (
	"errors"
	"time"
)

// CacheConfig 缓存配置
type CacheConfig struct {
	// Enabled 是否缓存解析结果
	Enabled bool `json:"enabled"`

	// DocumentSize 文档缓存条目上限
	DocumentSize int `json:"document_size"`

	// DocumentTTL 文档缓存有效期
	DocumentTTL Duration `json:"document_ttl"`

	// SeqSize 已发布序列号缓存条目上限
	SeqSize int `json:"seq_size"`
}

// DefaultCacheConfig 返回默认缓存配置
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      true,
		DocumentSize: 256,
		DocumentTTL:  Duration(5 * time.Minute),
		SeqSize:      1024,
	}
}

// Validate 验证缓存配置
func (c CacheConfig) Validate() error {
	if c.SeqSize < 1 {
		return errors.New("cache: seq_size must be at least 1")
	}
	if !c.Enabled {
		return nil
	}
	if c.DocumentSize < 1 {
		return errors.New("cache: document_size must be at least 1")
	}
	if c.DocumentTTL <= 0 {
		return errors.New("cache: document_ttl must be positive")
	}
	return nil
}
