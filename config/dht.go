package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DHT 客户端实现
const (
	// DHTModeMemory 进程内存储，用于测试和本地试验
	DHTModeMemory = "memory"

	// DHTModePersistent BadgerDB 持久化存储
	DHTModePersistent = "persistent"

	// DHTModeRelay 通过 HTTP 网关访问 DHT
	DHTModeRelay = "relay"
)

// DHTConfig DHT 客户端配置
type DHTConfig struct {
	// Mode 客户端实现: memory, persistent, relay
	Mode string `json:"mode"`

	// RelayURL 网关地址，Mode 为 relay 时必需
	RelayURL string `json:"relay_url,omitempty"`

	// Timeout 单次 Put/Get 超时
	Timeout Duration `json:"timeout"`

	// RetryMax 网关请求最大重试次数
	RetryMax int `json:"retry_max"`

	// RetryWaitMin 重试最小等待
	RetryWaitMin Duration `json:"retry_wait_min"`

	// RetryWaitMax 重试最大等待
	RetryWaitMax Duration `json:"retry_wait_max"`

	// RateLimit 每秒请求数上限，0 表示不限
	RateLimit float64 `json:"rate_limit"`

	// RateBurst 突发请求数
	RateBurst int `json:"rate_burst"`

	// RecordTTL 本地存储的记录有效期（memory/persistent）
	RecordTTL Duration `json:"record_ttl"`
}

// DefaultDHTConfig 返回默认 DHT 配置
func DefaultDHTConfig() DHTConfig {
	return DHTConfig{
		Mode:         DHTModeMemory,
		Timeout:      Duration(10 * time.Second),
		RetryMax:     3,
		RetryWaitMin: Duration(200 * time.Millisecond),
		RetryWaitMax: Duration(2 * time.Second),
		RateLimit:    10,
		RateBurst:    5,
		RecordTTL:    Duration(2 * time.Hour),
	}
}

// Validate 验证 DHT 配置
func (c DHTConfig) Validate() error {
	switch c.Mode {
	case DHTModeMemory, DHTModePersistent:
	case DHTModeRelay:
		if c.RelayURL == "" {
			return errors.New("dht: relay_url required in relay mode")
		}
		u, err := url.Parse(c.RelayURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("dht: invalid relay_url %q", c.RelayURL)
		}
	default:
		return fmt.Errorf("dht: unknown mode %q", c.Mode)
	}
	if c.Timeout <= 0 {
		return errors.New("dht: timeout must be positive")
	}
	if c.RetryMax < 0 {
		return errors.New("dht: retry_max cannot be negative")
	}
	if c.RetryWaitMin > c.RetryWaitMax {
		return errors.New("dht: retry_wait_min exceeds retry_wait_max")
	}
	if c.RateLimit < 0 {
		return errors.New("dht: rate_limit cannot be negative")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		return errors.New("dht: rate_burst must be at least 1")
	}
	if c.RecordTTL <= 0 {
		return errors.New("dht: record_ttl must be positive")
	}
	return nil
}
