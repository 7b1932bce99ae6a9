// Package config 提供统一的配置管理
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义，
// 支持从 JSON 加载、保存以及环境变量覆盖。
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.DHT.Mode = config.DHTModeRelay
//	cfg.DHT.RelayURL = "https://gateway.example.com"
//
//	// 从 JSON 文件加载（未出现的字段保留默认值）
//	cfg, err := config.LoadFile("diddht.json")
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// Config 是 go-diddht 的完整配置结构
//
// 配置按照功能模块组织：
//   - Identity: 身份密钥类型与密钥库
//   - Storage: 本地 BadgerDB 存储
//   - DHT: DHT 客户端实现选择与传输参数
//   - Codec: DNS 报文编解码参数
//   - Cache: 序列号与文档缓存
//   - Seq: 序列号来源
//   - Metrics: 指标
type Config struct {
	// Identity 身份配置
	Identity IdentityConfig `json:"identity"`

	// Storage 存储配置
	Storage StorageConfig `json:"storage"`

	// DHT DHT 客户端配置
	DHT DHTConfig `json:"dht"`

	// Codec 编解码配置
	Codec CodecConfig `json:"codec"`

	// Cache 缓存配置
	Cache CacheConfig `json:"cache"`

	// Seq 序列号配置
	Seq SeqConfig `json:"seq"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
//
// 默认配置使用内存 DHT 客户端和时钟序列号，无需任何外部依赖即可运行。
func NewConfig() *Config {
	return &Config{
		Identity: DefaultIdentityConfig(),
		Storage:  DefaultStorageConfig(),
		DHT:      DefaultDHTConfig(),
		Codec:    DefaultCodecConfig(),
		Cache:    DefaultCacheConfig(),
		Seq:      DefaultSeqConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 验证配置，返回所有子配置的错误
func (c *Config) Validate() error {
	err := multierr.Combine(
		c.Identity.Validate(),
		c.Storage.Validate(),
		c.DHT.Validate(),
		c.Codec.Validate(),
		c.Cache.Validate(),
		c.Seq.Validate(),
	)
	if err != nil {
		return err
	}

	// 跨模块约束
	if c.Seq.Source == SeqSourceKV && c.Storage.InMemory {
		return fmt.Errorf("seq: source %q requires on-disk storage", SeqSourceKV)
	}
	return nil
}

// NeedsStorage 是否需要本地存储引擎
func (c *Config) NeedsStorage() bool {
	return c.DHT.Mode == DHTModePersistent || c.Seq.Source == SeqSourceKV
}

// Clone 返回配置副本
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// FromJSON 从 JSON 数据创建配置
//
// JSON 中未出现的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// ToJSON 序列化为缩进格式的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return FromJSON(data)
}

// SaveFile 将配置写入 JSON 文件
func (c *Config) SaveFile(path string) error {
	data, err := c.ToJSON()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
