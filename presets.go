package diddht

import (
	"fmt"

	"github.com/dep2p/go-diddht/config"
)

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置常量
// ════════════════════════════════════════════════════════════════════════════

// 预设名称常量
const (
	// PresetNameMemory 内存预设名称
	PresetNameMemory = "memory"

	// PresetNameLocal 本地持久化预设名称
	PresetNameLocal = "local"

	// PresetNameRelay 网关预设名称
	PresetNameRelay = "relay"

	// PresetNameTest 测试预设名称
	PresetNameTest = "test"
)

// PresetInfo 预设描述
type PresetInfo struct {
	Name        string
	Description string
	UseCase     string
}

// ════════════════════════════════════════════════════════════════════════════
//                              预设配置获取
// ════════════════════════════════════════════════════════════════════════════

// GetMemoryConfig 获取内存配置
//
// 内存 DHT 客户端，时钟序列号，不需要数据目录。
func GetMemoryConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.DHT.Mode = config.DHTModeMemory
	cfg.Storage.InMemory = true
	cfg.Seq.Source = config.SeqSourceClock
	return cfg
}

// GetLocalConfig 获取本地持久化配置
//
// 记录与序列号都写入 dataDir 下的 BadgerDB，重启后保留。
func GetLocalConfig(dataDir string) *config.Config {
	cfg := config.NewConfig()
	cfg.DHT.Mode = config.DHTModePersistent
	cfg.Storage.DataDir = dataDir
	cfg.Seq.Source = config.SeqSourceKV
	return cfg
}

// GetRelayConfig 获取网关配置
//
// 通过 HTTP 网关读写公共 DHT。网关上的记录可能被其他客户端更新，
// 因此使用时钟序列号。
func GetRelayConfig(relayURL string) *config.Config {
	cfg := config.NewConfig()
	cfg.DHT.Mode = config.DHTModeRelay
	cfg.DHT.RelayURL = relayURL
	cfg.Storage.InMemory = true
	cfg.Seq.Source = config.SeqSourceClock
	return cfg
}

// GetTestConfig 获取测试配置
//
// 计数器序列号，关闭文档缓存和指标，结果可重复。
func GetTestConfig() *config.Config {
	cfg := GetMemoryConfig()
	cfg.Seq.Source = config.SeqSourceCounter
	cfg.Cache.Enabled = false
	cfg.Metrics.Enabled = false
	return cfg
}

// GetConfigByPreset 根据预设名称获取配置
//
// local 预设使用默认数据目录，relay 预设需要随后设置网关地址。
// 未知名称返回 nil。
func GetConfigByPreset(name string) *config.Config {
	switch name {
	case PresetNameMemory:
		return GetMemoryConfig()
	case PresetNameLocal:
		return GetLocalConfig(config.DefaultStorageConfig().DataDir)
	case PresetNameRelay:
		return GetRelayConfig("")
	case PresetNameTest:
		return GetTestConfig()
	default:
		return nil
	}
}

// ApplyPresetToConfig 将预设的 DHT、存储与序列号选择应用到已有配置
//
// 已设置的数据目录与网关地址保留。
func ApplyPresetToConfig(cfg *config.Config, presetName string) error {
	preset := GetConfigByPreset(presetName)
	if preset == nil {
		return fmt.Errorf("unknown preset: %s", presetName)
	}
	cfg.DHT.Mode = preset.DHT.Mode
	cfg.Storage.InMemory = preset.Storage.InMemory
	cfg.Seq.Source = preset.Seq.Source
	if presetName == PresetNameTest {
		cfg.Cache.Enabled = preset.Cache.Enabled
		cfg.Metrics.Enabled = preset.Metrics.Enabled
	}
	return nil
}

// AvailablePresets 返回所有可用预设的信息
func AvailablePresets() []PresetInfo {
	return []PresetInfo{
		{
			Name:        PresetNameMemory,
			Description: "内存 DHT，进程退出后记录丢失",
			UseCase:     "单机演示、嵌入式使用",
		},
		{
			Name:        PresetNameLocal,
			Description: "BadgerDB 持久化 DHT 与序列号",
			UseCase:     "本地开发、离线环境",
		},
		{
			Name:        PresetNameRelay,
			Description: "通过 HTTP 网关访问公共 DHT",
			UseCase:     "生产发布与解析",
		},
		{
			Name:        PresetNameTest,
			Description: "确定性的内存配置，无缓存无指标",
			UseCase:     "单元测试",
		},
	}
}

// IsValidPreset 检查预设名称是否有效
func IsValidPreset(name string) bool {
	switch name {
	case PresetNameMemory, PresetNameLocal, PresetNameRelay, PresetNameTest:
		return true
	default:
		return false
	}
}
