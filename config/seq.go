package config

import "fmt"

// 序列号来源
const (
	// SeqSourceClock 使用 Unix 秒（did:dht 惯例）
	SeqSourceClock = "clock"

	// SeqSourceCounter 进程内计数器
	SeqSourceCounter = "counter"

	// SeqSourceKV 持久化计数器
	SeqSourceKV = "kv"
)

// SeqConfig 序列号配置
type SeqConfig struct {
	// Source 序列号来源: clock, counter, kv
	Source string `json:"source"`
}

// DefaultSeqConfig 返回默认序列号配置
func DefaultSeqConfig() SeqConfig {
	return SeqConfig{Source: SeqSourceClock}
}

// Validate 验证序列号配置
func (c SeqConfig) Validate() error {
	switch c.Source {
	case SeqSourceClock, SeqSourceCounter, SeqSourceKV:
		return nil
	default:
		return fmt.Errorf("seq: unknown source %q", c.Source)
	}
}
