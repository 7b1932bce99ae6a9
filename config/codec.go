package config

import (
	"fmt"

	"github.com/dep2p/go-diddht/pkg/did/dnspacket"
)

// CodecConfig DNS 报文编解码配置
type CodecConfig struct {
	// MaxPacketSize 报文大小上限（字节）
	MaxPacketSize int `json:"max_packet_size"`

	// TTL 编码记录的 TTL（秒）
	TTL uint32 `json:"ttl"`
}

// DefaultCodecConfig 返回默认编解码配置
func DefaultCodecConfig() CodecConfig {
	return CodecConfig{
		MaxPacketSize: dnspacket.DefaultMaxPacketSize,
		TTL:           dnspacket.DefaultTTL,
	}
}

// Validate 验证编解码配置
func (c CodecConfig) Validate() error {
	if _, err := c.NewCodec(); err != nil {
		return fmt.Errorf("codec: %w", err)
	}
	return nil
}

// NewCodec 按配置创建编解码器
func (c CodecConfig) NewCodec() (*dnspacket.Codec, error) {
	return dnspacket.NewCodec(
		dnspacket.WithMaxPacketSize(c.MaxPacketSize),
		dnspacket.WithTTL(c.TTL),
	)
}
