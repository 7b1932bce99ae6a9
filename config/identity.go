package config

import (
	"fmt"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// IdentityConfig 身份配置
//
// 身份密钥决定 did:dht 标识符和记录签名。
type IdentityConfig struct {
	// KeyType 新建身份的密钥类型
	// 可选值: "Ed25519"（默认）, "Secp256k1"
	KeyType string `json:"key_type"`

	// KeystoreDir 密钥库目录，为空时使用 <data_dir>/keys
	KeystoreDir string `json:"keystore_dir,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{
		KeyType: crypto.KeyTypeEd25519.String(),
	}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	if _, err := c.ParsedKeyType(); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	return nil
}

// ParsedKeyType 返回解析后的密钥类型
func (c IdentityConfig) ParsedKeyType() (crypto.KeyType, error) {
	return crypto.ParseKeyType(c.KeyType)
}
