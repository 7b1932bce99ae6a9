package types

import "encoding/hex"

// StorageKeySize 存储键长度（SHA-1 摘要）
const StorageKeySize = 20

// KeyHex 返回存储键的十六进制形式，用于日志和 HTTP 路径
func KeyHex(key []byte) string {
	return hex.EncodeToString(key)
}

// ParseKeyHex 解析十六进制存储键
func ParseKeyHex(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	return key, nil
}

// ValidateKey 检查存储键长度
func ValidateKey(key []byte) error {
	if len(key) != StorageKeySize {
		return ErrInvalidKey
	}
	return nil
}
