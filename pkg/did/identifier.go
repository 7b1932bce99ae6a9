package did

import (
	"fmt"
	"strings"

	"github.com/multiformats/go-base32"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              标识符
// ============================================================================

const (
	// MethodPrefix did:dht 标识符前缀
	MethodPrefix = "did:dht:"

	// zbase32Alphabet z-base-32 字母表
	zbase32Alphabet = "ybndrfg8ejkmcpqxot1uwisza345h769"
)

// zbase32 无填充 z-base-32 编码
var zbase32 = base32.NewEncoding(zbase32Alphabet).WithPadding(base32.NoPadding)

// Identifier 由身份公钥派生 did:dht 标识符
func Identifier(pub crypto.PublicKey) (string, error) {
	raw, err := crypto.RawPublicKey(pub)
	if err != nil {
		return "", err
	}
	return MethodPrefix + zbase32.EncodeToString(raw), nil
}

// ParseIdentifier 解析 did:dht 标识符并返回身份公钥
//
// 密钥类型由解码后的长度推断：32 字节 Ed25519，33 字节 Secp256k1。
func ParseIdentifier(id string) (crypto.PublicKey, error) {
	suffix, ok := strings.CutPrefix(id, MethodPrefix)
	if !ok || suffix == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	if strings.ContainsAny(suffix, "#?/:") {
		return nil, fmt.Errorf("%w: %q has trailing components", ErrInvalidIdentifier, id)
	}

	raw, err := zbase32.DecodeString(suffix)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	pub, err := crypto.PublicKeyFromRaw(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentifier, err)
	}
	return pub, nil
}

// IsIdentifier 报告 id 是否为合法的 did:dht 标识符
func IsIdentifier(id string) bool {
	_, err := ParseIdentifier(id)
	return err == nil
}

// QualifyID 将片段补全为 <did>#<fragment>
//
// 已包含 '#' 的值原样返回。
func QualifyID(did, fragment string) string {
	if strings.Contains(fragment, "#") {
		return fragment
	}
	return did + "#" + fragment
}

// SplitID 拆分 <did>#<fragment>，不含 '#' 时 fragment 为空
func SplitID(id string) (did, fragment string) {
	did, fragment, _ = strings.Cut(id, "#")
	return did, fragment
}
