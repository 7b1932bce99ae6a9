package did

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/minio/sha256-simd"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              JWK
// ============================================================================

// JWK 公钥 JSON Web Key，只包含公开字段
type JWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y,omitempty"`
	Kid string `json:"kid,omitempty"`
}

// JWK 常量
const (
	KtyOKP = "OKP"
	KtyEC  = "EC"

	CrvEd25519   = "Ed25519"
	CrvSecp256k1 = "secp256k1"
)

var b64 = base64.RawURLEncoding

// JWKFromPublicKey 由公钥构造 JWK，kid 设为 RFC 7638 指纹
func JWKFromPublicKey(pub crypto.PublicKey) (*JWK, error) {
	if pub == nil {
		return nil, crypto.ErrNilPublicKey
	}

	var jwk JWK
	switch k := pub.(type) {
	case *crypto.Ed25519PublicKey:
		raw, _ := k.Raw()
		jwk = JWK{Kty: KtyOKP, Crv: CrvEd25519, X: b64.EncodeToString(raw)}
	case *crypto.Secp256k1PublicKey:
		u := k.Uncompressed()
		jwk = JWK{
			Kty: KtyEC,
			Crv: CrvSecp256k1,
			X:   b64.EncodeToString(u[1:33]),
			Y:   b64.EncodeToString(u[33:65]),
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKey, pub.Type())
	}

	kid, err := jwk.Thumbprint()
	if err != nil {
		return nil, err
	}
	jwk.Kid = kid
	return &jwk, nil
}

// PublicKey 将 JWK 还原为公钥
func (j *JWK) PublicKey() (crypto.PublicKey, error) {
	x, err := b64.DecodeString(j.X)
	if err != nil {
		return nil, fmt.Errorf("%w: x: %v", ErrInvalidJWK, err)
	}

	switch {
	case j.Kty == KtyOKP && j.Crv == CrvEd25519:
		pub, err := crypto.UnmarshalEd25519PublicKey(x)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
		}
		return pub, nil

	case j.Kty == KtyEC && j.Crv == CrvSecp256k1:
		y, err := b64.DecodeString(j.Y)
		if err != nil {
			return nil, fmt.Errorf("%w: y: %v", ErrInvalidJWK, err)
		}
		pub, err := crypto.Secp256k1PublicKeyFromCoordinates(x, y)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJWK, err)
		}
		return pub, nil

	default:
		return nil, fmt.Errorf("%w: kty=%q crv=%q", ErrUnsupportedKey, j.Kty, j.Crv)
	}
}

// Thumbprint 计算 RFC 7638 指纹（SHA-256，base64url 无填充）
//
// 只使用必需成员，按字典序序列化且无空白。
func (j *JWK) Thumbprint() (string, error) {
	var canonical []byte
	var err error

	switch j.Kty {
	case KtyOKP:
		canonical, err = json.Marshal(struct {
			Crv string `json:"crv"`
			Kty string `json:"kty"`
			X   string `json:"x"`
		}{j.Crv, j.Kty, j.X})
	case KtyEC:
		canonical, err = json.Marshal(struct {
			Crv string `json:"crv"`
			Kty string `json:"kty"`
			X   string `json:"x"`
			Y   string `json:"y"`
		}{j.Crv, j.Kty, j.X, j.Y})
	default:
		return "", fmt.Errorf("%w: kty=%q", ErrUnsupportedKey, j.Kty)
	}
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return b64.EncodeToString(sum[:]), nil
}

// Clone 返回 JWK 副本
func (j *JWK) Clone() *JWK {
	if j == nil {
		return nil
	}
	c := *j
	return &c
}
