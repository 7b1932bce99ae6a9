package crypto

import (
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/minio/sha256-simd"
)

// Secp256k1 密钥常量
const (
	// Secp256k1PrivateKeySize Secp256k1 私钥大小（32 字节）
	Secp256k1PrivateKeySize = secp256k1.PrivKeyBytesLen
	// Secp256k1PublicKeySize Secp256k1 压缩公钥大小（33 字节）
	Secp256k1PublicKeySize = secp256k1.PubKeyBytesLenCompressed
	// Secp256k1UncompressedPublicKeySize Secp256k1 未压缩公钥大小（65 字节）
	Secp256k1UncompressedPublicKeySize = secp256k1.PubKeyBytesLenUncompressed
	// Secp256k1SignatureSize Secp256k1 签名大小（64 字节，R || S）
	Secp256k1SignatureSize = 64
)

// ============================================================================
//                              Secp256k1PublicKey
// ============================================================================

// Secp256k1PublicKey Secp256k1 公钥实现
type Secp256k1PublicKey struct {
	k *secp256k1.PublicKey
}

// Raw 返回压缩格式的公钥字节（33 字节）
func (k *Secp256k1PublicKey) Raw() ([]byte, error) {
	return k.k.SerializeCompressed(), nil
}

// Uncompressed 返回未压缩公钥字节（0x04 || X || Y）
func (k *Secp256k1PublicKey) Uncompressed() []byte {
	return k.k.SerializeUncompressed()
}

// Type 返回密钥类型
func (k *Secp256k1PublicKey) Type() KeyType {
	return KeyTypeSecp256k1
}

// Equals 比较两个公钥是否相等
func (k *Secp256k1PublicKey) Equals(other Key) bool {
	sk, ok := other.(*Secp256k1PublicKey)
	if !ok {
		return KeyEqual(k, other)
	}
	return k.k.IsEqual(sk.k)
}

// Verify 使用此公钥验证签名
//
// 签名格式为 64 字节：R (32 字节) + S (32 字节)，对数据的 SHA-256 摘要签名。
func (k *Secp256k1PublicKey) Verify(data, sig []byte) (bool, error) {
	if len(sig) != Secp256k1SignatureSize {
		return false, nil
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return false, nil
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return false, nil
	}

	hash := sha256.Sum256(data)
	return ecdsa.NewSignature(&r, &s).Verify(hash[:], k.k), nil
}

// ============================================================================
//                              Secp256k1PrivateKey
// ============================================================================

// Secp256k1PrivateKey Secp256k1 私钥实现
type Secp256k1PrivateKey struct {
	k *secp256k1.PrivateKey
}

// Raw 返回原始私钥字节（32 字节）
func (k *Secp256k1PrivateKey) Raw() ([]byte, error) {
	return k.k.Serialize(), nil
}

// Type 返回密钥类型
func (k *Secp256k1PrivateKey) Type() KeyType {
	return KeyTypeSecp256k1
}

// Equals 比较两个私钥是否相等
func (k *Secp256k1PrivateKey) Equals(other Key) bool {
	sk, ok := other.(*Secp256k1PrivateKey)
	if !ok {
		return KeyEqual(k, other)
	}
	return subtle.ConstantTimeCompare(k.k.Serialize(), sk.k.Serialize()) == 1
}

// GetPublic 返回对应的公钥
func (k *Secp256k1PrivateKey) GetPublic() PublicKey {
	return &Secp256k1PublicKey{k: k.k.PubKey()}
}

// Sign 使用此私钥签名数据
//
// 返回 64 字节 R || S，nonce 按 RFC6979 确定性生成。
func (k *Secp256k1PrivateKey) Sign(data []byte) ([]byte, error) {
	hash := sha256.Sum256(data)
	sig := ecdsa.Sign(k.k, hash[:])

	r := sig.R()
	s := sig.S()
	rb := r.Bytes()
	sb := s.Bytes()

	out := make([]byte, Secp256k1SignatureSize)
	copy(out[:32], rb[:])
	copy(out[32:], sb[:])
	return out, nil
}

// ============================================================================
//                              工厂函数
// ============================================================================

// GenerateSecp256k1Key 生成新的 Secp256k1 密钥对
func GenerateSecp256k1Key(src io.Reader) (PrivateKey, PublicKey, error) {
	priv, err := secp256k1.GeneratePrivateKeyFromRand(src)
	if err != nil {
		return nil, nil, err
	}
	return &Secp256k1PrivateKey{k: priv}, &Secp256k1PublicKey{k: priv.PubKey()}, nil
}

// UnmarshalSecp256k1PublicKey 从字节反序列化 Secp256k1 公钥
//
// 接受 33 字节压缩格式或 65 字节未压缩格式。
func UnmarshalSecp256k1PublicKey(data []byte) (PublicKey, error) {
	if len(data) != Secp256k1PublicKeySize && len(data) != Secp256k1UncompressedPublicKeySize {
		return nil, fmt.Errorf("%w: expected %d or %d bytes, got %d",
			ErrInvalidKeySize, Secp256k1PublicKeySize, Secp256k1UncompressedPublicKeySize, len(data))
	}
	pub, err := secp256k1.ParsePubKey(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPublicKey, err)
	}
	return &Secp256k1PublicKey{k: pub}, nil
}

// UnmarshalSecp256k1PrivateKey 从字节反序列化 Secp256k1 私钥（32 字节）
func UnmarshalSecp256k1PrivateKey(data []byte) (PrivateKey, error) {
	if len(data) != Secp256k1PrivateKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidKeySize, Secp256k1PrivateKeySize, len(data))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(data); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	return &Secp256k1PrivateKey{k: secp256k1.NewPrivateKey(&scalar)}, nil
}

// Secp256k1PublicKeyFromCoordinates 由 32 字节 X、Y 坐标构造公钥
func Secp256k1PublicKeyFromCoordinates(x, y []byte) (PublicKey, error) {
	if len(x) != 32 || len(y) != 32 {
		return nil, fmt.Errorf("%w: coordinates must be 32 bytes", ErrInvalidKeySize)
	}
	buf := make([]byte, 0, Secp256k1UncompressedPublicKeySize)
	buf = append(buf, 0x04)
	buf = append(buf, x...)
	buf = append(buf, y...)
	return UnmarshalSecp256k1PublicKey(buf)
}
