package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              常量定义
// ============================================================================

// EnvelopeVersion 信封格式版本
const EnvelopeVersion byte = 1

// envelopeHeaderSize version + keyType + pubLen + seq + sigLen + payloadLen
const envelopeHeaderSize = 1 + 1 + 2 + 8 + 2 + 2

// ============================================================================
//                              PutRequest
// ============================================================================

// PutRequest 签名的可变记录
type PutRequest struct {
	// PublicKey 身份公钥，用于派生存储键和校验签名
	PublicKey crypto.PublicKey

	// Seq 序列号
	Seq uint64

	// Signature 对 SignablePayload(Seq, Payload) 的签名
	Signature []byte

	// Payload 编码后的 DNS 报文
	Payload []byte
}

// BuildPutRequest 使用身份私钥签名报文
//
// 签名算法由身份密钥类型决定。
func BuildPutRequest(packet []byte, identity crypto.PrivateKey, seq uint64) (*PutRequest, error) {
	if identity == nil {
		return nil, ErrNilKey
	}
	if len(packet) > math.MaxUint16 {
		return nil, NewRecordError("build", ErrPayloadTooLarge, fmt.Sprintf("%d bytes", len(packet)))
	}

	payload := append([]byte(nil), packet...)
	sig, err := identity.Sign(SignablePayload(seq, payload))
	if err != nil {
		return nil, NewRecordError("build", err, "sign failed")
	}

	return &PutRequest{
		PublicKey: identity.GetPublic(),
		Seq:       seq,
		Signature: sig,
		Payload:   payload,
	}, nil
}

// Key 返回记录的存储键
func (r *PutRequest) Key() ([]byte, error) {
	return StorageKey(r.PublicKey)
}

// Verify 校验签名
func (r *PutRequest) Verify() error {
	if r.PublicKey == nil {
		return ErrNilKey
	}
	if len(r.Signature) == 0 {
		return NewRecordError("verify", ErrSignatureInvalid, "empty signature")
	}
	ok, err := r.PublicKey.Verify(SignablePayload(r.Seq, r.Payload), r.Signature)
	if err != nil {
		return NewRecordError("verify", ErrSignatureInvalid, err.Error())
	}
	if !ok {
		return NewRecordError("verify", ErrSignatureInvalid, "")
	}
	return nil
}

// ============================================================================
//                              序列化
// ============================================================================

// Marshal 序列化为信封
func (r *PutRequest) Marshal() ([]byte, error) {
	pub, err := crypto.RawPublicKey(r.PublicKey)
	if err != nil {
		return nil, err
	}
	if len(pub) > math.MaxUint16 || len(r.Signature) > math.MaxUint16 {
		return nil, NewRecordError("marshal", ErrMalformedEnvelope, "field too long")
	}
	if len(r.Payload) > math.MaxUint16 {
		return nil, NewRecordError("marshal", ErrPayloadTooLarge, fmt.Sprintf("%d bytes", len(r.Payload)))
	}

	buf := make([]byte, 0, envelopeHeaderSize+len(pub)+len(r.Signature)+len(r.Payload))
	buf = append(buf, EnvelopeVersion, byte(r.PublicKey.Type()))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(pub)))
	buf = append(buf, pub...)
	buf = binary.BigEndian.AppendUint64(buf, r.Seq)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(r.Signature)))
	buf = append(buf, r.Signature...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(r.Payload)))
	buf = append(buf, r.Payload...)
	return buf, nil
}

// envelopeReader 按顺序读取信封字段
type envelopeReader struct {
	data []byte
	off  int
	err  error
}

func (r *envelopeReader) next(n int, field string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.data) {
		r.err = NewRecordError("unmarshal", ErrMalformedEnvelope, "truncated "+field)
		return nil
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *envelopeReader) uint16(field string) int {
	b := r.next(2, field+" length")
	if b == nil {
		return 0
	}
	return int(binary.BigEndian.Uint16(b))
}

// UnmarshalPutRequest 解析信封，不校验签名
func UnmarshalPutRequest(data []byte) (*PutRequest, error) {
	if len(data) < envelopeHeaderSize {
		return nil, NewRecordError("unmarshal", ErrMalformedEnvelope, "data too short")
	}
	if data[0] != EnvelopeVersion {
		return nil, NewRecordError("unmarshal", ErrMalformedEnvelope, fmt.Sprintf("unknown version %d", data[0]))
	}

	r := &envelopeReader{data: data, off: 1}
	keyType := crypto.KeyType(r.next(1, "key type")[0])
	pub := r.next(r.uint16("public key"), "public key")
	seqBytes := r.next(8, "seq")
	sig := r.next(r.uint16("signature"), "signature")
	payload := r.next(r.uint16("payload"), "payload")
	if r.err != nil {
		return nil, r.err
	}
	if r.off != len(data) {
		return nil, NewRecordError("unmarshal", ErrMalformedEnvelope, fmt.Sprintf("%d trailing bytes", len(data)-r.off))
	}

	pk, err := crypto.UnmarshalPublicKey(keyType, pub)
	if err != nil {
		return nil, NewRecordError("unmarshal", ErrMalformedEnvelope, err.Error())
	}

	return &PutRequest{
		PublicKey: pk,
		Seq:       binary.BigEndian.Uint64(seqBytes),
		Signature: bytes.Clone(sig),
		Payload:   bytes.Clone(payload),
	}, nil
}

// ============================================================================
//                              读取校验
// ============================================================================

// Open 解析并校验从 id 对应存储键读取的信封
//
// 依次检查：信封格式、身份绑定（ErrIdentityMismatch）、签名（ErrSignatureInvalid）。
// 任一检查失败都不返回载荷。
func Open(id string, data []byte) (*PutRequest, error) {
	key, err := StorageKeyForDID(id)
	if err != nil {
		return nil, NewRecordError("open", err, "invalid identifier")
	}
	return OpenKey(key, data)
}

// OpenKey 与 Open 相同，直接使用存储键
func OpenKey(key, data []byte) (*PutRequest, error) {
	req, err := UnmarshalPutRequest(data)
	if err != nil {
		return nil, err
	}

	got, err := req.Key()
	if err != nil {
		return nil, NewRecordError("open", ErrMalformedEnvelope, err.Error())
	}
	if !bytes.Equal(got, key) {
		return nil, NewRecordError("open", ErrIdentityMismatch, "")
	}

	if err := req.Verify(); err != nil {
		return nil, err
	}
	return req, nil
}
