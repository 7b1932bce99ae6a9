package record

import (
	"crypto/sha1" //nolint:gosec // G505: BEP44 target 定义为 SHA-1
	"strconv"

	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// StorageKey 由身份公钥派生存储键
//
// SHA-1(raw public key)，20 字节，与 BEP44 可变条目的 target 一致。
func StorageKey(pub crypto.PublicKey) ([]byte, error) {
	raw, err := crypto.RawPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return storageKeyFromRaw(raw), nil
}

func storageKeyFromRaw(raw []byte) []byte {
	sum := sha1.Sum(raw) //nolint:gosec // G401: 仅用于派生存储键
	return sum[:]
}

// StorageKeyForDID 解析 did:dht 标识符并派生存储键
func StorageKeyForDID(id string) ([]byte, error) {
	pub, err := did.ParseIdentifier(id)
	if err != nil {
		return nil, err
	}
	return StorageKey(pub)
}

// SignablePayload 返回签名的数据
//
// BEP44 bencode 形式：3:seqi<seq>e1:v<len>:<packet>
func SignablePayload(seq uint64, packet []byte) []byte {
	buf := make([]byte, 0, 32+len(packet))
	buf = append(buf, "3:seqi"...)
	buf = strconv.AppendUint(buf, seq, 10)
	buf = append(buf, "e1:v"...)
	buf = strconv.AppendInt(buf, int64(len(packet)), 10)
	buf = append(buf, ':')
	buf = append(buf, packet...)
	return buf
}
