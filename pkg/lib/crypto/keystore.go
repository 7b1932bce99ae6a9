package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

// ============================================================================
//                              密钥文件格式
// ============================================================================

// 密钥文件格式：
//
//   ┌────────────────────────────────────────────────────────────┐
//   │  Magic:     "DIDDHT-KEY"  (10 bytes)                       │
//   │  Version:   uint8                                          │
//   │  Type:      uint8 (KeyType)                                │
//   │  Encrypted: uint8 (0=否, 1=是)                              │
//   │  Data:      原始私钥或加密数据                               │
//   └────────────────────────────────────────────────────────────┘
//
//   加密数据：Salt(16) || Nonce(12) || AES-GCM 密文

const (
	keyFileMagic   = "DIDDHT-KEY"
	keyFileVersion = 1
	keyFileExt     = ".key"

	saltSize  = 16
	nonceSize = 12

	// Argon2id 参数
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
)

// ============================================================================
//                              Keystore 接口
// ============================================================================

// Keystore 密钥存储接口
type Keystore interface {
	// Has 检查是否存在指定 ID 的密钥
	Has(id string) (bool, error)

	// Put 存储密钥，已存在时返回 ErrKeyExists
	Put(id string, key PrivateKey) error

	// Get 获取密钥
	Get(id string) (PrivateKey, error)

	// Delete 删除密钥
	Delete(id string) error

	// List 列出所有密钥 ID（有序）
	List() ([]string, error)
}

// ============================================================================
//                              文件系统密钥存储
// ============================================================================

// FSKeystore 基于文件系统的密钥存储
type FSKeystore struct {
	dir      string
	password []byte // 为空则明文存储
}

var _ Keystore = (*FSKeystore)(nil)

// NewFSKeystore 创建文件系统密钥存储
//
// 参数：
//   - dir: 存储目录（不存在时以 0700 创建）
//   - password: 加密密码（为空则不加密）
func NewFSKeystore(dir string, password []byte) (*FSKeystore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &FSKeystore{dir: dir, password: password}, nil
}

// Has 检查是否存在指定 ID 的密钥
func (ks *FSKeystore) Has(id string) (bool, error) {
	path, err := ks.keyPath(id)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	return err == nil, err
}

// Put 存储密钥
func (ks *FSKeystore) Put(id string, key PrivateKey) error {
	exists, err := ks.Has(id)
	if err != nil {
		return err
	}
	if exists {
		return ErrKeyExists
	}

	data, err := EncodeKeyFile(key, ks.password)
	if err != nil {
		return err
	}

	path, _ := ks.keyPath(id)
	return os.WriteFile(path, data, 0600)
}

// Get 获取密钥
func (ks *FSKeystore) Get(id string) (PrivateKey, error) {
	path, err := ks.keyPath(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return DecodeKeyFile(data, ks.password)
}

// Delete 删除密钥
func (ks *FSKeystore) Delete(id string) error {
	path, err := ks.keyPath(id)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return ErrKeyNotFound
	}
	return err
}

// List 列出所有密钥 ID
func (ks *FSKeystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.dir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == keyFileExt {
			ids = append(ids, strings.TrimSuffix(entry.Name(), keyFileExt))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// keyPath 返回密钥文件路径，拒绝包含路径分隔符的 ID
func (ks *FSKeystore) keyPath(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("%w: bad key id %q", ErrInvalidKeyFile, id)
	}
	return filepath.Join(ks.dir, id+keyFileExt), nil
}

// ============================================================================
//                              密钥文件编解码
// ============================================================================

// EncodeKeyFile 编码密钥文件（password 非空时加密）
func EncodeKeyFile(key PrivateKey, password []byte) ([]byte, error) {
	raw, err := key.Raw()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(keyFileMagic)
	buf.WriteByte(keyFileVersion)
	buf.WriteByte(byte(key.Type()))

	if len(password) > 0 {
		buf.WriteByte(1)
		encrypted, err := encryptData(raw, password)
		if err != nil {
			return nil, err
		}
		buf.Write(encrypted)
	} else {
		buf.WriteByte(0)
		buf.Write(raw)
	}

	return buf.Bytes(), nil
}

// DecodeKeyFile 解码密钥文件
func DecodeKeyFile(data, password []byte) (PrivateKey, error) {
	if len(data) < len(keyFileMagic)+3 {
		return nil, ErrInvalidKeyFile
	}
	if string(data[:len(keyFileMagic)]) != keyFileMagic {
		return nil, ErrInvalidKeyFile
	}

	offset := len(keyFileMagic)

	version := data[offset]
	if version != keyFileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidKeyFile, version)
	}
	offset++

	keyType := KeyType(data[offset])
	offset++

	encrypted := data[offset] == 1
	offset++

	keyData := data[offset:]
	if encrypted {
		if len(password) == 0 {
			return nil, ErrInvalidPassword
		}
		var err error
		keyData, err = decryptData(keyData, password)
		if err != nil {
			return nil, err
		}
	}

	return UnmarshalPrivateKey(keyType, keyData)
}

// ============================================================================
//                              加密辅助函数
// ============================================================================

// newGCM 由密码和盐派生 AES-256-GCM
func newGCM(password, salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(password, salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// encryptData 使用 AES-GCM 加密数据
func encryptData(plaintext, password []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	// salt || nonce || ciphertext
	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, nil), nil
}

// decryptData 使用 AES-GCM 解密数据
func decryptData(data, password []byte) ([]byte, error) {
	if len(data) < saltSize+nonceSize {
		return nil, ErrDecryptionFailed
	}

	salt := data[:saltSize]
	nonce := data[saltSize : saltSize+nonceSize]
	ciphertext := data[saltSize+nonceSize:]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// ============================================================================
//                              内存密钥存储
// ============================================================================

// MemKeystore 内存密钥存储（用于测试和临时身份）
type MemKeystore struct {
	mu   sync.RWMutex
	keys map[string]PrivateKey
}

var _ Keystore = (*MemKeystore)(nil)

// NewMemKeystore 创建内存密钥存储
func NewMemKeystore() *MemKeystore {
	return &MemKeystore{keys: make(map[string]PrivateKey)}
}

// Has 检查是否存在指定 ID 的密钥
func (ks *MemKeystore) Has(id string) (bool, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	_, ok := ks.keys[id]
	return ok, nil
}

// Put 存储密钥
func (ks *MemKeystore) Put(id string, key PrivateKey) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if _, ok := ks.keys[id]; ok {
		return ErrKeyExists
	}
	ks.keys[id] = key
	return nil
}

// Get 获取密钥
func (ks *MemKeystore) Get(id string) (PrivateKey, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	key, ok := ks.keys[id]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return key, nil
}

// Delete 删除密钥
func (ks *MemKeystore) Delete(id string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if _, ok := ks.keys[id]; !ok {
		return ErrKeyNotFound
	}
	delete(ks.keys, id)
	return nil
}

// List 列出所有密钥 ID
func (ks *MemKeystore) List() ([]string, error) {
	ks.mu.RLock()
	defer ks.mu.RUnlock()
	ids := make([]string, 0, len(ks.keys))
	for id := range ks.keys {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
