package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseKeystore(t *testing.T, ks Keystore) {
	priv, _, err := GenerateKeyPair(KeyTypeEd25519)
	require.NoError(t, err)

	has, err := ks.Has("identity")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, ks.Put("identity", priv))
	assert.ErrorIs(t, ks.Put("identity", priv), ErrKeyExists)

	got, err := ks.Get("identity")
	require.NoError(t, err)
	assert.True(t, KeyEqual(priv, got))

	_, err = ks.Get("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	ids, err := ks.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"identity"}, ids)

	require.NoError(t, ks.Delete("identity"))
	assert.ErrorIs(t, ks.Delete("identity"), ErrKeyNotFound)
}

func TestMemKeystore(t *testing.T) {
	exerciseKeystore(t, NewMemKeystore())
}

func TestFSKeystore_Plain(t *testing.T) {
	ks, err := NewFSKeystore(t.TempDir(), nil)
	require.NoError(t, err)
	exerciseKeystore(t, ks)
}

func TestFSKeystore_Encrypted(t *testing.T) {
	dir := t.TempDir()
	ks, err := NewFSKeystore(dir, []byte("hunter2"))
	require.NoError(t, err)
	exerciseKeystore(t, ks)

	priv, _, _ := GenerateKeyPair(KeyTypeSecp256k1)
	require.NoError(t, ks.Put("k1", priv))

	raw, err := os.ReadFile(filepath.Join(dir, "k1.key"))
	require.NoError(t, err)
	privRaw, _ := priv.Raw()
	assert.NotContains(t, string(raw), string(privRaw))

	wrong, err := NewFSKeystore(dir, []byte("wrong"))
	require.NoError(t, err)
	_, err = wrong.Get("k1")
	assert.ErrorIs(t, err, ErrDecryptionFailed)

	noPass, err := NewFSKeystore(dir, nil)
	require.NoError(t, err)
	_, err = noPass.Get("k1")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestFSKeystore_RejectsPathIDs(t *testing.T) {
	ks, err := NewFSKeystore(t.TempDir(), nil)
	require.NoError(t, err)

	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)
	assert.ErrorIs(t, ks.Put("../escape", priv), ErrInvalidKeyFile)
	_, err = ks.Get("")
	assert.ErrorIs(t, err, ErrInvalidKeyFile)
}

func TestDecodeKeyFile_Invalid(t *testing.T) {
	_, err := DecodeKeyFile([]byte("short"), nil)
	assert.ErrorIs(t, err, ErrInvalidKeyFile)

	_, err = DecodeKeyFile([]byte("NOT-A-KEY-FILE-AT-ALL"), nil)
	assert.ErrorIs(t, err, ErrInvalidKeyFile)

	priv, _, _ := GenerateKeyPair(KeyTypeEd25519)
	data, err := EncodeKeyFile(priv, nil)
	require.NoError(t, err)
	data[len(keyFileMagic)] = 9
	_, err = DecodeKeyFile(data, nil)
	assert.ErrorIs(t, err, ErrInvalidKeyFile)
}
