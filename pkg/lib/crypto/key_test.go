package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestKeyType 测试密钥类型名称
func TestKeyType(t *testing.T) {
	tests := []struct {
		kt   KeyType
		want string
	}{
		{KeyTypeUnspecified, "Unspecified"},
		{KeyTypeEd25519, "Ed25519"},
		{KeyTypeSecp256k1, "Secp256k1"},
		{KeyType(99), "Unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kt.String())
	}
}

func TestParseKeyType(t *testing.T) {
	kt, err := ParseKeyType("Ed25519")
	require.NoError(t, err)
	assert.Equal(t, KeyTypeEd25519, kt)

	kt, err = ParseKeyType(" secp256k1 ")
	require.NoError(t, err)
	assert.Equal(t, KeyTypeSecp256k1, kt)

	_, err = ParseKeyType("rsa")
	assert.ErrorIs(t, err, ErrBadKeyType)
}

// TestGenerateKeyPair 测试密钥对生成
func TestGenerateKeyPair(t *testing.T) {
	for _, kt := range KeyTypes {
		t.Run(kt.String(), func(t *testing.T) {
			priv, pub, err := GenerateKeyPair(kt)
			require.NoError(t, err)
			assert.Equal(t, kt, priv.Type())
			assert.Equal(t, kt, pub.Type())
			assert.True(t, pub.Equals(priv.GetPublic()))
		})
	}

	_, _, err := GenerateKeyPair(KeyType(99))
	assert.ErrorIs(t, err, ErrBadKeyType)
}

func TestUnmarshalRoundTrip(t *testing.T) {
	for _, kt := range KeyTypes {
		t.Run(kt.String(), func(t *testing.T) {
			priv, pub, err := GenerateKeyPair(kt)
			require.NoError(t, err)

			rawPriv, err := priv.Raw()
			require.NoError(t, err)
			priv2, err := UnmarshalPrivateKey(kt, rawPriv)
			require.NoError(t, err)
			assert.True(t, priv.Equals(priv2))

			rawPub, err := pub.Raw()
			require.NoError(t, err)
			pub2, err := UnmarshalPublicKey(kt, rawPub)
			require.NoError(t, err)
			assert.True(t, pub.Equals(pub2))

			inferred, err := PublicKeyFromRaw(rawPub)
			require.NoError(t, err)
			assert.Equal(t, kt, inferred.Type())
		})
	}
}

func TestPublicKeyFromRaw_BadLength(t *testing.T) {
	_, err := PublicKeyFromRaw(make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestKeyEqual(t *testing.T) {
	priv1, pub1, _ := GenerateKeyPair(KeyTypeEd25519)
	_, pub2, _ := GenerateKeyPair(KeyTypeEd25519)
	_, pub3, _ := GenerateKeyPair(KeyTypeSecp256k1)

	assert.True(t, KeyEqual(pub1, priv1.GetPublic()))
	assert.False(t, KeyEqual(pub1, pub2))
	assert.False(t, KeyEqual(pub1, pub3))
	assert.False(t, KeyEqual(pub1, nil))
}

func TestGenerateKeyPairWithReader_Deterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 64)
	priv1, _, err := GenerateKeyPairWithReader(KeyTypeEd25519, bytes.NewReader(seed))
	require.NoError(t, err)
	priv2, _, err := GenerateKeyPairWithReader(KeyTypeEd25519, bytes.NewReader(seed))
	require.NoError(t, err)
	assert.True(t, priv1.Equals(priv2))
}
