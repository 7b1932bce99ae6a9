package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecp256k1_Generate(t *testing.T) {
	priv, pub, err := GenerateSecp256k1Key(rand.Reader)
	require.NoError(t, err)

	privRaw, _ := priv.Raw()
	assert.Len(t, privRaw, Secp256k1PrivateKeySize)

	pubRaw, _ := pub.Raw()
	assert.Len(t, pubRaw, Secp256k1PublicKeySize)
	assert.Len(t, pub.(*Secp256k1PublicKey).Uncompressed(), Secp256k1UncompressedPublicKeySize)
}

func TestSecp256k1_SignVerify(t *testing.T) {
	priv, pub, _ := GenerateSecp256k1Key(rand.Reader)
	data := []byte("test message for secp256k1")

	sig, err := priv.Sign(data)
	require.NoError(t, err)
	assert.Len(t, sig, Secp256k1SignatureSize)

	ok, err := pub.Verify(data, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	// 确定性签名
	sig2, _ := priv.Sign(data)
	assert.Equal(t, sig, sig2)

	ok, _ = pub.Verify([]byte("wrong message"), sig)
	assert.False(t, ok)

	ok, _ = pub.Verify(data, sig[:63])
	assert.False(t, ok)

	zero := make([]byte, Secp256k1SignatureSize)
	ok, _ = pub.Verify(data, zero)
	assert.False(t, ok)
}

func TestSecp256k1_Coordinates(t *testing.T) {
	_, pub, _ := GenerateSecp256k1Key(rand.Reader)
	u := pub.(*Secp256k1PublicKey).Uncompressed()

	rebuilt, err := Secp256k1PublicKeyFromCoordinates(u[1:33], u[33:])
	require.NoError(t, err)
	assert.True(t, pub.Equals(rebuilt))

	_, err = Secp256k1PublicKeyFromCoordinates(u[1:20], u[33:])
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestSecp256k1_InvalidPrivateKey(t *testing.T) {
	_, err := UnmarshalSecp256k1PrivateKey(make([]byte, 32))
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = UnmarshalSecp256k1PublicKey(make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidPublicKey)
}
