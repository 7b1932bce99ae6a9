package crypto

import (
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEd25519_SignVerify(t *testing.T) {
	priv, pub, err := GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	data := []byte("did:dht packet")
	sig, err := priv.Sign(data)
	require.NoError(t, err)
	assert.Len(t, sig, Ed25519SignatureSize)

	ok, err := pub.Verify(data, sig)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = pub.Verify([]byte("other"), sig)
	assert.False(t, ok)

	ok, err = pub.Verify(data, sig[:10])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEd25519_PrivateKeyFormats(t *testing.T) {
	priv, _, err := GenerateEd25519Key(rand.Reader)
	require.NoError(t, err)

	seed, err := priv.Raw()
	require.NoError(t, err)
	assert.Len(t, seed, Ed25519SeedSize)

	full := append(append([]byte{}, seed...), priv.(*Ed25519PrivateKey).k[Ed25519SeedSize:]...)
	fromFull, err := UnmarshalEd25519PrivateKey(full)
	require.NoError(t, err)
	assert.True(t, priv.Equals(fromFull))

	full[len(full)-1] ^= 0xff
	_, err = UnmarshalEd25519PrivateKey(full)
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)

	_, err = UnmarshalEd25519PrivateKey(make([]byte, 5))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}

func TestEd25519_PublicKeySize(t *testing.T) {
	_, err := UnmarshalEd25519PublicKey(make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidKeySize)
}
