package record

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

func genKey(t *testing.T, kt crypto.KeyType) crypto.PrivateKey {
	t.Helper()
	priv, _, err := crypto.GenerateKeyPair(kt)
	require.NoError(t, err)
	return priv
}

func TestSignablePayload(t *testing.T) {
	assert.Equal(t, []byte("3:seqi1e1:v5:hello"), SignablePayload(1, []byte("hello")))
	assert.Equal(t, []byte("3:seqi0e1:v0:"), SignablePayload(0, nil))
	assert.Equal(t, []byte("3:seqi18446744073709551615e1:v1:x"), SignablePayload(^uint64(0), []byte("x")))
}

func TestStorageKey(t *testing.T) {
	priv := genKey(t, crypto.KeyTypeEd25519)
	key, err := StorageKey(priv.GetPublic())
	require.NoError(t, err)
	assert.Len(t, key, 20)

	id, err := did.Identifier(priv.GetPublic())
	require.NoError(t, err)
	fromDID, err := StorageKeyForDID(id)
	require.NoError(t, err)
	assert.Equal(t, key, fromDID)

	other := genKey(t, crypto.KeyTypeEd25519)
	otherKey, err := StorageKey(other.GetPublic())
	require.NoError(t, err)
	assert.NotEqual(t, key, otherKey)

	_, err = StorageKey(nil)
	assert.ErrorIs(t, err, crypto.ErrNilPublicKey)
	_, err = StorageKeyForDID("did:web:example.com")
	assert.Error(t, err)
}

func TestStorageKey_KnownVector(t *testing.T) {
	// SHA-1 of 32 zero bytes
	raw := make([]byte, 32)
	assert.Equal(t, "de8a847bff8c343d69b853a215e6ee775ef2ef96", hex.EncodeToString(storageKeyFromRaw(raw)))
}

func TestPutRequest_RoundTrip(t *testing.T) {
	for _, kt := range []crypto.KeyType{crypto.KeyTypeEd25519, crypto.KeyTypeSecp256k1} {
		t.Run(kt.String(), func(t *testing.T) {
			priv := genKey(t, kt)
			req, err := BuildPutRequest([]byte("packet bytes"), priv, 42)
			require.NoError(t, err)
			require.NoError(t, req.Verify())

			data, err := req.Marshal()
			require.NoError(t, err)
			assert.Equal(t, EnvelopeVersion, data[0])
			assert.Equal(t, byte(kt), data[1])

			got, err := UnmarshalPutRequest(data)
			require.NoError(t, err)
			assert.True(t, crypto.KeyEqual(req.PublicKey, got.PublicKey))
			assert.Equal(t, req.Seq, got.Seq)
			assert.Equal(t, req.Signature, got.Signature)
			assert.Equal(t, req.Payload, got.Payload)
			require.NoError(t, got.Verify())
		})
	}
}

func TestPutRequest_BitFlips(t *testing.T) {
	for _, kt := range []crypto.KeyType{crypto.KeyTypeEd25519, crypto.KeyTypeSecp256k1} {
		t.Run(kt.String(), func(t *testing.T) {
			priv := genKey(t, kt)
			req, err := BuildPutRequest([]byte("payload"), priv, 7)
			require.NoError(t, err)

			for i := range req.Payload {
				for bit := 0; bit < 8; bit++ {
					mutated := *req
					mutated.Payload = bytes.Clone(req.Payload)
					mutated.Payload[i] ^= 1 << bit
					assert.ErrorIs(t, mutated.Verify(), ErrSignatureInvalid, "payload byte %d bit %d", i, bit)
				}
			}

			for bit := 0; bit < 64; bit++ {
				mutated := *req
				mutated.Seq ^= 1 << bit
				assert.ErrorIs(t, mutated.Verify(), ErrSignatureInvalid, "seq bit %d", bit)
			}

			for i := range req.Signature {
				mutated := *req
				mutated.Signature = bytes.Clone(req.Signature)
				mutated.Signature[i] ^= 0x01
				assert.ErrorIs(t, mutated.Verify(), ErrSignatureInvalid, "signature byte %d", i)
			}
		})
	}
}

func TestUnmarshalPutRequest_Malformed(t *testing.T) {
	priv := genKey(t, crypto.KeyTypeEd25519)
	req, err := BuildPutRequest([]byte("payload"), priv, 1)
	require.NoError(t, err)
	data, err := req.Marshal()
	require.NoError(t, err)

	// 每个截断位置都必须被拒绝
	for n := 0; n < len(data); n++ {
		_, err := UnmarshalPutRequest(data[:n])
		assert.ErrorIs(t, err, ErrMalformedEnvelope, "truncated to %d", n)
	}

	_, err = UnmarshalPutRequest(append(bytes.Clone(data), 0x00))
	assert.ErrorIs(t, err, ErrMalformedEnvelope, "trailing byte")

	badVersion := bytes.Clone(data)
	badVersion[0] = 2
	_, err = UnmarshalPutRequest(badVersion)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)

	badType := bytes.Clone(data)
	badType[1] = 9
	_, err = UnmarshalPutRequest(badType)
	assert.ErrorIs(t, err, ErrMalformedEnvelope)
}

func TestBuildPutRequest_Errors(t *testing.T) {
	_, err := BuildPutRequest([]byte("x"), nil, 1)
	assert.ErrorIs(t, err, ErrNilKey)

	priv := genKey(t, crypto.KeyTypeEd25519)
	_, err = BuildPutRequest(make([]byte, 1<<16), priv, 1)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestOpen(t *testing.T) {
	owner := genKey(t, crypto.KeyTypeEd25519)
	ownerID, err := did.Identifier(owner.GetPublic())
	require.NoError(t, err)

	req, err := BuildPutRequest([]byte("doc"), owner, 3)
	require.NoError(t, err)
	data, err := req.Marshal()
	require.NoError(t, err)

	got, err := Open(ownerID, data)
	require.NoError(t, err)
	assert.Equal(t, []byte("doc"), got.Payload)
	assert.Equal(t, uint64(3), got.Seq)

	t.Run("identity mismatch", func(t *testing.T) {
		other := genKey(t, crypto.KeyTypeEd25519)
		otherID, err := did.Identifier(other.GetPublic())
		require.NoError(t, err)

		_, err = Open(otherID, data)
		assert.ErrorIs(t, err, ErrIdentityMismatch)
		assert.True(t, IsAuthFailure(err))
	})

	t.Run("bad signature", func(t *testing.T) {
		tampered := bytes.Clone(data)
		tampered[len(tampered)-1] ^= 0xff
		_, err := Open(ownerID, tampered)
		assert.ErrorIs(t, err, ErrSignatureInvalid)
	})

	t.Run("invalid id", func(t *testing.T) {
		_, err := Open("did:dht:not-valid", data)
		assert.Error(t, err)
	})
}
