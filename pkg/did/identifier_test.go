package did

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

func TestIdentifier_RoundTrip(t *testing.T) {
	for _, kt := range crypto.KeyTypes {
		t.Run(kt.String(), func(t *testing.T) {
			_, pub, err := crypto.GenerateKeyPair(kt)
			require.NoError(t, err)

			id, err := Identifier(pub)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(id, MethodPrefix))

			parsed, err := ParseIdentifier(id)
			require.NoError(t, err)
			assert.Equal(t, kt, parsed.Type())
			assert.True(t, pub.Equals(parsed))
		})
	}
}

func TestIdentifier_Ed25519Length(t *testing.T) {
	_, pub, _ := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
	id, err := Identifier(pub)
	require.NoError(t, err)
	// 32 字节 z-base-32 无填充为 52 字符
	assert.Len(t, strings.TrimPrefix(id, MethodPrefix), 52)
}

func TestParseIdentifier_Invalid(t *testing.T) {
	cases := []string{
		"",
		"did:dht:",
		"did:web:example.com",
		"did:dht:!!!!",
		"did:dht:yyyy",
	}
	_, pub, _ := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
	id, _ := Identifier(pub)
	cases = append(cases, id+"#0")

	for _, c := range cases {
		_, err := ParseIdentifier(c)
		assert.ErrorIs(t, err, ErrInvalidIdentifier, c)
		assert.False(t, IsIdentifier(c))
	}
}

func TestQualifyAndSplitID(t *testing.T) {
	assert.Equal(t, "did:dht:abc#0", QualifyID("did:dht:abc", "0"))
	assert.Equal(t, "did:dht:x#dwn", QualifyID("did:dht:abc", "did:dht:x#dwn"))

	d, f := SplitID("did:dht:abc#key-1")
	assert.Equal(t, "did:dht:abc", d)
	assert.Equal(t, "key-1", f)

	d, f = SplitID("did:dht:abc")
	assert.Equal(t, "did:dht:abc", d)
	assert.Empty(t, f)
}
