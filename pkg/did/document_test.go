package did

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

func TestEndpoints_JSON(t *testing.T) {
	one, err := json.Marshal(Endpoints{"https://example.com/dwn"})
	require.NoError(t, err)
	assert.JSONEq(t, `"https://example.com/dwn"`, string(one))

	two, err := json.Marshal(Endpoints{"https://a", "https://b"})
	require.NoError(t, err)
	assert.JSONEq(t, `["https://a","https://b"]`, string(two))

	var e Endpoints
	require.NoError(t, json.Unmarshal([]byte(`"https://a"`), &e))
	assert.Equal(t, Endpoints{"https://a"}, e)
	require.NoError(t, json.Unmarshal([]byte(`["https://a","https://b"]`), &e))
	assert.Equal(t, Endpoints{"https://a", "https://b"}, e)
	assert.Error(t, json.Unmarshal([]byte(`42`), &e))
}

func TestDocument_Clone(t *testing.T) {
	doc, _, err := Create(CreateOptions{
		Services: []Service{{ID: "dwn", Type: "DecentralizedWebNode", ServiceEndpoint: Endpoints{"https://example.com/dwn"}}},
	})
	require.NoError(t, err)

	c := doc.Clone()
	assert.Equal(t, doc, c)

	c.Authentication[0] = "changed"
	c.VerificationMethod[0].PublicKeyJwk.X = "changed"
	c.Service[0].ServiceEndpoint[0] = "changed"

	assert.NotEqual(t, "changed", doc.Authentication[0])
	assert.NotEqual(t, "changed", doc.VerificationMethod[0].PublicKeyJwk.X)
	assert.NotEqual(t, "changed", doc.Service[0].ServiceEndpoint[0])
}

func TestDocument_JSONRoundTrip(t *testing.T) {
	doc, _, err := Create(CreateOptions{})
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var back Document
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, doc, &back)
}

func TestDocument_PurposeAccessors(t *testing.T) {
	var d Document
	for _, rel := range Relationships {
		d.AddPurpose(rel, "did:dht:x#"+string(rel))
		assert.Equal(t, []string{"did:dht:x#" + string(rel)}, d.Purpose(rel))
	}
	assert.Nil(t, d.Purpose(Relationship("bogus")))
	assert.False(t, Relationship("bogus").Valid())
}

func TestDocument_IdentityKey(t *testing.T) {
	priv, pub, _ := crypto.GenerateKeyPair(crypto.KeyTypeSecp256k1)
	doc, _, err := Create(CreateOptions{KeySet: &KeySet{IdentityKey: &KeyPair{PrivateKey: priv}}})
	require.NoError(t, err)

	got, err := doc.IdentityKey()
	require.NoError(t, err)
	assert.True(t, pub.Equals(got))
}
