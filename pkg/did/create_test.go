package did

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

func TestCreate_Defaults(t *testing.T) {
	doc, ks, err := Create(CreateOptions{})
	require.NoError(t, err)
	require.NotNil(t, ks.IdentityKey)
	assert.Equal(t, crypto.KeyTypeEd25519, ks.IdentityKey.PrivateKey.Type())

	require.Len(t, doc.VerificationMethod, 1)
	vm := doc.VerificationMethod[0]
	assert.Equal(t, doc.ID+"#0", vm.ID)
	assert.Equal(t, doc.ID, vm.Controller)
	assert.Equal(t, VerificationMethodTypeJWK, vm.Type)

	assert.Equal(t, []string{vm.ID}, doc.Authentication)
	assert.Equal(t, []string{vm.ID}, doc.AssertionMethod)
	assert.Equal(t, []string{vm.ID}, doc.CapabilityInvocation)
	assert.Equal(t, []string{vm.ID}, doc.CapabilityDelegation)
	assert.Nil(t, doc.KeyAgreement)
	assert.Nil(t, doc.Service)
}

func TestCreate_WithKeysAndServices(t *testing.T) {
	idPriv, idPub, _ := crypto.GenerateKeyPair(crypto.KeyTypeSecp256k1)
	extraPriv, extraPub, _ := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)

	doc, ks, err := Create(CreateOptions{
		KeySet: &KeySet{
			IdentityKey: &KeyPair{PrivateKey: idPriv, PublicKey: idPub},
			VerificationMethodKeys: []VerificationMethodKey{{
				PrivateKey:    extraPriv,
				Relationships: []Relationship{KeyAgreement, Authentication},
			}},
		},
		Services: []Service{
			{ID: "dwn", Type: "DecentralizedWebNode", ServiceEndpoint: Endpoints{"https://example.com/dwn"}},
		},
	})
	require.NoError(t, err)

	wantID, _ := Identifier(idPub)
	assert.Equal(t, wantID, doc.ID)
	require.Len(t, doc.VerificationMethod, 2)

	extraJWK, _ := JWKFromPublicKey(extraPub)
	extraID := doc.ID + "#" + extraJWK.Kid
	assert.Equal(t, extraID, doc.VerificationMethod[1].ID)
	assert.Equal(t, []string{doc.ID + "#0", extraID}, doc.Authentication)
	assert.Equal(t, []string{extraID}, doc.KeyAgreement)

	require.Len(t, doc.Service, 1)
	assert.Equal(t, doc.ID+"#dwn", doc.Service[0].ID)

	require.Len(t, ks.VerificationMethodKeys, 1)
	assert.True(t, extraPub.Equals(ks.VerificationMethodKeys[0].PublicKey))
}

func TestCreate_Errors(t *testing.T) {
	_, _, err := Create(CreateOptions{KeySet: &KeySet{
		VerificationMethodKeys: []VerificationMethodKey{{}},
	}})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, pub, _ := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
	_, _, err = Create(CreateOptions{KeySet: &KeySet{
		VerificationMethodKeys: []VerificationMethodKey{{PublicKey: pub, Relationships: []Relationship{"bogus"}}},
	}})
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, _, err = Create(CreateOptions{Services: []Service{{ID: "s", Type: "T"}}})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}
