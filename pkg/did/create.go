package did

import (
	"fmt"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              文档创建
// ============================================================================

// IdentityFragment 身份密钥验证方法的片段
const IdentityFragment = "0"

// identityRelationships 身份密钥默认用途（不含 keyAgreement）
var identityRelationships = []Relationship{
	Authentication,
	AssertionMethod,
	CapabilityInvocation,
	CapabilityDelegation,
}

// CreateOptions 文档创建选项
type CreateOptions struct {
	// KeySet 为空或缺少身份密钥时自动生成 Ed25519 身份密钥
	KeySet *KeySet

	// Services 不含 '#' 的服务 id 会补全为 <did>#<id>
	Services []Service
}

// Create 由密钥集合创建文档
//
// 身份密钥成为验证方法 #0；附加密钥的片段为其 JWK 指纹。
// 返回的 KeySet 包含实际使用的全部密钥。
func Create(opts CreateOptions) (*Document, *KeySet, error) {
	ks := &KeySet{}
	if opts.KeySet != nil {
		if opts.KeySet.IdentityKey != nil {
			ik := *opts.KeySet.IdentityKey
			ks.IdentityKey = &ik
		}
		ks.VerificationMethodKeys = append(ks.VerificationMethodKeys, opts.KeySet.VerificationMethodKeys...)
	}

	if ks.IdentityKey == nil || ks.IdentityKey.PrivateKey == nil {
		priv, pub, err := crypto.GenerateKeyPair(crypto.KeyTypeEd25519)
		if err != nil {
			return nil, nil, fmt.Errorf("generate identity key: %w", err)
		}
		ks.IdentityKey = &KeyPair{PrivateKey: priv, PublicKey: pub}
	}
	if ks.IdentityKey.PublicKey == nil {
		ks.IdentityKey.PublicKey = ks.IdentityKey.PrivateKey.GetPublic()
	}

	id, err := Identifier(ks.IdentityKey.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	doc := &Document{ID: id}

	identityVM, err := newVerificationMethod(id, IdentityFragment, ks.IdentityKey.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	doc.VerificationMethod = append(doc.VerificationMethod, *identityVM)
	for _, rel := range identityRelationships {
		doc.AddPurpose(rel, identityVM.ID)
	}

	for i := range ks.VerificationMethodKeys {
		k := &ks.VerificationMethodKeys[i]
		if k.PublicKey == nil {
			if k.PrivateKey == nil {
				return nil, nil, fmt.Errorf("%w: verification method key %d has no key material", ErrInvalidDocument, i)
			}
			k.PublicKey = k.PrivateKey.GetPublic()
		}

		jwk, err := JWKFromPublicKey(k.PublicKey)
		if err != nil {
			return nil, nil, err
		}
		vm, err := newVerificationMethod(id, jwk.Kid, k.PublicKey)
		if err != nil {
			return nil, nil, err
		}
		doc.VerificationMethod = append(doc.VerificationMethod, *vm)

		for _, rel := range k.Relationships {
			if !rel.Valid() {
				return nil, nil, fmt.Errorf("%w: unknown relationship %q", ErrInvalidDocument, rel)
			}
			doc.AddPurpose(rel, vm.ID)
		}
	}

	for _, s := range opts.Services {
		s.ID = QualifyID(id, s.ID)
		s.ServiceEndpoint = Endpoints(cloneStrings(s.ServiceEndpoint))
		doc.Service = append(doc.Service, s)
	}

	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}
	return doc, ks, nil
}

// newVerificationMethod 构造控制者为文档自身的验证方法
func newVerificationMethod(did, fragment string, pub crypto.PublicKey) (*VerificationMethod, error) {
	jwk, err := JWKFromPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &VerificationMethod{
		ID:           QualifyID(did, fragment),
		Type:         VerificationMethodTypeJWK,
		Controller:   did,
		PublicKeyJwk: jwk,
	}, nil
}
