package did

import (
	"encoding/json"
	"fmt"

	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              用途关系
// ============================================================================

// Relationship 验证方法用途
type Relationship string

const (
	Authentication       Relationship = "authentication"
	AssertionMethod      Relationship = "assertionMethod"
	KeyAgreement         Relationship = "keyAgreement"
	CapabilityInvocation Relationship = "capabilityInvocation"
	CapabilityDelegation Relationship = "capabilityDelegation"
)

// Relationships 全部五类用途，顺序即编码顺序
var Relationships = []Relationship{
	Authentication,
	AssertionMethod,
	KeyAgreement,
	CapabilityInvocation,
	CapabilityDelegation,
}

// Valid 报告是否为已知用途
func (r Relationship) Valid() bool {
	for _, known := range Relationships {
		if r == known {
			return true
		}
	}
	return false
}

// VerificationMethodTypeJWK 验证方法类型
const VerificationMethodTypeJWK = "JsonWebKey2020"

// ============================================================================
//                              文档模型
// ============================================================================

// Document did:dht 文档
type Document struct {
	ID                   string               `json:"id"`
	VerificationMethod   []VerificationMethod `json:"verificationMethod,omitempty"`
	Authentication       []string             `json:"authentication,omitempty"`
	AssertionMethod      []string             `json:"assertionMethod,omitempty"`
	KeyAgreement         []string             `json:"keyAgreement,omitempty"`
	CapabilityInvocation []string             `json:"capabilityInvocation,omitempty"`
	CapabilityDelegation []string             `json:"capabilityDelegation,omitempty"`
	Service              []Service            `json:"service,omitempty"`
}

// VerificationMethod 验证方法
type VerificationMethod struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	Controller   string `json:"controller"`
	PublicKeyJwk *JWK   `json:"publicKeyJwk"`
}

// Service 服务端点
type Service struct {
	ID              string    `json:"id"`
	Type            string    `json:"type"`
	ServiceEndpoint Endpoints `json:"serviceEndpoint"`
}

// Endpoints 服务端点列表
//
// JSON 中单个端点编码为字符串，多个编码为数组，两种形式都可解析。
type Endpoints []string

// MarshalJSON 实现 json.Marshaler
func (e Endpoints) MarshalJSON() ([]byte, error) {
	if len(e) == 1 {
		return json.Marshal(e[0])
	}
	return json.Marshal([]string(e))
}

// UnmarshalJSON 实现 json.Unmarshaler
func (e *Endpoints) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*e = Endpoints{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("serviceEndpoint: %w", err)
	}
	*e = Endpoints(many)
	return nil
}

// Purpose 返回指定用途的引用列表
func (d *Document) Purpose(rel Relationship) []string {
	switch rel {
	case Authentication:
		return d.Authentication
	case AssertionMethod:
		return d.AssertionMethod
	case KeyAgreement:
		return d.KeyAgreement
	case CapabilityInvocation:
		return d.CapabilityInvocation
	case CapabilityDelegation:
		return d.CapabilityDelegation
	default:
		return nil
	}
}

// SetPurpose 设置指定用途的引用列表
func (d *Document) SetPurpose(rel Relationship, refs []string) {
	switch rel {
	case Authentication:
		d.Authentication = refs
	case AssertionMethod:
		d.AssertionMethod = refs
	case KeyAgreement:
		d.KeyAgreement = refs
	case CapabilityInvocation:
		d.CapabilityInvocation = refs
	case CapabilityDelegation:
		d.CapabilityDelegation = refs
	}
}

// AddPurpose 追加用途引用
func (d *Document) AddPurpose(rel Relationship, ref string) {
	d.SetPurpose(rel, append(d.Purpose(rel), ref))
}

// VerificationMethodByID 按完整 id 查找验证方法
func (d *Document) VerificationMethodByID(id string) (*VerificationMethod, bool) {
	for i := range d.VerificationMethod {
		if d.VerificationMethod[i].ID == id {
			return &d.VerificationMethod[i], true
		}
	}
	return nil, false
}

// IdentityKey 返回标识符对应的身份公钥
func (d *Document) IdentityKey() (crypto.PublicKey, error) {
	return ParseIdentifier(d.ID)
}

// Clone 深拷贝文档
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	c := &Document{
		ID:                   d.ID,
		Authentication:       cloneStrings(d.Authentication),
		AssertionMethod:      cloneStrings(d.AssertionMethod),
		KeyAgreement:         cloneStrings(d.KeyAgreement),
		CapabilityInvocation: cloneStrings(d.CapabilityInvocation),
		CapabilityDelegation: cloneStrings(d.CapabilityDelegation),
	}
	if d.VerificationMethod != nil {
		c.VerificationMethod = make([]VerificationMethod, len(d.VerificationMethod))
		for i, vm := range d.VerificationMethod {
			vm.PublicKeyJwk = vm.PublicKeyJwk.Clone()
			c.VerificationMethod[i] = vm
		}
	}
	if d.Service != nil {
		c.Service = make([]Service, len(d.Service))
		for i, s := range d.Service {
			s.ServiceEndpoint = Endpoints(cloneStrings(s.ServiceEndpoint))
			c.Service[i] = s
		}
	}
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// ============================================================================
//                              密钥集合
// ============================================================================

// KeyPair 非对称密钥对
type KeyPair struct {
	PrivateKey crypto.PrivateKey
	PublicKey  crypto.PublicKey
}

// VerificationMethodKey 附加验证方法密钥及其用途
type VerificationMethodKey struct {
	PrivateKey    crypto.PrivateKey
	PublicKey     crypto.PublicKey
	Relationships []Relationship
}

// KeySet 创建文档时的密钥输入，也是 Create 的密钥输出
//
// 不持久化；私钥由调用方自行保管。
type KeySet struct {
	IdentityKey            *KeyPair
	VerificationMethodKeys []VerificationMethodKey
}
