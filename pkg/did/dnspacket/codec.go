package dnspacket

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              常量
// ============================================================================

const (
	// DefaultMaxPacketSize 默认报文大小上限（BEP44 value 上限）
	DefaultMaxPacketSize = 1000

	// DefaultTTL 记录 TTL（秒），解码时忽略
	DefaultTTL uint32 = 7200

	// MaxIndex 每个列表的条目上限，索引取值 [0, MaxIndex)
	MaxIndex = 255

	// Version 根记录版本
	Version = "0"

	// minPacketSize 报文头 12 字节加根记录的最小余量
	minPacketSize = 64
)

// 记录名与字段名
const (
	rootLabel = "_did"

	fieldSep = ';'
	listSep  = ','

	fVersion  = "v"
	fKeys     = "k"
	fServices = "s"

	fID         = "id"
	fAlg        = "t"
	fKey        = "k"
	fType       = "y"
	fController = "c"

	fSvcType     = "t"
	fSvcEndpoint = "se"
)

// purposeFields 根记录中五类用途的字段名，顺序固定
var purposeFields = []struct {
	rel did.Relationship
	key string
}{
	{did.Authentication, "auth"},
	{did.AssertionMethod, "asm"},
	{did.KeyAgreement, "agm"},
	{did.CapabilityInvocation, "inv"},
	{did.CapabilityDelegation, "del"},
}

// 密钥算法索引
const (
	algEd25519   = "0"
	algSecp256k1 = "1"
)

var b64 = base64.RawURLEncoding

// ============================================================================
//                              Codec
// ============================================================================

// Codec DNS 报文编解码器
//
// 零值不可用，使用 NewCodec 创建。Codec 无可变状态，可并发使用。
type Codec struct {
	maxPacketSize int
	ttl           uint32
}

// Option 编解码器选项
type Option func(*Codec)

// WithMaxPacketSize 设置报文大小上限
func WithMaxPacketSize(n int) Option {
	return func(c *Codec) {
		c.maxPacketSize = n
	}
}

// WithTTL 设置编码记录的 TTL
func WithTTL(ttl uint32) Option {
	return func(c *Codec) {
		c.ttl = ttl
	}
}

// NewCodec 创建编解码器
func NewCodec(opts ...Option) (*Codec, error) {
	c := &Codec{
		maxPacketSize: DefaultMaxPacketSize,
		ttl:           DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxPacketSize < minPacketSize || c.maxPacketSize > dns.MaxMsgSize {
		return nil, fmt.Errorf("dnspacket: max packet size %d out of range [%d, %d]", c.maxPacketSize, minPacketSize, dns.MaxMsgSize)
	}
	return c, nil
}

// MaxPacketSize 返回报文大小上限
func (c *Codec) MaxPacketSize() int {
	return c.maxPacketSize
}

// DefaultCodec 默认编解码器
var DefaultCodec = &Codec{maxPacketSize: DefaultMaxPacketSize, ttl: DefaultTTL}

// Encode 使用 DefaultCodec 编码
func Encode(doc *did.Document) ([]byte, error) {
	return DefaultCodec.Encode(doc)
}

// Decode 使用 DefaultCodec 解码
func Decode(id string, data []byte) (*did.Document, error) {
	return DefaultCodec.Decode(id, data)
}

// ============================================================================
//                              记录命名
// ============================================================================

// origin 返回文档的记录后缀 _did.<标识符后缀>.
func origin(id string) string {
	return rootLabel + "." + strings.TrimPrefix(id, did.MethodPrefix) + "."
}

func keyName(origin string, i int) string {
	return fmt.Sprintf("_k%d.%s", i, origin)
}

func serviceName(origin string, i int) string {
	return fmt.Sprintf("_s%d.%s", i, origin)
}

// ============================================================================
//                              编码
// ============================================================================

// Encode 将文档编码为二进制 DNS 报文
//
// 报文只含 answer 段 TXT 记录：每个验证方法一条 _k<i>，每个服务一条 _s<i>，
// 以及一条列出索引和用途的根记录。超过上限时返回错误，不会截断。
func (c *Codec) Encode(doc *did.Document) ([]byte, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	org := origin(doc.ID)
	if len(doc.VerificationMethod) > MaxIndex {
		return nil, malformed(org, fKeys, -1, fmt.Errorf("%w: %d verification methods", ErrPacketTooLarge, len(doc.VerificationMethod)))
	}
	if len(doc.Service) > MaxIndex {
		return nil, malformed(org, fServices, -1, fmt.Errorf("%w: %d services", ErrPacketTooLarge, len(doc.Service)))
	}

	msg := new(dns.Msg)
	msg.Response = true
	msg.Authoritative = true
	msg.Compress = true

	vmIndex := make(map[string]int, len(doc.VerificationMethod))
	keyIdx := make([]int, len(doc.VerificationMethod))
	for i, vm := range doc.VerificationMethod {
		value, err := encodeVerificationMethod(doc.ID, vm)
		if err != nil {
			return nil, fmt.Errorf("verificationMethod[%d]: %w", i, err)
		}
		msg.Answer = append(msg.Answer, c.txt(keyName(org, i), value))
		vmIndex[vm.ID] = i
		keyIdx[i] = i
	}

	svcIdx := make([]int, len(doc.Service))
	for i, s := range doc.Service {
		value, err := encodeService(s)
		if err != nil {
			return nil, fmt.Errorf("service[%d]: %w", i, err)
		}
		msg.Answer = append(msg.Answer, c.txt(serviceName(org, i), value))
		svcIdx[i] = i
	}

	root := []field{
		{fVersion, Version},
		{fKeys, formatIndices(keyIdx)},
		{fServices, formatIndices(svcIdx)},
	}
	for _, pf := range purposeFields {
		refs := doc.Purpose(pf.rel)
		idx := make([]int, len(refs))
		for i, ref := range refs {
			idx[i] = vmIndex[ref]
		}
		root = append(root, field{pf.key, formatIndices(idx)})
	}
	msg.Answer = append([]dns.RR{c.txt(org, joinFields(root))}, msg.Answer...)

	data, err := msg.Pack()
	if err != nil {
		return nil, fmt.Errorf("dnspacket: pack: %w", err)
	}
	if len(data) > c.maxPacketSize {
		return nil, malformed(org, "", -1, fmt.Errorf("%w: %d > %d bytes", ErrPacketTooLarge, len(data), c.maxPacketSize))
	}
	return data, nil
}

// txt 构造 TXT 记录
func (c *Codec) txt(name, value string) *dns.TXT {
	return &dns.TXT{
		Hdr: dns.RR_Header{
			Name:   name,
			Rrtype: dns.TypeTXT,
			Class:  dns.ClassINET,
			Ttl:    c.ttl,
		},
		Txt: toTXT(value),
	}
}

// encodeVerificationMethod 编码 id=;t=;k=[;y=][;c=]
//
// 类型为默认值或控制者为文档自身时省略对应字段。
func encodeVerificationMethod(docID string, vm did.VerificationMethod) (string, error) {
	pub, err := vm.PublicKeyJwk.PublicKey()
	if err != nil {
		return "", err
	}
	raw, err := pub.Raw()
	if err != nil {
		return "", err
	}

	var alg string
	switch pub.Type() {
	case crypto.KeyTypeEd25519:
		alg = algEd25519
	case crypto.KeyTypeSecp256k1:
		alg = algSecp256k1
	default:
		return "", fmt.Errorf("%w: %s", did.ErrUnsupportedKey, pub.Type())
	}

	_, fragment := did.SplitID(vm.ID)
	fields := []field{
		{fID, fragment},
		{fAlg, alg},
		{fKey, b64.EncodeToString(raw)},
	}
	if vm.Type != did.VerificationMethodTypeJWK {
		fields = append(fields, field{fType, vm.Type})
	}
	if vm.Controller != docID {
		fields = append(fields, field{fController, vm.Controller})
	}
	if err := checkValues(fields); err != nil {
		return "", err
	}
	return joinFields(fields), nil
}

// encodeService 编码 id=;t=;se=
func encodeService(s did.Service) (string, error) {
	_, fragment := did.SplitID(s.ID)
	fields := []field{
		{fID, fragment},
		{fSvcType, s.Type},
	}
	if err := checkValues(fields); err != nil {
		return "", err
	}
	for _, ep := range s.ServiceEndpoint {
		if strings.ContainsRune(ep, fieldSep) || strings.ContainsRune(ep, listSep) {
			return "", fmt.Errorf("%w: endpoint %q", ErrInvalidValue, ep)
		}
	}
	fields = append(fields, field{fSvcEndpoint, strings.Join(s.ServiceEndpoint, string(listSep))})
	return joinFields(fields), nil
}

// checkValues 拒绝包含 ';' 的值
func checkValues(fields []field) error {
	for _, f := range fields {
		if strings.ContainsRune(f.value, fieldSep) {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, f.key, f.value)
		}
	}
	return nil
}
