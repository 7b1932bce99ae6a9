package dnspacket

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"

	"github.com/dep2p/go-diddht/pkg/did"
	"github.com/dep2p/go-diddht/pkg/lib/crypto"
)

// ============================================================================
//                              解码
// ============================================================================

// Decode 将二进制 DNS 报文解码为文档
//
// 先解析根记录获得键/服务索引和用途，再按索引顺序还原验证方法与服务。
// 所有结构性错误都是 *RecordError，匹配 ErrMalformedRecord。
func (c *Codec) Decode(id string, data []byte) (*did.Document, error) {
	if _, err := did.ParseIdentifier(id); err != nil {
		return nil, err
	}
	org := origin(id)

	if len(data) > c.maxPacketSize {
		return nil, malformed("", "", -1, fmt.Errorf("%w: %d > %d bytes", ErrPacketTooLarge, len(data), c.maxPacketSize))
	}

	msg := new(dns.Msg)
	if err := msg.Unpack(data); err != nil {
		return nil, malformed("", "", -1, err)
	}

	records, err := collectTXT(msg)
	if err != nil {
		return nil, err
	}

	rootValue, ok := records[org]
	if !ok {
		return nil, malformed(org, "", -1, errMissingRecord)
	}
	root, err := parseFields(org, rootValue)
	if err != nil {
		return nil, err
	}

	version, err := requireField(root, org, fVersion, -1)
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, malformed(org, fVersion, -1, fmt.Errorf("%w: %q", errUnknownVersion, version))
	}

	keyIdx, err := rootIndices(root, org, fKeys)
	if err != nil {
		return nil, err
	}
	svcIdx, err := rootIndices(root, org, fServices)
	if err != nil {
		return nil, err
	}

	doc := &did.Document{ID: id}

	vmByIndex := make(map[int]string, len(keyIdx))
	for _, i := range keyIdx {
		name := keyName(org, i)
		value, ok := records[name]
		if !ok {
			return nil, malformed(name, "", i, errMissingRecord)
		}
		vm, err := decodeVerificationMethod(id, name, i, value)
		if err != nil {
			return nil, err
		}
		doc.VerificationMethod = append(doc.VerificationMethod, *vm)
		vmByIndex[i] = vm.ID
	}

	for _, i := range svcIdx {
		name := serviceName(org, i)
		value, ok := records[name]
		if !ok {
			return nil, malformed(name, "", i, errMissingRecord)
		}
		svc, err := decodeService(id, name, i, value)
		if err != nil {
			return nil, err
		}
		doc.Service = append(doc.Service, *svc)
	}

	for _, pf := range purposeFields {
		idx, err := rootIndices(root, org, pf.key)
		if err != nil {
			return nil, err
		}
		for _, i := range idx {
			ref, ok := vmByIndex[i]
			if !ok {
				return nil, malformed(org, pf.key, i, errDanglingIndex)
			}
			doc.AddPurpose(pf.rel, ref)
		}
	}

	if err := doc.Validate(); err != nil {
		return nil, malformed(org, "", -1, err)
	}
	return doc, nil
}

// collectTXT 收集 TXT 记录并拼接片段，同名记录出现两次视为错误
//
// 记录名按 DNS 规则不区分大小写，统一转为小写。
func collectTXT(msg *dns.Msg) (map[string]string, error) {
	records := make(map[string]string, len(msg.Answer))
	for _, rr := range msg.Answer {
		txt, ok := rr.(*dns.TXT)
		if !ok {
			continue
		}
		name := strings.ToLower(txt.Hdr.Name)
		if _, dup := records[name]; dup {
			return nil, malformed(name, "", -1, errDuplicateRecord)
		}
		value, err := fromTXT(txt.Txt)
		if err != nil {
			return nil, malformed(name, "", -1, err)
		}
		records[name] = value
	}
	return records, nil
}

// rootIndices 读取根记录中的必需索引列表
func rootIndices(root map[string]string, org, key string) ([]int, error) {
	v, err := requireField(root, org, key, -1)
	if err != nil {
		return nil, err
	}
	return parseIndices(org, key, v)
}

// decodeVerificationMethod 解析 _k<i> 记录
func decodeVerificationMethod(docID, name string, index int, value string) (*did.VerificationMethod, error) {
	fields, err := parseFields(name, value)
	if err != nil {
		return nil, err
	}

	fragment, err := requireField(fields, name, fID, index)
	if err != nil {
		return nil, err
	}
	if fragment == "" {
		return nil, malformed(name, fID, index, errMissingField)
	}
	alg, err := requireField(fields, name, fAlg, index)
	if err != nil {
		return nil, err
	}
	encoded, err := requireField(fields, name, fKey, index)
	if err != nil {
		return nil, err
	}

	raw, err := b64.Strict().DecodeString(encoded)
	if err != nil {
		return nil, malformed(name, fKey, index, fmt.Errorf("%w: %v", errBadKeyMaterial, err))
	}

	var keyType crypto.KeyType
	switch alg {
	case algEd25519:
		keyType = crypto.KeyTypeEd25519
	case algSecp256k1:
		keyType = crypto.KeyTypeSecp256k1
	default:
		return nil, malformed(name, fAlg, index, fmt.Errorf("%w: %q", errUnknownAlg, alg))
	}
	pub, err := crypto.UnmarshalPublicKey(keyType, raw)
	if err != nil {
		return nil, malformed(name, fKey, index, fmt.Errorf("%w: %v", errBadKeyMaterial, err))
	}
	jwk, err := did.JWKFromPublicKey(pub)
	if err != nil {
		return nil, malformed(name, fKey, index, fmt.Errorf("%w: %v", errBadKeyMaterial, err))
	}

	vm := &did.VerificationMethod{
		ID:           docID + "#" + fragment,
		Type:         did.VerificationMethodTypeJWK,
		Controller:   docID,
		PublicKeyJwk: jwk,
	}
	if t, ok := fields[fType]; ok {
		vm.Type = t
	}
	if ctrl, ok := fields[fController]; ok {
		vm.Controller = ctrl
	}
	return vm, nil
}

// decodeService 解析 _s<i> 记录
func decodeService(docID, name string, index int, value string) (*did.Service, error) {
	fields, err := parseFields(name, value)
	if err != nil {
		return nil, err
	}

	fragment, err := requireField(fields, name, fID, index)
	if err != nil {
		return nil, err
	}
	if fragment == "" {
		return nil, malformed(name, fID, index, errMissingField)
	}
	typ, err := requireField(fields, name, fSvcType, index)
	if err != nil {
		return nil, err
	}
	endpoints, err := requireField(fields, name, fSvcEndpoint, index)
	if err != nil {
		return nil, err
	}

	return &did.Service{
		ID:              docID + "#" + fragment,
		Type:            typ,
		ServiceEndpoint: did.Endpoints(strings.Split(endpoints, string(listSep))),
	}, nil
}
