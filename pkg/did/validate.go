package did

import "fmt"

// ============================================================================
//                              文档校验
// ============================================================================

// Validate 校验文档结构
//
// 检查项：
//   - id 为合法 did:dht 标识符
//   - 验证方法 id 为 <did>#<fragment> 且唯一，JWK 可解析且 kid 等于指纹
//   - 每个用途引用都指向已有验证方法，同一用途内无重复
//   - 服务 id 为 <did>#<fragment> 且唯一，类型与端点非空
//
// 未被任何用途引用的验证方法是合法的。
func (d *Document) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if !IsIdentifier(d.ID) {
		return fmt.Errorf("%w: id %q", ErrInvalidDocument, d.ID)
	}

	vmIDs := make(map[string]struct{}, len(d.VerificationMethod))
	for i, vm := range d.VerificationMethod {
		if err := d.checkFragmentID(vm.ID); err != nil {
			return fmt.Errorf("%w: verificationMethod[%d]: %v", ErrInvalidDocument, i, err)
		}
		if _, dup := vmIDs[vm.ID]; dup {
			return fmt.Errorf("%w: verificationMethod[%d]: duplicate id %q", ErrInvalidDocument, i, vm.ID)
		}
		vmIDs[vm.ID] = struct{}{}

		if vm.Type == "" {
			return fmt.Errorf("%w: verificationMethod[%d]: empty type", ErrInvalidDocument, i)
		}
		if vm.Controller == "" {
			return fmt.Errorf("%w: verificationMethod[%d]: empty controller", ErrInvalidDocument, i)
		}
		if vm.PublicKeyJwk == nil {
			return fmt.Errorf("%w: verificationMethod[%d]: missing publicKeyJwk", ErrInvalidDocument, i)
		}
		pub, err := vm.PublicKeyJwk.PublicKey()
		if err != nil {
			return fmt.Errorf("%w: verificationMethod[%d]: %v", ErrInvalidDocument, i, err)
		}
		canonical, err := JWKFromPublicKey(pub)
		if err != nil {
			return fmt.Errorf("%w: verificationMethod[%d]: %v", ErrInvalidDocument, i, err)
		}
		if canonical.X != vm.PublicKeyJwk.X || canonical.Y != vm.PublicKeyJwk.Y {
			return fmt.Errorf("%w: verificationMethod[%d]: non-canonical key coordinates", ErrInvalidDocument, i)
		}
		kid, err := vm.PublicKeyJwk.Thumbprint()
		if err != nil {
			return fmt.Errorf("%w: verificationMethod[%d]: %v", ErrInvalidDocument, i, err)
		}
		if vm.PublicKeyJwk.Kid != kid {
			return fmt.Errorf("%w: verificationMethod[%d]: kid %q does not match thumbprint", ErrInvalidDocument, i, vm.PublicKeyJwk.Kid)
		}
	}

	for _, rel := range Relationships {
		seen := make(map[string]struct{})
		for _, ref := range d.Purpose(rel) {
			if _, ok := vmIDs[ref]; !ok {
				return fmt.Errorf("%w: %s references unknown verification method %q", ErrInvalidDocument, rel, ref)
			}
			if _, dup := seen[ref]; dup {
				return fmt.Errorf("%w: %s references %q twice", ErrInvalidDocument, rel, ref)
			}
			seen[ref] = struct{}{}
		}
	}

	svcIDs := make(map[string]struct{}, len(d.Service))
	for i, s := range d.Service {
		if err := d.checkFragmentID(s.ID); err != nil {
			return fmt.Errorf("%w: service[%d]: %v", ErrInvalidDocument, i, err)
		}
		if _, dup := svcIDs[s.ID]; dup {
			return fmt.Errorf("%w: service[%d]: duplicate id %q", ErrInvalidDocument, i, s.ID)
		}
		svcIDs[s.ID] = struct{}{}

		if s.Type == "" {
			return fmt.Errorf("%w: service[%d]: empty type", ErrInvalidDocument, i)
		}
		if len(s.ServiceEndpoint) == 0 {
			return fmt.Errorf("%w: service[%d]: no endpoints", ErrInvalidDocument, i)
		}
		for _, ep := range s.ServiceEndpoint {
			if ep == "" {
				return fmt.Errorf("%w: service[%d]: empty endpoint", ErrInvalidDocument, i)
			}
		}
	}

	return nil
}

// checkFragmentID 要求 id 形如 <d.ID>#<非空片段>
func (d *Document) checkFragmentID(id string) error {
	prefix, fragment := SplitID(id)
	if prefix != d.ID || fragment == "" {
		return fmt.Errorf("id %q is not %s#<fragment>", id, d.ID)
	}
	return nil
}
