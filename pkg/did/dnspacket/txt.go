package dnspacket

import (
	"errors"
	"strconv"
	"strings"
)

// ============================================================================
//                              TXT 字符串
// ============================================================================

// maxStringLen 单个 TXT character-string 的最大字节数
const maxStringLen = 255

// toTXT 将值切分为不超过 255 字节的片段并转义为 miekg/dns 的表示形式
func toTXT(value string) []string {
	if value == "" {
		return []string{""}
	}
	out := make([]string, 0, len(value)/maxStringLen+1)
	for len(value) > 0 {
		n := min(maxStringLen, len(value))
		out = append(out, escapeTXT(value[:n]))
		value = value[n:]
	}
	return out
}

// fromTXT 反转义并拼接 TXT 片段
func fromTXT(parts []string) (string, error) {
	var b strings.Builder
	for _, p := range parts {
		s, err := unescapeTXT(p)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// escapeTXT 将不可打印字节、引号和反斜杠写为 \DDD
func escapeTXT(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' || c < ' ' || c > '~' {
			b.WriteByte('\\')
			b.WriteByte('0' + c/100)
			b.WriteByte('0' + c/10%10)
			b.WriteByte('0' + c%10)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

var errBadEscape = errors.New("bad escape sequence")

// unescapeTXT 解析 \DDD 与 \X 转义
func unescapeTXT(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", errBadEscape
		}
		if isDigit(s[i]) {
			if i+2 >= len(s) || !isDigit(s[i+1]) || !isDigit(s[i+2]) {
				return "", errBadEscape
			}
			v := int(s[i]-'0')*100 + int(s[i+1]-'0')*10 + int(s[i+2]-'0')
			if v > 255 {
				return "", errBadEscape
			}
			b.WriteByte(byte(v))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isCanonicalDecimal(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// ============================================================================
//                              字段编码
// ============================================================================

// field 记录中的一个 key=value
type field struct {
	key, value string
}

// joinFields 按给定顺序拼接为 k=v;k=v
func joinFields(fields []field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(fieldSep)
		}
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(f.value)
	}
	return b.String()
}

// parseFields 解析 k=v;k=v，拒绝重复键
func parseFields(name, s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, part := range strings.Split(s, string(fieldSep)) {
		k, v, ok := strings.Cut(part, "=")
		if !ok || k == "" {
			return nil, malformed(name, part, -1, errBadField)
		}
		if _, dup := out[k]; dup {
			return nil, malformed(name, k, -1, errDuplicateField)
		}
		out[k] = v
	}
	return out, nil
}

// requireField 取必需字段
func requireField(fields map[string]string, name, key string, index int) (string, error) {
	v, ok := fields[key]
	if !ok {
		return "", malformed(name, key, index, errMissingField)
	}
	return v, nil
}

// formatIndices 编码索引列表 0,1,2
func formatIndices(idx []int) string {
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, string(listSep))
}

// parseIndices 解析索引列表，空串表示空列表
func parseIndices(name, key, s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, string(listSep))
	out := make([]int, 0, len(parts))
	seen := make(map[int]struct{}, len(parts))
	for _, p := range parts {
		// 只接受规范十进制，拒绝前导零和符号
		if !isCanonicalDecimal(p) {
			return nil, malformed(name, key, -1, errBadIndex)
		}
		v, err := strconv.Atoi(p)
		if err != nil || v < 0 || v >= MaxIndex {
			return nil, malformed(name, key, -1, errBadIndex)
		}
		if _, dup := seen[v]; dup {
			return nil, malformed(name, key, v, errBadIndex)
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
