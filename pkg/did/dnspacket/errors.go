package dnspacket

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dep2p/go-diddht/pkg/did"
)

// 预定义错误
var (
	// ErrMalformedRecord 报文结构违规，解码失败且不应重试
	ErrMalformedRecord = errors.New("dnspacket: malformed record")

	// ErrPacketTooLarge 报文超过大小上限或条目超过索引范围
	ErrPacketTooLarge = errors.New("dnspacket: packet exceeds size ceiling")

	// ErrInvalidValue 字段值包含保留分隔符
	ErrInvalidValue = errors.New("dnspacket: value contains reserved separator")

	// ErrInvalidDocument 文档未通过校验
	ErrInvalidDocument = did.ErrInvalidDocument
)

// 结构性错误原因
var (
	errMissingRecord   = errors.New("record missing")
	errDuplicateRecord = errors.New("duplicate record")
	errMissingField    = errors.New("required field missing")
	errDuplicateField  = errors.New("duplicate field")
	errBadField        = errors.New("field not in key=value form")
	errBadIndex        = errors.New("invalid index")
	errDanglingIndex   = errors.New("index not declared in key list")
	errUnknownVersion  = errors.New("unknown version")
	errBadKeyMaterial  = errors.New("bad key material")
	errUnknownAlg      = errors.New("unknown key algorithm")
)

// RecordError 描述失败的记录、字段和索引
//
// 同时匹配 ErrMalformedRecord 和具体原因。
type RecordError struct {
	Name  string // 资源记录名，未知时为空
	Field string // 字段名，未知时为空
	Index int    // 键或服务索引，不适用时为 -1
	Err   error
}

// Error 实现 error 接口
func (e *RecordError) Error() string {
	var b strings.Builder
	b.WriteString(ErrMalformedRecord.Error())
	if e.Name != "" {
		fmt.Fprintf(&b, ": record %s", e.Name)
	}
	if e.Index >= 0 {
		fmt.Fprintf(&b, " index %d", e.Index)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field %s", e.Field)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap 返回 ErrMalformedRecord 与具体原因
func (e *RecordError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRecord}
	}
	return []error{ErrMalformedRecord, e.Err}
}

// malformed 构造 RecordError
func malformed(name, field string, index int, err error) error {
	return &RecordError{Name: name, Field: field, Index: index, Err: err}
}
