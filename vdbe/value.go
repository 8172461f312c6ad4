package vdbe

import (
	"fmt"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Dynamic value model
// ---------------------------------------------------------------------------

// ValueType is the runtime type tag of a Value or result column. The
// numbering matches the engine's fundamental datatype codes.
type ValueType int

const (
	TypeInteger ValueType = 1
	TypeFloat   ValueType = 2
	TypeText    ValueType = 3
	TypeBlob    ValueType = 4
	TypeNull    ValueType = 5
)

func (t ValueType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	case TypeNull:
		return "NULL"
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Value is a dynamically typed cell: NULL, a 64-bit integer, a 64-bit
// float, UTF-8 text, or a binary blob. The zero Value is NULL.
type Value struct {
	typ ValueType
	i   int64
	r   float64
	s   string
	b   []byte
}

// NullValue returns the NULL value.
func NullValue() Value { return Value{typ: TypeNull} }

// IntValue wraps a 64-bit integer.
func IntValue(v int64) Value { return Value{typ: TypeInteger, i: v} }

// RealValue wraps a 64-bit float.
func RealValue(v float64) Value { return Value{typ: TypeFloat, r: v} }

// TextValue wraps a UTF-8 string.
func TextValue(v string) Value { return Value{typ: TypeText, s: v} }

// BlobValue wraps a byte sequence. The slice is not copied.
func BlobValue(v []byte) Value { return Value{typ: TypeBlob, b: v} }

// TextOrNull maps a nil pointer to NULL, anything else to text.
func TextOrNull(v *string) Value {
	if v == nil {
		return NullValue()
	}
	return TextValue(*v)
}

// IntOrNull maps a nil pointer to NULL, anything else to an integer.
func IntOrNull(v *int64) Value {
	if v == nil {
		return NullValue()
	}
	return IntValue(*v)
}

// Type returns the runtime type tag. The zero Value reports NULL.
func (v Value) Type() ValueType {
	if v.typ == 0 {
		return TypeNull
	}
	return v.typ
}

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.Type() == TypeNull }

// IsInteger reports whether the value is an integer.
func (v Value) IsInteger() bool { return v.typ == TypeInteger }

// IsReal reports whether the value is a float.
func (v Value) IsReal() bool { return v.typ == TypeFloat }

// IsText reports whether the value is text.
func (v Value) IsText() bool { return v.typ == TypeText }

// IsBlob reports whether the value is a blob.
func (v Value) IsBlob() bool { return v.typ == TypeBlob }

// AsInteger coerces the value to an integer: integers pass through, reals
// truncate toward zero, text parses (a failed parse yields no value), and
// NULL and blobs never coerce.
func (v Value) AsInteger() (int64, bool) {
	switch v.typ {
	case TypeInteger:
		return v.i, true
	case TypeFloat:
		return int64(v.r), true
	case TypeText:
		if n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64); err == nil {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsReal coerces the value to a float: reals pass through, integers widen,
// text parses, NULL and blobs never coerce.
func (v Value) AsReal() (float64, bool) {
	switch v.typ {
	case TypeFloat:
		return v.r, true
	case TypeInteger:
		return float64(v.i), true
	case TypeText:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// AsText returns the string for Text values only; no coercion.
func (v Value) AsText() (string, bool) {
	if v.typ == TypeText {
		return v.s, true
	}
	return "", false
}

// AsBlob returns the bytes for Blob values only; no coercion.
func (v Value) AsBlob() ([]byte, bool) {
	if v.typ == TypeBlob {
		return v.b, true
	}
	return nil, false
}

// String renders the value for display: NULL, decimal numbers, raw text,
// or X'..' hex for blobs.
func (v Value) String() string {
	switch v.Type() {
	case TypeNull:
		return "NULL"
	case TypeInteger:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.r, 'g', -1, 64)
	case TypeText:
		return v.s
	default:
		var sb strings.Builder
		sb.WriteString("X'")
		for _, by := range v.b {
			fmt.Fprintf(&sb, "%02X", by)
		}
		sb.WriteString("'")
		return sb.String()
	}
}
