package bible

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "null"
	}
}

// Value is an untyped structured document node: a sequence, an ordered
// mapping or a scalar. Mappings keep the key order of the source document.
type Value struct {
	kind   Kind
	scalar string
	items  []Value
	fields []Field
}

// Field is one key of a mapping.
type Field struct {
	Key   string
	Value Value
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: KindString, scalar: s} }

// Number holds a numeric literal as written in the source.
func Number(literal string) Value { return Value{kind: KindNumber, scalar: literal} }

func Bool(b bool) Value { return Value{kind: KindBool, scalar: strconv.FormatBool(b)} }

func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, items: items}
}

func Mapping(fields ...Field) Value {
	if fields == nil {
		fields = []Field{}
	}
	return Value{kind: KindMapping, fields: fields}
}

// F is shorthand for building mapping fields.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsSequence() bool { return v.kind == KindSequence }

func (v Value) IsMapping() bool { return v.kind == KindMapping }

func (v Value) IsScalar() bool {
	return v.kind == KindString || v.kind == KindNumber || v.kind == KindBool
}

func (v Value) Items() []Value { return v.items }

func (v Value) Fields() []Field { return v.fields }

// Get returns the first field named key. Non-mappings have no fields.
func (v Value) Get(key string) (Value, bool) {
	for _, f := range v.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Has reports whether a mapping declares key, whatever its value.
func (v Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// present reports whether the value counts as supplied: not null and not an
// empty string.
func (v Value) present() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindString:
		return v.scalar != ""
	default:
		return true
	}
}

// Text renders scalars as strings. Numbers use the shortest decimal form so
// that 1, 1.0 and 1e0 all render as "1". Null and structured values render
// as the empty string.
func (v Value) Text() string {
	switch v.kind {
	case KindString, KindBool:
		return v.scalar
	case KindNumber:
		return formatNumber(v.scalar)
	default:
		return ""
	}
}

func formatNumber(literal string) string {
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return literal
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strings.ToLower(strconv.FormatFloat(f, 'g', -1, 64))
}
