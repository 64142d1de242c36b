package goasset

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Velocidex/ordereddict"
)

// Kind enumerates the shapes a Value can take.
type Kind uint8

const (
	KindNull Kind = iota
	KindInt
	KindUint // Only for integers above math.MaxInt64.
	KindFloat
	KindBool
	KindString
	KindBytes
	KindList
	KindMap
)

var kindNames = [...]string{
	KindNull:   "null",
	KindInt:    "integer",
	KindUint:   "integer",
	KindFloat:  "float",
	KindBool:   "boolean",
	KindString: "text",
	KindBytes:  "bytes",
	KindList:   "sequence",
	KindMap:    "mapping",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is the ValueTree exchanged at every boundary: a scalar, an ordered
// sequence, an insertion-ordered mapping, or null. The zero Value is null.
//
// Integers have a single canonical form: every integer that fits into int64
// is KindInt, only larger unsigned values use KindUint.
type Value struct {
	kind Kind
	num  uint64 // int64 bits, uint64, float64 bits or bool
	str  string
	raw  []byte
	list []Value
	m    *Map
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Int returns an integer Value.
func Int(i int64) Value { return Value{kind: KindInt, num: uint64(i)} }

// Uint returns an integer Value, normalized to KindInt when it fits.
func Uint(u uint64) Value {
	if u <= math.MaxInt64 {
		return Value{kind: KindInt, num: u}
	}
	return Value{kind: KindUint, num: u}
}

// Float returns a floating point Value.
func Float(f float64) Value { return Value{kind: KindFloat, num: math.Float64bits(f)} }

// Bool returns a boolean Value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.num = 1
	}
	return v
}

// String returns a text Value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bytes returns a raw byte blob Value. The slice is not copied.
func Bytes(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBytes, raw: b}
}

// List returns a sequence Value. A nil or empty argument yields an empty
// sequence, never null.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// MapValue wraps m as a mapping Value. A nil m yields an empty mapping.
func MapValue(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int returns the value as int64 when it is an integer that fits.
func (v Value) Int() (int64, bool) {
	if v.kind == KindInt {
		return int64(v.num), true
	}
	return 0, false
}

// Uint returns the value as uint64 when it is a non-negative integer.
func (v Value) Uint() (uint64, bool) {
	switch v.kind {
	case KindUint:
		return v.num, true
	case KindInt:
		if int64(v.num) >= 0 {
			return v.num, true
		}
	}
	return 0, false
}

// Float returns the value when it is a float.
func (v Value) Float() (float64, bool) {
	if v.kind == KindFloat {
		return math.Float64frombits(v.num), true
	}
	return 0, false
}

// Bool returns the value when it is a boolean.
func (v Value) Bool() (bool, bool) {
	if v.kind == KindBool {
		return v.num == 1, true
	}
	return false, false
}

// Text returns the value when it is text.
func (v Value) Text() (string, bool) {
	if v.kind == KindString {
		return v.str, true
	}
	return "", false
}

// Blob returns the value when it is a byte blob.
func (v Value) Blob() ([]byte, bool) {
	if v.kind == KindBytes {
		return v.raw, true
	}
	return nil, false
}

// Items returns the elements of a sequence (nil for other kinds).
func (v Value) Items() []Value {
	if v.kind == KindList {
		return v.list
	}
	return nil
}

// Map returns the mapping (nil for other kinds).
func (v Value) Map() *Map {
	if v.kind == KindMap {
		return v.m
	}
	return nil
}

// Len returns the number of elements of a sequence or mapping, the byte length
// of text and blobs, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return v.m.Len()
	case KindString:
		return len(v.str)
	case KindBytes:
		return len(v.raw)
	}
	return 0
}

// Get returns the mapping entry for key.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	return v.m.Get(key)
}

// Index returns the i-th element of a sequence.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		return Value{}, false
	}
	return v.list[i], true
}

// String renders a compact, debug-oriented form of v. Use MarshalJSON or
// MarshalYAML for interchange.
func (v Value) String() string {
	var b strings.Builder
	v.debug(&b)
	return b.String()
}

func (v Value) debug(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindInt:
		b.WriteString(strconv.FormatInt(int64(v.num), 10))
	case KindUint:
		b.WriteString(strconv.FormatUint(v.num, 10))
	case KindFloat:
		b.WriteString(formatFloat(math.Float64frombits(v.num)))
	case KindBool:
		b.WriteString(strconv.FormatBool(v.num == 1))
	case KindString:
		b.WriteString(strconv.Quote(v.str))
	case KindBytes:
		fmt.Fprintf(b, "bytes(%x)", v.raw)
	case KindList:
		b.WriteByte('[')
		for i, it := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			it.debug(b)
		}
		b.WriteByte(']')
	case KindMap:
		b.WriteByte('{')
		for i, k := range v.m.Keys() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteString(": ")
			e, _ := v.m.Get(k)
			e.debug(b)
		}
		b.WriteByte('}')
	}
}

// formatFloat renders f so that it reads back as a float (always carrying a
// fraction or exponent).
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Equal reports deep structural equality. Floats compare by bit pattern and
// mapping entries compare in order.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindInt, KindUint, KindFloat, KindBool:
		return a.num == b.num
	case KindString:
		return a.str == b.str
	case KindBytes:
		return bytes.Equal(a.raw, b.raw)
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		ak, bk := a.m.Keys(), b.m.Keys()
		if len(ak) != len(bk) {
			return false
		}
		for i, k := range ak {
			if bk[i] != k {
				return false
			}
			av, _ := a.m.Get(k)
			bv, _ := b.m.Get(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	}
	return false
}

// Map is an insertion-ordered mapping from field name to Value with unique
// keys.
type Map struct {
	d *ordereddict.Dict
}

// NewMap returns an empty mapping.
func NewMap() *Map { return &Map{d: ordereddict.NewDict()} }

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (m *Map) Set(key string, v Value) *Map {
	m.d.Set(key, v)
	return m
}

// Get returns the entry for key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	raw, ok := m.d.Get(key)
	if !ok {
		return Value{}, false
	}
	v, _ := raw.(Value)
	return v, true
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return m.d.Keys()
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.d.Len()
}

// Fields builds a mapping Value from alternating key/value pairs. It panics
// on an odd argument count or a non-string key, like other Must-style
// helpers, and is meant for tests and literals.
func Fields(kv ...any) Value {
	if len(kv)%2 != 0 {
		panic("goasset.Fields: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			panic(fmt.Sprintf("goasset.Fields: key %d is %T, want string", i/2, kv[i]))
		}
		v, ok := kv[i+1].(Value)
		if !ok {
			panic(fmt.Sprintf("goasset.Fields: value for %q is %T, want goasset.Value", k, kv[i+1]))
		}
		m.Set(k, v)
	}
	return MapValue(m)
}
