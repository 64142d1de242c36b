package goasset

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

type intNode struct {
	width  int
	signed bool
}

func (n *intNode) name() string {
	if n.signed {
		return fmt.Sprintf("int%d", n.width*8)
	}
	return fmt.Sprintf("uint%d", n.width*8)
}

func (n *intNode) bounds() (lo int64, hi uint64) {
	bits := uint(n.width * 8)
	if n.signed {
		return -1 << (bits - 1), 1<<(bits-1) - 1
	}
	if bits == 64 {
		return 0, math.MaxUint64
	}
	return 0, 1<<bits - 1
}

func (n *intNode) decode(d *decoder) (Value, error) {
	start := d.r.Offset()
	u, err := d.r.Uint(n.width)
	if err != nil {
		return Value{}, d.readErr(start, err)
	}
	if n.signed {
		shift := uint(64 - 8*n.width)
		return Int(int64(u<<shift) >> shift), nil
	}
	return Uint(u), nil
}

func (n *intNode) check(c *checker, v Value) error {
	lo, hi := n.bounds()
	switch v.Kind() {
	case KindInt:
		i, _ := v.Int()
		if i < lo || (i > 0 && uint64(i) > hi) {
			return c.mismatch(n.name(), v, fmt.Sprintf("%d out of range [%d, %d]", i, lo, hi))
		}
	case KindUint:
		u, _ := v.Uint()
		if u > hi {
			return c.mismatch(n.name(), v, fmt.Sprintf("%d out of range [%d, %d]", u, lo, hi))
		}
	default:
		return c.mismatch(n.name(), v, "")
	}
	return nil
}

func (n *intNode) encode(e *encoder, v Value) {
	var bits uint64
	if i, ok := v.Int(); ok {
		bits = uint64(i)
	} else {
		bits, _ = v.Uint()
	}
	e.w.PutUint(n.width, bits)
}

func (n *intNode) normalize(v Value) Value {
	f, ok := v.Float()
	if !ok || f != math.Trunc(f) {
		return v
	}
	switch {
	case f >= math.MinInt64 && f < math.MaxInt64:
		return Int(int64(f))
	case f >= 0 && f < math.MaxUint64:
		return Uint(uint64(f))
	}
	return v
}

type floatNode struct {
	width int
}

// widenFloat32 converts b to float64 exactly, NaN payloads included.
func widenFloat32(b uint32) float64 {
	f := math.Float32frombits(b)
	if f != f {
		sign := uint64(b>>31) << 63
		mant := uint64(b&0x7fffff) << 29
		return math.Float64frombits(sign | 0x7ff<<52 | mant)
	}
	return float64(f)
}

func narrowFloat64(f float64) uint32 {
	if math.IsNaN(f) {
		b := math.Float64bits(f)
		sign := uint32(b>>63) << 31
		mant := uint32(b>>29) & 0x7fffff
		if mant == 0 {
			mant = 0x400000
		}
		return sign | 0x7f800000 | mant
	}
	return math.Float32bits(float32(f))
}

func (n *floatNode) decode(d *decoder) (Value, error) {
	start := d.r.Offset()
	u, err := d.r.Uint(n.width)
	if err != nil {
		return Value{}, d.readErr(start, err)
	}
	if n.width == 4 {
		return Float(widenFloat32(uint32(u))), nil
	}
	return Float(math.Float64frombits(u)), nil
}

func (n *floatNode) check(c *checker, v Value) error {
	want := fmt.Sprintf("float%d", n.width*8)
	f, ok := v.Float()
	if !ok {
		return c.mismatch(want, v, "")
	}
	if n.width == 4 && widenFloat32(narrowFloat64(f)) != f && !math.IsNaN(f) {
		return c.mismatch(want, v, fmt.Sprintf("%s is not representable as float32", formatFloat(f)))
	}
	if n.width == 4 && math.IsNaN(f) && math.Float64bits(widenFloat32(narrowFloat64(f))) != math.Float64bits(f) {
		return c.mismatch(want, v, "NaN payload is not representable as float32")
	}
	return nil
}

func (n *floatNode) encode(e *encoder, v Value) {
	f, _ := v.Float()
	if n.width == 4 {
		e.w.PutUint32(narrowFloat64(f))
		return
	}
	e.w.PutUint64(math.Float64bits(f))
}

func (n *floatNode) normalize(v Value) Value {
	var f float64
	switch v.Kind() {
	case KindFloat:
		f, _ = v.Float()
	case KindInt:
		i, _ := v.Int()
		f = float64(i)
	case KindUint:
		u, _ := v.Uint()
		f = float64(u)
	case KindString:
		s, _ := v.Text()
		switch strings.ToLower(s) {
		case "nan":
			f = math.NaN()
		case "+inf", "inf", "infinity", "+infinity":
			f = math.Inf(1)
		case "-inf", "-infinity":
			f = math.Inf(-1)
		default:
			return v
		}
	default:
		return v
	}
	if n.width == 4 && !math.IsNaN(f) && !math.IsInf(f, 0) && math.Abs(f) <= math.MaxFloat32 {
		f = float64(float32(f))
	}
	return Float(f)
}

type boolNode struct{}

func (boolNode) decode(d *decoder) (Value, error) {
	start := d.r.Offset()
	b, err := d.r.Uint8()
	if err != nil {
		return Value{}, d.readErr(start, err)
	}
	switch b {
	case 0:
		return Bool(false), nil
	case 1:
		return Bool(true), nil
	}
	return Value{}, d.malformed(start, fmt.Sprintf("boolean byte 0x%02x", b))
}

func (boolNode) check(c *checker, v Value) error {
	if v.Kind() != KindBool {
		return c.mismatch("boolean", v, "")
	}
	return nil
}

func (boolNode) encode(e *encoder, v Value) {
	b, _ := v.Bool()
	if b {
		e.w.PutUint8(1)
		return
	}
	e.w.PutUint8(0)
}

func (boolNode) normalize(v Value) Value {
	if i, ok := v.Int(); ok && (i == 0 || i == 1) {
		return Bool(i == 1)
	}
	return v
}

// textNode is a string whose length counts code units: bytes for UTF-8 and
// 16-bit units for UTF-16. Fixed-length text is NUL padded on the wire.
type textNode struct {
	prefix Prefix
	count  int
	utf16  bool
	order  binary.ByteOrder
}

func (n *textNode) encoding() encoding.Encoding {
	if n.order == binary.BigEndian {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

func (n *textNode) unitSize() int {
	if n.utf16 {
		return 2
	}
	return 1
}

func (n *textNode) decode(d *decoder) (Value, error) {
	start := d.r.Offset()
	units, err := d.length(n.prefix, n.count)
	if err != nil {
		return Value{}, err
	}
	raw, err := d.r.Bytes(units * n.unitSize())
	if err != nil {
		return Value{}, d.readErr(start, err)
	}
	if n.prefix == PrefixFixed {
		raw = n.trimNUL(raw)
	}
	if !n.utf16 {
		if !utf8.Valid(raw) {
			return Value{}, d.malformed(start, "invalid UTF-8")
		}
		return String(string(raw)), nil
	}
	s, err := n.encoding().NewDecoder().Bytes(raw)
	if err != nil {
		return Value{}, d.malformed(start, "invalid UTF-16")
	}
	// unpaired surrogates decode to U+FFFD; only lossless text is accepted
	back, err := n.encoding().NewEncoder().Bytes(s)
	if err != nil || !bytes.Equal(back, raw) {
		return Value{}, d.malformed(start, "invalid UTF-16")
	}
	return String(string(s)), nil
}

func (n *textNode) trimNUL(raw []byte) []byte {
	if !n.utf16 {
		return bytes.TrimRight(raw, "\x00")
	}
	for len(raw) >= 2 && raw[len(raw)-1] == 0 && raw[len(raw)-2] == 0 {
		raw = raw[:len(raw)-2]
	}
	return raw
}

// units returns the wire length of s in code units.
func (n *textNode) units(s string) int {
	if !n.utf16 {
		return len(s)
	}
	u := 0
	for _, r := range s {
		if r >= 0x10000 {
			u += 2
		} else {
			u++
		}
	}
	return u
}

func (n *textNode) check(c *checker, v Value) error {
	s, ok := v.Text()
	if !ok {
		return c.mismatch("text", v, "")
	}
	if !utf8.ValidString(s) {
		return c.mismatch("text", v, "invalid UTF-8")
	}
	units := n.units(s)
	if n.prefix == PrefixFixed {
		if units > n.count {
			return c.mismatch("text", v, fmt.Sprintf("%d code units exceed fixed length %d", units, n.count))
		}
		if strings.HasSuffix(s, "\x00") {
			return c.mismatch("text", v, "trailing NUL in fixed-length text")
		}
		return nil
	}
	if uint64(units) > maxLength(n.prefix) {
		return c.mismatch("text", v, fmt.Sprintf("%d code units do not fit a %s length", units, n.prefix))
	}
	return nil
}

func (n *textNode) encode(e *encoder, v Value) {
	s, _ := v.Text()
	var payload []byte
	if n.utf16 {
		// check has rejected everything the encoder could fail on
		payload, _ = n.encoding().NewEncoder().Bytes([]byte(s))
	} else {
		payload = []byte(s)
	}
	units := len(payload) / n.unitSize()
	if n.prefix == PrefixFixed {
		e.w.Put(payload)
		e.w.PutZeros((n.count - units) * n.unitSize())
		return
	}
	e.length(n.prefix, units)
	e.w.Put(payload)
}

func (n *textNode) normalize(v Value) Value { return v }

type blobNode struct {
	prefix Prefix
	count  int
}

func (n *blobNode) decode(d *decoder) (Value, error) {
	start := d.r.Offset()
	size, err := d.length(n.prefix, n.count)
	if err != nil {
		return Value{}, err
	}
	raw, err := d.r.Bytes(size)
	if err != nil {
		return Value{}, d.readErr(start, err)
	}
	return Bytes(raw), nil
}

func (n *blobNode) check(c *checker, v Value) error {
	b, ok := v.Blob()
	if !ok {
		return c.mismatch("bytes", v, "")
	}
	if n.prefix == PrefixFixed {
		if len(b) != n.count {
			return c.mismatch("bytes", v, fmt.Sprintf("fixed length %d, got %d bytes", n.count, len(b)))
		}
		return nil
	}
	if uint64(len(b)) > maxLength(n.prefix) {
		return c.mismatch("bytes", v, fmt.Sprintf("%d bytes do not fit a %s length", len(b), n.prefix))
	}
	return nil
}

func (n *blobNode) encode(e *encoder, v Value) {
	b, _ := v.Blob()
	if n.prefix != PrefixFixed {
		e.length(n.prefix, len(b))
	}
	e.w.Put(b)
}

// normalize accepts base64 text, the form blobs take in JSON documents.
func (n *blobNode) normalize(v Value) Value {
	s, ok := v.Text()
	if !ok {
		return v
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return Bytes(b)
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return Bytes(b)
	}
	return v
}
