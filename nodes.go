package goasset

import (
	"errors"
	"fmt"
	"math"

	"github.com/reoring/goasset/internal/wire"
	"github.com/reoring/goasset/jsonschema"
)

// node is one bound field shape. Nodes are immutable after binding and may
// be shared between codecs.
type node interface {
	decode(d *decoder) (Value, error)
	// check validates v without producing output; encode assumes it passed.
	check(c *checker, v Value) error
	encode(e *encoder, v Value)
	// normalize coerces a loosely typed value (as parsed from text) toward
	// the shape this node encodes. It never fails; check reports leftovers.
	normalize(v Value) Value
	schema() *jsonschema.Schema
}

type decoder struct {
	r    *wire.Reader
	typ  string
	path Path
}

func (d *decoder) malformed(start int64, hint string) *Error {
	return newError(CodeMalformedInput, d.typ, d.path.String(), start, hint, nil)
}

// readErr classifies a wire error raised by a read that began at start.
func (d *decoder) readErr(start int64, err error) error {
	var se *wire.ShortReadError
	switch {
	case errors.As(err, &se):
		return newError(CodeTruncatedInput, d.typ, d.path.String(), start,
			fmt.Sprintf("need %d more bytes, %d available", se.Want, se.Got), nil)
	case errors.Is(err, wire.ErrVarintOverflow), errors.Is(err, wire.ErrVarintNonMinimal):
		e := d.malformed(start, "bad length prefix")
		e.Cause = err
		return e
	}
	e := newError(CodeTruncatedInput, d.typ, d.path.String(), start, "source failed", nil)
	e.Cause = err
	return e
}

// length reads a length prefix, or returns fixed for PrefixFixed.
func (d *decoder) length(p Prefix, fixed int) (int, error) {
	start := d.r.Offset()
	var n uint64
	switch p {
	case PrefixFixed:
		return fixed, nil
	case PrefixInt32:
		u, err := d.r.Uint32()
		if err != nil {
			return 0, d.readErr(start, err)
		}
		if int32(u) < 0 {
			return 0, d.malformed(start, fmt.Sprintf("negative length %d", int32(u)))
		}
		n = uint64(u)
	case PrefixUint32:
		u, err := d.r.Uint32()
		if err != nil {
			return 0, d.readErr(start, err)
		}
		n = uint64(u)
	case PrefixUint16:
		u, err := d.r.Uint16()
		if err != nil {
			return 0, d.readErr(start, err)
		}
		n = uint64(u)
	case PrefixUint8:
		u, err := d.r.Uint8()
		if err != nil {
			return 0, d.readErr(start, err)
		}
		n = uint64(u)
	case PrefixVarint:
		u, err := d.r.Uvarint7()
		if err != nil {
			return 0, d.readErr(start, err)
		}
		if u > math.MaxInt32 {
			return 0, d.malformed(start, fmt.Sprintf("length %d exceeds int32", u))
		}
		n = uint64(u)
	default:
		return 0, d.malformed(start, fmt.Sprintf("unsupported length prefix %s", p))
	}
	if n > math.MaxInt32 && uint64(int(n)) != n {
		return 0, d.malformed(start, fmt.Sprintf("length %d too large for this platform", n))
	}
	return int(n), nil
}

// align consumes alignment padding, which must be zero.
func (d *decoder) align(a int) error {
	pad := d.r.PaddingTo(a)
	if pad == 0 {
		return nil
	}
	start := d.r.Offset()
	b, err := d.r.Bytes(pad)
	if err != nil {
		return d.readErr(start, err)
	}
	for _, x := range b {
		if x != 0 {
			return d.malformed(start, fmt.Sprintf("non-zero alignment padding % x", b))
		}
	}
	return nil
}

type checker struct {
	typ  string
	path Path
}

func (c *checker) mismatch(want string, got Value, hint string) error {
	return shapeMismatch(c.typ, c.path.String(), want, got, hint)
}

func (c *checker) missing(name string) error {
	return newError(CodeMissingField, c.typ, c.path.child(name), -1, "", nil)
}

type encoder struct {
	w *wire.Writer
}

func (e *encoder) length(p Prefix, n int) {
	switch p {
	case PrefixInt32, PrefixUint32:
		e.w.PutUint32(uint32(n))
	case PrefixUint16:
		e.w.PutUint16(uint16(n))
	case PrefixUint8:
		e.w.PutUint8(uint8(n))
	case PrefixVarint:
		e.w.PutUvarint7(uint32(n))
	}
}

func (e *encoder) align(a int) { e.w.PutZeros(e.w.PaddingTo(a)) }

// maxLength is the largest length a prefix can carry.
func maxLength(p Prefix) uint64 {
	switch p {
	case PrefixUint32:
		return math.MaxUint32
	case PrefixUint16:
		return math.MaxUint16
	case PrefixUint8:
		return math.MaxUint8
	}
	return math.MaxInt32
}

// member is one active entry of a bound record.
type member struct {
	name   string      // empty for hidden members
	node   node
	align  int         // boundary to pad to after the member; 0 or 1 for none
	inline *recordNode // non-nil when the member's fields are spliced into the parent
}

type recordNode struct {
	typ     string // set for records bound from a named type
	members []member
	keys    map[string]bool // every key the mapping may hold, spliced ones included
	order   []string        // the same keys in wire order
}

func (n *recordNode) add(m member) error {
	switch {
	case m.inline != nil:
		for k := range m.inline.keys {
			if n.keys[k] {
				return fmt.Errorf("field %q declared twice", k)
			}
			n.keys[k] = true
		}
	case m.name != "":
		if n.keys[m.name] {
			return fmt.Errorf("field %q declared twice", m.name)
		}
		n.keys[m.name] = true
	}
	n.members = append(n.members, m)
	return nil
}

func (n *recordNode) decode(d *decoder) (Value, error) {
	m := NewMap()
	if err := n.decodeInto(d, m); err != nil {
		return Value{}, err
	}
	return MapValue(m), nil
}

func (n *recordNode) decodeInto(d *decoder, out *Map) error {
	for _, m := range n.members {
		switch {
		case m.inline != nil:
			if err := m.inline.decodeInto(d, out); err != nil {
				return err
			}
			if err := d.align(m.align); err != nil {
				return err
			}
		case m.name == "":
			if _, err := m.node.decode(d); err != nil {
				return err
			}
			if err := d.align(m.align); err != nil {
				return err
			}
		default:
			d.path.Field(m.name)
			v, err := m.node.decode(d)
			if err != nil {
				return err
			}
			if err := d.align(m.align); err != nil {
				return err
			}
			d.path.Pop()
			out.Set(m.name, v)
		}
	}
	return nil
}

func (n *recordNode) check(c *checker, v Value) error {
	m := v.Map()
	if m == nil {
		return c.mismatch("mapping", v, "")
	}
	if err := unknownKeys(c, m, n.keys, ""); err != nil {
		return err
	}
	if err := n.checkInto(c, m); err != nil {
		return err
	}
	return keyOrder(c, m, n.order)
}

// keyOrder requires the keys of m to follow want, which is the order decode
// produces them in. m holds exactly the keys of want when it is called.
func keyOrder(c *checker, m *Map, want []string) error {
	got := m.Keys()
	for i, k := range want {
		if i < len(got) && got[i] != k {
			fv, _ := m.Get(k)
			return shapeMismatch(c.typ, c.path.child(k), "field in declared order", fv,
				fmt.Sprintf("field out of order, want before %q", got[i]))
		}
	}
	return nil
}

func unknownKeys(c *checker, m *Map, keys map[string]bool, also string) error {
	for _, k := range m.Keys() {
		if !keys[k] && k != also {
			fv, _ := m.Get(k)
			return shapeMismatch(c.typ, c.path.child(k), "no field", fv, "unknown field")
		}
	}
	return nil
}

func (n *recordNode) checkInto(c *checker, m *Map) error {
	for _, mb := range n.members {
		switch {
		case mb.inline != nil:
			if err := mb.inline.checkInto(c, m); err != nil {
				return err
			}
		case mb.name == "":
		default:
			fv, ok := m.Get(mb.name)
			if !ok {
				return c.missing(mb.name)
			}
			c.path.Field(mb.name)
			if err := mb.node.check(c, fv); err != nil {
				return err
			}
			c.path.Pop()
		}
	}
	return nil
}

func (n *recordNode) encode(e *encoder, v Value) { n.encodeInto(e, v.Map()) }

func (n *recordNode) encodeInto(e *encoder, m *Map) {
	for _, mb := range n.members {
		if e.w.Stopped() {
			return
		}
		switch {
		case mb.inline != nil:
			mb.inline.encodeInto(e, m)
		case mb.name == "":
			mb.node.encode(e, Value{})
		default:
			fv, _ := m.Get(mb.name)
			mb.node.encode(e, fv)
		}
		e.align(mb.align)
	}
}

func (n *recordNode) normalize(v Value) Value {
	m := v.Map()
	if m == nil {
		return v
	}
	out := NewMap()
	n.normalizeInto(m, out)
	return MapValue(rest(m, out))
}

// normalizeInto copies the fields of n from m to out in wire order.
func (n *recordNode) normalizeInto(m, out *Map) {
	for _, mb := range n.members {
		switch {
		case mb.inline != nil:
			mb.inline.normalizeInto(m, out)
		case mb.name == "":
		default:
			if fv, ok := m.Get(mb.name); ok {
				out.Set(mb.name, mb.node.normalize(fv))
			}
		}
	}
}

// rest appends the entries of m that out lacks, in their original order, so
// that check can still report them.
func rest(m, out *Map) *Map {
	for _, k := range m.Keys() {
		if !out.Has(k) {
			fv, _ := m.Get(k)
			out.Set(k, fv)
		}
	}
	return out
}

// zeroWidth reports whether n always decodes from zero bytes (ignoring
// alignment padding, which stops growing once the offset is aligned).
func zeroWidth(n node) bool {
	switch n := n.(type) {
	case *recordNode:
		for _, m := range n.members {
			if !zeroWidth(m.node) {
				return false
			}
		}
		return true
	case *arrayNode:
		return n.prefix == PrefixFixed && (n.count == 0 || zeroWidth(n.elem))
	case *textNode:
		return n.prefix == PrefixFixed && n.count == 0
	case *blobNode:
		return n.prefix == PrefixFixed && n.count == 0
	case *padNode:
		return n.count == 0 && len(n.fill) == 0
	}
	return false
}

type arrayNode struct {
	prefix    Prefix
	count     int // PrefixFixed only
	elem      node
	elemAlign int
}

func (n *arrayNode) decode(d *decoder) (Value, error) {
	count, err := d.length(n.prefix, n.count)
	if err != nil {
		return Value{}, err
	}
	items := make([]Value, 0, min(count, 1024))
	for i := 0; i < count; i++ {
		d.path.Index(i)
		v, err := n.elem.decode(d)
		if err != nil {
			return Value{}, err
		}
		if err := d.align(n.elemAlign); err != nil {
			return Value{}, err
		}
		d.path.Pop()
		items = append(items, v)
	}
	return List(items...), nil
}

func (n *arrayNode) check(c *checker, v Value) error {
	if v.Kind() != KindList {
		return c.mismatch("sequence", v, "")
	}
	items := v.Items()
	if n.prefix == PrefixFixed {
		if len(items) != n.count {
			return c.mismatch("sequence", v, fmt.Sprintf("fixed length %d, got %d elements", n.count, len(items)))
		}
	} else if uint64(len(items)) > maxLength(n.prefix) {
		return c.mismatch("sequence", v, fmt.Sprintf("%d elements do not fit a %s count", len(items), n.prefix))
	}
	for i, it := range items {
		c.path.Index(i)
		if err := n.elem.check(c, it); err != nil {
			return err
		}
		c.path.Pop()
	}
	return nil
}

func (n *arrayNode) encode(e *encoder, v Value) {
	items := v.Items()
	if n.prefix != PrefixFixed {
		e.length(n.prefix, len(items))
	}
	for _, it := range items {
		if e.w.Stopped() {
			return
		}
		n.elem.encode(e, it)
		e.align(n.elemAlign)
	}
}

func (n *arrayNode) normalize(v Value) Value {
	if v.Kind() != KindList {
		return v
	}
	out := make([]Value, len(v.Items()))
	for i, it := range v.Items() {
		out[i] = n.elem.normalize(it)
	}
	return List(out...)
}

// variantNode decodes to a mapping holding the tag under tagName followed by
// the fields of the matching case.
type variantNode struct {
	tagName  string
	tag      *intNode
	tagAlign int
	cases    map[int64]*recordNode
	order    []int64
}

func tagKey(v Value) (int64, bool) { return v.Int() }

func (n *variantNode) decode(d *decoder) (Value, error) {
	d.path.Field(n.tagName)
	start := d.r.Offset()
	tv, err := n.tag.decode(d)
	if err != nil {
		return Value{}, err
	}
	if err := d.align(n.tagAlign); err != nil {
		return Value{}, err
	}
	key, ok := tagKey(tv)
	rec := n.cases[key]
	if !ok || rec == nil {
		return Value{}, d.malformed(start, fmt.Sprintf("unknown variant tag %s", tv))
	}
	d.path.Pop()
	m := NewMap().Set(n.tagName, tv)
	if err := rec.decodeInto(d, m); err != nil {
		return Value{}, err
	}
	return MapValue(m), nil
}

func (n *variantNode) check(c *checker, v Value) error {
	m := v.Map()
	if m == nil {
		return c.mismatch("mapping", v, "variant")
	}
	tv, ok := m.Get(n.tagName)
	if !ok {
		return c.missing(n.tagName)
	}
	c.path.Field(n.tagName)
	if err := n.tag.check(c, tv); err != nil {
		return err
	}
	key, ok := tagKey(tv)
	rec := n.cases[key]
	if !ok || rec == nil {
		return c.mismatch("variant tag", tv, fmt.Sprintf("no case for tag %s (cases %v)", tv, n.order))
	}
	c.path.Pop()
	if err := unknownKeys(c, m, rec.keys, n.tagName); err != nil {
		return err
	}
	if err := rec.checkInto(c, m); err != nil {
		return err
	}
	return keyOrder(c, m, append([]string{n.tagName}, rec.order...))
}

func (n *variantNode) encode(e *encoder, v Value) {
	m := v.Map()
	tv, _ := m.Get(n.tagName)
	n.tag.encode(e, tv)
	e.align(n.tagAlign)
	key, _ := tagKey(tv)
	n.cases[key].encodeInto(e, m)
}

func (n *variantNode) normalize(v Value) Value {
	m := v.Map()
	if m == nil {
		return v
	}
	out := NewMap()
	tv, ok := m.Get(n.tagName)
	if !ok {
		return MapValue(rest(m, out))
	}
	tv = n.tag.normalize(tv)
	out.Set(n.tagName, tv)
	if key, ok := tagKey(tv); ok {
		if rec := n.cases[key]; rec != nil {
			rec.normalizeInto(m, out)
		}
	}
	return MapValue(rest(m, out))
}

// padNode is a run of hidden bytes that must equal fill (zeros when empty).
type padNode struct {
	count int
	fill  []byte
}

func (n *padNode) decode(d *decoder) (Value, error) {
	start := d.r.Offset()
	b, err := d.r.Bytes(n.count)
	if err != nil {
		return Value{}, d.readErr(start, err)
	}
	for i, x := range b {
		want := byte(0)
		if len(n.fill) > 0 {
			want = n.fill[i]
		}
		if x != want {
			return Value{}, d.malformed(start+int64(i), fmt.Sprintf("padding byte 0x%02x, want 0x%02x", x, want))
		}
	}
	return Value{}, nil
}

func (n *padNode) check(*checker, Value) error { return nil }

func (n *padNode) encode(e *encoder, _ Value) {
	if len(n.fill) > 0 {
		e.w.Put(n.fill)
		return
	}
	e.w.PutZeros(n.count)
}

func (n *padNode) normalize(v Value) Value { return v }
