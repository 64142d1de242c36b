package dsl

import (
	goasset "github.com/reoring/goasset"
)

type fieldBuilder struct {
	f      goasset.Field
	elem   *fieldBuilder
	tag    *fieldBuilder
	fields []*fieldBuilder
	cases  []caseSpec
}

type caseSpec struct {
	value  int64
	fields []*fieldBuilder
}

func scalar(name string, kind goasset.FieldKind, width int) *fieldBuilder {
	return &fieldBuilder{f: goasset.Field{Name: name, Kind: kind, Width: width}}
}

func Int8(name string) *fieldBuilder    { return scalar(name, goasset.FieldInt, 1) }
func Int16(name string) *fieldBuilder   { return scalar(name, goasset.FieldInt, 2) }
func Int32(name string) *fieldBuilder   { return scalar(name, goasset.FieldInt, 4) }
func Int64(name string) *fieldBuilder   { return scalar(name, goasset.FieldInt, 8) }
func Uint8(name string) *fieldBuilder   { return scalar(name, goasset.FieldUint, 1) }
func Uint16(name string) *fieldBuilder  { return scalar(name, goasset.FieldUint, 2) }
func Uint32(name string) *fieldBuilder  { return scalar(name, goasset.FieldUint, 4) }
func Uint64(name string) *fieldBuilder  { return scalar(name, goasset.FieldUint, 8) }
func Float32(name string) *fieldBuilder { return scalar(name, goasset.FieldFloat, 4) }
func Float64(name string) *fieldBuilder { return scalar(name, goasset.FieldFloat, 8) }
func Bool(name string) *fieldBuilder    { return scalar(name, goasset.FieldBool, 1) }

// String is length-prefixed text; the prefix comes from stringLength unless
// Prefix or Fixed says otherwise.
func String(name string) *fieldBuilder { return scalar(name, goasset.FieldString, 0) }

// Bytes is a length-prefixed raw blob.
func Bytes(name string) *fieldBuilder { return scalar(name, goasset.FieldBytes, 0) }

// Array is a counted sequence of elem. The element's name is ignored.
func Array(name string, elem *fieldBuilder) *fieldBuilder {
	fb := scalar(name, goasset.FieldArray, 0)
	fb.elem = elem
	return fb
}

// Record nests fields under name.
func Record(name string, fields ...*fieldBuilder) *fieldBuilder {
	fb := scalar(name, goasset.FieldRecord, 0)
	fb.fields = fields
	return fb
}

// Ref nests the registered type typ under name.
func Ref(name, typ string) *fieldBuilder {
	fb := scalar(name, goasset.FieldRef, 0)
	fb.f.Ref = typ
	return fb
}

// Embed splices the fields of typ into the enclosing mapping, like a base
// class whose members are serialized first.
func Embed(typ string) *fieldBuilder {
	fb := Ref("", typ)
	fb.f.Inline = true
	return fb
}

// Variant reads the integer tag, then the fields of the case whose value
// matches it.
func Variant(name string, tag *fieldBuilder, cases ...caseSpec) *fieldBuilder {
	fb := scalar(name, goasset.FieldVariant, 0)
	fb.tag = tag
	fb.cases = cases
	return fb
}

// Case is one arm of a Variant.
func Case(value int64, fields ...*fieldBuilder) caseSpec {
	return caseSpec{value: value, fields: fields}
}

// Pad is n hidden zero bytes.
func Pad(n int) *fieldBuilder {
	fb := scalar("", goasset.FieldPad, 0)
	fb.f.Count = n
	return fb
}

// Fill is a hidden run of exactly these bytes, such as a magic number.
func Fill(b ...byte) *fieldBuilder {
	fb := Pad(len(b))
	fb.f.Fill = append([]byte(nil), b...)
	return fb
}

// Aligned pads to the configured alignment after the field.
func (b *fieldBuilder) Aligned() *fieldBuilder {
	b.f.Align = goasset.AlignDefault
	return b
}

// Align pads to n bytes after the field.
func (b *fieldBuilder) Align(n int) *fieldBuilder {
	b.f.Align = n
	return b
}

// Prefix overrides the configured length prefix.
func (b *fieldBuilder) Prefix(p goasset.Prefix) *fieldBuilder {
	b.f.Prefix = p
	return b
}

// Fixed stores no prefix: the length is always n (bytes, code units or
// elements).
func (b *fieldBuilder) Fixed(n int) *fieldBuilder {
	b.f.Prefix = goasset.PrefixFixed
	b.f.Count = n
	return b
}

// Since keeps the field from engine version v on.
func (b *fieldBuilder) Since(v string) *fieldBuilder {
	b.f.Since = v
	return b
}

// Before keeps the field only below engine version v.
func (b *fieldBuilder) Before(v string) *fieldBuilder {
	b.f.Before = v
	return b
}

// When keeps the field only when the boolean option key is set.
func (b *fieldBuilder) When(key string) *fieldBuilder {
	b.f.When = key
	return b
}

// Unless keeps the field only when the boolean option key is not set.
func (b *fieldBuilder) Unless(key string) *fieldBuilder {
	b.f.When = "!" + key
	return b
}

// Field returns the assembled goasset.Field.
func (b *fieldBuilder) Field() goasset.Field {
	f := b.f
	if b.elem != nil {
		e := b.elem.Field()
		e.Name = ""
		f.Elem = &e
	}
	if b.tag != nil {
		t := b.tag.Field()
		f.Tag = &t
	}
	f.Fields = build(b.fields)
	for _, c := range b.cases {
		f.Cases = append(f.Cases, goasset.Case{Value: c.value, Fields: build(c.fields)})
	}
	return f
}
