package dsl

import (
	"fmt"

	goasset "github.com/reoring/goasset"
)

type typeBuilder struct {
	d      goasset.TypeDescriptor
	fields []*fieldBuilder
}

// Type starts a descriptor for the named asset type. Fields are laid out on
// the wire in the order they are added.
func Type(name string) *typeBuilder {
	return &typeBuilder{d: goasset.TypeDescriptor{Name: name}}
}

// Doc sets a one-line description, shown by the CLI type listing.
func (b *typeBuilder) Doc(s string) *typeBuilder {
	b.d.Doc = s
	return b
}

// Field appends one or more fields.
func (b *typeBuilder) Field(fs ...*fieldBuilder) *typeBuilder {
	b.fields = append(b.fields, fs...)
	return b
}

// Option declares opaque configuration keys that When/Unless gates of this
// type may read.
func (b *typeBuilder) Option(keys ...string) *typeBuilder {
	b.d.Options = append(b.d.Options, keys...)
	return b
}

// Require declares configuration keys that must be present for the type to
// resolve.
func (b *typeBuilder) Require(keys ...string) *typeBuilder {
	b.d.Requires = append(b.d.Requires, keys...)
	return b
}

// Build validates and returns the descriptor.
func (b *typeBuilder) Build() (goasset.TypeDescriptor, error) {
	d := b.d
	d.Fields = build(b.fields)
	if err := d.Validate(); err != nil {
		return goasset.TypeDescriptor{}, err
	}
	return d, nil
}

// MustBuild is Build that panics on an invalid descriptor.
func (b *typeBuilder) MustBuild() goasset.TypeDescriptor {
	d, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("dsl: %s: %v", b.d.Name, err))
	}
	return d
}

func build(fs []*fieldBuilder) []goasset.Field {
	if len(fs) == 0 {
		return nil
	}
	out := make([]goasset.Field, len(fs))
	for i, f := range fs {
		out[i] = f.Field()
	}
	return out
}
