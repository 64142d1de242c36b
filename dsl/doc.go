// Package dsl provides builders for goasset type descriptors.
//
// Overview
//   - Type(name): start a descriptor; chain Doc/Option/Require/Field, then Build()/MustBuild().
//   - Scalars: Int8..Int64, Uint8..Uint64, Float32/Float64, Bool.
//   - Variable length: String(name), Bytes(name), Array(name, elem); the prefix width comes from
//     the stringLength/arrayLength options unless Prefix(p) or Fixed(n) is chained.
//   - Composition: Record(name, fields...) nests inline, Ref(name, type) nests a registered type,
//     Embed(type) splices a registered type's fields into the enclosing mapping.
//   - Tagged unions: Variant(name, tag, Case(value, fields...)...).
//   - Layout: Pad(n) and Fill(bytes...) are hidden; Aligned()/Align(n) pad after a field.
//   - Gates: Since/Before compare against engineVersion; When/Unless read a declared Option.
//
// Example
//
//	pptr := dsl.Type("PPtr").
//	    Field(
//	        dsl.Int32("m_FileID"),
//	        dsl.Int64("m_PathID").Since("5.0"),
//	        dsl.Int32("m_PathID").Before("5.0"),
//	    ).
//	    MustBuild()
//
//	reg, _ := goasset.NewRegistry(cfg, []goasset.Catalog{{Name: "mine", Types: []goasset.TypeDescriptor{pptr}}})
//	codec, err := goasset.NewResolver(reg).Resolve("PPtr")
//
// Builders are plain values; Build validates the whole descriptor and
// MustBuild panics with the type name on the first problem, which suits
// package-level catalog variables.
package dsl
