package goasset_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	goasset "github.com/reoring/goasset"
	"github.com/reoring/goasset/dsl"
)

var (
	header = dsl.Type("Header").Field(dsl.Uint16("version"), dsl.Int32("size")).MustBuild()
	entry  = dsl.Type("Entry").
		Option("entry.withNote").
		Field(
			dsl.String("key"),
			dsl.Ref("head", "Header"),
			dsl.String("note").When("entry.withNote"),
		).MustBuild()
)

func TestResolve_TypeNotFoundRegardlessOfConfig(t *testing.T) {
	configs := []goasset.Config{
		nil,
		{"byteOrder": "sideways"},
		{"types.Ghost": "not: [valid"},
		{"fields.Header.version": "int128"},
	}
	for _, cfg := range configs {
		r := goasset.NewResolver(registry(t, cfg, header, entry))
		_, err := r.Resolve("Ghost")
		if !errors.Is(err, goasset.ErrTypeNotFound) && cfg["types.Ghost"] == nil {
			t.Fatalf("cfg %v: want TypeNotFound, got %v", cfg, err)
		}
		_, err = r.Resolve("Nope")
		if !errors.Is(err, goasset.ErrTypeNotFound) {
			t.Fatalf("cfg %v: want TypeNotFound, got %v", cfg, err)
		}
	}
}

func TestResolve_EmptyConfigResolvesEverything(t *testing.T) {
	reg := registry(t, goasset.Config{}, header, entry)
	r := goasset.NewResolver(reg)
	for _, n := range reg.Names() {
		if _, err := r.Resolve(n); err != nil {
			t.Fatalf("%s: %v", n, err)
		}
	}
}

func TestResolve_FieldWidthOverrideIsLocal(t *testing.T) {
	reg := registry(t, goasset.Config{"fields.Header.version": map[string]any{"width": 4}}, header, entry, single)
	r := goasset.NewResolver(reg)
	h, err := r.Resolve("Header")
	if err != nil {
		t.Fatal(err)
	}
	raw, err := h.EncodeBytes(goasset.Fields("version", goasset.Int(1), "size", goasset.Int(2)))
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != 8 {
		t.Fatalf("override ignored: % x", raw)
	}
	s, err := r.Resolve("Single")
	if err != nil {
		t.Fatal(err)
	}
	if raw, _ := s.EncodeBytes(goasset.Fields("field", goasset.Int(1))); len(raw) != 4 {
		t.Fatalf("unrelated type changed: % x", raw)
	}
	d, err := reg.Lookup("Header")
	if err != nil {
		t.Fatal(err)
	}
	if d.Fields[0].Width != 4 {
		t.Fatalf("Lookup does not reflect override: %+v", d.Fields[0])
	}
}

func TestRegistry_LookupUnknownType(t *testing.T) {
	reg := registry(t, goasset.Config{"byteOrder": "sideways"}, header)
	_, err := reg.Lookup("Ghost")
	wantCode(t, err, goasset.ErrTypeNotFound, "")
	if _, err := reg.Lookup("Header"); err != nil {
		t.Fatalf("registered type: %v", err)
	}
}

func TestResolve_ConflictingWidthIsUnsupported(t *testing.T) {
	cfg := goasset.Config{"fields.Header.version": map[string]any{"kind": "int16", "width": 4}}
	r := goasset.NewResolver(registry(t, cfg, header, entry))
	_, err := r.Resolve("Header")
	if !errors.Is(err, goasset.ErrUnsupportedConfiguration) {
		t.Fatalf("want UnsupportedConfiguration, got %v", err)
	}
	// Entry references Header, so it cannot be bound either
	_, err = r.Resolve("Entry")
	if !errors.Is(err, goasset.ErrUnsupportedConfiguration) {
		t.Fatalf("want UnsupportedConfiguration for referencing type, got %v", err)
	}
}

func TestResolve_BadOverrides(t *testing.T) {
	cases := map[string]goasset.Config{
		"missing field":   {"fields.Header.nope": "int8"},
		"bad kind":        {"fields.Header.size": "int128"},
		"width on string": {"fields.Entry.key": map[string]any{"width": 2}},
		"bad layout":      {"types.Header": "- {name: a, kind: quaternion}"},
		"count vs prefix": {"fields.Entry.key": map[string]any{"prefix": "uint8", "count": 3}},
	}
	for name, cfg := range cases {
		r := goasset.NewResolver(registry(t, cfg, header, entry))
		typ := "Header"
		if strings.Contains(name, "string") || strings.Contains(name, "prefix") {
			typ = "Entry"
		}
		if _, err := r.Resolve(typ); !errors.Is(err, goasset.ErrUnsupportedConfiguration) {
			t.Fatalf("%s: want UnsupportedConfiguration, got %v", name, err)
		}
	}
}

func TestResolve_GlobalOptionProblem(t *testing.T) {
	r := goasset.NewResolver(registry(t, goasset.Config{"byteOrder": "sideways"}, header))
	_, err := r.Resolve("Header")
	if !errors.Is(err, goasset.ErrUnsupportedConfiguration) {
		t.Fatalf("want UnsupportedConfiguration, got %v", err)
	}
}

func TestResolve_Gates(t *testing.T) {
	off := codecFor(t, nil, "Entry", header, entry)
	on := codecFor(t, goasset.Config{"entry.withNote": 1}, "Entry", header, entry)
	v := goasset.Fields(
		"key", goasset.String("k"),
		"head", goasset.Fields("version", goasset.Int(1), "size", goasset.Int(0)),
	)
	if _, err := off.EncodeBytes(v); err != nil {
		t.Fatal(err)
	}
	_, err := on.EncodeBytes(v)
	wantCode(t, err, goasset.ErrMissingField, "note")

	undeclared := dsl.Type("U").Field(dsl.Int8("x").When("nobody.declared.this")).MustBuild()
	_, err = goasset.NewResolver(registry(t, nil, undeclared)).Resolve("U")
	if !errors.Is(err, goasset.ErrUnsupportedConfiguration) {
		t.Fatalf("want UnsupportedConfiguration, got %v", err)
	}
}

func TestResolve_Requires(t *testing.T) {
	typ := dsl.Type("R").Require("platform").Field(dsl.Int8("x")).MustBuild()
	_, err := goasset.NewResolver(registry(t, nil, typ)).Resolve("R")
	if !errors.Is(err, goasset.ErrUnsupportedConfiguration) {
		t.Fatalf("want UnsupportedConfiguration, got %v", err)
	}
	if _, err := goasset.NewResolver(registry(t, goasset.Config{"platform": "pc"}, typ)).Resolve("R"); err != nil {
		t.Fatal(err)
	}
}

func TestResolve_ReferenceCycleAndDanglingRef(t *testing.T) {
	a := dsl.Type("A").Field(dsl.Ref("b", "B")).MustBuild()
	b := dsl.Type("B").Field(dsl.Array("as", dsl.Ref("", "A"))).MustBuild()
	r := goasset.NewResolver(registry(t, nil, a, b))
	if _, err := r.Resolve("A"); !errors.Is(err, goasset.ErrUnsupportedConfiguration) {
		t.Fatalf("cycle: got %v", err)
	}

	dangling := dsl.Type("D").Field(dsl.Ref("x", "Missing")).MustBuild()
	_, err := goasset.NewResolver(registry(t, nil, dangling)).Resolve("D")
	if !errors.Is(err, goasset.ErrUnsupportedConfiguration) || !errors.Is(err, goasset.ErrTypeNotFound) {
		t.Fatalf("dangling ref: got %v", err)
	}
}

func TestRegistry_TypesOverrideFromList(t *testing.T) {
	cfg := goasset.Config{"types.Point": []any{
		map[string]any{"name": "x", "kind": "int16"},
		map[string]any{"name": "y", "kind": "int16"},
	}}
	c := codecFor(t, cfg, "Point")
	raw, err := c.EncodeBytes(goasset.Fields("x", goasset.Int(1), "y", goasset.Int(-1)))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, []byte{1, 0, 0xff, 0xff}) {
		t.Fatalf("encoded % x", raw)
	}
}

func TestRegistry_NestedFieldOverride(t *testing.T) {
	typ := dsl.Type("Table").Field(
		dsl.Array("rows", dsl.Record("", dsl.Int32("id"), dsl.String("label"))),
	).MustBuild()
	cfg := goasset.Config{"fields.Table.rows.label": map[string]any{"prefix": "uint8"}}
	c := codecFor(t, cfg, "Table", typ)
	raw, err := c.EncodeBytes(goasset.Fields("rows", goasset.List(
		goasset.Fields("id", goasset.Int(1), "label", goasset.String("a")),
	)))
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{1, 0, 0, 0, 1, 0, 0, 0, 1, 'a'}
	if !bytes.Equal(raw, want) {
		t.Fatalf("encoded % x", raw)
	}
}

func TestRegistry_ExtrasAndOptions(t *testing.T) {
	reg := registry(t, goasset.Config{"alignment": 8, "game.title": "x", "fields.Header.size": "int64"}, header)
	if _, ok := reg.Extras()["game.title"]; !ok {
		t.Fatalf("opaque key dropped: %v", reg.Extras())
	}
	if _, ok := reg.Extras()["alignment"]; ok {
		t.Fatal("engine option reported as extra")
	}
	if reg.Options().Alignment != 8 {
		t.Fatalf("alignment %d", reg.Options().Alignment)
	}
}

func TestRegistry_DuplicateCatalogType(t *testing.T) {
	_, err := goasset.NewRegistry(nil, []goasset.Catalog{
		{Name: "one", Types: []goasset.TypeDescriptor{header}},
		{Name: "two", Types: []goasset.TypeDescriptor{header}},
	})
	if err == nil {
		t.Fatal("want duplicate type error")
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := goasset.NewResolver(registry(t, nil, header, entry))
	v := goasset.Fields(
		"key", goasset.String("k"),
		"head", goasset.Fields("version", goasset.Int(3), "size", goasset.Int(9)),
	)
	var outs [][]byte
	for i := 0; i < 2; i++ {
		c, err := r.Resolve("Entry")
		if err != nil {
			t.Fatal(err)
		}
		raw, err := c.EncodeBytes(v)
		if err != nil {
			t.Fatal(err)
		}
		outs = append(outs, raw)
	}
	if !bytes.Equal(outs[0], outs[1]) {
		t.Fatal("resolves differ")
	}
}
