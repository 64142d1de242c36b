package goasset_test

import (
	"testing"

	json "github.com/goccy/go-json"

	goasset "github.com/reoring/goasset"
	"github.com/reoring/goasset/dsl"
	"github.com/reoring/goasset/jsonschema"
)

func TestJSONSchema_DescribesActiveFields(t *testing.T) {
	typ := dsl.Type("Thing").Option("thing.extra").Field(
		dsl.Embed("Header"),
		dsl.Uint8("flags").Aligned(),
		dsl.Array("tags", dsl.String("")).Fixed(2),
		dsl.Variant("shape", dsl.Uint8("kind"),
			dsl.Case(0, dsl.Float32("radius")),
			dsl.Case(1, dsl.Bytes("data")),
		),
		dsl.Int32("extra").When("thing.extra"),
		dsl.Pad(2),
	).MustBuild()
	s := codecFor(t, nil, "Thing", header, typ).JSONSchema()

	if s.Title != "Thing" || s.Schema != jsonschema.Draft {
		t.Fatalf("root: %+v", s)
	}
	want := []string{"version", "size", "flags", "tags", "shape"}
	if len(s.Required) != len(want) {
		t.Fatalf("required %v", s.Required)
	}
	for i, k := range want {
		if s.Required[i] != k {
			t.Fatalf("required %v", s.Required)
		}
	}
	if *s.AdditionalProperties {
		t.Fatal("mappings are closed")
	}
	if f := s.Properties["flags"]; f.Type != "integer" || f.Maximum != uint64(255) {
		t.Fatalf("flags: %+v", f)
	}
	if tags := s.Properties["tags"]; *tags.MinItems != 2 || *tags.MaxItems != 2 || tags.Items.Type != "string" {
		t.Fatalf("tags: %+v", tags)
	}
	shape := s.Properties["shape"]
	if len(shape.OneOf) != 2 || shape.OneOf[1].Properties["kind"].Const != int64(1) {
		t.Fatalf("shape: %+v", shape)
	}
	if shape.OneOf[1].Properties["data"].Format != "byte" {
		t.Fatalf("data: %+v", shape.OneOf[1].Properties["data"])
	}

	if _, err := json.Marshal(s); err != nil {
		t.Fatal(err)
	}
}

func TestJSONSchema_FollowsConfiguration(t *testing.T) {
	typ := dsl.Type("Gated").Option("g.on").Field(dsl.Int8("a"), dsl.Int8("b").When("g.on")).MustBuild()
	off := codecFor(t, nil, "Gated", typ).JSONSchema()
	on := codecFor(t, goasset.Config{"g.on": true}, "Gated", typ).JSONSchema()
	if len(off.Properties) != 1 || len(on.Properties) != 2 {
		t.Fatalf("off %v on %v", off.Required, on.Required)
	}
}
