package goasset

import (
	"fmt"

	"github.com/reoring/goasset/jsonschema"
)

// JSONSchema describes the JSON form of the values this codec reads and
// writes (as produced by Value.MarshalJSON and accepted after Normalize).
// Mappings are closed and every active field is required.
func (c *Codec) JSONSchema() *jsonschema.Schema {
	s := c.root.schema()
	s.Schema = jsonschema.Draft
	s.Title = c.typ
	return s
}

func (n *recordNode) schema() *jsonschema.Schema {
	s := jsonschema.Object()
	n.schemaInto(s)
	return s
}

func (n *recordNode) schemaInto(s *jsonschema.Schema) {
	for _, m := range n.members {
		switch {
		case m.inline != nil:
			m.inline.schemaInto(s)
		case m.name != "":
			s.Property(m.name, m.node.schema())
		}
	}
}

func (n *arrayNode) schema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "array", Items: n.elem.schema()}
	if n.prefix == PrefixFixed {
		s.MinItems, s.MaxItems = jsonschema.Int(n.count), jsonschema.Int(n.count)
	}
	return s
}

func (n *variantNode) schema() *jsonschema.Schema {
	s := &jsonschema.Schema{}
	for _, v := range n.order {
		arm := jsonschema.Object()
		tag := n.tag.schema()
		tag.Const = v
		arm.Property(n.tagName, tag)
		n.cases[v].schemaInto(arm)
		s.OneOf = append(s.OneOf, arm)
	}
	return s
}

func (n *padNode) schema() *jsonschema.Schema { return nil }

func (n *intNode) schema() *jsonschema.Schema {
	lo, hi := n.bounds()
	return &jsonschema.Schema{Type: "integer", Format: n.name(), Minimum: lo, Maximum: hi}
}

func (n *floatNode) schema() *jsonschema.Schema {
	format := "double"
	if n.width == 4 {
		format = "float"
	}
	return &jsonschema.Schema{OneOf: []*jsonschema.Schema{
		{Type: "number", Format: format},
		{Type: "string", Enum: []any{"NaN", "+Inf", "-Inf"}},
	}}
}

func (boolNode) schema() *jsonschema.Schema { return &jsonschema.Schema{Type: "boolean"} }

func (n *textNode) schema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "string"}
	unit := "UTF-8 bytes"
	if n.utf16 {
		unit = "UTF-16 code units"
	}
	if n.prefix == PrefixFixed {
		s.Description = fmt.Sprintf("at most %d %s", n.count, unit)
	} else {
		s.Description = fmt.Sprintf("at most %d %s", maxLength(n.prefix), unit)
	}
	return s
}

func (n *blobNode) schema() *jsonschema.Schema {
	s := &jsonschema.Schema{Type: "string", Format: "byte"}
	if n.prefix == PrefixFixed {
		s.Description = fmt.Sprintf("base64 of exactly %d bytes", n.count)
	}
	return s
}
