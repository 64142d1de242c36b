package goasset

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders v as a YAML node tree. Bytes are tagged !!binary and
// non-finite floats use YAML's .nan/.inf spellings, so ParseYAML restores
// every kind.
func (v Value) MarshalYAML() (any, error) { return v.yamlNode(), nil }

func scalar(tag, value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
}

func (v Value) yamlNode() *yaml.Node {
	switch v.kind {
	case KindInt:
		return scalar("!!int", strconv.FormatInt(int64(v.num), 10))
	case KindUint:
		return scalar("!!int", strconv.FormatUint(v.num, 10))
	case KindFloat:
		f := math.Float64frombits(v.num)
		switch {
		case math.IsNaN(f):
			return scalar("!!float", ".nan")
		case math.IsInf(f, 1):
			return scalar("!!float", ".inf")
		case math.IsInf(f, -1):
			return scalar("!!float", "-.inf")
		}
		return scalar("!!float", formatFloat(f))
	case KindBool:
		return scalar("!!bool", strconv.FormatBool(v.num == 1))
	case KindString:
		return scalar("!!str", v.str)
	case KindBytes:
		return scalar("!!binary", base64.StdEncoding.EncodeToString(v.raw))
	case KindList:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range v.list {
			n.Content = append(n.Content, it.yamlNode())
		}
		return n
	case KindMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.m.Keys() {
			e, _ := v.m.Get(k)
			n.Content = append(n.Content, scalar("!!str", k), e.yamlNode())
		}
		return n
	}
	return scalar("!!null", "null")
}

// UnmarshalYAML builds v from a YAML node, keeping mapping order. Aliases are
// expanded and duplicate mapping keys are rejected.
func (v *Value) UnmarshalYAML(n *yaml.Node) error {
	out, err := fromYAML(n, 0)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// ParseYAML builds a Value from one YAML document.
func ParseYAML(data []byte) (Value, error) {
	var v Value
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Value{}, err
	}
	return v, nil
}

const maxYAMLDepth = 10000

func fromYAML(n *yaml.Node, depth int) (Value, error) {
	if depth > maxYAMLDepth {
		return Value{}, fmt.Errorf("yaml: line %d: nesting deeper than %d", n.Line, maxYAMLDepth)
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(n.Content[0], depth+1)
	case yaml.AliasNode:
		return fromYAML(n.Alias, depth+1)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(n.Content))
		for _, c := range n.Content {
			it, err := fromYAML(c, depth+1)
			if err != nil {
				return Value{}, err
			}
			items = append(items, it)
		}
		return List(items...), nil
	case yaml.MappingNode:
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if k.Kind != yaml.ScalarNode {
				return Value{}, fmt.Errorf("yaml: line %d: mapping keys must be scalars", k.Line)
			}
			if m.Has(k.Value) {
				return Value{}, fmt.Errorf("yaml: line %d: duplicate key %q", k.Line, k.Value)
			}
			e, err := fromYAML(n.Content[i+1], depth+1)
			if err != nil {
				return Value{}, err
			}
			m.Set(k.Value, e)
		}
		return MapValue(m), nil
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return Value{}, fmt.Errorf("yaml: line %d: unsupported node kind %d", n.Line, n.Kind)
}

func yamlScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err == nil {
			return Int(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return Value{}, err
		}
		return Uint(u), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case "!!binary":
		b, err := base64.StdEncoding.DecodeString(n.Value)
		if err != nil {
			return Value{}, fmt.Errorf("yaml: line %d: !!binary: %w", n.Line, err)
		}
		return Bytes(b), nil
	}
	return String(n.Value), nil
}
