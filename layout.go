package goasset

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// LayoutField is the configuration spelling of a Field. It is accepted in
// types.<Type> entries either as decoded maps or as YAML/JSON text.
//
//	- name: m_FileID
//	  kind: int32
//	- name: m_Name
//	  kind: string
//	  align: default
type LayoutField struct {
	Name   string        `mapstructure:"name" yaml:"name"`
	Kind   string        `mapstructure:"kind" yaml:"kind"`
	Width  int           `mapstructure:"width" yaml:"width"`
	Prefix string        `mapstructure:"prefix" yaml:"prefix"`
	Count  *int          `mapstructure:"count" yaml:"count"`
	Align  string        `mapstructure:"align" yaml:"align"`
	Elem   *LayoutField  `mapstructure:"elem" yaml:"elem"`
	Fields []LayoutField `mapstructure:"fields" yaml:"fields"`
	Ref    string        `mapstructure:"ref" yaml:"ref"`
	Inline bool          `mapstructure:"inline" yaml:"inline"`
	Tag    *LayoutField  `mapstructure:"tag" yaml:"tag"`
	Cases  []LayoutCase  `mapstructure:"cases" yaml:"cases"`
	Fill   string        `mapstructure:"fill" yaml:"fill"` // hex
	When   string        `mapstructure:"when" yaml:"when"`
	Since  string        `mapstructure:"since" yaml:"since"`
	Before string        `mapstructure:"before" yaml:"before"`
}

// LayoutCase is the configuration spelling of a variant Case.
type LayoutCase struct {
	Value  int64         `mapstructure:"value" yaml:"value"`
	Fields []LayoutField `mapstructure:"fields" yaml:"fields"`
}

// LayoutType is the document form of a types.<Type> entry. A bare field list
// is accepted as well.
type LayoutType struct {
	Doc      string        `mapstructure:"doc" yaml:"doc"`
	Options  []string      `mapstructure:"options" yaml:"options"`
	Requires []string      `mapstructure:"requires" yaml:"requires"`
	Fields   []LayoutField `mapstructure:"fields" yaml:"fields"`
}

// ParseLayout builds a TypeDescriptor named name from a configuration value:
// YAML or JSON text, a field list, or a document map.
func ParseLayout(name string, raw any) (TypeDescriptor, error) {
	var lt LayoutType
	switch v := raw.(type) {
	case string:
		var node yaml.Node
		if err := yaml.Unmarshal([]byte(v), &node); err != nil {
			return TypeDescriptor{}, fmt.Errorf("layout text: %w", err)
		}
		doc := &node
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			doc = doc.Content[0]
		}
		switch doc.Kind {
		case yaml.SequenceNode:
			if err := doc.Decode(&lt.Fields); err != nil {
				return TypeDescriptor{}, fmt.Errorf("layout text: %w", err)
			}
		case yaml.MappingNode:
			if err := doc.Decode(&lt); err != nil {
				return TypeDescriptor{}, fmt.Errorf("layout text: %w", err)
			}
		default:
			return TypeDescriptor{}, fmt.Errorf("layout text must be a list or a mapping")
		}
	case []any, []map[string]any:
		if err := decodeStrict(v, &lt.Fields); err != nil {
			return TypeDescriptor{}, err
		}
	case map[string]any:
		if err := decodeStrict(v, &lt); err != nil {
			return TypeDescriptor{}, err
		}
	default:
		return TypeDescriptor{}, fmt.Errorf("layout must be text, a list or a mapping, got %T", raw)
	}
	fields, err := layoutFields(lt.Fields)
	if err != nil {
		return TypeDescriptor{}, err
	}
	return TypeDescriptor{Name: name, Doc: lt.Doc, Fields: fields, Options: lt.Options, Requires: lt.Requires}, nil
}

func decodeStrict(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func layoutFields(ls []LayoutField) ([]Field, error) {
	out := make([]Field, 0, len(ls))
	for i := range ls {
		f, err := ls[i].toField()
		if err != nil {
			name := ls[i].Name
			if name == "" {
				name = "#" + strconv.Itoa(i)
			}
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (l LayoutField) toField() (Field, error) {
	kind, width, err := parseKind(l.Kind)
	if err != nil {
		return Field{}, err
	}
	if l.Width != 0 {
		if width != 0 && l.Width != width {
			return Field{}, fmt.Errorf("kind %s implies width %d, width says %d", l.Kind, width, l.Width)
		}
		width = l.Width
	}
	f := Field{Name: l.Name, Kind: kind, Width: width, Ref: l.Ref, Inline: l.Inline, When: l.When, Since: l.Since, Before: l.Before}
	if l.Prefix != "" {
		if f.Prefix, err = ParsePrefix(l.Prefix); err != nil {
			return Field{}, err
		}
	}
	if l.Count != nil {
		if err := setCount(&f, *l.Count); err != nil {
			return Field{}, err
		}
	}
	if f.Align, err = parseAlign(l.Align); err != nil {
		return Field{}, err
	}
	if l.Fill != "" {
		if f.Fill, err = hex.DecodeString(l.Fill); err != nil {
			return Field{}, fmt.Errorf("fill: %w", err)
		}
		if l.Count == nil {
			f.Count = len(f.Fill)
		}
	}
	if l.Elem != nil {
		e, err := l.Elem.toField()
		if err != nil {
			return Field{}, fmt.Errorf("elem: %w", err)
		}
		f.Elem = &e
	}
	if len(l.Fields) > 0 {
		if f.Fields, err = layoutFields(l.Fields); err != nil {
			return Field{}, err
		}
	}
	if l.Tag != nil {
		t, err := l.Tag.toField()
		if err != nil {
			return Field{}, fmt.Errorf("tag: %w", err)
		}
		f.Tag = &t
	}
	for _, c := range l.Cases {
		fs, err := layoutFields(c.Fields)
		if err != nil {
			return Field{}, fmt.Errorf("case %d: %w", c.Value, err)
		}
		f.Cases = append(f.Cases, Case{Value: c.Value, Fields: fs})
	}
	return f, nil
}

func setCount(f *Field, n int) error {
	switch f.Kind {
	case FieldString, FieldBytes, FieldArray:
		if f.Prefix != PrefixDefault && f.Prefix != PrefixFixed {
			return fmt.Errorf("count %d conflicts with prefix %s", n, f.Prefix)
		}
		f.Prefix = PrefixFixed
	case FieldPad:
	default:
		return fmt.Errorf("count does not apply to %s", f.Kind)
	}
	f.Count = n
	return nil
}

func parseAlign(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "0":
		return 0, nil
	case "default", "config":
		return AlignDefault, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("align %q: want none, default or a positive integer", s)
	}
	return n, nil
}

// parseKind maps kind spellings to a FieldKind and the width they imply (0
// when the spelling does not fix one).
func parseKind(s string) (FieldKind, int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int8", "sbyte":
		return FieldInt, 1, nil
	case "int16", "short":
		return FieldInt, 2, nil
	case "int32":
		return FieldInt, 4, nil
	case "int64", "long":
		return FieldInt, 8, nil
	case "int":
		return FieldInt, 0, nil
	case "uint8", "byte":
		return FieldUint, 1, nil
	case "uint16", "ushort":
		return FieldUint, 2, nil
	case "uint32":
		return FieldUint, 4, nil
	case "uint64", "ulong":
		return FieldUint, 8, nil
	case "uint":
		return FieldUint, 0, nil
	case "float32", "single":
		return FieldFloat, 4, nil
	case "float64", "double":
		return FieldFloat, 8, nil
	case "float":
		return FieldFloat, 0, nil
	case "bool", "boolean":
		return FieldBool, 1, nil
	case "string", "text":
		return FieldString, 0, nil
	case "bytes", "blob":
		return FieldBytes, 0, nil
	case "record":
		return FieldRecord, 0, nil
	case "ref":
		return FieldRef, 0, nil
	case "array":
		return FieldArray, 0, nil
	case "variant":
		return FieldVariant, 0, nil
	case "pad":
		return FieldPad, 0, nil
	}
	return 0, 0, fmt.Errorf("unknown field kind %q", s)
}

// applyFieldOverride merges raw into every field addressed by path (fields
// sharing a name under exclusive gates are all updated).
func applyFieldOverride(fs []Field, path []string, raw any) error {
	matched := false
	for i := range fs {
		f := &fs[i]
		if f.Name != path[0] {
			continue
		}
		matched = true
		if len(path) == 1 {
			if err := mergeOverride(f, raw); err != nil {
				return err
			}
			continue
		}
		if err := applyNested(f, path[1:], raw); err != nil {
			return err
		}
	}
	if !matched {
		return fmt.Errorf("no field %q", path[0])
	}
	return nil
}

func applyNested(f *Field, rest []string, raw any) error {
	switch f.Kind {
	case FieldRecord:
		return applyFieldOverride(f.Fields, rest, raw)
	case FieldArray:
		if f.Elem.Kind == FieldRecord {
			return applyFieldOverride(f.Elem.Fields, rest, raw)
		}
	case FieldVariant:
		if f.Tag.Name == rest[0] && len(rest) == 1 {
			return mergeOverride(f.Tag, raw)
		}
		var firstErr error
		hit := false
		for ci := range f.Cases {
			err := applyFieldOverride(f.Cases[ci].Fields, rest, raw)
			if err == nil {
				hit = true
			} else if firstErr == nil {
				firstErr = err
			}
		}
		if hit {
			return nil
		}
		return firstErr
	case FieldRef:
		return fmt.Errorf("%s refers to %s; override that type instead", f.Name, f.Ref)
	}
	return fmt.Errorf("%s (%s) has no nested fields", f.Name, f.Kind)
}

// mergeOverride applies one override entry: a kind shorthand ("int16") or a
// map of Field attributes.
func mergeOverride(f *Field, raw any) error {
	var m map[string]any
	switch v := raw.(type) {
	case string:
		m = map[string]any{"kind": v}
	case map[string]any:
		m = v
	default:
		return fmt.Errorf("override must be a kind name or a mapping, got %T", raw)
	}

	width := 0
	if w, ok := m["width"]; ok {
		if err := mapstructure.WeakDecode(w, &width); err != nil {
			return fmt.Errorf("width: %v", err)
		}
	}
	if k, ok := m["kind"]; ok {
		ks, _ := k.(string)
		kind, implied, err := parseKind(ks)
		if err != nil {
			return err
		}
		if width != 0 && implied != 0 && width != implied {
			return fmt.Errorf("conflicting width directives: kind %s implies %d, width says %d", ks, implied, width)
		}
		f.Kind = kind
		if implied != 0 {
			f.Width = implied
		}
	}
	if width != 0 {
		switch f.Kind {
		case FieldInt, FieldUint, FieldFloat:
			f.Width = width
		default:
			return fmt.Errorf("width does not apply to %s", f.Kind)
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	// prefix before count so that conflicts are detected either way round
	sort.SliceStable(keys, func(i, j int) bool { return keys[i] == "prefix" && keys[j] != "prefix" })
	for _, k := range keys {
		val := m[k]
		switch k {
		case "kind", "width":
		case "prefix":
			s, _ := val.(string)
			p, err := ParsePrefix(s)
			if err != nil {
				return err
			}
			if _, hasCount := m["count"]; hasCount && p != PrefixFixed {
				return fmt.Errorf("conflicting length directives: prefix %s with count", p)
			}
			f.Prefix = p
		case "count":
			var n int
			if err := mapstructure.WeakDecode(val, &n); err != nil {
				return fmt.Errorf("count: %v", err)
			}
			if err := setCount(f, n); err != nil {
				return err
			}
		case "align":
			var s string
			if err := mapstructure.WeakDecode(val, &s); err != nil {
				return fmt.Errorf("align: %v", err)
			}
			a, err := parseAlign(s)
			if err != nil {
				return err
			}
			f.Align = a
		case "when", "since", "before":
			var s string
			if err := mapstructure.WeakDecode(val, &s); err != nil {
				return fmt.Errorf("%s: %v", k, err)
			}
			switch k {
			case "when":
				f.When = s
			case "since":
				f.Since = s
			default:
				f.Before = s
			}
		case "ref":
			s, _ := val.(string)
			f.Ref = s
		case "elem":
			if f.Elem == nil {
				return fmt.Errorf("elem override on %s", f.Kind)
			}
			e := *f.Elem
			if err := mergeOverride(&e, val); err != nil {
				return fmt.Errorf("elem: %w", err)
			}
			f.Elem = &e
		default:
			return fmt.Errorf("unknown override attribute %q", k)
		}
	}
	return nil
}

// cloneFields deep-copies a field list so overrides never touch catalog data.
func cloneFields(fs []Field) []Field {
	if fs == nil {
		return nil
	}
	out := make([]Field, len(fs))
	for i, f := range fs {
		out[i] = cloneField(f)
	}
	return out
}

func cloneField(f Field) Field {
	if f.Elem != nil {
		e := cloneField(*f.Elem)
		f.Elem = &e
	}
	if f.Tag != nil {
		t := cloneField(*f.Tag)
		f.Tag = &t
	}
	f.Fields = cloneFields(f.Fields)
	if f.Cases != nil {
		cs := make([]Case, len(f.Cases))
		for i, c := range f.Cases {
			cs[i] = Case{Value: c.Value, Fields: cloneFields(c.Fields)}
		}
		f.Cases = cs
	}
	if f.Fill != nil {
		f.Fill = append([]byte(nil), f.Fill...)
	}
	return f
}
