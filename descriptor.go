package goasset

import (
	"fmt"
	"strings"
)

// FieldKind is the closed set of field shapes a TypeDescriptor is composed of.
type FieldKind uint8

const (
	FieldInt     FieldKind = iota + 1 // Signed integer of Width bytes.
	FieldUint                         // Unsigned integer of Width bytes.
	FieldFloat                        // IEEE 754 float of Width bytes.
	FieldBool                         // One byte, 0 or 1.
	FieldString                       // Length-prefixed (or fixed) text.
	FieldBytes                        // Length-prefixed (or fixed) raw blob.
	FieldRecord                       // Inline nested record (Fields).
	FieldRef                          // Nested record resolved by type name (Ref).
	FieldArray                        // Counted sequence of Elem.
	FieldVariant                      // Integer discriminant (Tag) followed by the matching case.
	FieldPad                          // Hidden fixed bytes (Count), zero or Fill.
)

var fieldKindNames = map[FieldKind]string{
	FieldInt:     "int",
	FieldUint:    "uint",
	FieldFloat:   "float",
	FieldBool:    "bool",
	FieldString:  "string",
	FieldBytes:   "bytes",
	FieldRecord:  "record",
	FieldRef:     "ref",
	FieldArray:   "array",
	FieldVariant: "variant",
	FieldPad:     "pad",
}

func (k FieldKind) String() string {
	if s, ok := fieldKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("FieldKind(%d)", uint8(k))
}

// Prefix selects how the length of a string, blob or array is stored.
type Prefix uint8

const (
	PrefixDefault Prefix = iota // Use the configured stringLength / arrayLength.
	PrefixInt32
	PrefixUint32
	PrefixUint16
	PrefixUint8
	PrefixVarint // 7-bit encoded, at most 32 bits.
	PrefixFixed  // No prefix; the length is Field.Count.
)

var prefixNames = map[Prefix]string{
	PrefixDefault: "default",
	PrefixInt32:   "int32",
	PrefixUint32:  "uint32",
	PrefixUint16:  "uint16",
	PrefixUint8:   "uint8",
	PrefixVarint:  "varint",
	PrefixFixed:   "fixed",
}

func (p Prefix) String() string {
	if s, ok := prefixNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Prefix(%d)", uint8(p))
}

// ParsePrefix maps a configuration spelling to a Prefix.
func ParsePrefix(s string) (Prefix, error) {
	for p, name := range prefixNames {
		if strings.EqualFold(name, s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown length prefix %q", s)
}

// AlignDefault asks for the configured alignment after a field.
const AlignDefault = -1

// Field specifies one entry of a record layout. Field order within a
// descriptor is wire order.
type Field struct {
	Name   string
	Kind   FieldKind
	Width  int    // Bytes for ints (1, 2, 4, 8) and floats (4, 8).
	Prefix Prefix // Strings, blobs and arrays.
	Count  int    // Length for PrefixFixed; byte count for FieldPad.
	Align  int    // 0: none, AlignDefault: configured alignment, N: pad to N after the field.

	Elem   *Field  // FieldArray element.
	Fields []Field // FieldRecord members.
	Ref    string  // FieldRef target type name.
	Inline bool    // FieldRef: splice the target's fields into the parent mapping.
	Tag    *Field  // FieldVariant discriminant (FieldInt or FieldUint).
	Cases  []Case  // FieldVariant cases.
	Fill   []byte  // FieldPad content; zeros when empty.

	When   string // Option key gating the field; a leading "!" negates.
	Since  string // Present from this engine version on.
	Before string // Present below this engine version.
}

// Case is one arm of a variant field.
type Case struct {
	Value  int64
	Fields []Field
}

// Hidden reports whether the field is absent from the ValueTree.
func (f *Field) Hidden() bool { return f.Kind == FieldPad || (f.Kind == FieldRef && f.Inline) }

// TypeDescriptor describes how one asset type's binary layout maps to a
// ValueTree.
type TypeDescriptor struct {
	Name   string
	Doc    string
	Fields []Field
	// Options lists opaque configuration keys this type reads (for When gates).
	Options []string
	// Requires lists option keys that must be present in the configuration.
	Requires []string
}

// Validate checks structural consistency that does not depend on the
// configuration: widths, nesting, and gate syntax.
func (d TypeDescriptor) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("type descriptor without a name")
	}
	var p Path
	return validateFields(d.Fields, &p)
}

func validateFields(fs []Field, p *Path) error {
	for i := range fs {
		f := &fs[i]
		name := f.Name
		if name == "" && !f.Hidden() {
			return fmt.Errorf("%s: field #%d without a name", p, i)
		}
		p.Field(name)
		if err := validateField(f, p); err != nil {
			return err
		}
		p.Pop()
	}
	return nil
}

func validateField(f *Field, p *Path) error {
	if f.Align < AlignDefault {
		return fmt.Errorf("%s: invalid alignment %d", p, f.Align)
	}
	if f.Count < 0 {
		return fmt.Errorf("%s: negative count %d", p, f.Count)
	}
	if w := strings.TrimPrefix(f.When, "!"); f.When != "" && w == "" {
		return fmt.Errorf("%s: empty gate", p)
	}
	switch f.Kind {
	case FieldInt, FieldUint:
		if f.Width != 1 && f.Width != 2 && f.Width != 4 && f.Width != 8 {
			return fmt.Errorf("%s: integer width %d not in {1,2,4,8}", p, f.Width)
		}
	case FieldFloat:
		if f.Width != 4 && f.Width != 8 {
			return fmt.Errorf("%s: float width %d not in {4,8}", p, f.Width)
		}
	case FieldBool:
		if f.Width != 0 && f.Width != 1 {
			return fmt.Errorf("%s: bool width %d, want 1", p, f.Width)
		}
	case FieldString, FieldBytes:
	case FieldRecord:
		return validateFields(f.Fields, p)
	case FieldRef:
		if f.Ref == "" {
			return fmt.Errorf("%s: reference without a target type", p)
		}
	case FieldArray:
		if f.Elem == nil {
			return fmt.Errorf("%s: array without an element", p)
		}
		p.Index(0)
		defer p.Pop()
		return validateField(f.Elem, p)
	case FieldVariant:
		if f.Tag == nil || (f.Tag.Kind != FieldInt && f.Tag.Kind != FieldUint) {
			return fmt.Errorf("%s: variant needs an integer tag", p)
		}
		if f.Tag.Name == "" {
			return fmt.Errorf("%s: variant tag without a name", p)
		}
		if err := validateField(f.Tag, p); err != nil {
			return err
		}
		if len(f.Cases) == 0 {
			return fmt.Errorf("%s: variant without cases", p)
		}
		seen := map[int64]bool{}
		for _, c := range f.Cases {
			if seen[c.Value] {
				return fmt.Errorf("%s: duplicate case %d", p, c.Value)
			}
			seen[c.Value] = true
			if err := validateFields(c.Fields, p); err != nil {
				return err
			}
		}
	case FieldPad:
		if len(f.Fill) > 0 && len(f.Fill) != f.Count {
			return fmt.Errorf("%s: fill has %d bytes, count is %d", p, len(f.Fill), f.Count)
		}
	default:
		return fmt.Errorf("%s: unknown field kind %d", p, f.Kind)
	}
	return nil
}
