package goasset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/goasset/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeTypeNotFound             = "type_not_found"
	CodeUnsupportedConfiguration = "unsupported_configuration"
	CodeTruncatedInput           = "truncated_input"
	CodeMalformedInput           = "malformed_input"
	CodeMissingField             = "missing_field"
	CodeShapeMismatch            = "shape_mismatch"
)

// Error is the single failure type surfaced by registry, resolver and codecs.
type Error struct {
	Code    string // One of the codes listed above.
	Type    string // Asset type being resolved, decoded or encoded.
	Path    string // Dot/bracket path from the record root (for example: mSource.mTerms[2].Term).
	Message string
	Hint    string // Optional: remediation hints, expected widths, etc.
	Offset  int64  // Byte offset in the record (-1 when unknown).
	Cause   error  // Optional: underlying error.
}

// Sentinels for errors.Is; they match any *Error carrying the same code.
var (
	ErrTypeNotFound             = &Error{Code: CodeTypeNotFound, Offset: -1}
	ErrUnsupportedConfiguration = &Error{Code: CodeUnsupportedConfiguration, Offset: -1}
	ErrTruncatedInput           = &Error{Code: CodeTruncatedInput, Offset: -1}
	ErrMalformedInput           = &Error{Code: CodeMalformedInput, Offset: -1}
	ErrMissingField             = &Error{Code: CodeMissingField, Offset: -1}
	ErrShapeMismatch            = &Error{Code: CodeShapeMismatch, Offset: -1}
)

// Error renders "code at path in Type (offset N): message; hint".
func (e *Error) Error() string {
	b := &strings.Builder{}
	b.WriteString(e.Code)
	if e.Path != "" {
		b.WriteString(" at ")
		b.WriteString(e.Path)
	}
	if e.Type != "" {
		b.WriteString(" in ")
		b.WriteString(e.Type)
	}
	if e.Offset >= 0 {
		fmt.Fprintf(b, " (offset %d)", e.Offset)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Hint != "" {
		b.WriteString("; ")
		b.WriteString(e.Hint)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches another *Error by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// AsError extracts *Error from an error chain using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in the chain, or "".
func CodeOf(err error) string {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

func newError(code, typ, path string, offset int64, hint string, data map[string]string) *Error {
	return &Error{Code: code, Type: typ, Path: path, Message: i18n.T(code, data), Hint: hint, Offset: offset}
}

func typeNotFound(name string) *Error {
	return newError(CodeTypeNotFound, name, "", -1, fmt.Sprintf("no descriptor named %q", name), nil)
}

func unsupported(typ, path, hint string) *Error {
	return newError(CodeUnsupportedConfiguration, typ, path, -1, hint, nil)
}

func shapeMismatch(typ, path, want string, got Value, hint string) *Error {
	return newError(CodeShapeMismatch, typ, path, -1, hint, map[string]string{"want": want, "got": got.Kind().String()})
}

// Path is a dot/bracket path from a record root, tracked as a stack while a
// codec walks the tree and rendered only when an error is reported.
type Path struct {
	segs []pathSeg
}

type pathSeg struct {
	name  string
	index int // -1 for named segments
}

// Field pushes a named segment.
func (p *Path) Field(name string) { p.segs = append(p.segs, pathSeg{name: name, index: -1}) }

// Index pushes a sequence index segment.
func (p *Path) Index(i int) { p.segs = append(p.segs, pathSeg{index: i}) }

// Pop removes the last segment.
func (p *Path) Pop() { p.segs = p.segs[:len(p.segs)-1] }

// String renders the path, for example "mSource.mTerms[2].Term". Names that
// would be ambiguous are rendered in bracket form: ["a.b"].
func (p *Path) String() string {
	if p == nil || len(p.segs) == 0 {
		return ""
	}
	b := &strings.Builder{}
	for i, s := range p.segs {
		if s.index >= 0 {
			fmt.Fprintf(b, "[%d]", s.index)
			continue
		}
		if s.name == "" || strings.ContainsAny(s.name, ".[]\"") {
			fmt.Fprintf(b, "[%q]", s.name)
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.name)
	}
	return b.String()
}

// child renders the path with one more named segment without mutating p.
func (p *Path) child(name string) string {
	p.Field(name)
	s := p.String()
	p.Pop()
	return s
}
