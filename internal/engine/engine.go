// Package engine turns textual interchange formats into a flat token stream
// that the ValueTree builder consumes.
package engine

import (
	"fmt"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

var kindNames = [...]string{
	KindBeginObject: "{",
	KindEndObject:   "}",
	KindBeginArray:  "[",
	KindEndArray:    "]",
	KindKey:         "key",
	KindString:      "string",
	KindNumber:      "number",
	KindBool:        "bool",
	KindNull:        "null",
}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string // literal text, exactly as written
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the builder.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Options bounds what a source accepts.
type Options struct {
	// MaxDepth limits container nesting; 0 means DefaultMaxDepth.
	MaxDepth int
}

// DefaultMaxDepth is the nesting limit applied when Options.MaxDepth is 0.
const DefaultMaxDepth = 10000

// DuplicateKeyError reports a key that appears twice in one object.
type DuplicateKeyError struct {
	Key    string
	Offset int64
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key %q at offset %d", e.Key, e.Offset)
}

// DepthError reports nesting beyond Options.MaxDepth.
type DepthError struct {
	Max    int
	Offset int64
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("max depth %d exceeded at offset %d", e.Max, e.Offset)
}
