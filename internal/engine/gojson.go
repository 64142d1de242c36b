package engine

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
	keys         map[string]struct{}
}

type source struct {
	dec      *j.Decoder
	cr       *countingReader
	stack    []frame
	maxDepth int
}

// NewJSONReader wraps an io.Reader into a TokenSource for JSON using go-json.
// Numbers keep their literal text and duplicate keys fail the stream.
func NewJSONReader(r io.Reader, opt Options) TokenSource {
	cr := &countingReader{r: r}
	dec := j.NewDecoder(cr)
	dec.UseNumber()
	if opt.MaxDepth <= 0 {
		opt.MaxDepth = DefaultMaxDepth
	}
	return &source{dec: dec, cr: cr, maxDepth: opt.MaxDepth}
}

// NewJSONBytes wraps a byte slice into a TokenSource for JSON using go-json.
func NewJSONBytes(b []byte, opt Options) TokenSource { return NewJSONReader(bytes.NewReader(b), opt) }

// Location is approximate: the decoder reads ahead, so it reports how far
// the input has been consumed rather than the exact token start.
func (s *source) Location() int64 { return s.cr.n }

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// valueDone marks the enclosing object as waiting for its next key.
func (s *source) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}

func (s *source) push(k containerKind) error {
	if len(s.stack) >= s.maxDepth {
		return &DepthError{Max: s.maxDepth, Offset: s.Location()}
	}
	f := frame{kind: k}
	if k == kindObject {
		f.expectingKey = true
		f.keys = map[string]struct{}{}
	}
	s.stack = append(s.stack, f)
	return nil
}

func (s *source) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

func (s *source) NextToken() (Token, error) {
	off := s.Location()
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			if err := s.push(kindObject); err != nil {
				return Token{}, err
			}
			return Token{Kind: KindBeginObject, Offset: off}, nil
		case '}':
			s.pop()
			return Token{Kind: KindEndObject, Offset: off}, nil
		case '[':
			if err := s.push(kindArray); err != nil {
				return Token{}, err
			}
			return Token{Kind: KindBeginArray, Offset: off}, nil
		case ']':
			s.pop()
			return Token{Kind: KindEndArray, Offset: off}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				if _, dup := top.keys[v]; dup {
					return Token{}, &DuplicateKeyError{Key: v, Offset: off}
				}
				top.keys[v] = struct{}{}
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Offset: off}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v, Offset: off}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v, Offset: off}, nil
	case j.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v), Offset: off}, nil
	case float64:
		s.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: off}, nil
	case nil:
		s.valueDone()
		return Token{Kind: KindNull, Offset: off}, nil
	}
	s.valueDone()
	return Token{}, io.ErrUnexpectedEOF
}
