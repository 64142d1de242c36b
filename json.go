package goasset

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	eng "github.com/reoring/goasset/internal/engine"
)

// MarshalJSON renders v as JSON. Floats always carry a fraction or an
// exponent so that they read back as floats; NaN and the infinities become
// the strings "NaN", "+Inf" and "-Inf"; bytes become base64 text. Codec
// Normalize turns those strings back into the declared kinds.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := appendJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSONIndent is MarshalJSON followed by indentation.
func MarshalJSONIndent(v Value, prefix, indent string) ([]byte, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func appendString(buf *bytes.Buffer, s string) error {
	q, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(q)
	return nil
}

func appendJSON(buf *bytes.Buffer, v Value) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindInt:
		buf.WriteString(strconv.FormatInt(int64(v.num), 10))
	case KindUint:
		buf.WriteString(strconv.FormatUint(v.num, 10))
	case KindFloat:
		f := math.Float64frombits(v.num)
		s := formatFloat(f)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return appendString(buf, s)
		}
		buf.WriteString(s)
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.num == 1))
	case KindString:
		return appendString(buf, v.str)
	case KindBytes:
		return appendString(buf, base64.StdEncoding.EncodeToString(v.raw))
	case KindList:
		buf.WriteByte('[')
		for i, it := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMap:
		buf.WriteByte('{')
		for i, k := range v.m.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			e, _ := v.m.Get(k)
			if err := appendJSON(buf, e); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("goasset: cannot marshal %s", v.kind)
	}
	return nil
}

// UnmarshalJSON parses data with ParseJSON.
func (v *Value) UnmarshalJSON(data []byte) error {
	out, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// ParseJSON builds a Value from one JSON document. Object key order is kept,
// duplicate keys are rejected, and numbers without a fraction or exponent
// become integers.
func ParseJSON(data []byte) (Value, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ReadJSON is ParseJSON over a stream.
func ReadJSON(r io.Reader) (Value, error) {
	src := eng.NewJSONReader(r, eng.Options{})
	var p Path
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Value{}, fmt.Errorf("json: empty document")
		}
		return Value{}, fmt.Errorf("json: %w", err)
	}
	v, err := buildJSON(src, tok, &p)
	if err != nil {
		return Value{}, err
	}
	if extra, err := src.NextToken(); err == nil {
		return Value{}, fmt.Errorf("json: unexpected %s after the document", extra.Kind)
	} else if !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("json: %w", err)
	}
	return v, nil
}

func jsonErr(p *Path, err error) error {
	if s := p.String(); s != "" {
		return fmt.Errorf("json: at %s: %w", s, err)
	}
	return fmt.Errorf("json: %w", err)
}

func buildJSON(src eng.TokenSource, tok eng.Token, p *Path) (Value, error) {
	switch tok.Kind {
	case eng.KindBeginObject:
		m := NewMap()
		for {
			kt, err := src.NextToken()
			if err != nil {
				return Value{}, jsonErr(p, err)
			}
			if kt.Kind == eng.KindEndObject {
				return MapValue(m), nil
			}
			if kt.Kind != eng.KindKey {
				return Value{}, jsonErr(p, fmt.Errorf("unexpected %s, want a key", kt.Kind))
			}
			vt, err := src.NextToken()
			if err != nil {
				return Value{}, jsonErr(p, err)
			}
			p.Field(kt.String)
			ev, err := buildJSON(src, vt, p)
			if err != nil {
				return Value{}, err
			}
			p.Pop()
			m.Set(kt.String, ev)
		}
	case eng.KindBeginArray:
		items := []Value{}
		for i := 0; ; i++ {
			et, err := src.NextToken()
			if err != nil {
				return Value{}, jsonErr(p, err)
			}
			if et.Kind == eng.KindEndArray {
				return List(items...), nil
			}
			p.Index(i)
			ev, err := buildJSON(src, et, p)
			if err != nil {
				return Value{}, err
			}
			p.Pop()
			items = append(items, ev)
		}
	case eng.KindString:
		return String(tok.String), nil
	case eng.KindNumber:
		v, err := parseNumber(tok.Number)
		if err != nil {
			return Value{}, jsonErr(p, err)
		}
		return v, nil
	case eng.KindBool:
		return Bool(tok.Bool), nil
	case eng.KindNull:
		return Null(), nil
	}
	return Value{}, jsonErr(p, fmt.Errorf("unexpected %s", tok.Kind))
}

// parseNumber keeps integers exact: a literal without '.', 'e' or 'E' becomes
// an integer when it fits 64 bits.
func parseNumber(lit string) (Value, error) {
	if !strings.ContainsAny(lit, ".eE") {
		if i, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return Int(i), nil
		}
		if u, err := strconv.ParseUint(lit, 10, 64); err == nil {
			return Uint(u), nil
		}
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return Value{}, fmt.Errorf("number %q: %w", lit, err)
	}
	return Float(f), nil
}
