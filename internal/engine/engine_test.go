package engine

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func collect(t *testing.T, src TokenSource) []Token {
	t.Helper()
	var out []Token
	for {
		tok, err := src.NextToken()
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, tok)
	}
}

func TestJSONSource_Tokens(t *testing.T) {
	toks := collect(t, NewJSONBytes([]byte(`{"a":[1,2.5,"x"],"b":true,"c":null}`), Options{}))
	want := []Kind{KindBeginObject, KindKey, KindBeginArray, KindNumber, KindNumber, KindString, KindEndArray, KindKey, KindBool, KindKey, KindNull, KindEndObject}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(want))
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v want %v", i, toks[i].Kind, k)
		}
	}
	if toks[4].Number != "2.5" {
		t.Fatalf("number literal not preserved: %q", toks[4].Number)
	}
	if toks[5].String != "x" || toks[7].String != "b" {
		t.Fatalf("unexpected strings: %q %q", toks[5].String, toks[7].String)
	}
}

func TestJSONSource_StringValueIsNotKey(t *testing.T) {
	toks := collect(t, NewJSONBytes([]byte(`{"k":"v","k2":"v2"}`), Options{}))
	kinds := []Kind{KindBeginObject, KindKey, KindString, KindKey, KindString, KindEndObject}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v want %v", i, toks[i].Kind, k)
		}
	}
}

func TestJSONSource_DuplicateKey(t *testing.T) {
	src := NewJSONReader(strings.NewReader(`{"a":1,"b":{"a":2},"a":3}`), Options{})
	var dup *DuplicateKeyError
	for {
		_, err := src.NextToken()
		if err == nil {
			continue
		}
		if !errors.As(err, &dup) {
			t.Fatalf("want DuplicateKeyError, got %v", err)
		}
		break
	}
	if dup.Key != "a" {
		t.Fatalf("duplicate key: %q", dup.Key)
	}
}

func TestJSONSource_MaxDepth(t *testing.T) {
	src := NewJSONBytes([]byte(`[[[1]]]`), Options{MaxDepth: 2})
	var depth *DepthError
	for {
		_, err := src.NextToken()
		if err == nil {
			continue
		}
		if !errors.As(err, &depth) {
			t.Fatalf("want DepthError, got %v", err)
		}
		break
	}
	if depth.Max != 2 {
		t.Fatalf("max: %d", depth.Max)
	}
}
