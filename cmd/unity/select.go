package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	goasset "github.com/reoring/goasset"
)

// selectPath applies a JSONPath subset ($, .name, ['name'], [n], [*]) to v.
// Like JSONPath, the result is always the list of matches: wildcards fan out
// and are flattened, a missing path yields an empty list.
func selectPath(v goasset.Value, expr string) (goasset.Value, error) {
	path, wildcards, err := gjsonPath(expr)
	if err != nil {
		return goasset.Value{}, err
	}
	if path == "" {
		if wildcards > 0 {
			return flatten(v, wildcards-1), nil
		}
		return goasset.List(v), nil
	}
	raw, err := v.MarshalJSON()
	if err != nil {
		return goasset.Value{}, err
	}
	res := gjson.GetBytes(raw, path)
	if !res.Exists() {
		return goasset.List(), nil
	}
	picked, err := goasset.ParseJSON([]byte(res.Raw))
	if err != nil {
		return goasset.Value{}, errors.Wrapf(err, "select %s", expr)
	}
	if wildcards == 0 {
		return goasset.List(picked), nil
	}
	return flatten(picked, wildcards-1), nil
}

func flatten(v goasset.Value, levels int) goasset.Value {
	if levels == 0 || v.Kind() != goasset.KindList {
		return v
	}
	var out []goasset.Value
	for _, it := range v.Items() {
		it = flatten(it, levels-1)
		if it.Kind() == goasset.KindList {
			out = append(out, it.Items()...)
		} else {
			out = append(out, it)
		}
	}
	return goasset.List(out...)
}

// gjsonPath translates the JSONPath subset to gjson syntax, where [*]
// becomes "#".
func gjsonPath(expr string) (string, int, error) {
	p := strings.TrimSpace(expr)
	if !strings.HasPrefix(p, "$") {
		return "", 0, errors.Errorf("select %q: path must start with $", expr)
	}
	p = p[1:]
	var segs []string
	wildcards := 0
	for len(p) > 0 {
		switch p[0] {
		case '.':
			rest := p[1:]
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			if end == 0 {
				return "", 0, errors.Errorf("select %q: empty name", expr)
			}
			if rest[:end] == "*" {
				segs = append(segs, "#")
				wildcards++
			} else {
				segs = append(segs, escapeGJSON(rest[:end]))
			}
			p = rest[end:]
		case '[':
			end := strings.IndexByte(p, ']')
			if end < 0 {
				return "", 0, errors.Errorf("select %q: unterminated [", expr)
			}
			inner := p[1:end]
			switch {
			case inner == "*":
				segs = append(segs, "#")
				wildcards++
			case len(inner) >= 2 && (inner[0] == '\'' || inner[0] == '"') && inner[len(inner)-1] == inner[0]:
				segs = append(segs, escapeGJSON(inner[1:len(inner)-1]))
			case inner != "" && strings.Trim(inner, "0123456789") == "":
				segs = append(segs, inner)
			default:
				return "", 0, errors.Errorf("select %q: unsupported subscript [%s]", expr, inner)
			}
			p = p[end+1:]
		default:
			return "", 0, errors.Errorf("select %q: unexpected %q", expr, p[0])
		}
	}
	// a trailing # would ask gjson for the array length
	if n := len(segs); n > 0 && segs[n-1] == "#" {
		segs = segs[:n-1]
	}
	return strings.Join(segs, "."), wildcards, nil
}

func escapeGJSON(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\', '!', '=', '<', '>', '%':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
