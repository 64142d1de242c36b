package goasset

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/reoring/goasset/internal/wire"
)

// Config is the flat option mapping supplied once per invocation. It is never
// mutated by the registry, resolver or codecs.
type Config map[string]any

// Override key prefixes recognized at registry construction.
const (
	TypesKeyPrefix  = "types."  // types.<Type>: replacement field list
	FieldsKeyPrefix = "fields." // fields.<Type>.<field.path>: field override
)

// Options is the enumerated engine configuration schema. Keys are decoded
// weakly, so "4" and 4 are both accepted for alignment.
type Options struct {
	ByteOrder      string `mapstructure:"byteOrder"`      // little | big
	StringLength   string `mapstructure:"stringLength"`   // int32 | uint32 | uint16 | uint8 | varint
	ArrayLength    string `mapstructure:"arrayLength"`    // same spellings as StringLength
	StringEncoding string `mapstructure:"stringEncoding"` // utf8 | utf16
	Alignment      int    `mapstructure:"alignment"`      // boundary for AlignDefault; 0 disables
	EngineVersion  string `mapstructure:"engineVersion"`  // e.g. 2019.4.31f1; empty means latest
	ChunkSize      int    `mapstructure:"chunkSize"`      // encode chunk size in bytes
}

// DefaultConfig returns the engine defaults that catalogs and user
// configuration are layered on top of.
func DefaultConfig() Config {
	return Config{
		"byteOrder":      "little",
		"stringLength":   "int32",
		"arrayLength":    "int32",
		"stringEncoding": "utf8",
		"alignment":      0,
		"chunkSize":      wire.DefaultChunkSize,
	}
}

// Merge returns a new Config with the entries of later configs overriding
// earlier ones.
func Merge(cfgs ...Config) Config {
	out := Config{}
	for _, c := range cfgs {
		for k, v := range c {
			out[k] = v
		}
	}
	return out
}

// Keys returns the keys in sorted order.
func (c Config) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Flag reports the boolean value of an opaque option. Missing keys are false.
func (c Config) Flag(key string) (bool, error) {
	raw, ok := c[key]
	if !ok || raw == nil {
		return false, nil
	}
	var b bool
	if err := mapstructure.WeakDecode(raw, &b); err != nil {
		return false, fmt.Errorf("option %q: %v is not a boolean", key, raw)
	}
	return b, nil
}

// splitConfig separates override entries, recognized options and opaque
// extras.
func splitConfig(cfg Config) (opts Options, extras Config, overrides Config, err error) {
	plain := map[string]any{}
	overrides = Config{}
	for k, v := range cfg {
		if strings.HasPrefix(k, TypesKeyPrefix) || strings.HasPrefix(k, FieldsKeyPrefix) {
			overrides[k] = v
			continue
		}
		plain[k] = v
	}
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &opts,
		Metadata:         &md,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return opts, nil, nil, err
	}
	err = dec.Decode(plain)
	extras = Config{}
	for _, k := range md.Unused {
		extras[k] = plain[k]
	}
	return opts, extras, overrides, err
}

// engineParams is Options resolved into concrete wire parameters.
type engineParams struct {
	order        binary.ByteOrder
	stringPrefix Prefix
	arrayPrefix  Prefix
	utf16        bool
	align        int
	version      engineVersion
	chunkSize    int
}

func (o Options) params() (engineParams, error) {
	var p engineParams
	switch strings.ToLower(o.ByteOrder) {
	case "", "little", "le":
		p.order = binary.LittleEndian
	case "big", "be":
		p.order = binary.BigEndian
	default:
		return p, fmt.Errorf("byteOrder %q: want little or big", o.ByteOrder)
	}
	var err error
	if p.stringPrefix, err = lengthPrefix("stringLength", o.StringLength); err != nil {
		return p, err
	}
	if p.arrayPrefix, err = lengthPrefix("arrayLength", o.ArrayLength); err != nil {
		return p, err
	}
	switch strings.ToLower(o.StringEncoding) {
	case "", "utf8", "utf-8":
	case "utf16", "utf-16", "utf16le", "utf-16le":
		p.utf16 = true
	default:
		return p, fmt.Errorf("stringEncoding %q: want utf8 or utf16", o.StringEncoding)
	}
	if o.Alignment < 0 {
		return p, fmt.Errorf("alignment %d is negative", o.Alignment)
	}
	p.align = o.Alignment
	if p.version, err = parseVersion(o.EngineVersion); err != nil {
		return p, err
	}
	p.chunkSize = o.ChunkSize
	if p.chunkSize <= 0 {
		p.chunkSize = wire.DefaultChunkSize
	}
	return p, nil
}

func lengthPrefix(key, s string) (Prefix, error) {
	if s == "" {
		return PrefixInt32, nil
	}
	p, err := ParsePrefix(s)
	if err != nil || p == PrefixDefault || p == PrefixFixed {
		return 0, fmt.Errorf("%s %q: want int32, uint32, uint16, uint8 or varint", key, s)
	}
	return p, nil
}

// engineVersion is a dotted engine version split into its numeric runs, so
// "2019.4.31f1" becomes [2019 4 31 1]. A nil version stands for "latest".
type engineVersion []int

func parseVersion(s string) (engineVersion, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if s[0] < '0' || s[0] > '9' {
		return nil, fmt.Errorf("engine version %q must start with a digit", s)
	}
	var out engineVersion
	start := -1
	for i := 0; i <= len(s); i++ {
		digit := i < len(s) && s[i] >= '0' && s[i] <= '9'
		if digit && start < 0 {
			start = i
		}
		if !digit && start >= 0 {
			n, err := strconv.Atoi(s[start:i])
			if err != nil {
				return nil, fmt.Errorf("engine version %q: %w", s, err)
			}
			out = append(out, n)
			start = -1
		}
	}
	return out, nil
}

func (v engineVersion) compare(o engineVersion) int {
	n := len(v)
	if len(o) > n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		var a, b int
		if i < len(v) {
			a = v[i]
		}
		if i < len(o) {
			b = o[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// active evaluates Since/Before gates against the configured version.
func (v engineVersion) active(since, before string) (bool, error) {
	if since != "" && v != nil {
		s, err := parseVersion(since)
		if err != nil {
			return false, err
		}
		if v.compare(s) < 0 {
			return false, nil
		}
	}
	if before != "" {
		if v == nil {
			return false, nil
		}
		b, err := parseVersion(before)
		if err != nil {
			return false, err
		}
		if v.compare(b) >= 0 {
			return false, nil
		}
	}
	return true, nil
}
