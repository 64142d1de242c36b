package goasset

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Catalog is a named set of built-in type descriptors plus the configuration
// defaults they are written against (for example Unity's alignment of 4).
type Catalog struct {
	Name     string
	Defaults Config
	Types    []TypeDescriptor
}

// Option configures a Registry or Resolver.
type Option func(*settings)

type settings struct {
	log *zap.Logger
}

// WithLogger routes diagnostics to l. The default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}

func buildSettings(opts []Option) settings {
	s := settings{}
	for _, o := range opts {
		o(&s)
	}
	return s
}

type entry struct {
	desc    TypeDescriptor
	catalog string // "config" for types added through types.<Type>
	problem string // non-empty when config made the type unusable
}

// Registry maps type names to descriptors. It is built once per invocation
// and read-only afterwards, so it may be shared between goroutines.
type Registry struct {
	cfg     Config
	opts    Options
	params  engineParams
	extras  Config
	global  string // configuration-wide problem, reported by every Resolve
	entries map[string]*entry
	log     *zap.Logger
}

// NewRegistry layers DefaultConfig, catalog defaults and cfg (in that
// order), registers every catalog type and applies the types.* and fields.*
// overrides of the merged configuration.
//
// Configuration contents never fail construction: a problem is recorded and
// reported as UnsupportedConfiguration when an affected type is resolved.
// Errors are returned only for inconsistent catalogs (duplicate names or
// invalid descriptors).
func NewRegistry(cfg Config, catalogs []Catalog, opts ...Option) (*Registry, error) {
	s := buildSettings(opts)
	if s.log == nil {
		s.log = zap.NewNop()
	}
	layers := []Config{DefaultConfig()}
	for _, c := range catalogs {
		layers = append(layers, c.Defaults)
	}
	layers = append(layers, cfg)

	r := &Registry{cfg: Merge(layers...), entries: map[string]*entry{}, log: s.log}

	for _, c := range catalogs {
		for _, d := range c.Types {
			if err := d.Validate(); err != nil {
				return nil, fmt.Errorf("catalog %s: %w", c.Name, err)
			}
			if prev, ok := r.entries[d.Name]; ok {
				return nil, fmt.Errorf("catalog %s: type %s already registered by %s", c.Name, d.Name, prev.catalog)
			}
			d.Fields = cloneFields(d.Fields)
			r.entries[d.Name] = &entry{desc: d, catalog: c.Name}
		}
	}

	opt, extras, overrides, err := splitConfig(r.cfg)
	r.opts, r.extras = opt, extras
	if err != nil {
		r.global = err.Error()
	} else if r.params, err = opt.params(); err != nil {
		r.global = err.Error()
	}
	if r.global != "" {
		r.log.Warn("unusable engine configuration", zap.String("problem", r.global))
	}

	r.applyOverrides(overrides)

	r.log.Debug("registry built",
		zap.Int("types", len(r.entries)),
		zap.Int("catalogs", len(catalogs)),
		zap.Strings("extras", extras.Keys()))
	return r, nil
}

func (r *Registry) applyOverrides(overrides Config) {
	keys := overrides.Keys()
	// whole-type replacements first so that field overrides apply on top
	for _, k := range keys {
		if !strings.HasPrefix(k, TypesKeyPrefix) {
			continue
		}
		name := strings.TrimPrefix(k, TypesKeyPrefix)
		d, err := ParseLayout(name, overrides[k])
		if err == nil {
			err = d.Validate()
		}
		e, ok := r.entries[name]
		if !ok {
			e = &entry{catalog: "config", desc: TypeDescriptor{Name: name}}
			r.entries[name] = e
		}
		if err != nil {
			r.problem(e, fmt.Sprintf("%s: %v", k, err))
			continue
		}
		if d.Options == nil {
			d.Options = e.desc.Options
		}
		if d.Requires == nil {
			d.Requires = e.desc.Requires
		}
		if d.Doc == "" {
			d.Doc = e.desc.Doc
		}
		e.desc = d
		r.log.Debug("type layout replaced", zap.String("type", name), zap.Int("fields", len(d.Fields)))
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, FieldsKeyPrefix) {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(k, FieldsKeyPrefix), ".")
		if len(parts) < 2 || parts[0] == "" {
			r.log.Warn("ignoring malformed field override key", zap.String("key", k))
			continue
		}
		e, ok := r.entries[parts[0]]
		if !ok {
			r.log.Warn("field override for unknown type", zap.String("key", k))
			continue
		}
		if e.problem != "" {
			continue
		}
		fields := cloneFields(e.desc.Fields)
		if err := applyFieldOverride(fields, parts[1:], overrides[k]); err != nil {
			r.problem(e, fmt.Sprintf("%s: %v", k, err))
			continue
		}
		d := e.desc
		d.Fields = fields
		if err := d.Validate(); err != nil {
			r.problem(e, fmt.Sprintf("%s: %v", k, err))
			continue
		}
		e.desc = d
		r.log.Debug("field override applied", zap.String("key", k))
	}
}

func (r *Registry) problem(e *entry, msg string) {
	if e.problem == "" {
		e.problem = msg
	}
	r.log.Warn("type unusable under this configuration", zap.String("type", e.desc.Name), zap.String("problem", msg))
}

// Lookup returns the effective descriptor for name, with overrides applied.
// An unregistered name fails with TypeNotFound, as in Resolver.Resolve.
func (r *Registry) Lookup(name string) (TypeDescriptor, error) {
	e, ok := r.entries[name]
	if !ok {
		return TypeDescriptor{}, typeNotFound(name)
	}
	d := e.desc
	d.Fields = cloneFields(d.Fields)
	return d, nil
}

// Names returns all registered type names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Options returns the decoded engine options.
func (r *Registry) Options() Options { return r.opts }

// Extras returns configuration keys that are neither engine options nor
// overrides. Types read them through When gates.
func (r *Registry) Extras() Config { return Merge(r.extras) }
