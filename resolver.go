package goasset

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Resolver binds registry descriptors against the active configuration.
type Resolver struct {
	reg *Registry
	log *zap.Logger
}

// NewResolver returns a Resolver over reg. The registry logger is used
// unless WithLogger overrides it.
func NewResolver(reg *Registry, opts ...Option) *Resolver {
	s := buildSettings(opts)
	if s.log == nil {
		s.log = reg.log
	}
	return &Resolver{reg: reg, log: s.log}
}

// Resolve returns a Codec for name. It fails with TypeNotFound when the name
// is not registered (whatever the configuration says) and with
// UnsupportedConfiguration when the configuration for the type, or a type it
// references, cannot be bound. Each call binds afresh; codecs from separate
// calls behave identically.
func (r *Resolver) Resolve(name string) (*Codec, error) {
	if _, ok := r.reg.entries[name]; !ok {
		return nil, typeNotFound(name)
	}
	if r.reg.global != "" {
		return nil, unsupported(name, "", r.reg.global)
	}
	b := &binder{reg: r.reg, p: &r.reg.params, bound: map[string]*recordNode{}, visiting: map[string]bool{}}
	root, err := b.bindType(name)
	if err != nil {
		if e, ok := AsError(err); ok && e.Type == "" {
			e.Type = name
		}
		return nil, err
	}
	r.log.Debug("codec resolved",
		zap.String("type", name),
		zap.Int("fields", len(root.members)))
	return &Codec{typ: name, root: root, p: r.reg.params}, nil
}

// binder turns descriptors into node trees for one Resolve call.
type binder struct {
	reg      *Registry
	p        *engineParams
	bound    map[string]*recordNode
	visiting map[string]bool
	stack    []string
	desc     *TypeDescriptor // descriptor whose fields are being bound
	path     Path
}

func (b *binder) fail(hint string) *Error {
	typ := ""
	if b.desc != nil {
		typ = b.desc.Name
	}
	return unsupported(typ, b.path.String(), hint)
}

func (b *binder) bindType(name string) (*recordNode, error) {
	if n, ok := b.bound[name]; ok {
		return n, nil
	}
	e, ok := b.reg.entries[name]
	if !ok {
		err := b.fail(fmt.Sprintf("reference to unknown type %s", name))
		err.Cause = typeNotFound(name)
		return nil, err
	}
	if b.visiting[name] {
		return nil, b.fail("reference cycle " + strings.Join(append(b.stack, name), " -> "))
	}
	if e.problem != "" {
		return nil, unsupported(name, "", e.problem)
	}
	for _, k := range e.desc.Requires {
		if _, ok := b.reg.cfg[k]; !ok {
			return nil, unsupported(name, "", fmt.Sprintf("option %q is required", k))
		}
	}

	b.visiting[name] = true
	b.stack = append(b.stack, name)
	prevDesc, prevPath := b.desc, b.path
	b.desc, b.path = &e.desc, Path{}
	defer func() {
		delete(b.visiting, name)
		b.stack = b.stack[:len(b.stack)-1]
		b.desc, b.path = prevDesc, prevPath
	}()

	n, err := b.bindRecord(e.desc.Fields)
	if err != nil {
		return nil, err
	}
	n.typ = name
	b.bound[name] = n
	return n, nil
}

func (b *binder) bindRecord(fs []Field) (*recordNode, error) {
	n := &recordNode{keys: map[string]bool{}}
	for i := range fs {
		f := &fs[i]
		b.path.Field(displayName(f, i))
		active, err := b.active(f)
		if err != nil {
			b.path.Pop()
			return nil, err
		}
		if !active {
			b.path.Pop()
			continue
		}
		m, err := b.bindMember(f)
		if err != nil {
			b.path.Pop()
			return nil, err
		}
		if err := n.add(m); err != nil {
			e := b.fail(err.Error())
			b.path.Pop()
			return nil, e
		}
		b.path.Pop()
	}
	return n, nil
}

func displayName(f *Field, i int) string {
	if f.Name != "" {
		return f.Name
	}
	if f.Kind == FieldRef {
		return f.Ref
	}
	return fmt.Sprintf("#%d", i)
}

// active evaluates the version and option gates of f.
func (b *binder) active(f *Field) (bool, error) {
	ok, err := b.p.version.active(f.Since, f.Before)
	if err != nil {
		return false, b.fail(err.Error())
	}
	if !ok || f.When == "" {
		return ok, nil
	}
	key, neg := strings.CutPrefix(f.When, "!")
	declared := false
	for _, o := range b.desc.Options {
		if o == key {
			declared = true
			break
		}
	}
	if !declared {
		return false, b.fail(fmt.Sprintf("gate option %q is not declared by %s", key, b.desc.Name))
	}
	on, err := b.reg.cfg.Flag(key)
	if err != nil {
		return false, b.fail(err.Error())
	}
	return on != neg, nil
}

func (b *binder) align(a int) int {
	if a == AlignDefault {
		return b.p.align
	}
	return a
}

func (b *binder) prefix(f *Field, def Prefix) Prefix {
	if f.Prefix == PrefixDefault {
		return def
	}
	return f.Prefix
}

func (b *binder) bindMember(f *Field) (member, error) {
	m := member{name: f.Name, align: b.align(f.Align)}
	if f.Kind == FieldPad {
		m.name = ""
	}
	if f.Kind == FieldRef && f.Inline {
		rec, err := b.bindType(f.Ref)
		if err != nil {
			return m, err
		}
		m.name, m.node, m.inline = "", rec, rec
		return m, nil
	}
	nd, err := b.bindNode(f)
	if err != nil {
		return m, err
	}
	m.node = nd
	return m, nil
}

func (b *binder) bindNode(f *Field) (node, error) {
	switch f.Kind {
	case FieldInt, FieldUint:
		return &intNode{width: f.Width, signed: f.Kind == FieldInt}, nil
	case FieldFloat:
		return &floatNode{width: f.Width}, nil
	case FieldBool:
		return boolNode{}, nil
	case FieldString:
		return &textNode{prefix: b.prefix(f, b.p.stringPrefix), count: f.Count, utf16: b.p.utf16, order: b.p.order}, nil
	case FieldBytes:
		return &blobNode{prefix: b.prefix(f, b.p.stringPrefix), count: f.Count}, nil
	case FieldRecord:
		return b.bindRecord(f.Fields)
	case FieldRef:
		return b.bindType(f.Ref)
	case FieldArray:
		b.path.Index(0)
		elem, err := b.bindNode(f.Elem)
		b.path.Pop()
		if err != nil {
			return nil, err
		}
		prefix := b.prefix(f, b.p.arrayPrefix)
		if prefix != PrefixFixed && zeroWidth(elem) {
			return nil, b.fail("array element occupies no bytes, so its count is unbounded")
		}
		return &arrayNode{prefix: prefix, count: f.Count, elem: elem, elemAlign: b.align(f.Elem.Align)}, nil
	case FieldVariant:
		v := &variantNode{tagName: f.Tag.Name, tag: &intNode{width: f.Tag.Width, signed: f.Tag.Kind == FieldInt}, tagAlign: b.align(f.Tag.Align), cases: map[int64]*recordNode{}}
		for _, c := range f.Cases {
			rec, err := b.bindRecord(c.Fields)
			if err != nil {
				return nil, err
			}
			if rec.keys[f.Tag.Name] {
				return nil, b.fail(fmt.Sprintf("case %d redeclares tag %s", c.Value, f.Tag.Name))
			}
			v.cases[c.Value] = rec
			v.order = append(v.order, c.Value)
		}
		return v, nil
	case FieldPad:
		return &padNode{count: f.Count, fill: f.Fill}, nil
	}
	return nil, b.fail(fmt.Sprintf("unknown field kind %s", f.Kind))
}
