package field

import (
	"github.com/guptam/altimeter/pkg/link"
)

// DictField parses a nested mapping with a set of child fields.
type DictField struct {
	key       string
	fields    []Field
	opts      options
	anonymous bool
}

// Dict reads the mapping at data[key], parses it with fields and wraps the
// result in one MultiLink named by WithPredicate or the normalised key.
func Dict(key string, fields []Field, opts ...Option) *DictField {
	return &DictField{key: key, fields: fields, opts: newOptions(opts)}
}

// AnonymousDict reads the mapping at data[key] and returns the child links
// directly, as though they had been declared on the enclosing mapping.
func AnonymousDict(key string, fields []Field, opts ...Option) *DictField {
	return &DictField{key: key, fields: fields, opts: newOptions(opts), anonymous: true}
}

func (f *DictField) kind() Kind {
	if f.anonymous {
		return KindAnonymousDict
	}
	return KindDict
}

// Parse implements Field.
func (f *DictField) Parse(data any, ctx Context) ([]link.Link, error) {
	m, ok := asMapping(data)
	if !ok {
		return nil, parseErrf(f.kind(), f.key, ctx, ErrValueNotAMapping, "got %T", data)
	}
	v, present := m[f.key]
	if !present || v == nil {
		if f.opts.optional {
			return nil, nil
		}
		return nil, parseErr(f.kind(), f.key, ctx, ErrSourceKeyNotFound)
	}
	nested, ok := asMapping(v)
	if !ok {
		return nil, parseErrf(f.kind(), f.key, ctx, ErrValueNotAMapping, "got %T", v)
	}

	if f.anonymous {
		links, err := parseAll(f.fields, nested, ctx)
		if err != nil {
			return nil, nest(err, f.key)
		}
		return links, nil
	}

	pred := f.opts.predicateFor(f.key)
	links, err := parseAll(f.fields, nested, ctx.WithParent(pred))
	if err != nil {
		return nil, nest(err, f.key)
	}
	multi, err := link.NewMulti(pred, links)
	if err != nil {
		return nil, parseErr(f.kind(), f.key, ctx, err)
	}
	return []link.Link{multi}, nil
}

// EmbeddedDictField parses an already extracted mapping, typically one
// element of a list of objects.
type EmbeddedDictField struct {
	fields []Field
}

// EmbeddedDict parses the mapping it is given with fields. It adds no
// predicate of its own; an enclosing List wraps each result in a MultiLink.
func EmbeddedDict(fields ...Field) *EmbeddedDictField {
	return &EmbeddedDictField{fields: fields}
}

// Parse implements Field.
func (f *EmbeddedDictField) Parse(data any, ctx Context) ([]link.Link, error) {
	m, ok := asMapping(data)
	if !ok {
		return nil, parseErrf(KindEmbeddedDict, "", ctx, ErrValueNotAMapping, "got %T", data)
	}
	return parseAll(f.fields, m, ctx)
}

func (f *EmbeddedDictField) groups() bool { return true }

func parseAll(fields []Field, data map[string]any, ctx Context) ([]link.Link, error) {
	out := make([]link.Link, 0, len(fields))
	for _, child := range fields {
		links, err := child.Parse(data, ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, links...)
	}
	return out, nil
}
