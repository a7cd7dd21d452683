package field

import (
	"github.com/guptam/altimeter/pkg/link"
)

// ScalarField reads one scalar value by key.
type ScalarField struct {
	key  string
	opts options
}

// Scalar reads data[key] and emits one SimpleLink. An absent or null key is
// an error unless a default is set or the field is optional.
func Scalar(key string, opts ...Option) *ScalarField {
	return &ScalarField{key: key, opts: newOptions(opts)}
}

// Parse implements Field.
func (f *ScalarField) Parse(data any, ctx Context) ([]link.Link, error) {
	m, ok := asMapping(data)
	if !ok {
		return nil, parseErrf(KindScalar, f.key, ctx, ErrValueNotAMapping, "got %T", data)
	}
	v, present := m[f.key]
	if !present || v == nil {
		switch {
		case f.opts.hasDefault:
			v = f.opts.defaultVal
		case f.opts.optional:
			return nil, nil
		default:
			return nil, parseErr(KindScalar, f.key, ctx, ErrMissingKey)
		}
	}
	l, err := link.NewSimple(f.opts.predicateFor(f.key), v)
	if err != nil {
		return nil, parseErrf(KindScalar, f.key, ctx, ErrValueNotAScalar, "got %T", v)
	}
	return []link.Link{l}, nil
}

// EmbeddedScalarField wraps a value that has already been extracted, such as
// one element of a list.
type EmbeddedScalarField struct {
	opts options
}

// EmbeddedScalar emits a SimpleLink for the value it is given, using the
// enclosing predicate unless WithPredicate is set.
func EmbeddedScalar(opts ...Option) *EmbeddedScalarField {
	return &EmbeddedScalarField{opts: newOptions(opts)}
}

// Parse implements Field.
func (f *EmbeddedScalarField) Parse(data any, ctx Context) ([]link.Link, error) {
	pred := f.opts.predicate
	if pred == "" {
		pred = ctx.ParentKey
	}
	if pred == "" {
		return nil, parseErr(KindEmbeddedScalar, "", ctx, ErrParentKeyMissing)
	}
	l, err := link.NewSimple(pred, data)
	if err != nil {
		return nil, parseErrf(KindEmbeddedScalar, "", ctx, ErrValueNotAScalar, "got %T", data)
	}
	return []link.Link{l}, nil
}
