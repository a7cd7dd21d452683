package field

import (
	"fmt"

	"github.com/guptam/altimeter/pkg/link"
)

// ListField applies an item field to every element of a sequence.
type ListField struct {
	key       string
	item      Field
	opts      options
	anonymous bool
}

// List reads the sequence at data[key] and emits one link per element under
// the WithPredicate name or the normalised key. Elements parsed by an
// EmbeddedDict are grouped into a MultiLink each.
func List(key string, item Field, opts ...Option) *ListField {
	return &ListField{key: key, item: item, opts: newOptions(opts)}
}

// AnonymousList behaves like List but does not open a predicate scope of its
// own: elements take the enclosing predicate, so the list reads as more items
// of the parent group. WithPredicate still wins if set; with no enclosing
// predicate the normalised key is used.
func AnonymousList(key string, item Field, opts ...Option) *ListField {
	return &ListField{key: key, item: item, opts: newOptions(opts), anonymous: true}
}

func (f *ListField) kind() Kind {
	if f.anonymous {
		return KindAnonymousList
	}
	return KindList
}

func (f *ListField) predicate(ctx Context) string {
	if f.anonymous && f.opts.predicate == "" && ctx.ParentKey != "" {
		return ctx.ParentKey
	}
	return f.opts.predicateFor(f.key)
}

// Parse implements Field.
func (f *ListField) Parse(data any, ctx Context) ([]link.Link, error) {
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
	items, ok := asSequence(v)
	if !ok {
		if !f.opts.allowScalar {
			return nil, parseErrf(f.kind(), f.key, ctx, ErrValueNotASequence, "got %T", v)
		}
		items = []any{v}
	}

	pred := f.predicate(ctx)
	itemCtx := ctx.WithParent(pred)
	group := isGroup(f.item)

	var out []link.Link
	for i, item := range items {
		links, err := f.item.Parse(item, itemCtx)
		if err != nil {
			return nil, nest(err, fmt.Sprintf("%s[%d]", f.key, i))
		}
		if group {
			multi, err := link.NewMulti(pred, links)
			if err != nil {
				return nil, parseErr(f.kind(), f.key, ctx, err)
			}
			out = append(out, multi)
			continue
		}
		out = append(out, links...)
	}
	return out, nil
}
