// Package field provides declarative combinators that walk a decoded API
// response and turn it into a tree of links.
//
// A Field describes how to pull one named piece of structure out of a
// mapping. Composite fields (List, Dict and their anonymous and embedded
// forms) nest other fields and thread a Context downward, so that leaves know
// the predicate of the group they end up in and the account and region needed
// to synthesise resource ids.
//
// Fields are immutable once built and safe for concurrent use.
package field

import (
	"reflect"

	"github.com/guptam/altimeter/pkg/link"
)

// Field parses data into links.
type Field interface {
	Parse(data any, ctx Context) ([]link.Link, error)
}

// Kind names a combinator. The values double as the schema file vocabulary.
type Kind string

const (
	KindScalar                        Kind = "scalar"
	KindEmbeddedScalar                Kind = "embedded_scalar"
	KindList                          Kind = "list"
	KindAnonymousList                 Kind = "anonymous_list"
	KindDict                          Kind = "dict"
	KindEmbeddedDict                  Kind = "embedded_dict"
	KindAnonymousDict                 Kind = "anonymous_dict"
	KindResourceLink                  Kind = "resource_link"
	KindEmbeddedResourceLink          Kind = "embedded_resource_link"
	KindTransientResourceLink         Kind = "transient_resource_link"
	KindEmbeddedTransientResourceLink Kind = "embedded_transient_resource_link"
	KindTags                          Kind = "tags"
)

// Context carries the enclosing predicate and scan metadata down the field
// tree. It is passed by value; WithParent returns a modified copy.
type Context struct {
	ParentKey string
	AccountID string
	Region    string
	Partition string
}

// WithParent returns a copy of c whose ParentKey is key.
func (c Context) WithParent(key string) Context {
	c.ParentKey = key
	return c
}

type options struct {
	predicate   string
	optional    bool
	allowScalar bool
	hasDefault  bool
	defaultVal  any
	valueIsID   bool
}

// Option customises a field. Options that don't apply to a combinator are
// ignored by it.
type Option func(*options)

// WithPredicate overrides the predicate derived from the source key.
func WithPredicate(name string) Option {
	return func(o *options) {
		o.predicate = name
	}
}

// Optional makes an absent source key produce no links instead of an error.
func Optional() Option {
	return func(o *options) {
		o.optional = true
	}
}

// AllowScalar lets a list field accept a bare value as a one-element list.
func AllowScalar() Option {
	return func(o *options) {
		o.allowScalar = true
	}
}

// WithDefault supplies the value a scalar field uses when its key is absent.
func WithDefault(v any) Option {
	return func(o *options) {
		o.hasDefault = true
		o.defaultVal = v
	}
}

// ValueIsID makes a resource link field use the source value verbatim as the
// target id instead of building one.
func ValueIsID() Option {
	return func(o *options) {
		o.valueIsID = true
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// predicateFor returns the override if set, otherwise the normalised key.
func (o options) predicateFor(key string) string {
	if o.predicate != "" {
		return o.predicate
	}
	return Normalize(key)
}

// grouper is implemented by item fields whose output is one group of links.
// List combinators wrap each group in a MultiLink.
type grouper interface {
	groups() bool
}

func isGroup(f Field) bool {
	g, ok := f.(grouper)
	return ok && g.groups()
}

func asMapping(data any) (map[string]any, bool) {
	m, ok := data.(map[string]any)
	return m, ok
}

func asSequence(v any) ([]any, bool) {
	switch items := v.(type) {
	case []any:
		return items, true
	case []string:
		out := make([]any, len(items))
		for i, s := range items {
			out[i] = s
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(items))
		for i, m := range items {
			out[i] = m
		}
		return out, true
	case nil:
		return nil, false
	}
	// Typed slices and arrays from Go callers, e.g. []int64 or []bool.
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
