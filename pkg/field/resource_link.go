package field

import (
	"fmt"

	"github.com/aws/aws-sdk-go/aws/arn"
	"github.com/guptam/altimeter/pkg/link"
)

// IDBuilder turns the raw value found in a response into the id of the
// resource it references.
type IDBuilder interface {
	// Name is the default predicate for links to this resource type.
	Name() string
	// ID builds the target id for value.
	ID(value string, ctx Context) (string, error)
}

// ARNType builds AWS ARNs of the form
// arn:<partition>:<service>:<region>:<account>:<type>/<value>.
//
// Global resources (IAM, for instance) carry neither region nor account;
// Regionless resources (S3 buckets) carry the account but no region.
type ARNType struct {
	Partition  string
	Service    string
	Type       string
	Global     bool
	Regionless bool
}

// Name implements IDBuilder.
func (t ARNType) Name() string { return t.Type }

// ID implements IDBuilder.
func (t ARNType) ID(value string, ctx Context) (string, error) {
	a := arn.ARN{
		Partition: t.Partition,
		Service:   t.Service,
		Resource:  t.Type + "/" + value,
	}
	if a.Partition == "" {
		a.Partition = ctx.Partition
	}
	if a.Partition == "" {
		a.Partition = "aws"
	}
	if !t.Global {
		if ctx.AccountID == "" {
			return "", fmt.Errorf("%w: account id required for %s", ErrMissingScanContext, t.Type)
		}
		a.AccountID = ctx.AccountID
		if !t.Regionless {
			if ctx.Region == "" {
				return "", fmt.Errorf("%w: region required for %s", ErrMissingScanContext, t.Type)
			}
			a.Region = ctx.Region
		}
	}
	return a.String(), nil
}

// ParseARN splits an ARN id back into its components.
func ParseARN(id string) (arn.ARN, error) {
	return arn.Parse(id)
}

// ResourceLinkField emits an edge to another resource.
type ResourceLinkField struct {
	key       string
	builder   IDBuilder
	opts      options
	transient bool
	embedded  bool
}

// ResourceLink reads the id fragment at data[key] and emits a
// ResourceLinkLink to the id built from it. The predicate defaults to the
// builder's name.
func ResourceLink(key string, builder IDBuilder, opts ...Option) *ResourceLinkField {
	return &ResourceLinkField{key: key, builder: builder, opts: newOptions(opts)}
}

// TransientResourceLink is ResourceLink for targets that may not be part of
// the scanned graph.
func TransientResourceLink(key string, builder IDBuilder, opts ...Option) *ResourceLinkField {
	return &ResourceLinkField{key: key, builder: builder, opts: newOptions(opts), transient: true}
}

// EmbeddedResourceLink emits a ResourceLinkLink for the value it is given,
// such as one element of a list of ids.
func EmbeddedResourceLink(builder IDBuilder, opts ...Option) *ResourceLinkField {
	return &ResourceLinkField{builder: builder, opts: newOptions(opts), embedded: true}
}

// EmbeddedTransientResourceLink is the transient form of EmbeddedResourceLink.
func EmbeddedTransientResourceLink(builder IDBuilder, opts ...Option) *ResourceLinkField {
	return &ResourceLinkField{builder: builder, opts: newOptions(opts), transient: true, embedded: true}
}

func (f *ResourceLinkField) kind() Kind {
	switch {
	case f.embedded && f.transient:
		return KindEmbeddedTransientResourceLink
	case f.embedded:
		return KindEmbeddedResourceLink
	case f.transient:
		return KindTransientResourceLink
	}
	return KindResourceLink
}

func (f *ResourceLinkField) predicate(ctx Context) string {
	switch {
	case f.opts.predicate != "":
		return f.opts.predicate
	case f.builder != nil:
		return f.builder.Name()
	case f.key != "":
		return Normalize(f.key)
	}
	return ctx.ParentKey
}

// Parse implements Field.
func (f *ResourceLinkField) Parse(data any, ctx Context) ([]link.Link, error) {
	v := data
	if !f.embedded {
		m, ok := asMapping(data)
		if !ok {
			return nil, parseErrf(f.kind(), f.key, ctx, ErrValueNotAMapping, "got %T", data)
		}
		var present bool
		v, present = m[f.key]
		if !present || v == nil {
			if f.opts.optional {
				return nil, nil
			}
			return nil, parseErr(f.kind(), f.key, ctx, ErrMissingKey)
		}
	}
	value, ok := v.(string)
	if !ok || value == "" {
		return nil, parseErrf(f.kind(), f.key, ctx, ErrValueNotAScalar, "want non-empty string id, got %#v", v)
	}

	id := value
	if !f.opts.valueIsID && f.builder != nil {
		built, err := f.builder.ID(value, ctx)
		if err != nil {
			return nil, parseErr(f.kind(), f.key, ctx, err)
		}
		id = built
	}

	pred := f.predicate(ctx)
	if pred == "" {
		return nil, parseErr(f.kind(), f.key, ctx, ErrParentKeyMissing)
	}

	var (
		l   link.Link
		err error
	)
	if f.transient {
		l, err = link.NewTransientResourceLink(pred, id)
	} else {
		l, err = link.NewResourceLink(pred, id)
	}
	if err != nil {
		return nil, parseErr(f.kind(), f.key, ctx, err)
	}
	return []link.Link{l}, nil
}
