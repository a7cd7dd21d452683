package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guptam/altimeter/pkg/field"
	"github.com/guptam/altimeter/pkg/link"
	"github.com/guptam/altimeter/pkg/resource"
)

// ErrInvalidSchema is wrapped by every compilation failure.
var ErrInvalidSchema = errors.New("invalid schema")

// CompileError names the declaration that failed to compile.
type CompileError struct {
	Type string   // resource type name
	Path []string // field path within the type, outermost first
	Msg  string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidSchema.Error())
	if e.Type != "" {
		fmt.Fprintf(&b, ": %s", e.Type)
	}
	if len(e.Path) > 0 {
		fmt.Fprintf(&b, ": %s", strings.Join(e.Path, "."))
	}
	b.WriteString(": ")
	b.WriteString(e.Msg)
	return b.String()
}

func (e *CompileError) Unwrap() error { return ErrInvalidSchema }

// Scope values of a resource type.
const (
	ScopeRegional = "regional"
	ScopeAccount  = "account"
	ScopeGlobal   = "global"
)

// ResourceType is a compiled resource type declaration.
type ResourceType struct {
	Name   string
	Scope  string
	Schema field.Schema

	idKey     string
	idBuilder field.IDBuilder
}

var (
	accountARN = field.ARNType{Type: "account", Global: true}
	regionARN  = field.ARNType{Type: "region", Regionless: true}
)

// Build parses data into a resource: its id, its schema links, then the
// links to its account and region as its scope requires.
func (rt *ResourceType) Build(data any, ctx field.Context) (resource.Resource, error) {
	id, err := rt.ResourceID(data, ctx)
	if err != nil {
		return resource.Resource{}, err
	}
	links, err := rt.Schema.Parse(data, ctx)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("%s %s: %w", rt.Name, id, err)
	}
	scoped, err := rt.scopeLinks(ctx)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("%s %s: %w", rt.Name, id, err)
	}
	return resource.New(id, rt.Name, append(links, scoped...))
}

func (rt *ResourceType) scopeLinks(ctx field.Context) ([]link.Link, error) {
	var out []link.Link
	if rt.Scope == ScopeGlobal {
		return out, nil
	}
	if ctx.AccountID == "" {
		return nil, fmt.Errorf("%w: account id required for %s scope", field.ErrMissingScanContext, rt.Scope)
	}
	account, err := accountARN.ID(ctx.AccountID, ctx)
	if err != nil {
		return nil, err
	}
	l, err := link.NewResourceLink("account", account)
	if err != nil {
		return nil, err
	}
	out = append(out, l)
	if rt.Scope == ScopeAccount {
		return out, nil
	}
	if ctx.Region == "" {
		return nil, fmt.Errorf("%w: region required for %s scope", field.ErrMissingScanContext, rt.Scope)
	}
	region, err := regionARN.ID(ctx.Region, ctx)
	if err != nil {
		return nil, err
	}
	l, err = link.NewResourceLink("region", region)
	if err != nil {
		return nil, err
	}
	return append(out, l), nil
}

// ErrNoResourceID is returned when a record lacks the key its id comes from.
var ErrNoResourceID = errors.New("resource id not found")

// ResourceID returns the id of the resource described by data.
func (rt *ResourceType) ResourceID(data any, ctx field.Context) (string, error) {
	m, ok := data.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%s: %w", rt.Name, field.ErrValueNotAMapping)
	}
	value, ok := m[rt.idKey].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s has no string %q", ErrNoResourceID, rt.Name, rt.idKey)
	}
	if rt.idBuilder == nil {
		return value, nil
	}
	return rt.idBuilder.ID(value, ctx)
}

// Compile turns a declaration into a ResourceType.
func Compile(decl TypeSpec) (*ResourceType, error) {
	if decl.Name == "" {
		return nil, &CompileError{Msg: "resource type without name"}
	}
	if decl.ID.Key == "" {
		return nil, &CompileError{Type: decl.Name, Path: []string{"id"}, Msg: "missing key"}
	}
	c := compiler{typeName: decl.Name}

	scope := decl.Scope
	switch scope {
	case "":
		scope = ScopeRegional
	case ScopeRegional, ScopeAccount, ScopeGlobal:
	default:
		return nil, c.fail([]string{"scope"}, "unknown scope %q", decl.Scope)
	}

	rt := &ResourceType{Name: decl.Name, Scope: scope, idKey: decl.ID.Key}
	if decl.ID.ARN != nil {
		builder, err := c.arn(decl.ID.ARN, []string{"id", "arn"})
		if err != nil {
			return nil, err
		}
		rt.idBuilder = builder
	}

	fields, err := c.fields(decl.Fields, nil)
	if err != nil {
		return nil, err
	}
	rt.Schema = field.NewSchema(fields...)
	return rt, nil
}

type compiler struct {
	typeName string
}

func (c compiler) fail(path []string, format string, args ...any) error {
	return &CompileError{Type: c.typeName, Path: path, Msg: fmt.Sprintf(format, args...)}
}

func (c compiler) fields(decls []FieldSpec, path []string) ([]field.Field, error) {
	out := make([]field.Field, 0, len(decls))
	for i, decl := range decls {
		f, err := c.field(decl, appendPath(path, elemName(decl, i)))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (c compiler) field(decl FieldSpec, path []string) (field.Field, error) {
	opts := c.options(decl)
	kind := field.Kind(decl.Kind)

	needsKey := map[field.Kind]bool{
		field.KindScalar:                true,
		field.KindList:                  true,
		field.KindAnonymousList:         true,
		field.KindDict:                  true,
		field.KindAnonymousDict:         true,
		field.KindResourceLink:          true,
		field.KindTransientResourceLink: true,
	}
	if needsKey[kind] && decl.Key == "" {
		return nil, c.fail(path, "%s field needs a key", kind)
	}

	switch kind {
	case field.KindScalar:
		return field.Scalar(decl.Key, opts...), nil
	case field.KindEmbeddedScalar:
		return field.EmbeddedScalar(opts...), nil
	case field.KindList, field.KindAnonymousList:
		if decl.Item == nil {
			return nil, c.fail(path, "%s field needs an item", kind)
		}
		item, err := c.field(*decl.Item, appendPath(path, "item"))
		if err != nil {
			return nil, err
		}
		if kind == field.KindAnonymousList {
			return field.AnonymousList(decl.Key, item, opts...), nil
		}
		return field.List(decl.Key, item, opts...), nil
	case field.KindDict, field.KindAnonymousDict:
		children, err := c.fields(decl.Fields, path)
		if err != nil {
			return nil, err
		}
		if kind == field.KindAnonymousDict {
			return field.AnonymousDict(decl.Key, children, opts...), nil
		}
		return field.Dict(decl.Key, children, opts...), nil
	case field.KindEmbeddedDict:
		children, err := c.fields(decl.Fields, path)
		if err != nil {
			return nil, err
		}
		return field.EmbeddedDict(children...), nil
	case field.KindResourceLink, field.KindTransientResourceLink,
		field.KindEmbeddedResourceLink, field.KindEmbeddedTransientResourceLink:
		return c.resourceLink(kind, decl, opts, path)
	case field.KindTags:
		if decl.Key != "" {
			return field.TagsFrom(decl.Key), nil
		}
		return field.Tags(), nil
	}
	return nil, c.fail(path, "unknown field kind %q", decl.Kind)
}

func (c compiler) resourceLink(kind field.Kind, decl FieldSpec, opts []field.Option, path []string) (field.Field, error) {
	var builder field.IDBuilder
	switch {
	case decl.Target != nil:
		b, err := c.arn(decl.Target, appendPath(path, "target"))
		if err != nil {
			return nil, err
		}
		builder = b
	case !decl.ValueIsID:
		return nil, c.fail(path, "%s field needs a target or value_is_id", kind)
	case decl.Predicate == "" && kind != field.KindResourceLink && kind != field.KindTransientResourceLink:
		return nil, c.fail(path, "embedded %s field with value_is_id needs a predicate", kind)
	}

	switch kind {
	case field.KindResourceLink:
		return field.ResourceLink(decl.Key, builder, opts...), nil
	case field.KindTransientResourceLink:
		return field.TransientResourceLink(decl.Key, builder, opts...), nil
	case field.KindEmbeddedResourceLink:
		return field.EmbeddedResourceLink(builder, opts...), nil
	}
	return field.EmbeddedTransientResourceLink(builder, opts...), nil
}

func (c compiler) arn(decl *ARNSpec, path []string) (field.ARNType, error) {
	if decl.Service == "" || decl.Type == "" {
		return field.ARNType{}, c.fail(path, "arn needs service and type")
	}
	if decl.Global && decl.Regionless {
		return field.ARNType{}, c.fail(path, "arn can't be both global and regionless")
	}
	return field.ARNType{
		Partition:  decl.Partition,
		Service:    decl.Service,
		Type:       decl.Type,
		Global:     decl.Global,
		Regionless: decl.Regionless,
	}, nil
}

func (c compiler) options(decl FieldSpec) []field.Option {
	var opts []field.Option
	if decl.Predicate != "" {
		opts = append(opts, field.WithPredicate(decl.Predicate))
	}
	if decl.Optional {
		opts = append(opts, field.Optional())
	}
	if decl.AllowScalar {
		opts = append(opts, field.AllowScalar())
	}
	if decl.Default != nil {
		opts = append(opts, field.WithDefault(decl.Default))
	}
	if decl.ValueIsID {
		opts = append(opts, field.ValueIsID())
	}
	return opts
}

func elemName(decl FieldSpec, i int) string {
	if decl.Key != "" {
		return decl.Key
	}
	return fmt.Sprintf("[%d]", i)
}

func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}
