// Package link defines the closed set of predicate-object records produced by
// parsing resource data, and how each of them is written into the two graph
// encodings.
//
// The variants are:
//
//   - SimpleLink: a literal property
//   - MultiLink: a named group of sub-links
//   - ResourceLinkLink: an edge to a resource expected to exist in the graph
//   - TransientResourceLinkLink: an edge to a resource that may not exist
//   - TagLink: a key/value tag, deduplicated across resources
//
// Link is sealed: only this package can add variants, and every variant must
// implement both ToRDF and ToLPG.
package link

import (
	"github.com/guptam/altimeter/pkg/model"
	"github.com/guptam/altimeter/pkg/nodecache"
	"github.com/guptam/altimeter/pkg/rdfgraph"
	"github.com/knakk/rdf"
)

// Type is the discriminator stored under the "link_type" key.
type Type string

const (
	TypeSimple                Type = "simple"
	TypeMulti                 Type = "multi"
	TypeResourceLink          Type = "resource_link"
	TypeTransientResourceLink Type = "transient_resource_link"
	TypeTag                   Type = "tag"
)

// Types lists every valid discriminator.
var Types = []Type{TypeSimple, TypeMulti, TypeResourceLink, TypeTransientResourceLink, TypeTag}

// Link is one predicate-object relationship.
type Link interface {
	// Predicate returns the link predicate.
	Predicate() string
	// Type returns the variant discriminator.
	Type() Type
	// Object returns the link object: a scalar, a []Link, or a string id.
	Object() any

	// ToRDF writes the link against subj into g.
	ToRDF(subj rdf.Subject, ns rdfgraph.Namespace, g *rdfgraph.Graph, cache *nodecache.Cache) error
	// ToLPG writes the link onto parent, appending any vertices and edges to g.
	// prefix is prepended to property names set on parent.
	ToLPG(parent model.Vertex, g *model.Graph, prefix string)

	sealed()
}

// SimpleLink represents a scalar value. In RDF terms it creates a literal.
type SimpleLink struct {
	Pred string
	Obj  any
}

// MultiLink represents a named set of sub-links, for example a route with a
// destination, a gateway and a state.
type MultiLink struct {
	Pred string
	Obj  []Link
}

// ResourceLinkLink represents a link to another resource which must exist in
// the graph.
type ResourceLinkLink struct {
	Pred string
	Obj  string
}

// TransientResourceLinkLink represents a link to another resource which may
// or may not exist in the graph. Encoders treat it exactly like
// ResourceLinkLink; the distinction is for consumers of the graph.
type TransientResourceLinkLink struct {
	Pred string
	Obj  string
}

// TagLink represents a key/value tag attached to a resource. Pred is the tag
// key, Obj the tag value.
type TagLink struct {
	Pred string
	Obj  string
}

// NewSimple validates and normalises a scalar link.
func NewSimple(pred string, obj any) (SimpleLink, error) {
	if pred == "" {
		return SimpleLink{}, invalid(TypeSimple, "empty predicate")
	}
	v, err := NormalizeScalar(obj)
	if err != nil {
		return SimpleLink{}, invalid(TypeSimple, err.Error())
	}
	return SimpleLink{Pred: pred, Obj: v}, nil
}

// NewMulti groups links under pred. The group may be empty.
func NewMulti(pred string, links []Link) (MultiLink, error) {
	if pred == "" {
		return MultiLink{}, invalid(TypeMulti, "empty predicate")
	}
	if links == nil {
		links = []Link{}
	}
	return MultiLink{Pred: pred, Obj: links}, nil
}

// NewResourceLink creates an edge to the resource with the given id.
func NewResourceLink(pred, id string) (ResourceLinkLink, error) {
	if pred == "" {
		return ResourceLinkLink{}, invalid(TypeResourceLink, "empty predicate")
	}
	if id == "" {
		return ResourceLinkLink{}, invalid(TypeResourceLink, "empty resource id")
	}
	return ResourceLinkLink{Pred: pred, Obj: id}, nil
}

// NewTransientResourceLink creates an edge to a resource that may be absent.
func NewTransientResourceLink(pred, id string) (TransientResourceLinkLink, error) {
	if pred == "" {
		return TransientResourceLinkLink{}, invalid(TypeTransientResourceLink, "empty predicate")
	}
	if id == "" {
		return TransientResourceLinkLink{}, invalid(TypeTransientResourceLink, "empty resource id")
	}
	return TransientResourceLinkLink{Pred: pred, Obj: id}, nil
}

// NewTag creates a tag link for key=value.
func NewTag(key, value string) (TagLink, error) {
	if key == "" {
		return TagLink{}, invalid(TypeTag, "empty tag key")
	}
	return TagLink{Pred: key, Obj: value}, nil
}

func (l SimpleLink) Predicate() string { return l.Pred }
func (l SimpleLink) Type() Type        { return TypeSimple }
func (l SimpleLink) Object() any       { return l.Obj }
func (SimpleLink) sealed()             {}

func (l MultiLink) Predicate() string { return l.Pred }
func (l MultiLink) Type() Type        { return TypeMulti }
func (l MultiLink) Object() any       { return l.Obj }
func (MultiLink) sealed()             {}

func (l ResourceLinkLink) Predicate() string { return l.Pred }
func (l ResourceLinkLink) Type() Type        { return TypeResourceLink }
func (l ResourceLinkLink) Object() any       { return l.Obj }
func (ResourceLinkLink) sealed()             {}

func (l TransientResourceLinkLink) Predicate() string { return l.Pred }
func (l TransientResourceLinkLink) Type() Type        { return TypeTransientResourceLink }
func (l TransientResourceLinkLink) Object() any       { return l.Obj }
func (TransientResourceLinkLink) sealed()             {}

func (l TagLink) Predicate() string { return l.Pred }
func (l TagLink) Type() Type        { return TypeTag }
func (l TagLink) Object() any       { return l.Obj }
func (TagLink) sealed()             {}

// TagID is the node identity shared by every resource carrying key=value.
func TagID(key, value string) string {
	return key + ":" + value
}

// Walk calls fn for every link in the tree rooted at links, depth first.
func Walk(links []Link, fn func(Link)) {
	for _, l := range links {
		fn(l)
		if m, ok := l.(MultiLink); ok {
			Walk(m.Obj, fn)
		}
	}
}
