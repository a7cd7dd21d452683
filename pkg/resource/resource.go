// Package resource pairs a parsed link tree with the identity and type of the
// scanned object it describes, and encodes it as one graph node.
package resource

import (
	"errors"
	"fmt"

	"github.com/guptam/altimeter/pkg/link"
	"github.com/guptam/altimeter/pkg/model"
	"github.com/guptam/altimeter/pkg/nodecache"
	"github.com/guptam/altimeter/pkg/rdfgraph"
	"github.com/knakk/rdf"
)

// ErrInvalidResource is returned for resources without an id or type.
var ErrInvalidResource = errors.New("invalid resource")

// Resource is a single scanned object: an id (usually an ARN), a type name
// and the links parsed from its API description.
type Resource struct {
	ID    string
	Type  string
	Links []link.Link
}

// New validates and creates a resource.
func New(id, typ string, links []link.Link) (Resource, error) {
	if id == "" {
		return Resource{}, fmt.Errorf("%w: empty id", ErrInvalidResource)
	}
	if typ == "" {
		return Resource{}, fmt.Errorf("%w: %s: empty type", ErrInvalidResource, id)
	}
	if links == nil {
		links = []link.Link{}
	}
	return Resource{ID: id, Type: typ, Links: links}, nil
}

// ToRDF writes the resource node, its type and id triples, then every link.
// The node comes from cache keyed by ID, so links to this resource written
// earlier in the pass resolve to the same node.
func (r Resource) ToRDF(ns rdfgraph.Namespace, g *rdfgraph.Graph, cache *nodecache.Cache) error {
	node, _, err := cache.GetOrCreate(r.ID)
	if err != nil {
		return err
	}
	class, err := ns.IRI(r.Type)
	if err != nil {
		return fmt.Errorf("resource %s: %w", r.ID, err)
	}
	idPred, err := ns.IRI("id")
	if err != nil {
		return err
	}
	g.Add(node, rdfgraph.RDFType, class)
	g.Add(node, idPred, rdf.NewTypedLiteral(r.ID, rdfgraph.XSDString))
	for _, l := range r.Links {
		if err := l.ToRDF(node, ns, g, cache); err != nil {
			return fmt.Errorf("resource %s: %w", r.ID, err)
		}
	}
	return nil
}

// ToLPG builds the resource vertex, encodes every link against it and then
// appends it, so the vertex list never holds a partially filled vertex.
func (r Resource) ToLPG(g *model.Graph) {
	v := model.NewVertex(r.ID, r.Type)
	v["arn"] = r.ID
	for _, l := range r.Links {
		l.ToLPG(v, g, "")
	}
	g.AddVertex(v)
}

// LinkCounts returns the number of links of each variant, nested links included.
func (r Resource) LinkCounts() map[link.Type]int {
	counts := make(map[link.Type]int)
	link.Walk(r.Links, func(l link.Link) {
		counts[l.Type()]++
	})
	return counts
}

// References returns the ids of every resource this one links to, in order.
func (r Resource) References() []string {
	var ids []string
	link.Walk(r.Links, func(l link.Link) {
		switch l.Type() {
		case link.TypeResourceLink, link.TypeTransientResourceLink:
			if id, _ := l.Object().(string); id != "" {
				ids = append(ids, id)
			}
		}
	})
	return ids
}
