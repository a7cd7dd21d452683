package link

import (
	"fmt"

	"github.com/guptam/altimeter/pkg/nodecache"
	"github.com/guptam/altimeter/pkg/rdfgraph"
	"github.com/knakk/rdf"
)

// ToRDF adds (subj, ns:pred, literal).
func (l SimpleLink) ToRDF(subj rdf.Subject, ns rdfgraph.Namespace, g *rdfgraph.Graph, _ *nodecache.Cache) error {
	pred, err := ns.IRI(l.Pred)
	if err != nil {
		return err
	}
	lit, err := rdfgraph.NewLiteral(l.Obj)
	if err != nil {
		return fmt.Errorf("link %q: %w", l.Pred, err)
	}
	g.Add(subj, pred, lit)
	return nil
}

// ToRDF creates a fresh anonymous node typed ns:pred, encodes every sub-link
// against it and links it from subj.
func (l MultiLink) ToRDF(subj rdf.Subject, ns rdfgraph.Namespace, g *rdfgraph.Graph, cache *nodecache.Cache) error {
	pred, err := ns.IRI(l.Pred)
	if err != nil {
		return err
	}
	node, err := cache.NewNode()
	if err != nil {
		return err
	}
	g.Add(node, rdfgraph.RDFType, pred)
	for _, sub := range l.Obj {
		if err := sub.ToRDF(node, ns, g, cache); err != nil {
			return err
		}
	}
	g.Add(subj, pred, node)
	return nil
}

// ToRDF links subj to the cached node of the target resource.
func (l ResourceLinkLink) ToRDF(subj rdf.Subject, ns rdfgraph.Namespace, g *rdfgraph.Graph, cache *nodecache.Cache) error {
	return resourceEdgeRDF(subj, l.Pred, l.Obj, ns, g, cache)
}

// ToRDF links subj to the cached node of the target resource.
func (l TransientResourceLinkLink) ToRDF(subj rdf.Subject, ns rdfgraph.Namespace, g *rdfgraph.Graph, cache *nodecache.Cache) error {
	return resourceEdgeRDF(subj, l.Pred, l.Obj, ns, g, cache)
}

func resourceEdgeRDF(subj rdf.Subject, predName, id string, ns rdfgraph.Namespace, g *rdfgraph.Graph, cache *nodecache.Cache) error {
	pred, err := ns.IRI(predName)
	if err != nil {
		return err
	}
	node, _, err := cache.GetOrCreate(id)
	if err != nil {
		return err
	}
	g.Add(subj, pred, node)
	return nil
}

// ToRDF links subj to the shared tag node for pred:obj. The tag node's key,
// value and type triples are written only when the node is first created.
func (l TagLink) ToRDF(subj rdf.Subject, ns rdfgraph.Namespace, g *rdfgraph.Graph, cache *nodecache.Cache) error {
	tagPred, err := ns.IRI("tag")
	if err != nil {
		return err
	}
	node, created, err := cache.GetOrCreate(TagID(l.Pred, l.Obj))
	if err != nil {
		return err
	}
	if created {
		keyPred, err := ns.IRI("key")
		if err != nil {
			return err
		}
		valuePred, err := ns.IRI("value")
		if err != nil {
			return err
		}
		g.Add(node, keyPred, rdf.NewTypedLiteral(l.Pred, rdfgraph.XSDString))
		g.Add(node, valuePred, rdf.NewTypedLiteral(l.Obj, rdfgraph.XSDString))
		g.Add(node, rdfgraph.RDFType, tagPred)
	}
	g.Add(subj, tagPred, node)
	return nil
}
