// Package rdfgraph holds the triple store written by the RDF encoder, together
// with the namespace and literal helpers the link variants use to build terms.
package rdfgraph

import (
	"fmt"
	"io"

	"github.com/knakk/rdf"
)

// Syntax names a serialisation format for a Graph.
type Syntax string

const (
	SyntaxNTriples Syntax = "ntriples"
	SyntaxTurtle   Syntax = "turtle"
)

// ParseSyntax maps a configuration value onto a Syntax.
func ParseSyntax(s string) (Syntax, error) {
	switch Syntax(s) {
	case SyntaxNTriples, "nt", "":
		return SyntaxNTriples, nil
	case SyntaxTurtle, "ttl":
		return SyntaxTurtle, nil
	}
	return "", fmt.Errorf("unsupported rdf syntax %q", s)
}

// ContentType returns the media type of the serialisation.
func (s Syntax) ContentType() string {
	if s == SyntaxTurtle {
		return "text/turtle"
	}
	return "application/n-triples"
}

func (s Syntax) format() rdf.Format {
	if s == SyntaxTurtle {
		return rdf.Turtle
	}
	return rdf.NTriples
}

// Graph is an append-only, insertion-ordered triple store.
// It is not safe for concurrent use.
type Graph struct {
	triples []rdf.Triple
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{triples: make([]rdf.Triple, 0)}
}

// Add appends one triple.
func (g *Graph) Add(subj rdf.Subject, pred rdf.Predicate, obj rdf.Object) {
	g.triples = append(g.triples, rdf.Triple{Subj: subj, Pred: pred, Obj: obj})
}

// Len returns the number of triples in the graph.
func (g *Graph) Len() int {
	return len(g.triples)
}

// Triples returns the triples in insertion order.
func (g *Graph) Triples() []rdf.Triple {
	return g.triples
}

// Match returns every triple matching the given terms. A nil term matches anything.
func (g *Graph) Match(subj rdf.Subject, pred rdf.Predicate, obj rdf.Object) []rdf.Triple {
	var out []rdf.Triple
	for _, t := range g.triples {
		if subj != nil && t.Subj != subj {
			continue
		}
		if pred != nil && t.Pred != pred {
			continue
		}
		if obj != nil && t.Obj != obj {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Count returns the number of triples using pred.
func (g *Graph) Count(pred rdf.Predicate) int {
	return len(g.Match(nil, pred, nil))
}

// Encode serialises all triples to w.
func (g *Graph) Encode(w io.Writer, syntax Syntax) error {
	enc := rdf.NewTripleEncoder(w, syntax.format())
	for _, t := range g.triples {
		if err := enc.Encode(t); err != nil {
			return fmt.Errorf("failed to encode triple: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush rdf encoder: %w", err)
	}
	return nil
}
