package model

import (
	"github.com/google/uuid"
)

// Reserved property keys of the labeled property graph payload.
const (
	KeyID    = "~id"
	KeyLabel = "~label"
	KeyFrom  = "~from"
	KeyTo    = "~to"
)

// Graph is the labeled property graph produced by one encoding pass: a flat
// vertex list and an edge list, both in the order they were appended.
type Graph struct {
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`

	newID func() string
}

// Vertex is a flat property map. KeyID and KeyLabel are always set; nested
// structure is flattened into dotted property names.
type Vertex map[string]any

// Edge represents a directed connection between two vertices.
type Edge struct {
	ID    string `json:"~id"`
	Label string `json:"~label"`
	From  string `json:"~from"`
	To    string `json:"~to"`
}

// Option configures a Graph.
type Option func(*Graph)

// WithIDGenerator overrides how edge ids are minted.
func WithIDGenerator(fn func() string) Option {
	return func(g *Graph) {
		g.newID = fn
	}
}

// NewGraph creates a new empty graph.
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		Vertices: make([]Vertex, 0),
		Edges:    make([]Edge, 0),
		newID:    timeUUID,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// timeUUID mints version 1 ids, falling back to random ids if the clock
// sequence can't be read.
func timeUUID() string {
	id, err := uuid.NewUUID()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewVertex creates a vertex with its reserved keys set.
func NewVertex(id, label string) Vertex {
	return Vertex{KeyID: id, KeyLabel: label}
}

// ID returns the vertex id.
func (v Vertex) ID() string {
	id, _ := v[KeyID].(string)
	return id
}

// Label returns the vertex label.
func (v Vertex) Label() string {
	label, _ := v[KeyLabel].(string)
	return label
}

// AddVertex appends a vertex. Callers append a vertex only once its
// properties are complete.
func (g *Graph) AddVertex(v Vertex) {
	g.Vertices = append(g.Vertices, v)
}

// AddEdge appends an edge with a freshly minted id. Identical edges are not
// merged; every call appends.
func (g *Graph) AddEdge(label, from, to string) Edge {
	edge := Edge{
		ID:    g.newID(),
		Label: label,
		From:  from,
		To:    to,
	}
	g.Edges = append(g.Edges, edge)
	return edge
}
