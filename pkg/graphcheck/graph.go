package graphcheck

import (
	"github.com/guptam/altimeter/pkg/link"
	"github.com/guptam/altimeter/pkg/model"
	"gonum.org/v1/gonum/graph/simple"
)

// ResourceGraph is the reference graph between resources: one node per
// resource vertex, one edge per distinct resource or transient link.
type ResourceGraph struct {
	graph *simple.DirectedGraph
	ids   map[string]int64 // vertex id to graph node id
	names []string         // graph node id to vertex id

	// selfLinks holds resources that link to themselves. simple.DirectedGraph
	// rejects self edges, so they are tracked here.
	selfLinks []string
}

// NewResourceGraph creates an empty resource graph.
func NewResourceGraph() *ResourceGraph {
	return &ResourceGraph{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
	}
}

// AddResource adds a node for id unless one exists.
func (rg *ResourceGraph) AddResource(id string) {
	if _, exists := rg.ids[id]; exists {
		return
	}
	nodeID := int64(len(rg.names))
	rg.ids[id] = nodeID
	rg.names = append(rg.names, id)
	rg.graph.AddNode(simple.Node(nodeID))
}

// HasResource reports whether id has a node.
func (rg *ResourceGraph) HasResource(id string) bool {
	_, ok := rg.ids[id]
	return ok
}

// AddReference adds an edge from source to target, adding either node if
// missing. Repeated references collapse into one edge.
func (rg *ResourceGraph) AddReference(source, target string) {
	rg.AddResource(source)
	rg.AddResource(target)
	if source == target {
		for _, s := range rg.selfLinks {
			if s == source {
				return
			}
		}
		rg.selfLinks = append(rg.selfLinks, source)
		return
	}

	from, to := rg.ids[source], rg.ids[target]
	if !rg.graph.HasEdgeFromTo(from, to) {
		rg.graph.SetEdge(rg.graph.NewEdge(rg.graph.Node(from), rg.graph.Node(to)))
	}
}

// References returns the ids id links to, in node order.
func (rg *ResourceGraph) References(id string) []string {
	nodeID, ok := rg.ids[id]
	if !ok {
		return nil
	}
	var out []string
	iter := rg.graph.From(nodeID)
	for iter.Next() {
		out = append(out, rg.names[iter.Node().ID()])
	}
	return out
}

// Len returns the number of resources.
func (rg *ResourceGraph) Len() int {
	return len(rg.names)
}

// name maps a graph node id back to its vertex id.
func (rg *ResourceGraph) name(nodeID int64) string {
	return rg.names[nodeID]
}

// FromLPG builds the reference graph of an encoded property graph. Tag
// vertices, tagged edges and edges whose target has no vertex are left out.
// A tag vertex is a target of a tagged edge, so resources of a type that
// happens to be named "tag" are kept.
func FromLPG(g *model.Graph) *ResourceGraph {
	tags := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Label == link.LabelTagged {
			tags[e.To] = true
		}
	}

	rg := NewResourceGraph()
	for _, v := range g.Vertices {
		if v.Label() == link.LabelTag && tags[v.ID()] {
			continue
		}
		rg.AddResource(v.ID())
	}
	for _, e := range g.Edges {
		if !isReference(e.Label) {
			continue
		}
		if !rg.HasResource(e.From) || !rg.HasResource(e.To) {
			continue
		}
		rg.AddReference(e.From, e.To)
	}
	return rg
}

func isReference(label string) bool {
	return label == string(link.TypeResourceLink) || label == string(link.TypeTransientResourceLink)
}
