package model

// HasVertex reports whether a vertex with the given id has been appended.
// This is a linear scan over the vertex list; it is what tag deduplication
// relies on, so very large batches pay O(vertices) per tag link.
func (g *Graph) HasVertex(id string) bool {
	_, ok := g.Vertex(id)
	return ok
}

// Vertex returns the first vertex with the given id.
func (g *Graph) Vertex(id string) (Vertex, bool) {
	for _, v := range g.Vertices {
		if v.ID() == id {
			return v, true
		}
	}
	return nil, false
}

// VerticesByLabel returns all vertices carrying label, in append order.
func (g *Graph) VerticesByLabel(label string) []Vertex {
	var out []Vertex
	for _, v := range g.Vertices {
		if v.Label() == label {
			out = append(out, v)
		}
	}
	return out
}

// EdgesByLabel returns all edges carrying label, in append order.
func (g *Graph) EdgesByLabel(label string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Label == label {
			out = append(out, e)
		}
	}
	return out
}

// EdgesFrom returns all edges leaving the vertex with the given id.
func (g *Graph) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// LabelCounts returns the number of vertices per label.
func (g *Graph) LabelCounts() map[string]int {
	counts := make(map[string]int)
	for _, v := range g.Vertices {
		counts[v.Label()]++
	}
	return counts
}
