package graphcheck

import (
	"sort"

	"gonum.org/v1/gonum/graph"
)

// tarjan finds the strongly connected components of a directed graph that
// hold more than one node.
type tarjan struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

func newTarjan(g graph.Directed) *tarjan {
	return &tarjan{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// components returns every cycle-forming component.
func (t *tarjan) components() [][]int64 {
	nodes := graph.NodesOf(t.graph.Nodes())
	// Node iteration order of simple.DirectedGraph is map order; visit by id
	// so reports are stable.
	sortNodes(nodes)
	for _, n := range nodes {
		if _, visited := t.indices[n.ID()]; !visited {
			t.strongConnect(n.ID())
		}
	}
	return t.sccs
}

func (t *tarjan) strongConnect(id int64) {
	t.indices[id] = t.index
	t.lowLink[id] = t.index
	t.index++

	t.stack = append(t.stack, id)
	t.onStack[id] = true

	successors := graph.NodesOf(t.graph.From(id))
	sortNodes(successors)
	for _, s := range successors {
		sid := s.ID()
		if _, visited := t.indices[sid]; !visited {
			t.strongConnect(sid)
			t.lowLink[id] = min(t.lowLink[id], t.lowLink[sid])
		} else if t.onStack[sid] {
			t.lowLink[id] = min(t.lowLink[id], t.indices[sid])
		}
	}

	if t.lowLink[id] != t.indices[id] {
		return
	}
	var scc []int64
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == id {
			break
		}
	}
	if len(scc) > 1 {
		t.sccs = append(t.sccs, scc)
	}
}

func sortNodes(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}
