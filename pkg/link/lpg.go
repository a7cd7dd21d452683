package link

import (
	"github.com/guptam/altimeter/pkg/model"
)

// Edge and vertex labels written by the LPG encoding.
const (
	LabelTag    = "tag"
	LabelTagged = "tagged"
)

// ToLPG sets parent[prefix+pred] to the value, overwriting any earlier value
// under the same name.
func (l SimpleLink) ToLPG(parent model.Vertex, _ *model.Graph, prefix string) {
	parent[prefix+l.Pred] = lpgValue(l.Obj)
}

// ToLPG flattens every sub-link onto parent under prefix+pred+".".
func (l MultiLink) ToLPG(parent model.Vertex, g *model.Graph, prefix string) {
	nested := prefix + l.Pred + "."
	for _, sub := range l.Obj {
		sub.ToLPG(parent, g, nested)
	}
}

// ToLPG appends a resource_link edge from parent to the target id.
func (l ResourceLinkLink) ToLPG(parent model.Vertex, g *model.Graph, _ string) {
	g.AddEdge(string(TypeResourceLink), parent.ID(), l.Obj)
}

// ToLPG appends a transient_resource_link edge from parent to the target id.
func (l TransientResourceLinkLink) ToLPG(parent model.Vertex, g *model.Graph, _ string) {
	g.AddEdge(string(TypeTransientResourceLink), parent.ID(), l.Obj)
}

// ToLPG appends the tag vertex unless a vertex with the same id already
// exists, then a tagged edge from parent.
func (l TagLink) ToLPG(parent model.Vertex, g *model.Graph, _ string) {
	id := TagID(l.Pred, l.Obj)
	if !g.HasVertex(id) {
		v := model.NewVertex(id, LabelTag)
		v[l.Pred] = l.Obj
		g.AddVertex(v)
	}
	g.AddEdge(LabelTagged, parent.ID(), id)
}
