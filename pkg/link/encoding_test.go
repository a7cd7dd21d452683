package link

import (
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/guptam/altimeter/pkg/model"
	"github.com/guptam/altimeter/pkg/nodecache"
	"github.com/guptam/altimeter/pkg/rdfgraph"
	"github.com/knakk/rdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testNS = rdfgraph.Namespace("https://example.com/alti#")

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("e%d", n)
	}
}

func mustIRI(t *testing.T, name string) rdf.IRI {
	t.Helper()
	iri, err := testNS.IRI(name)
	require.NoError(t, err)
	return iri
}

func TestSimpleLinkToRDF_IntegerDatatypes(t *testing.T) {
	huge, _ := new(big.Int).SetString("99999999999999999999", 10)
	tests := []struct {
		obj  any
		want rdf.IRI
	}{
		{int64(2147483647), rdfgraph.XSDInteger},
		{int64(2147483648), rdfgraph.XSDNonNegativeInteger},
		{int64(-5), rdfgraph.XSDInteger},
		{uint64(math.MaxUint64), rdfgraph.XSDNonNegativeInteger},
		{huge, rdfgraph.XSDNonNegativeInteger},
		{"x", rdfgraph.XSDString},
		{true, rdfgraph.XSDBoolean},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.obj), func(t *testing.T) {
			g := rdfgraph.New()
			subj, err := nodecache.New().NewNode()
			require.NoError(t, err)

			require.NoError(t, SimpleLink{Pred: "v", Obj: tt.obj}.ToRDF(subj, testNS, g, nodecache.New()))
			require.Equal(t, 1, g.Len())

			lit, ok := g.Triples()[0].Obj.(rdf.Literal)
			require.True(t, ok)
			assert.Equal(t, tt.want, lit.DataType)
		})
	}
}

func TestMultiLinkToRDF(t *testing.T) {
	g := rdfgraph.New()
	cache := nodecache.New()
	subj, _, err := cache.GetOrCreate("res")
	require.NoError(t, err)

	multi := MultiLink{Pred: "route", Obj: []Link{
		SimpleLink{Pred: "state", Obj: "active"},
		ResourceLinkLink{Pred: "gateway", Obj: "igw-1"},
	}}
	require.NoError(t, multi.ToRDF(subj, testNS, g, cache))

	route := mustIRI(t, "route")
	typed := g.Match(nil, rdfgraph.RDFType, route)
	require.Len(t, typed, 1)
	node, ok := typed[0].Subj.(rdf.Blank)
	require.True(t, ok, "multi link node is anonymous")

	assert.Len(t, g.Match(node, mustIRI(t, "state"), nil), 1)
	assert.Len(t, g.Match(node, mustIRI(t, "gateway"), nil), 1)
	assert.Len(t, g.Match(subj, route, node), 1)

	gw, ok := cache.Get("igw-1")
	require.True(t, ok)
	assert.Len(t, g.Match(node, nil, gw), 1)
}

func TestTagLinkToRDF_Dedup(t *testing.T) {
	g := rdfgraph.New()
	cache := nodecache.New()
	a, _, _ := cache.GetOrCreate("a")
	b, _, _ := cache.GetOrCreate("b")

	tag := TagLink{Pred: "Name", Obj: "prod"}
	require.NoError(t, tag.ToRDF(a, testNS, g, cache))
	require.NoError(t, tag.ToRDF(b, testNS, g, cache))

	assert.Len(t, g.Match(nil, rdfgraph.RDFType, mustIRI(t, "tag")), 1)
	assert.Len(t, g.Match(nil, mustIRI(t, "key"), nil), 1)
	assert.Len(t, g.Match(nil, mustIRI(t, "tag"), nil), 2)
	assert.Equal(t, 3, cache.Len())
}

func TestSimpleLinkToLPG_IntegerBounds(t *testing.T) {
	huge, _ := new(big.Int).SetString("99999999999999999999", 10)
	tests := []struct {
		name string
		obj  any
		want any
	}{
		{"max int64", int64(math.MaxInt64), int64(math.MaxInt64)},
		{"min int64 plus one", int64(math.MinInt64 + 1), int64(math.MinInt64 + 1)},
		{"min int64", int64(math.MinInt64), "-9223372036854775808"},
		{"above int64", uint64(math.MaxInt64) + 1, "9223372036854775808"},
		{"big", huge, "99999999999999999999"},
		{"string", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := model.NewGraph()
			v := model.NewVertex("r", "thing")
			SimpleLink{Pred: "n", Obj: tt.obj}.ToLPG(v, g, "")
			assert.Equal(t, tt.want, v["n"])
		})
	}
}

func TestMultiLinkToLPG_FlattensWithPrefix(t *testing.T) {
	g := model.NewGraph(model.WithIDGenerator(sequentialIDs()))
	v := model.NewVertex("r", "thing")

	multi := MultiLink{Pred: "options", Obj: []Link{
		SimpleLink{Pred: "dns_support", Obj: "enable"},
		MultiLink{Pred: "inner", Obj: []Link{SimpleLink{Pred: "depth", Obj: int64(2)}}},
		ResourceLinkLink{Pred: "vpc", Obj: "vpc-1"},
	}}
	multi.ToLPG(v, g, "")

	assert.Equal(t, "enable", v["options.dns_support"])
	assert.Equal(t, int64(2), v["options.inner.depth"])
	assert.Empty(t, g.Vertices)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, model.Edge{ID: "e1", Label: "resource_link", From: "r", To: "vpc-1"}, g.Edges[0])
}

func TestResourceLinksToLPG_NotDeduplicated(t *testing.T) {
	g := model.NewGraph(model.WithIDGenerator(sequentialIDs()))
	v := model.NewVertex("r", "thing")

	ResourceLinkLink{Pred: "vpc", Obj: "vpc-1"}.ToLPG(v, g, "")
	ResourceLinkLink{Pred: "vpc", Obj: "vpc-1"}.ToLPG(v, g, "")
	TransientResourceLinkLink{Pred: "role", Obj: "role-1"}.ToLPG(v, g, "")

	require.Len(t, g.Edges, 3)
	assert.Equal(t, "resource_link", g.Edges[1].Label)
	assert.Equal(t, "transient_resource_link", g.Edges[2].Label)
	assert.NotEqual(t, g.Edges[0].ID, g.Edges[1].ID)
}

func TestTagLinkToLPG_Dedup(t *testing.T) {
	g := model.NewGraph()
	a := model.NewVertex("a", "thing")
	b := model.NewVertex("b", "thing")

	tag := TagLink{Pred: "Name", Obj: "prod"}
	tag.ToLPG(a, g, "")
	tag.ToLPG(b, g, "")

	require.Len(t, g.Vertices, 1)
	assert.Equal(t, model.Vertex{"~id": "Name:prod", "~label": "tag", "Name": "prod"}, g.Vertices[0])
	assert.Len(t, g.EdgesByLabel("tagged"), 2)
}
