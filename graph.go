// Copyright (c) 2026 Nlaak Studios (https://nlaak.com)
// Author: Andrew Donelson (https://www.linkedin.com/in/andrew-donelson/)
//
// graph.go — the graph entry kind: nodes and edges with attribute maps. The
// codec deliberately carries its own minimal representation instead of
// depending on a graph library; richer representations plug in through the
// registry by registering their own tag.

package gridio

// GraphNode is a node with an attribute map. Attrs may be nil.
type GraphNode struct {
	ID    any
	Attrs *Dict
}

// GraphEdge is an edge with an attribute map. Attrs may be nil.
type GraphEdge struct {
	From  any
	To    any
	Attrs *Dict
}

// Graph is a graph document entry. Node and edge emission order is stable:
// the encoder writes them in insertion order, and equality ignores order.
type Graph struct {
	Directed bool
	Nodes    []GraphNode
	Edges    []GraphEdge
}

// NewGraph returns an empty undirected graph.
func NewGraph() *Graph { return &Graph{} }

// AddNode appends a node. A nil attrs is stored as an empty Dict.
func (g *Graph) AddNode(id any, attrs *Dict) {
	if attrs == nil {
		attrs = NewDict()
	}
	g.Nodes = append(g.Nodes, GraphNode{ID: normalizeScalar(id), Attrs: attrs})
}

// AddEdge appends an edge. A nil attrs is stored as an empty Dict.
func (g *Graph) AddEdge(from, to any, attrs *Dict) {
	if attrs == nil {
		attrs = NewDict()
	}
	g.Edges = append(g.Edges, GraphEdge{
		From:  normalizeScalar(from),
		To:    normalizeScalar(to),
		Attrs: attrs,
	})
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id any) bool {
	id = normalizeScalar(id)
	for _, n := range g.Nodes {
		if scalarEqual(n.ID, id) {
			return true
		}
	}
	return false
}
