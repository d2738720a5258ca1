/*
Package graph builds a deduplicated, laid-out graph from relation triples.
*/
package graph

import (
	"errors"

	"github.com/shanehull/filinglens/internal/types"
)

// Layout defaults. K is the repulsion strength between nodes.
const (
	DefaultSeed       = 42
	DefaultK          = 0.9
	DefaultIterations = 50
)

type Edge struct {
	Source string
	Target string
	Label  string
}

type Point struct {
	X, Y float64
}

// Graph holds unique nodes in first-seen order and at most one edge per
// unordered node pair.
type Graph struct {
	Nodes     []string
	Edges     []Edge
	Positions map[string]Point
}

type options struct {
	seed       uint64
	k          float64
	iterations int
}

type Option func(*options)

func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

func WithK(k float64) Option {
	return func(o *options) {
		if k > 0 {
			o.k = k
		}
	}
}

func WithIterations(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.iterations = n
		}
	}
}

type pairKey struct{ a, b string }

func unordered(x, y string) pairKey {
	if x > y {
		x, y = y, x
	}
	return pairKey{x, y}
}

// Build creates the graph for relations and computes its layout. The first
// relation seen for a node pair labels the edge; later ones are ignored.
// Relations missing a subject or object are dropped.
func Build(relations []types.Relation, opts ...Option) (*Graph, error) {
	o := options{seed: DefaultSeed, k: DefaultK, iterations: DefaultIterations}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Graph{}
	index := make(map[string]int)
	seen := make(map[pairKey]bool)

	addNode := func(id string) {
		if _, ok := index[id]; !ok {
			index[id] = len(g.Nodes)
			g.Nodes = append(g.Nodes, id)
		}
	}

	for _, r := range relations {
		if r.Subject == "" || r.Object == "" {
			continue
		}
		addNode(r.Subject)
		addNode(r.Object)

		key := unordered(r.Subject, r.Object)
		if seen[key] {
			continue
		}
		seen[key] = true
		g.Edges = append(g.Edges, Edge{Source: r.Subject, Target: r.Object, Label: r.Type})
	}

	if len(g.Nodes) == 0 {
		return nil, &types.OpError{Op: "graph.build", Kind: types.KindEmptyGraph, Err: errors.New("no relations")}
	}

	pairs := make([][2]int, 0, len(g.Edges))
	for _, e := range g.Edges {
		pairs = append(pairs, [2]int{index[e.Source], index[e.Target]})
	}

	pos := springLayout(len(g.Nodes), pairs, o)
	g.Positions = make(map[string]Point, len(g.Nodes))
	for i, id := range g.Nodes {
		g.Positions[id] = pos[i]
	}
	return g, nil
}

// RelationGraph flattens g into its presentation form, edges carrying the
// coordinates of both endpoints.
func (g *Graph) RelationGraph() *types.RelationGraph {
	out := &types.RelationGraph{
		Nodes: make([]types.GraphNode, 0, len(g.Nodes)),
		Edges: make([]types.GraphEdge, 0, len(g.Edges)),
	}
	for _, id := range g.Nodes {
		p := g.Positions[id]
		out.Nodes = append(out.Nodes, types.GraphNode{ID: id, X: p.X, Y: p.Y})
	}
	for _, e := range g.Edges {
		p0, p1 := g.Positions[e.Source], g.Positions[e.Target]
		out.Edges = append(out.Edges, types.GraphEdge{
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			X0:     p0.X,
			Y0:     p0.Y,
			X1:     p1.X,
			Y1:     p1.Y,
		})
	}
	return out
}
