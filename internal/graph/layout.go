package graph

import (
	"math"
	"math/rand/v2"

	gograph "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	layoutRate  = 0.05
	layoutTheta = 0.2
)

// orderedGraph iterates nodes and neighbours in ascending ID order so a seeded
// layout places nodes identically on every run.
type orderedGraph struct {
	*simple.UndirectedGraph
	nodes []gograph.Node
}

func (g orderedGraph) Nodes() gograph.Nodes {
	return iterator.NewOrderedNodes(g.nodes)
}

func (g orderedGraph) From(id int64) gograph.Nodes {
	var to []gograph.Node
	for _, n := range g.nodes {
		if n.ID() != id && g.HasEdgeBetween(id, n.ID()) {
			to = append(to, n)
		}
	}
	if len(to) == 0 {
		return gograph.Empty
	}
	return iterator.NewOrderedNodes(to)
}

// springLayout runs the Eades force-directed layout over n nodes joined by
// the index pairs in edges and rescales the result into [-1, 1]. Node i gets
// ID i. Self loops carry no force and are not laid out.
func springLayout(n int, edges [][2]int, o options) []Point {
	if n == 1 {
		return []Point{{}}
	}

	g := orderedGraph{UndirectedGraph: simple.NewUndirectedGraph()}
	for i := 0; i < n; i++ {
		node := simple.Node(i)
		g.AddNode(node)
		g.nodes = append(g.nodes, node)
	}
	for _, e := range edges {
		if e[0] != e[1] {
			g.SetEdge(g.NewEdge(simple.Node(e[0]), simple.Node(e[1])))
		}
	}

	eades := layout.EadesR2{
		Updates:   o.iterations,
		Repulsion: o.k,
		Rate:      layoutRate,
		Theta:     layoutTheta,
		Src:       rand.NewPCG(o.seed, o.seed),
	}
	opt := layout.NewOptimizerR2(g, eades.Update)
	for opt.Update() {
	}

	pos := make([]Point, n)
	for i := range pos {
		c := opt.Coord2(int64(i))
		pos[i] = Point{X: c.X, Y: c.Y}
	}
	return rescale(pos)
}

// rescale centres pos on its mean and scales it so the largest absolute
// coordinate is 1.
func rescale(pos []Point) []Point {
	var mx, my float64
	for _, p := range pos {
		mx += p.X
		my += p.Y
	}
	mx /= float64(len(pos))
	my /= float64(len(pos))

	var lim float64
	for i := range pos {
		pos[i].X -= mx
		pos[i].Y -= my
		lim = math.Max(lim, math.Max(math.Abs(pos[i].X), math.Abs(pos[i].Y)))
	}
	if lim > 0 {
		for i := range pos {
			pos[i].X /= lim
			pos[i].Y /= lim
		}
	}
	return pos
}
