// Package layout implements the layered (Sugiyama-style) layout engine.
//
// The engine turns an ordered connection list into a LayoutResult in four
// phases:
//
//  1. Back-edge classification: a depth-first traversal from the sorted
//     root set (falling back to sorted name order when the whole graph is
//     cyclic) marks edges into on-stack nodes as back edges.
//  2. Layer assignment: longest-path layering via topological sort (Kahn's
//     algorithm) over the back-edge-free subgraph. Roots land in layer 0
//     and every other node sits one below its deepest predecessor.
//  3. Crossing minimization: a fixed number of barycenter sweeps reorders
//     each layer by the mean position of its neighbors in the adjacent
//     layer. Sorting is stable and nodes without neighbors keep their
//     relative order, so the result is deterministic.
//  4. Emission of the final layers, per-node placements, back-edge set,
//     and cycle flag.
//
// The engine is total over any finite directed graph: cyclic input, self
// loops, duplicate edges, and disconnected components all lay out without
// error. The only rejected input is an empty graph.
package layout

import (
	"errors"
	"sort"

	"github.com/ronikobrosly/retroflow/pkg/graph"
)

// ErrNoNodes is returned by [Engine.Layout] when the connection list
// produces no nodes at all. Every other graph shape lays out successfully.
var ErrNoNodes = errors.New("graph has no nodes")

// sweepCount is the fixed number of barycenter iterations. Each iteration
// runs one down-sweep and one up-sweep. The heuristic has no convergence
// check; a small fixed count terminates without oscillating.
const sweepCount = 4

// Placement is a node's slot in the layered drawing.
type Placement struct {
	Layer int // Rank, 0 = top (or leftmost in LR flow)
	Order int // Zero-based position within the layer
}

// Result is the output of the layout engine, consumed read-only by the
// position calculator and the edge drawer.
type Result struct {
	// Layers holds node names per rank, in final left-to-right order.
	Layers [][]string

	// Nodes maps every node name to its placement. Each node appears in
	// exactly one layer at exactly one order position.
	Nodes map[string]Placement

	// Edges are all distinct input edges in declaration order.
	Edges []graph.Edge

	// BackEdges is the feedback-arc set. Removing these from Edges yields
	// an acyclic graph.
	BackEdges map[graph.Edge]bool

	// HasCycles reports whether any back edge was found.
	HasCycles bool
}

// IsBackEdge reports whether the edge was classified as a feedback arc.
func (r *Result) IsBackEdge(e graph.Edge) bool { return r.BackEdges[e] }

// ForwardEdges returns the edges that are not back edges, in declaration
// order. For every forward edge, layer(source) < layer(target).
func (r *Result) ForwardEdges() []graph.Edge {
	var fwd []graph.Edge
	for _, e := range r.Edges {
		if !r.BackEdges[e] {
			fwd = append(fwd, e)
		}
	}
	return fwd
}

// Engine computes layered layouts. The zero value is ready to use.
type Engine struct{}

// New creates a layout engine.
func New() *Engine { return &Engine{} }

// Layout computes a layered layout for the given connection list.
// Returns ErrNoNodes if the list produces no nodes (after trimming).
func (eng *Engine) Layout(connections []graph.Edge) (*Result, error) {
	g := graph.FromConnections(connections)
	if g.NodeCount() == 0 {
		return nil, ErrNoNodes
	}

	back := make(map[graph.Edge]bool)
	for _, e := range g.FeedbackEdges() {
		back[e] = true
	}

	layers := assignLayers(g, back)
	orderInitial(g, layers)
	minimizeCrossings(g, layers, back)

	res := &Result{
		Layers:    layers,
		Nodes:     make(map[string]Placement, g.NodeCount()),
		Edges:     g.Edges(),
		BackEdges: back,
		HasCycles: len(back) > 0,
	}
	for layer, names := range layers {
		for order, name := range names {
			res.Nodes[name] = Placement{Layer: layer, Order: order}
		}
	}
	return res, nil
}

// assignLayers computes longest-path layers over the subgraph with back
// edges dropped, which is guaranteed acyclic. Kahn's algorithm ensures
// predecessors resolve before their successors, so
// layer(n) = 1 + max(layer(pred)) falls out of the traversal order.
func assignLayers(g *graph.Graph, back map[graph.Edge]bool) [][]string {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	layerOf := make(map[string]int, len(nodes))
	var queue []string

	degree := func(n string) int {
		d := 0
		for _, p := range g.Predecessors(n) {
			if !back[graph.Edge{From: p, To: n}] {
				d++
			}
		}
		return d
	}

	for _, n := range nodes {
		inDegree[n] = degree(n)
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	maxLayer := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, succ := range g.Successors(curr) {
			if back[graph.Edge{From: curr, To: succ}] {
				continue
			}
			if l := layerOf[curr] + 1; l > layerOf[succ] {
				layerOf[succ] = l
				if l > maxLayer {
					maxLayer = l
				}
			}
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	layers := make([][]string, maxLayer+1)
	for _, n := range nodes {
		l := layerOf[n]
		layers[l] = append(layers[l], n)
	}
	return layers
}

// orderInitial seeds each layer's order with first appearance in the edge
// list, giving the barycenter sweeps a stable, input-determined start.
func orderInitial(g *graph.Graph, layers [][]string) {
	appearance := make(map[string]int, g.NodeCount())
	idx := 0
	note := func(n string) {
		if _, seen := appearance[n]; !seen {
			appearance[n] = idx
			idx++
		}
	}
	for _, e := range g.Edges() {
		note(e.From)
		note(e.To)
	}

	for _, layer := range layers {
		sort.SliceStable(layer, func(i, j int) bool {
			return appearance[layer[i]] < appearance[layer[j]]
		})
	}
}

// minimizeCrossings runs the fixed barycenter sweeps. A down-sweep reorders
// each layer by the mean order of its predecessors in the layer above; an
// up-sweep mirrors that with successors below. Back edges are ignored.
func minimizeCrossings(g *graph.Graph, layers [][]string, back map[graph.Edge]bool) {
	if len(layers) <= 1 {
		return
	}

	for iter := 0; iter < sweepCount; iter++ {
		for i := 1; i < len(layers); i++ {
			reorderByNeighbors(g, layers, i, i-1, back, true)
		}
		for i := len(layers) - 2; i >= 0; i-- {
			reorderByNeighbors(g, layers, i, i+1, back, false)
		}
	}
}

// reorderByNeighbors stably re-sorts layers[target] by barycenter against
// layers[reference]. usePreds selects predecessors (down-sweep) versus
// successors (up-sweep). Nodes with no neighbors in the reference layer
// use their current index as barycenter, which keeps their relative order.
func reorderByNeighbors(g *graph.Graph, layers [][]string, target, reference int, back map[graph.Edge]bool, usePreds bool) {
	refPos := make(map[string]int, len(layers[reference]))
	for i, n := range layers[reference] {
		refPos[n] = i
	}

	layer := layers[target]
	bary := make(map[string]float64, len(layer))
	for i, n := range layer {
		var neighbors []string
		if usePreds {
			neighbors = g.Predecessors(n)
		} else {
			neighbors = g.Successors(n)
		}

		sum, count := 0.0, 0
		for _, nb := range neighbors {
			e := graph.Edge{From: nb, To: n}
			if !usePreds {
				e = graph.Edge{From: n, To: nb}
			}
			if back[e] {
				continue
			}
			if pos, ok := refPos[nb]; ok {
				sum += float64(pos)
				count++
			}
		}

		if count == 0 {
			bary[n] = float64(i)
		} else {
			bary[n] = sum / float64(count)
		}
	}

	sort.SliceStable(layer, func(i, j int) bool {
		return bary[layer[i]] < bary[layer[j]]
	})
}
