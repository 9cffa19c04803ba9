// Package graph provides the directed graph model that flowcharts are
// generated from.
//
// A Graph is built from an ordered list of (source, target) connections.
// Node identity is the trimmed, case-sensitive display text; duplicate
// edges are idempotent and self-loops are allowed. The package also
// provides the structural queries the layout engine needs: roots, leaves,
// cycle detection, feedback-edge classification, and topological order.
package graph

import (
	"slices"
	"strings"
)

// Edge is a directed connection between two nodes.
type Edge struct {
	From string // Source node name
	To   string // Target node name
}

// Graph is a directed graph keyed by node name.
// Edge insertion order is preserved; adding the same edge twice is a no-op.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[string]struct{}
	edges    []Edge
	edgeSet  map[Edge]struct{}
	outgoing map[string][]string // node -> successor names
	incoming map[string][]string // node -> predecessor names
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]struct{}),
		edgeSet:  make(map[Edge]struct{}),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
	}
}

// FromConnections builds a Graph from an ordered connection list.
// Connection order is preserved for deterministic downstream tie-breaking.
func FromConnections(connections []Edge) *Graph {
	g := New()
	for _, c := range connections {
		g.AddEdge(c.From, c.To)
	}
	return g
}

// AddEdge adds a directed edge, creating both endpoint nodes as needed.
// Names are whitespace-trimmed. Empty names and duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	if from == "" || to == "" {
		return
	}
	g.nodes[from] = struct{}{}
	g.nodes[to] = struct{}{}

	e := Edge{From: from, To: to}
	if _, dup := g.edgeSet[e]; dup {
		return
	}
	g.edgeSet[e] = struct{}{}
	g.edges = append(g.edges, e)
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
}

// Nodes returns all node names in sorted order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasNode reports whether the named node exists.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Successors returns the nodes this node points to, in edge insertion order.
// The returned slice is a read-only view.
func (g *Graph) Successors(name string) []string { return g.outgoing[name] }

// Predecessors returns the nodes that point to this node, in edge insertion
// order. The returned slice is a read-only view.
func (g *Graph) Predecessors(name string) []string { return g.incoming[name] }

// Roots returns nodes with no incoming edges, sorted by name.
func (g *Graph) Roots() []string {
	var roots []string
	for _, n := range g.Nodes() {
		if len(g.incoming[n]) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}

// Leaves returns nodes with no outgoing edges, sorted by name.
func (g *Graph) Leaves() []string {
	var leaves []string
	for _, n := range g.Nodes() {
		if len(g.outgoing[n]) == 0 {
			leaves = append(leaves, n)
		}
	}
	return leaves
}

// HasCycle reports whether the graph contains a directed cycle.
// Detection runs depth-first with white/gray/black coloring in O(N+E).
func (g *Graph) HasCycle() bool {
	return len(g.FeedbackEdges()) > 0
}

// FeedbackEdges returns the edges whose removal makes the graph acyclic.
//
// The traversal starts from the sorted root set (nodes with no incoming
// edges); when the whole graph is cyclic and no roots exist, it falls back
// to visiting all nodes in sorted name order, so the classification is
// deterministic for a fixed edge set. An edge into a node currently on the
// traversal stack (gray) is a feedback edge. Self-loops are feedback edges.
func (g *Graph) FeedbackEdges() []Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var feedback []Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, succ := range g.outgoing[node] {
			switch color[succ] {
			case white:
				dfs(succ)
			case gray:
				feedback = append(feedback, Edge{From: node, To: succ})
			}
		}
		color[node] = black
	}

	for _, n := range g.Roots() {
		if color[n] == white {
			dfs(n)
		}
	}
	for _, n := range g.Nodes() {
		if color[n] == white {
			dfs(n)
		}
	}
	return feedback
}

// TopologicalSort returns the nodes in topological order using Kahn's
// algorithm. If the graph is cyclic the nodes in cycles never reach zero
// in-degree; the full sorted node list is returned as a fallback so callers
// always get a deterministic, complete ordering.
func (g *Graph) TopologicalSort() []string {
	inDegree := make(map[string]int, len(g.nodes))
	var queue []string
	for _, n := range g.Nodes() {
		inDegree[n] = len(g.incoming[n])
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		order = append(order, curr)

		for _, succ := range g.outgoing[curr] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return g.Nodes()
	}
	return order
}

// LongestPathLength returns the number of edges on the longest directed
// path, computed over the topological order. Useful for estimating layout
// depth before running the full layout engine.
func (g *Graph) LongestPathLength() int {
	if len(g.nodes) == 0 {
		return 0
	}
	dist := make(map[string]int, len(g.nodes))
	longest := 0
	for _, n := range g.TopologicalSort() {
		for _, succ := range g.outgoing[n] {
			if d := dist[n] + 1; d > dist[succ] {
				dist[succ] = d
				if d > longest {
					longest = d
				}
			}
		}
	}
	return longest
}
