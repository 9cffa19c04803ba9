package graph

import (
	"slices"
	"testing"
)

func TestAddEdge_CreatesNodes(t *testing.T) {
	g := New()
	g.AddEdge("A", "B")

	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestAddEdge_TrimsWhitespace(t *testing.T) {
	g := New()
	g.AddEdge("  A ", " B  ")

	if !g.HasNode("A") || !g.HasNode("B") {
		t.Errorf("Nodes() = %v, want [A B]", g.Nodes())
	}
}

func TestAddEdge_DuplicatesIdempotent(t *testing.T) {
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("A", "B")

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestAddEdge_IgnoresEmptyNames(t *testing.T) {
	g := New()
	g.AddEdge("", "B")
	g.AddEdge("A", "   ")

	if g.NodeCount() != 0 {
		t.Errorf("NodeCount() = %d, want 0", g.NodeCount())
	}
}

func TestSuccessorsPredecessors(t *testing.T) {
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")
	g.AddEdge("B", "C")

	if got := g.Successors("A"); !slices.Equal(got, []string{"B", "C"}) {
		t.Errorf("Successors(A) = %v, want [B C]", got)
	}
	if got := g.Predecessors("C"); !slices.Equal(got, []string{"A", "B"}) {
		t.Errorf("Predecessors(C) = %v, want [A B]", got)
	}
}

func TestRootsAndLeaves(t *testing.T) {
	g := New()
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")

	if got := g.Roots(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Roots() = %v, want [A]", got)
	}
	if got := g.Leaves(); !slices.Equal(got, []string{"C"}) {
		t.Errorf("Leaves() = %v, want [C]", got)
	}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  bool
	}{
		{"linear chain", []Edge{{"A", "B"}, {"B", "C"}}, false},
		{"triangle", []Edge{{"A", "B"}, {"B", "C"}, {"C", "A"}}, true},
		{"self loop", []Edge{{"A", "A"}}, true},
		{"diamond", []Edge{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}}, false},
		{"two node cycle", []Edge{{"A", "B"}, {"B", "A"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := FromConnections(tt.edges)
			if got := g.HasCycle(); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFeedbackEdges_Triangle(t *testing.T) {
	g := FromConnections([]Edge{{"A", "B"}, {"B", "C"}, {"C", "A"}})

	fb := g.FeedbackEdges()
	if len(fb) != 1 {
		t.Fatalf("FeedbackEdges() returned %d edges, want 1", len(fb))
	}
	if fb[0] != (Edge{From: "C", To: "A"}) {
		t.Errorf("FeedbackEdges() = %v, want [{C A}]", fb)
	}
}

func TestFeedbackEdges_RemovalMakesAcyclic(t *testing.T) {
	g := FromConnections([]Edge{
		{"A", "B"}, {"B", "C"}, {"C", "A"},
		{"C", "D"}, {"D", "B"},
	})

	fb := g.FeedbackEdges()
	if len(fb) == 0 {
		t.Fatal("FeedbackEdges() returned none for a cyclic graph")
	}

	pruned := New()
	for _, e := range g.Edges() {
		if !slices.Contains(fb, e) {
			pruned.AddEdge(e.From, e.To)
		}
	}
	if pruned.HasCycle() {
		t.Error("graph still cyclic after removing feedback edges")
	}
}

func TestFeedbackEdges_Deterministic(t *testing.T) {
	edges := []Edge{{"B", "C"}, {"C", "A"}, {"A", "B"}}
	first := FromConnections(edges).FeedbackEdges()
	for i := 0; i < 10; i++ {
		if got := FromConnections(edges).FeedbackEdges(); !slices.Equal(got, first) {
			t.Fatalf("FeedbackEdges() = %v on run %d, want %v", got, i, first)
		}
	}
}

func TestTopologicalSort(t *testing.T) {
	g := FromConnections([]Edge{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}})

	order := g.TopologicalSort()
	pos := make(map[string]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	for _, e := range g.Edges() {
		if pos[e.From] >= pos[e.To] {
			t.Errorf("topological order places %s (%d) after %s (%d)", e.From, pos[e.From], e.To, pos[e.To])
		}
	}
}

func TestTopologicalSort_CyclicFallback(t *testing.T) {
	g := FromConnections([]Edge{{"B", "A"}, {"A", "B"}})

	order := g.TopologicalSort()
	if !slices.Equal(order, []string{"A", "B"}) {
		t.Errorf("TopologicalSort() = %v, want sorted fallback [A B]", order)
	}
}

func TestLongestPathLength(t *testing.T) {
	g := FromConnections([]Edge{{"A", "B"}, {"B", "C"}, {"C", "D"}, {"A", "D"}})

	if got := g.LongestPathLength(); got != 3 {
		t.Errorf("LongestPathLength() = %d, want 3", got)
	}
}
