package layout

import (
	"reflect"
	"testing"

	"github.com/ronikobrosly/retroflow/pkg/graph"
)

func edges(pairs ...[2]string) []graph.Edge {
	out := make([]graph.Edge, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, graph.Edge{From: p[0], To: p[1]})
	}
	return out
}

func TestLayoutEmptyGraph(t *testing.T) {
	_, err := New().Layout(nil)
	if err != ErrNoNodes {
		t.Errorf("Layout(nil) error = %v, want ErrNoNodes", err)
	}
}

func TestLayoutChain(t *testing.T) {
	res, err := New().Layout(edges([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "D"}))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if res.HasCycles {
		t.Error("HasCycles = true, want false")
	}
	if len(res.BackEdges) != 0 {
		t.Errorf("len(BackEdges) = %d, want 0", len(res.BackEdges))
	}
	if got := len(res.ForwardEdges()); got != 3 {
		t.Errorf("len(ForwardEdges()) = %d, want 3", got)
	}

	want := [][]string{{"A"}, {"B"}, {"C"}, {"D"}}
	if !reflect.DeepEqual(res.Layers, want) {
		t.Errorf("Layers = %v, want %v", res.Layers, want)
	}
	for i, name := range []string{"A", "B", "C", "D"} {
		p := res.Nodes[name]
		if p.Layer != i || p.Order != 0 {
			t.Errorf("Nodes[%q] = %+v, want {Layer: %d, Order: 0}", name, p, i)
		}
	}
}

func TestLayoutTriangleCycle(t *testing.T) {
	res, err := New().Layout(edges([2]string{"A", "B"}, [2]string{"B", "C"}, [2]string{"C", "A"}))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if !res.HasCycles {
		t.Error("HasCycles = false, want true")
	}
	if len(res.BackEdges) != 1 {
		t.Fatalf("len(BackEdges) = %d, want 1", len(res.BackEdges))
	}
	if !res.IsBackEdge(graph.Edge{From: "C", To: "A"}) {
		t.Errorf("BackEdges = %v, want {C->A}", res.BackEdges)
	}

	// The two remaining forward edges form a 3-layer chain.
	want := [][]string{{"A"}, {"B"}, {"C"}}
	if !reflect.DeepEqual(res.Layers, want) {
		t.Errorf("Layers = %v, want %v", res.Layers, want)
	}
	for _, e := range res.ForwardEdges() {
		if res.Nodes[e.From].Layer >= res.Nodes[e.To].Layer {
			t.Errorf("forward edge %v has layer(%s)=%d >= layer(%s)=%d",
				e, e.From, res.Nodes[e.From].Layer, e.To, res.Nodes[e.To].Layer)
		}
	}
}

func TestLayoutDiamond(t *testing.T) {
	res, err := New().Layout(edges(
		[2]string{"A", "B"},
		[2]string{"A", "C"},
		[2]string{"B", "D"},
		[2]string{"C", "D"},
	))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if len(res.Layers) != 3 {
		t.Fatalf("len(Layers) = %d, want 3", len(res.Layers))
	}
	if !reflect.DeepEqual(res.Layers[0], []string{"A"}) {
		t.Errorf("Layers[0] = %v, want [A]", res.Layers[0])
	}
	mid := append([]string(nil), res.Layers[1]...)
	if len(mid) != 2 || !((mid[0] == "B" && mid[1] == "C") || (mid[0] == "C" && mid[1] == "B")) {
		t.Errorf("Layers[1] = %v, want a permutation of [B C]", res.Layers[1])
	}
	if !reflect.DeepEqual(res.Layers[2], []string{"D"}) {
		t.Errorf("Layers[2] = %v, want [D]", res.Layers[2])
	}
	if got := CountCrossings(res); got != 0 {
		t.Errorf("CountCrossings() = %d, want 0", got)
	}
}

func TestLayoutSelfLoop(t *testing.T) {
	res, err := New().Layout(edges([2]string{"A", "A"}))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if !res.HasCycles {
		t.Error("HasCycles = false, want true")
	}
	if !res.IsBackEdge(graph.Edge{From: "A", To: "A"}) {
		t.Errorf("BackEdges = %v, want {A->A}", res.BackEdges)
	}
	if len(res.Layers) != 1 || len(res.Layers[0]) != 1 {
		t.Errorf("Layers = %v, want [[A]]", res.Layers)
	}
}

func TestLayoutDisconnectedComponents(t *testing.T) {
	res, err := New().Layout(edges([2]string{"A", "B"}, [2]string{"X", "Y"}))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if len(res.Layers) != 2 {
		t.Fatalf("len(Layers) = %d, want 2", len(res.Layers))
	}
	for _, name := range []string{"A", "B", "X", "Y"} {
		if _, ok := res.Nodes[name]; !ok {
			t.Errorf("Nodes missing %q", name)
		}
	}
	if res.Nodes["A"].Layer != 0 || res.Nodes["X"].Layer != 0 {
		t.Errorf("roots not in layer 0: A=%d X=%d", res.Nodes["A"].Layer, res.Nodes["X"].Layer)
	}
}

func TestLayoutLongestPathLayering(t *testing.T) {
	// A reaches D both directly and through B and C. The longer path wins,
	// so D sits in layer 3, not layer 1.
	res, err := New().Layout(edges(
		[2]string{"A", "D"},
		[2]string{"A", "B"},
		[2]string{"B", "C"},
		[2]string{"C", "D"},
	))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if got := res.Nodes["D"].Layer; got != 3 {
		t.Errorf("Nodes[D].Layer = %d, want 3", got)
	}
}

func TestLayoutAcyclicAllForward(t *testing.T) {
	res, err := New().Layout(edges(
		[2]string{"start", "validate"},
		[2]string{"validate", "process"},
		[2]string{"validate", "reject"},
		[2]string{"process", "store"},
		[2]string{"reject", "store"},
	))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if res.HasCycles {
		t.Error("HasCycles = true, want false")
	}
	for _, e := range res.Edges {
		if res.IsBackEdge(e) {
			t.Errorf("acyclic graph classified %v as back edge", e)
		}
		if res.Nodes[e.From].Layer >= res.Nodes[e.To].Layer {
			t.Errorf("edge %v not forward: layers %d >= %d",
				e, res.Nodes[e.From].Layer, res.Nodes[e.To].Layer)
		}
	}
}

func TestLayoutPlacementConsistency(t *testing.T) {
	res, err := New().Layout(edges(
		[2]string{"A", "B"},
		[2]string{"A", "C"},
		[2]string{"C", "D"},
		[2]string{"B", "D"},
		[2]string{"D", "A"},
	))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	seen := make(map[string]bool)
	for layer, names := range res.Layers {
		for order, name := range names {
			if seen[name] {
				t.Errorf("node %q appears in more than one slot", name)
			}
			seen[name] = true
			if p := res.Nodes[name]; p.Layer != layer || p.Order != order {
				t.Errorf("Nodes[%q] = %+v, want {Layer: %d, Order: %d}", name, p, layer, order)
			}
		}
	}
	if len(seen) != len(res.Nodes) {
		t.Errorf("layers hold %d nodes, Nodes holds %d", len(seen), len(res.Nodes))
	}
}

func TestLayoutDeterministic(t *testing.T) {
	input := edges(
		[2]string{"auth", "api"},
		[2]string{"api", "db"},
		[2]string{"api", "cache"},
		[2]string{"cache", "db"},
		[2]string{"db", "auth"},
	)

	first, err := New().Layout(input)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := New().Layout(input)
		if err != nil {
			t.Fatalf("Layout() error = %v", err)
		}
		if !reflect.DeepEqual(first.Layers, again.Layers) {
			t.Fatalf("run %d: Layers = %v, want %v", i, again.Layers, first.Layers)
		}
		if !reflect.DeepEqual(first.BackEdges, again.BackEdges) {
			t.Fatalf("run %d: BackEdges = %v, want %v", i, again.BackEdges, first.BackEdges)
		}
	}
}

func TestLayoutRelabelingPreservesLayerSizes(t *testing.T) {
	sizes := func(r *Result) []int {
		out := make([]int, len(r.Layers))
		for i, l := range r.Layers {
			out[i] = len(l)
		}
		return out
	}

	orig, err := New().Layout(edges(
		[2]string{"A", "B"},
		[2]string{"A", "C"},
		[2]string{"B", "D"},
		[2]string{"C", "D"},
	))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	relabeled, err := New().Layout(edges(
		[2]string{"north", "east"},
		[2]string{"north", "west"},
		[2]string{"east", "south"},
		[2]string{"west", "south"},
	))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}

	if !reflect.DeepEqual(sizes(orig), sizes(relabeled)) {
		t.Errorf("layer sizes differ after relabeling: %v vs %v", sizes(orig), sizes(relabeled))
	}
}

func TestCountCrossings(t *testing.T) {
	// Two parallel edges in matching order do not cross; after swapping
	// the lower layer they do.
	straight := &Result{
		Layers: [][]string{{"A", "B"}, {"X", "Y"}},
		Edges:  edges([2]string{"A", "X"}, [2]string{"B", "Y"}),
	}
	if got := CountCrossings(straight); got != 0 {
		t.Errorf("CountCrossings(straight) = %d, want 0", got)
	}

	crossed := &Result{
		Layers: [][]string{{"A", "B"}, {"Y", "X"}},
		Edges:  edges([2]string{"A", "X"}, [2]string{"B", "Y"}),
	}
	if got := CountCrossings(crossed); got != 1 {
		t.Errorf("CountCrossings(crossed) = %d, want 1", got)
	}
}

func TestBarycenterReducesCrossings(t *testing.T) {
	// K2,2 plus untangling anchors: declaration order starts B2 before B1
	// in appearance, which the barycenter sweeps must undo.
	res, err := New().Layout(edges(
		[2]string{"T2", "B2"},
		[2]string{"T1", "B1"},
		[2]string{"T1", "M1"},
		[2]string{"T2", "M2"},
		[2]string{"M1", "B1"},
		[2]string{"M2", "B2"},
	))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if got := CountCrossings(res); got != 0 {
		t.Errorf("CountCrossings() = %d, want 0 (layers %v)", got, res.Layers)
	}
}
