package layout

import "slices"

// CountCrossings returns the total number of forward-edge crossings in the
// layout, summed over each pair of consecutive layers. Edges spanning more
// than one layer count against the layer pair of their endpoints' first
// step only, which is sufficient for comparing candidate orderings.
func CountCrossings(r *Result) int {
	crossings := 0
	for i := 0; i < len(r.Layers)-1; i++ {
		crossings += countLayerCrossings(r, r.Layers[i], r.Layers[i+1])
	}
	return crossings
}

// countLayerCrossings counts crossings between two adjacent layers using a
// Fenwick tree (binary indexed tree) for O(E log V) performance.
//
// Two edges (u1,v1) and (u2,v2) cross if and only if:
//
//	pos(u1) < pos(u2) AND pos(v1) > pos(v2)
//
// This is equivalent to counting inversions in the sequence of target
// positions when edges are sorted by source position.
func countLayerCrossings(r *Result, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	upperPos := posMap(upper)
	lowerPos := posMap(lower)

	type step struct{ upper, lower int }
	steps := make([]step, 0, len(upper)*2)
	for _, e := range r.Edges {
		if r.BackEdges[e] {
			continue
		}
		up, ok := upperPos[e.From]
		if !ok {
			continue
		}
		if lp, ok := lowerPos[e.To]; ok {
			steps = append(steps, step{up, lp})
		}
	}
	if len(steps) < 2 {
		return 0
	}

	slices.SortFunc(steps, func(a, b step) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Count inversions of target positions.
	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, s := range steps {
		lessOrEqual := 0
		for q := s.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := s.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// posMap maps each name to its index in the slice.
func posMap(names []string) map[string]int {
	pos := make(map[string]int, len(names))
	for i, n := range names {
		pos[n] = i
	}
	return pos
}
