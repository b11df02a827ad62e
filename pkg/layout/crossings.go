package layout

import (
	"slices"

	"github.com/matzehuels/skillgraph/pkg/skill"
)

// CountCrossings returns the number of edge crossings between consecutive
// ranks of orders. Edges spanning more than one rank are not counted.
func CountCrossings(g *skill.Graph, orders [][]string) int {
	total := 0
	for r := 0; r+1 < len(orders); r++ {
		total += countLayerCrossings(g, orders[r], orders[r+1])
	}
	return total
}

// countLayerCrossings counts inversions of lower positions when the edges
// between upper and lower are sorted by upper position. Two edges (u1,v1)
// and (u2,v2) cross iff pos(u1) < pos(u2) and pos(v1) > pos(v2).
func countLayerCrossings(g *skill.Graph, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := posMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper))
	for i, id := range upper {
		for _, child := range g.Children(id) {
			if p, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, p})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}
	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	// Fenwick tree over lower positions
	fenwick := make([]int, len(lower)+1)
	crossings, seen := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += seen - lessOrEqual
		seen++
		for q := e.lower + 1; q < len(fenwick); q += q & (-q) {
			fenwick[q]++
		}
	}
	return crossings
}
