// Package layout places the nodes of a skill graph on the editor canvas.
//
// It is used when a graph is recovered from a wire payload that carries no
// positions. The layout is layered and top to bottom:
//
//  1. [AssignRanks] puts every node one rank below its deepest parent
//     (longest path from the roots, Kahn's algorithm).
//  2. [OrderRanks] orders the nodes of each rank with alternating barycenter
//     sweeps and keeps the ordering with the fewest crossings.
//  3. [Compute] turns rank and order into node centres, shifts them to the
//     top-left anchor the canvas uses and offsets the whole drawing by a
//     fixed margin.
//
// Positions are cosmetic. Nothing here changes nodes, edges or configuration.
package layout

import (
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/skillgraph/pkg/skill"
)

// Options controls the geometry of a layout.
type Options struct {
	NodeWidth  float64 `toml:"node_width"`
	NodeHeight float64 `toml:"node_height"`
	RankSep    float64 `toml:"rank_sep"`
	NodeSep    float64 `toml:"node_sep"`
	MarginX    float64 `toml:"margin_x"`
	MarginY    float64 `toml:"margin_y"`

	// Jitter bounds a deterministic horizontal offset added to every node.
	// Zero disables it.
	Jitter float64 `toml:"jitter"`
	Seed   uint64  `toml:"seed"`

	// Sweeps is the number of down/up barycenter passes.
	Sweeps int `toml:"sweeps"`
}

// DefaultOptions matches the editor canvas: 300x60 nodes, offset by
// (350, 50) so the drawing clears the side panel.
func DefaultOptions() Options {
	return Options{
		NodeWidth:  300,
		NodeHeight: 60,
		RankSep:    50,
		NodeSep:    50,
		MarginX:    350,
		MarginY:    50,
		Jitter:     0.001,
		Seed:       1,
		Sweeps:     4,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	if o.RankSep < 0 {
		o.RankSep = d.RankSep
	}
	if o.NodeSep < 0 {
		o.NodeSep = d.NodeSep
	}
	if o.Sweeps < 0 {
		o.Sweeps = 0
	}
	return o
}

// Result holds the computed layout. Orders[r] lists the node ids of rank r
// from left to right.
type Result struct {
	Ranks     map[string]int
	Orders    [][]string
	Positions map[string]skill.Position
	Crossings int
}

// Compute lays out g without modifying it.
func Compute(g *skill.Graph, opts Options) Result {
	opts = opts.withDefaults()
	ranks := AssignRanks(g)
	orders := OrderRanks(g, ranks, opts.Sweeps)

	widest := 0
	for _, row := range orders {
		widest = max(widest, len(row))
	}
	rowWidth := func(n int) float64 {
		if n == 0 {
			return 0
		}
		return float64(n)*opts.NodeWidth + float64(n-1)*opts.NodeSep
	}
	full := rowWidth(widest)

	var rng *rand.Rand
	if opts.Jitter > 0 {
		rng = rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	}

	positions := make(map[string]skill.Position, g.NodeCount())
	for r, row := range orders {
		offset := (full - rowWidth(len(row))) / 2
		for i, id := range row {
			cx := offset + float64(i)*(opts.NodeWidth+opts.NodeSep) + opts.NodeWidth/2
			cy := float64(r)*(opts.NodeHeight+opts.RankSep) + opts.NodeHeight/2

			// centre anchor to top-left anchor
			p := skill.Position{
				X: cx - opts.NodeWidth/2 + opts.MarginX,
				Y: cy - opts.NodeHeight/2 + opts.MarginY,
			}
			if rng != nil {
				p.X += rng.Float64() * opts.Jitter
			}
			positions[id] = p
		}
	}

	return Result{
		Ranks:     ranks,
		Orders:    orders,
		Positions: positions,
		Crossings: CountCrossings(g, orders),
	}
}

// Apply computes a layout and writes the positions into g.
func Apply(g *skill.Graph, opts Options) (Result, error) {
	res := Compute(g, opts)
	for _, id := range g.NodeIDs() {
		if err := g.MoveNode(id, res.Positions[id]); err != nil {
			return res, err
		}
	}
	return res, nil
}

// NeedsLayout reports whether g lacks usable positions, which is the case
// when every node sits on the same point (all zero after a decode).
func NeedsLayout(g *skill.Graph) bool {
	nodes := g.Nodes()
	for _, n := range nodes[1:] {
		if n.Position != nodes[0].Position {
			return false
		}
	}
	return true
}

// AssignRanks returns the rank of every node: zero for nodes without
// parents, otherwise one more than the deepest parent. Nodes on a cycle
// never reach in-degree zero and keep rank zero.
func AssignRanks(g *skill.Graph) map[string]int {
	ids := g.NodeIDs()
	inDegree := make(map[string]int, len(ids))
	ranks := make(map[string]int, len(ids))
	queue := make([]string, 0, len(ids))

	for _, id := range ids {
		ranks[id] = 0
		d := g.InDegree(id)
		inDegree[id] = d
		if d == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.Children(curr) {
			if r := ranks[curr] + 1; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return ranks
}

// OrderRanks groups nodes by rank in insertion order and then improves the
// order with the given number of down/up barycenter sweeps, keeping the
// ordering with the fewest crossings seen.
func OrderRanks(g *skill.Graph, ranks map[string]int, sweeps int) [][]string {
	depth := 0
	for _, r := range ranks {
		depth = max(depth, r)
	}
	orders := make([][]string, depth+1)
	for _, id := range g.NodeIDs() {
		r := ranks[id]
		orders[r] = append(orders[r], id)
	}
	if len(orders) < 2 {
		return orders
	}

	best := cloneOrders(orders)
	bestCrossings := CountCrossings(g, orders)

	for s := 0; s < sweeps && bestCrossings > 0; s++ {
		for r := 1; r < len(orders); r++ {
			sortByBarycenter(orders[r], orders[r-1], g.Parents)
		}
		for r := len(orders) - 2; r >= 0; r-- {
			sortByBarycenter(orders[r], orders[r+1], g.Children)
		}
		if c := CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = cloneOrders(orders), c
		}
	}
	return best
}

// sortByBarycenter reorders row by the mean position of each node's
// neighbours in fixed. Nodes without neighbours there keep their index.
func sortByBarycenter(row, fixed []string, neighbours func(string) []string) {
	pos := posMap(fixed)
	keys := make(map[string]float64, len(row))
	for i, id := range row {
		sum, n := 0.0, 0
		for _, nb := range neighbours(id) {
			if p, ok := pos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
			continue
		}
		keys[id] = sum / float64(n)
	}
	slices.SortStableFunc(row, func(a, b string) int {
		switch ka, kb := keys[a], keys[b]; {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})
}

func cloneOrders(orders [][]string) [][]string {
	out := make([][]string, len(orders))
	for i, row := range orders {
		out[i] = slices.Clone(row)
	}
	return out
}

func posMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
