package layout

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/skillgraph/pkg/skill"
)

func chain(t *testing.T) (*skill.Graph, string, string) {
	t.Helper()
	g := skill.New(nil)
	m, _ := g.AddNode(skill.KindModel, "", nil)
	e, _ := g.AddNode(skill.KindExport, skill.SubKindHTTP, nil)
	if _, err := g.AddEdge(skill.Connect(skill.SourceNodeID, m)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(skill.Connect(m, e)); err != nil {
		t.Fatal(err)
	}
	return g, m, e
}

// crossed returns a graph whose insertion order puts the two export nodes
// under the wrong parents.
func crossed(t *testing.T) *skill.Graph {
	t.Helper()
	g := skill.New(nil)
	a, _ := g.AddNode(skill.KindModel, "", nil)
	b, _ := g.AddNode(skill.KindModel, "", nil)
	x, _ := g.AddNode(skill.KindExport, skill.SubKindHTTP, nil)
	y, _ := g.AddNode(skill.KindExport, skill.SubKindMQTT, nil)
	for _, c := range []skill.Connection{
		skill.Connect(skill.SourceNodeID, a),
		skill.Connect(skill.SourceNodeID, b),
		skill.Connect(a, y),
		skill.Connect(b, x),
	} {
		if _, err := g.AddEdge(c); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestAssignRanks(t *testing.T) {
	g, m, e := chain(t)
	f, _ := g.AddNode(skill.KindTransform, skill.SubKindFilter, nil)
	_, _ = g.AddEdge(skill.Connect(e, f)) // rejected: exports have no output
	_, _ = g.AddEdge(skill.Connect(m, f))

	ranks := AssignRanks(g)
	want := map[string]int{skill.SourceNodeID: 0, m: 1, e: 2, f: 2}
	for id, r := range want {
		if ranks[id] != r {
			t.Errorf("rank(%s) = %d, want %d", id, ranks[id], r)
		}
	}
}

func TestAssignRanksLongestPath(t *testing.T) {
	g := skill.New(nil)
	a, _ := g.AddNode(skill.KindModel, "", nil)
	b, _ := g.AddNode(skill.KindTransform, skill.SubKindFilter, nil)
	c, _ := g.AddNode(skill.KindTransform, skill.SubKindGrpc, nil)
	_, _ = g.AddEdge(skill.Connect(skill.SourceNodeID, a))
	_, _ = g.AddEdge(skill.Connect(a, b))
	_, _ = g.AddEdge(skill.Connect(skill.SourceNodeID, c))
	_, _ = g.AddEdge(skill.Connection{Source: b, SourceHandle: "source", Target: c, TargetHandle: "aux"})

	if r := AssignRanks(g)[c]; r != 3 {
		t.Errorf("rank(%s) = %d, want 3", c, r)
	}
}

func TestOrderRanksRemovesCrossing(t *testing.T) {
	g := crossed(t)
	ranks := AssignRanks(g)

	initial := OrderRanks(g, ranks, 0)
	if c := CountCrossings(g, initial); c != 1 {
		t.Fatalf("initial crossings = %d, want 1", c)
	}
	ordered := OrderRanks(g, ranks, 4)
	if c := CountCrossings(g, ordered); c != 0 {
		t.Errorf("crossings after sweeps = %d, want 0 (orders %v)", c, ordered)
	}
}

func TestComputeGeometry(t *testing.T) {
	g, m, e := chain(t)
	opts := DefaultOptions()
	opts.Jitter = 0

	res := Compute(g, opts)
	want := map[string]skill.Position{
		skill.SourceNodeID: {X: 350, Y: 50},
		m:                  {X: 350, Y: 160},
		e:                  {X: 350, Y: 270},
	}
	for id, p := range want {
		if res.Positions[id] != p {
			t.Errorf("position(%s) = %+v, want %+v", id, res.Positions[id], p)
		}
	}
}

func TestComputeCentresNarrowRanks(t *testing.T) {
	g := crossed(t)
	opts := DefaultOptions()
	opts.Jitter = 0

	res := Compute(g, opts)
	// rank 1 holds two nodes, so the lone source sits centred above them
	if got, want := res.Positions[skill.SourceNodeID].X, 350+175.0; got != want {
		t.Errorf("source x = %v, want %v", got, want)
	}
}

func TestComputeIdempotent(t *testing.T) {
	g := crossed(t)
	a := Compute(g, DefaultOptions())
	opts := DefaultOptions()
	opts.Seed = 99
	b := Compute(g, opts)

	for id, r := range a.Ranks {
		if b.Ranks[id] != r {
			t.Errorf("rank(%s) differs: %d vs %d", id, r, b.Ranks[id])
		}
	}
	if len(a.Orders) != len(b.Orders) {
		t.Fatalf("rank count differs")
	}
	for r := range a.Orders {
		if !slices.Equal(a.Orders[r], b.Orders[r]) {
			t.Errorf("order of rank %d differs: %v vs %v", r, a.Orders[r], b.Orders[r])
		}
	}
	for id, p := range a.Positions {
		q := b.Positions[id]
		if math.Abs(p.X-q.X) > DefaultOptions().Jitter || p.Y != q.Y {
			t.Errorf("position(%s) moved beyond jitter: %+v vs %+v", id, p, q)
		}
	}

	again := Compute(g, DefaultOptions())
	for id, p := range a.Positions {
		if again.Positions[id] != p {
			t.Errorf("same seed gave different position for %s", id)
		}
	}
}

func TestApplyAndNeedsLayout(t *testing.T) {
	g, m, _ := chain(t)
	if !NeedsLayout(g) {
		t.Fatal("fresh graph should need layout")
	}
	if _, err := Apply(g, DefaultOptions()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if NeedsLayout(g) {
		t.Error("graph still needs layout after Apply")
	}
	n, _ := g.Node(m)
	if n.Position.Y != 160 {
		t.Errorf("model y = %v, want 160", n.Position.Y)
	}
}

func TestCycleKeepsRankZero(t *testing.T) {
	g := skill.New(nil)
	a, _ := g.AddNode(skill.KindModel, "", nil)
	b, _ := g.AddNode(skill.KindModel, "", nil)
	_, _ = g.AddEdge(skill.Connect(a, b))
	_, _ = g.AddEdge(skill.Connect(b, a))

	ranks := AssignRanks(g)
	if ranks[a] != 0 || ranks[b] != 0 {
		t.Errorf("cycle ranks = %d, %d, want 0, 0", ranks[a], ranks[b])
	}
	res := Compute(g, DefaultOptions())
	if len(res.Positions) != 3 {
		t.Errorf("positions = %d, want 3", len(res.Positions))
	}
}
