package validate

import (
	"math/rand/v2"
	"testing"

	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

var (
	modelCfg = skill.ModelConfig{
		Model:           skill.ModelSelection{ID: 1, Name: "counter"},
		CaptureData:     skill.CaptureNo,
		ConfidenceLower: 10,
		ConfidenceUpper: 90,
	}
	httpCfg = skill.HTTPConfig{URL: "https://example.com/hook"}
)

func mustAdd(t *testing.T, g *skill.Graph, kind skill.Kind, sub skill.SubKind, cfg skill.Configuration) string {
	t.Helper()
	id, err := g.AddNode(kind, sub, nil)
	if err != nil {
		t.Fatalf("AddNode(%s): %v", kind, err)
	}
	if cfg != nil {
		if err := g.SetNodeConfiguration(id, cfg); err != nil {
			t.Fatalf("SetNodeConfiguration(%s): %v", id, err)
		}
	}
	return id
}

func mustConnect(t *testing.T, g *skill.Graph, src, dst string) {
	t.Helper()
	if _, err := g.AddEdge(skill.Connect(src, dst)); err != nil {
		t.Fatalf("AddEdge(%s -> %s): %v", src, dst, err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		build    func(t *testing.T) *skill.Graph
		want     Code
		wantName string
	}{
		{
			name:  "EmptyGraph",
			build: func(t *testing.T) *skill.Graph { return skill.New(nil) },
			want:  EmptyGraph,
		},
		{
			name: "NoModelNode",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				e := mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, httpCfg)
				mustConnect(t, g, skill.SourceNodeID, e)
				return g
			},
			want: NoModelNode,
		},
		{
			name: "NoExportNode",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				m := mustAdd(t, g, skill.KindModel, "", modelCfg)
				mustConnect(t, g, skill.SourceNodeID, m)
				return g
			},
			want: NoExportNode,
		},
		{
			name: "IncompleteNode",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				mustAdd(t, g, skill.KindModel, "", modelCfg)
				mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, nil)
				return g
			},
			want:     IncompleteNode,
			wantName: skill.CatalogHTTPExport,
		},
		{
			name: "IncompleteBeforeDisconnected",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				mustAdd(t, g, skill.KindModel, "", nil)
				mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, nil)
				return g
			},
			want:     IncompleteNode,
			wantName: skill.DefaultModelNodeName,
		},
		{
			name: "Disconnected",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				m := mustAdd(t, g, skill.KindModel, "", modelCfg)
				mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, httpCfg)
				mustConnect(t, g, skill.SourceNodeID, m)
				return g
			},
			want: Disconnected,
		},
		{
			name: "Ok",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				m := mustAdd(t, g, skill.KindModel, "", modelCfg)
				e := mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, httpCfg)
				mustConnect(t, g, skill.SourceNodeID, m)
				mustConnect(t, g, m, e)
				return g
			},
			want: OK,
		},
		{
			name: "DuplicateName",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				m1 := mustAdd(t, g, skill.KindModel, "", modelCfg)
				m2 := mustAdd(t, g, skill.KindModel, "", modelCfg)
				e1 := mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, httpCfg)
				e2 := mustAdd(t, g, skill.KindExport, skill.SubKindIoTHub, skill.IoTHubConfig{DelayBuffer: "5"})
				mustConnect(t, g, skill.SourceNodeID, m1)
				mustConnect(t, g, skill.SourceNodeID, m2)
				mustConnect(t, g, m1, e1)
				mustConnect(t, g, m2, e2)
				return g
			},
			want:     DuplicateName,
			wantName: skill.DefaultModelNodeName,
		},
		{
			name: "SharedSourceSubPipelines",
			build: func(t *testing.T) *skill.Graph {
				g := skill.New(nil)
				m1 := mustAdd(t, g, skill.KindModel, "", modelCfg)
				m2 := mustAdd(t, g, skill.KindModel, "", modelCfg)
				_ = g.RenameNode(m2, "Second Model")
				e1 := mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, httpCfg)
				e2 := mustAdd(t, g, skill.KindExport, skill.SubKindIoTHub, skill.IoTHubConfig{DelayBuffer: "5"})
				mustConnect(t, g, skill.SourceNodeID, m1)
				mustConnect(t, g, skill.SourceNodeID, m2)
				mustConnect(t, g, m1, e1)
				mustConnect(t, g, m2, e2)
				return g
			},
			want: OK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.build(t))
			if res.Code != tt.want {
				t.Fatalf("Validate = %v, want %s", res, tt.want)
			}
			if tt.wantName != "" && res.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", res.Name, tt.wantName)
			}
			if res.OK() != (tt.want == OK) {
				t.Errorf("OK() = %v", res.OK())
			}
			if !res.OK() && res.Message == "" {
				t.Error("failure without message")
			}
		})
	}
}

func TestIncompleteNodeMessage(t *testing.T) {
	g := skill.New(nil)
	mustAdd(t, g, skill.KindModel, "", nil)
	mustAdd(t, g, skill.KindExport, skill.SubKindHTTP, nil)

	res := Validate(g)
	if want := "Run ML Model Node cannot be blank"; res.Message != want {
		t.Errorf("Message = %q, want %q", res.Message, want)
	}
}

func TestResultErr(t *testing.T) {
	if err := (Result{Code: OK}).Err(); err != nil {
		t.Errorf("OK result Err() = %v", err)
	}
	err := fail(Disconnected, MsgDisconnected).Err()
	if !errs.Is(err, errs.ErrCodeInvalidGraph) {
		t.Errorf("Err() code = %v, want INVALID_GRAPH", errs.GetCode(err))
	}
	if errs.UserMessage(err) != MsgDisconnected {
		t.Errorf("UserMessage = %q", errs.UserMessage(err))
	}
}

// TestIsDiscreteDegreeInvariant builds random graphs and compares IsDiscrete
// against a direct degree count.
func TestIsDiscreteDegreeInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	kinds := []struct {
		kind skill.Kind
		sub  skill.SubKind
	}{
		{skill.KindModel, ""},
		{skill.KindTransform, skill.SubKindFilter},
		{skill.KindExport, skill.SubKindMQTT},
	}

	for iter := 0; iter < 200; iter++ {
		g := skill.New(nil)
		ids := []string{skill.SourceNodeID}
		for i := rng.IntN(6); i >= 0; i-- {
			k := kinds[rng.IntN(len(kinds))]
			id, err := g.AddNode(k.kind, k.sub, nil)
			if err != nil {
				t.Fatal(err)
			}
			ids = append(ids, id)
		}
		for i := rng.IntN(10); i > 0; i-- {
			src, dst := ids[rng.IntN(len(ids))], ids[rng.IntN(len(ids))]
			_, _ = g.AddEdge(skill.Connect(src, dst))
		}

		want := false
		for _, n := range g.Nodes() {
			in, out := g.InDegree(n.ID), g.OutDegree(n.ID)
			switch n.Kind {
			case skill.KindSource:
				want = want || out == 0
			case skill.KindExport:
				want = want || in == 0
			default:
				want = want || in == 0 || out == 0
			}
		}
		if got := IsDiscrete(g); got != want {
			t.Fatalf("iteration %d: IsDiscrete = %v, want %v (edges %v)", iter, got, want, g.Edges())
		}
	}
}
