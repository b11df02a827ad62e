package skill

import (
	"errors"
	"testing"
)

func modelRef() *Ref {
	return &Ref{
		ID:      7,
		Name:    "people-counter",
		KanID:   "model-b5cc4e1d",
		Inputs:  []Route{{Route: DefaultRoute}},
		Outputs: []Route{{Route: DefaultRoute}},
	}
}

func validModelConfig() ModelConfig {
	return ModelConfig{
		Model:           ModelSelection{ID: 7, Name: "people-counter"},
		CaptureData:     CaptureYes,
		ConfidenceLower: 12,
		ConfidenceUpper: 13,
		MaxImages:       14,
	}
}

func TestNewGraph(t *testing.T) {
	g := New(nil)

	if g.NodeCount() != 1 {
		t.Fatalf("NodeCount = %d, want 1", g.NodeCount())
	}
	src := g.Source()
	if src.ID != SourceNodeID || src.Kind != KindSource {
		t.Errorf("source = %+v, want id %q kind source", src, SourceNodeID)
	}
	if !src.Configured {
		t.Error("source should be configured")
	}
	if cfg, ok := src.Config.(SourceConfig); !ok || cfg != DefaultSourceConfig() {
		t.Errorf("source config = %#v", src.Config)
	}
	if got := g.NextID(); got != "1" {
		t.Errorf("NextID = %q, want 1", got)
	}
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		sub      SubKind
		ref      *Ref
		wantSub  SubKind
		wantName string
		wantErr  error
	}{
		{"model", KindModel, SubKindNone, modelRef(), SubKindNone, DefaultModelNodeName, nil},
		{"model display name", KindModel, SubKindNone, &Ref{Name: "m", DisplayName: "Count"}, SubKindNone, "Count", nil},
		{"export explicit", KindExport, SubKindHTTP, nil, SubKindHTTP, CatalogHTTPExport, nil},
		{"export from ref", KindExport, SubKindNone, &Ref{Name: CatalogMQTTExport}, SubKindMQTT, CatalogMQTTExport, nil},
		{"transform from ref", KindTransform, SubKindNone, &Ref{Name: CatalogFilterTransform, DisplayName: "Filter"}, SubKindFilter, "Filter", nil},
		{"second source", KindSource, SubKindNone, nil, "", "", ErrMultipleSources},
		{"unknown kind", Kind("camera"), SubKindNone, nil, "", "", ErrUnknownKind},
		{"missing subKind", KindExport, SubKindNone, nil, "", "", ErrUnknownSubKind},
		{"wrong subKind", KindTransform, SubKindHTTP, nil, "", "", ErrUnknownSubKind},
		{"model with subKind", KindModel, SubKindFilter, nil, "", "", ErrUnknownSubKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			id, err := g.AddNode(tt.kind, tt.sub, tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AddNode error = %v, want %v", err, tt.wantErr)
				}
				var rej *Rejection
				if !errors.As(err, &rej) {
					t.Errorf("error %T is not a *Rejection", err)
				}
				if g.NodeCount() != 1 {
					t.Errorf("graph changed after rejection: %d nodes", g.NodeCount())
				}
				return
			}
			if err != nil {
				t.Fatalf("AddNode: %v", err)
			}
			n, ok := g.Node(id)
			if !ok {
				t.Fatalf("node %s not found", id)
			}
			if n.SubKind != tt.wantSub {
				t.Errorf("SubKind = %q, want %q", n.SubKind, tt.wantSub)
			}
			if n.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", n.Name, tt.wantName)
			}
			if n.Configured {
				t.Error("new node should not be configured")
			}
		})
	}
}

func TestIDsNeverReused(t *testing.T) {
	g := New(nil)
	a, _ := g.AddNode(KindModel, "", nil)
	b, _ := g.AddNode(KindModel, "", nil)
	if err := g.RemoveNode(b); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	c, _ := g.AddNode(KindModel, "", nil)

	if a != "1" || b != "2" || c != "3" {
		t.Errorf("ids = %s %s %s, want 1 2 3", a, b, c)
	}
	if _, ok := g.Node(b); ok {
		t.Errorf("removed node %s still present", b)
	}
}

func TestAddEdgeUniqueTarget(t *testing.T) {
	g := New(nil)
	m1, _ := g.AddNode(KindModel, "", nil)
	m2, _ := g.AddNode(KindModel, "", nil)
	sink, _ := g.AddNode(KindExport, SubKindHTTP, nil)

	if _, err := g.AddEdge(Connect(SourceNodeID, m1)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddEdge(Connect(SourceNodeID, m2)); err != nil {
		t.Fatalf("fan-out should be allowed: %v", err)
	}
	if _, err := g.AddEdge(Connect(m1, sink)); err != nil {
		t.Fatal(err)
	}

	_, err := g.AddEdge(Connect(m2, sink))
	if !errors.Is(err, ErrConnectionRejected) {
		t.Fatalf("second edge into %s: err = %v, want ErrConnectionRejected", sink, err)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", g.EdgeCount())
	}

	seen := make(map[[2]string]bool)
	for _, c := range g.Connections() {
		key := [2]string{c.Target, c.TargetHandle}
		if seen[key] {
			t.Errorf("target %v bound twice", key)
		}
		seen[key] = true
	}
}

func TestAddEdgeRejections(t *testing.T) {
	g := New(nil)
	m, _ := g.AddNode(KindModel, "", nil)
	sink, _ := g.AddNode(KindExport, SubKindIoTHub, nil)

	tests := []struct {
		name string
		conn Connection
		want error
	}{
		{"unknown source", Connect("42", m), ErrUnknownNode},
		{"unknown target", Connect(m, "42"), ErrUnknownNode},
		{"self loop", Connect(m, m), ErrSelfLoop},
		{"from export", Connect(sink, m), ErrNoSuchPort},
		{"into source", Connect(m, SourceNodeID), ErrNoSuchPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.AddEdge(tt.conn); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge error = %v, want %v", err, tt.want)
			}
			if g.EdgeCount() != 0 {
				t.Errorf("EdgeCount = %d after rejection", g.EdgeCount())
			}
		})
	}
}

func TestEdgeID(t *testing.T) {
	got := EdgeID(Connection{Source: "0", Target: "1"})
	if want := "reactflow__edge-0source-1target"; got != want {
		t.Errorf("EdgeID = %q, want %q", got, want)
	}
}

func TestRemoveNodeCascade(t *testing.T) {
	g := New(nil)
	m, _ := g.AddNode(KindModel, "", nil)
	f, _ := g.AddNode(KindTransform, SubKindFilter, nil)
	sink, _ := g.AddNode(KindExport, SubKindHTTP, nil)
	_, _ = g.AddEdge(Connect(SourceNodeID, m))
	_, _ = g.AddEdge(Connect(m, f))
	_, _ = g.AddEdge(Connect(f, sink))
	_, _ = g.AddEdge(Connect(SourceNodeID, f))

	if err := g.RemoveNode(f); err != nil {
		t.Fatalf("RemoveNode: %v", err)
	}
	for _, e := range g.Edges() {
		if e.Source == f || e.Target == f {
			t.Errorf("edge %s still touches removed node", e.ID)
		}
		if _, ok := g.Node(e.Source); !ok {
			t.Errorf("edge %s has dangling source", e.ID)
		}
		if _, ok := g.Node(e.Target); !ok {
			t.Errorf("edge %s has dangling target", e.ID)
		}
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount = %d, want 1", g.EdgeCount())
	}
	if len(g.ConnectMap(f)) != 0 {
		t.Error("ConnectMap of removed node should be empty")
	}
}

func TestRemoveSourceRejected(t *testing.T) {
	g := New(nil)
	if err := g.RemoveNode(SourceNodeID); !errors.Is(err, ErrSourceImmutable) {
		t.Errorf("RemoveNode(source) = %v, want ErrSourceImmutable", err)
	}
	if err := g.RemoveNode("9"); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("RemoveNode(9) = %v, want ErrUnknownNode", err)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New(nil)
	m, _ := g.AddNode(KindModel, "", nil)
	id, _ := g.AddEdge(Connect(SourceNodeID, m))

	if err := g.RemoveEdge(id); err != nil {
		t.Fatalf("RemoveEdge: %v", err)
	}
	if err := g.RemoveEdge(id); !errors.Is(err, ErrUnknownEdge) {
		t.Errorf("second RemoveEdge = %v, want ErrUnknownEdge", err)
	}
	if _, err := g.AddEdge(Connect(SourceNodeID, m)); err != nil {
		t.Errorf("target should be free again: %v", err)
	}
}

func TestSetNodeConfiguration(t *testing.T) {
	g := New(nil)
	m, _ := g.AddNode(KindModel, "", modelRef())
	sink, _ := g.AddNode(KindExport, SubKindHTTP, nil)
	grpc, _ := g.AddNode(KindTransform, SubKindGrpc, nil)

	tests := []struct {
		name string
		id   string
		cfg  Configuration
		want error
	}{
		{"model ok", m, validModelConfig(), nil},
		{"http ok", sink, HTTPConfig{URL: "https://example.com/hook"}, nil},
		{"grpc container ok", grpc, GrpcConfig{Type: GrpcContainer, ContainerName: "det", ContainerImage: "det:1", Port: 5001}, nil},
		{"mismatch", sink, MQTTConfig{DelayBuffer: "1", BrokerAddress: "tcp://b"}, ErrConfigMismatch},
		{"source", SourceNodeID, DefaultSourceConfig(), ErrSourceImmutable},
		{"unknown", "99", HTTPConfig{URL: "https://x.io"}, ErrUnknownNode},
		{"bad url", sink, HTTPConfig{URL: "not a url"}, ErrInvalidConfig},
		{"confidence range", m, ModelConfig{Model: ModelSelection{Name: "x"}, ConfidenceUpper: 101}, ErrInvalidConfig},
		{"max images required", m, ModelConfig{Model: ModelSelection{Name: "x"}, CaptureData: CaptureYes}, ErrInvalidConfig},
		{"nil", m, nil, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.SetNodeConfiguration(tt.id, tt.cfg)
			if tt.want == nil {
				if err != nil {
					t.Fatalf("SetNodeConfiguration: %v", err)
				}
				n, _ := g.Node(tt.id)
				if !n.Configured {
					t.Error("node should be configured")
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("SetNodeConfiguration error = %v, want %v", err, tt.want)
			}
		})
	}

	n, _ := g.Node(grpc)
	if got := n.Config.(GrpcConfig).EndpointURL; got != "det:5001" {
		t.Errorf("container endpoint_url = %q, want det:5001", got)
	}
}

func TestConfigurationMatchesWire(t *testing.T) {
	g := New(nil)
	grpc, _ := g.AddNode(KindTransform, SubKindGrpc, nil)
	err := g.SetNodeConfiguration(grpc, GrpcConfig{
		Type:          GrpcEndpoint,
		EndpointURL:   "10.0.0.3:9000",
		ContainerName: "det",
		RestartPolicy: "always",
		Port:          5001,
	})
	if err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node(grpc)
	want := GrpcConfig{Type: GrpcEndpoint, EndpointURL: "10.0.0.3:9000"}
	if got := n.Config.(GrpcConfig); got != want {
		t.Errorf("endpoint config = %+v, want %+v", got, want)
	}

	ref := modelRef()
	ref.Category = "object"
	m, _ := g.AddNode(KindModel, "", ref)
	cfg := validModelConfig()
	cfg.Model.Name = "old name"
	cfg.Category = "stale"
	if err := g.SetNodeConfiguration(m, cfg); err != nil {
		t.Fatal(err)
	}
	n, _ = g.Node(m)
	mc := n.Config.(ModelConfig)
	if mc.Model != (ModelSelection{ID: 7, Name: "people-counter"}) || mc.Category != "object" {
		t.Errorf("model config = %+v / %q, want the reference's selection and category", mc.Model, mc.Category)
	}

	other := &Ref{ID: 9, Name: "car-detector", Category: "vehicle"}
	if err := g.SetNodeReference(m, other); err != nil {
		t.Fatal(err)
	}
	n, _ = g.Node(m)
	mc = n.Config.(ModelConfig)
	if mc.Model != (ModelSelection{ID: 9, Name: "car-detector"}) || mc.Category != "vehicle" {
		t.Errorf("after SetNodeReference model config = %+v / %q", mc.Model, mc.Category)
	}
}

func TestNodeCopiesAreDetached(t *testing.T) {
	g := New(nil)
	f, _ := g.AddNode(KindTransform, SubKindFilter, nil)
	if err := g.SetNodeConfiguration(f, FilterConfig{Labels: []string{"person"}, ConfidenceThreshold: 50}); err != nil {
		t.Fatal(err)
	}

	n, _ := g.Node(f)
	n.Config.(FilterConfig).Labels[0] = "car"
	n.Name = "changed"

	again, _ := g.Node(f)
	if again.Config.(FilterConfig).Labels[0] != "person" {
		t.Error("mutating a returned node changed the graph")
	}
	if again.Name == "changed" {
		t.Error("node name leaked through copy")
	}
}

func TestRenameAndMove(t *testing.T) {
	g := New(nil)
	m, _ := g.AddNode(KindModel, "", nil)

	if err := g.RenameNode(m, "Counter"); err != nil {
		t.Fatalf("RenameNode: %v", err)
	}
	if err := g.RenameNode(m, "  "); err == nil {
		t.Error("blank name accepted")
	}
	if err := g.MoveNode(m, Position{X: 10, Y: 20}); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	n, _ := g.Node(m)
	if n.Name != "Counter" || n.Position != (Position{X: 10, Y: 20}) {
		t.Errorf("node = %+v", n)
	}
}

func TestRestore(t *testing.T) {
	nodes := []Node{
		{ID: "0", Kind: KindSource, Config: DefaultSourceConfig(), Configured: true},
		{ID: "3", Kind: KindModel, Configured: true},
		{ID: "5", Kind: KindExport, SubKind: SubKindIoTHub, Configured: true},
	}
	edges := []Edge{
		{Connection: Connection{Source: "0", Target: "3"}},
		{Connection: Connection{Source: "3", Target: "5"}},
	}

	g, err := Restore(nodes, edges)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if g.NextID() != "6" {
		t.Errorf("NextID = %s, want 6", g.NextID())
	}
	if got := g.Edges()[0].ID; got != "reactflow__edge-0source-3target" {
		t.Errorf("edge id = %q", got)
	}
	if got := g.Children("3"); len(got) != 1 || got[0] != "5" {
		t.Errorf("Children(3) = %v", got)
	}

	errCases := []struct {
		name  string
		nodes []Node
		edges []Edge
		want  error
	}{
		{"no source", nodes[1:], nil, ErrNoSource},
		{"two sources", append([]Node{{ID: "9", Kind: KindSource}}, nodes...), nil, ErrMultipleSources},
		{"duplicate id", append(nodes, Node{ID: "3", Kind: KindModel}), nil, ErrDuplicateNodeID},
		{"dangling", nodes, []Edge{{Connection: Connection{Source: "0", Target: "8"}}}, ErrDanglingEdge},
		{"double bound", nodes, append(edges, Edge{Connection: Connection{Source: "0", Target: "5"}}), ErrConnectionRejected},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Restore(tt.nodes, tt.edges); !errors.Is(err, tt.want) {
				t.Errorf("Restore error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestClone(t *testing.T) {
	g := New(nil)
	m, _ := g.AddNode(KindModel, "", nil)
	_, _ = g.AddEdge(Connect(SourceNodeID, m))

	c := g.Clone()
	_ = c.RemoveNode(m)
	_, _ = c.AddNode(KindModel, "", nil)

	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("original changed: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if c.NextID() != "3" {
		t.Errorf("clone NextID = %s, want 3", c.NextID())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds {
		if got, err := ParseKind(string(k)); err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("camera"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(camera) = %v", err)
	}
	for _, s := range SubKinds {
		if got := SubKindFromCatalogName(s.CatalogName()); got != s {
			t.Errorf("catalog name round trip of %q = %q", s, got)
		}
	}
	if _, err := ParseSubKind("kafka"); !errors.Is(err, ErrUnknownSubKind) {
		t.Errorf("ParseSubKind(kafka) = %v", err)
	}
}
