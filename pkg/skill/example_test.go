package skill_test

import (
	"errors"
	"fmt"

	"github.com/matzehuels/skillgraph/pkg/skill"
)

func ExampleGraph_basic() {
	// camera -> model -> http export
	g := skill.New(nil)
	model, _ := g.AddNode(skill.KindModel, "", nil)
	sink, _ := g.AddNode(skill.KindExport, skill.SubKindHTTP, nil)
	_, _ = g.AddEdge(skill.Connect(skill.SourceNodeID, model))
	_, _ = g.AddEdge(skill.Connect(model, sink))

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Children of source:", g.Children(skill.SourceNodeID))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Children of source: [1]
}

func ExampleGraph_AddEdge_rejected() {
	// A target handle accepts a single inbound connection.
	g := skill.New(nil)
	a, _ := g.AddNode(skill.KindModel, "", nil)
	b, _ := g.AddNode(skill.KindModel, "", nil)
	sink, _ := g.AddNode(skill.KindExport, skill.SubKindIoTHub, nil)
	_, _ = g.AddEdge(skill.Connect(a, sink))

	_, err := g.AddEdge(skill.Connect(b, sink))
	fmt.Println(errors.Is(err, skill.ErrConnectionRejected))
	fmt.Println("Edges:", g.EdgeCount())
	// Output:
	// true
	// Edges: 1
}

func ExampleGraph_SetNodeConfiguration() {
	g := skill.New(nil)
	f, _ := g.AddNode(skill.KindTransform, skill.SubKindFilter, nil)

	err := g.SetNodeConfiguration(f, skill.HTTPConfig{URL: "https://example.com"})
	fmt.Println(errors.Is(err, skill.ErrConfigMismatch))

	err = g.SetNodeConfiguration(f, skill.FilterConfig{Labels: []string{"person"}, ConfidenceThreshold: 60})
	n, _ := g.Node(f)
	fmt.Println(err, n.Configured)
	// Output:
	// true
	// <nil> true
}
