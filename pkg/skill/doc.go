// Package skill provides the in-memory graph model of an AI skill pipeline.
//
// # Overview
//
// An AI skill is a directed graph of typed nodes: exactly one camera source,
// any number of model and transform nodes, and one or more export sinks.
// Edges are port-qualified: every edge leaves a node through its "source"
// handle and enters the next node through its "target" handle.
//
// The [Graph] type owns the node arena and a single graph-level edge index.
// Nodes do not carry copies of the connection list; use [Graph.Connections]
// or [Graph.ConnectMap] to look them up.
//
// # Basic Usage
//
//	g := skill.New(nil)
//	model, _ := g.AddNode(skill.KindModel, "", nil)
//	sink, _ := g.AddNode(skill.KindExport, skill.SubKindHTTP, nil)
//	_, _ = g.AddEdge(skill.Connect(skill.SourceNodeID, model))
//	_, _ = g.AddEdge(skill.Connect(model, sink))
//	_ = g.SetNodeConfiguration(sink, skill.HTTPConfig{URL: "https://example.com/hook"})
//
// # Identity
//
// Node ids are decimal strings handed out by a counter that only grows, so an
// id is never reused after its node is deleted. The source node is always "0"
// for graphs created with [New].
//
// # Rejections
//
// Mutations never panic and never leave the graph half-updated. An illegal
// mutation returns a [*Rejection] whose reason is one of the sentinel errors
// of this package (for example [ErrConnectionRejected]), and the graph is
// unchanged.
//
// # Configuration
//
// Each node kind (and subKind for transforms and exports) has its own
// configuration struct implementing the sealed [Configuration] interface.
// Configurations are checked with struct tags before they are accepted.
//
// # Concurrency
//
// Graph is not safe for concurrent use. Editing sessions serialize access
// through a single owner (see package editor).
package skill
