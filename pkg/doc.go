// Package pkg provides the libraries behind skillgraph, the editor for
// vision skill pipelines.
//
// # Overview
//
// A skill pipeline is a directed graph rooted at one camera source. Frames
// flow through trained models and transforms into exports. The pkg
// directory is organized into four areas:
//
//  1. Domain: [skill] (graph, kinds, configurations), [validate]
//     (structural checks) and [editor] (mutation sessions and states)
//  2. Codecs: [codec] (engine payload and editor snapshot) and [catalog]
//     (the entries nodes reference)
//  3. Infrastructure: [cache], [session], [observability] and [errors]
//  4. Orchestration: [pipeline] (load, commit, render), [layout], [render]
//     and [server] (HTTP editing API)
//
// # Architecture
//
// A typical round trip through skillgraph:
//
//	engine payload
//	     ↓
//	[codec] decode against the [catalog]
//	     ↓
//	[layout] positions (cached by payload hash)
//	     ↓
//	[editor] session: add, connect, configure, validate
//	     ↓
//	[codec] encode + snapshot
//	     ↓
//	engine payload
//
// # Quick Start
//
//	ed := editor.New(editor.WithCatalog(catalog.Default()))
//	model, _, _ := ed.AddNode(ctx, skill.KindModel, skill.SubKindNone, "")
//	export, _, _ := ed.AddNode(ctx, skill.KindExport, skill.SubKindHTTP, "")
//	ed.AddEdge(ctx, skill.Connect(skill.SourceNodeID, model))
//	ed.AddEdge(ctx, skill.Connect(model, export))
//	// configure both nodes, then:
//	payload, err := ed.Commit(ctx)
//
// [skill]: github.com/matzehuels/skillgraph/pkg/skill
// [validate]: github.com/matzehuels/skillgraph/pkg/validate
// [editor]: github.com/matzehuels/skillgraph/pkg/editor
// [codec]: github.com/matzehuels/skillgraph/pkg/codec
// [catalog]: github.com/matzehuels/skillgraph/pkg/catalog
// [cache]: github.com/matzehuels/skillgraph/pkg/cache
// [session]: github.com/matzehuels/skillgraph/pkg/session
// [observability]: github.com/matzehuels/skillgraph/pkg/observability
// [errors]: github.com/matzehuels/skillgraph/pkg/errors
// [pipeline]: github.com/matzehuels/skillgraph/pkg/pipeline
// [layout]: github.com/matzehuels/skillgraph/pkg/layout
// [render]: github.com/matzehuels/skillgraph/pkg/render
// [server]: github.com/matzehuels/skillgraph/pkg/server
package pkg
