// Package nodelink draws skill graphs as node-link diagrams with Graphviz.
//
// Convert a graph to DOT, then render it in process:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are filled by kind. Unconfigured nodes get a dashed outline so an
// incomplete pipeline is visible at a glance. With Options.Pinned the
// diagram keeps the editor canvas positions instead of letting Graphviz
// rank the nodes.
//
// This package uses [github.com/goccy/go-graphviz], which embeds Graphviz
// as WebAssembly, so no system install is needed for SVG.
package nodelink
