// Package render turns skill graphs into pictures.
//
// The [nodelink] subpackage draws a graph as a Graphviz diagram. [ToPDF] and
// [ToPNG] convert its SVG output with the external rsvg-convert tool.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [nodelink]: github.com/matzehuels/skillgraph/pkg/render/nodelink
package render
