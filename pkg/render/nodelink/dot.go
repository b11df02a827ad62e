package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/skillgraph/pkg/skill"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the kind, subKind and catalog name to node labels and
	// the resolved routes to edge labels.
	Detailed bool

	// Pinned places nodes at their canvas positions (neato, pos="x,y!").
	Pinned bool
}

var fills = map[skill.Kind]string{
	skill.KindSource:    "#dbeafe",
	skill.KindModel:     "#fef3c7",
	skill.KindTransform: "#ede9fe",
	skill.KindExport:    "#dcfce7",
}

// neato reads pos in inches; canvas positions are pixels.
const pinScale = 1.0 / 72

var graphAttrs = []string{
	`rankdir=TB`,
	`bgcolor="transparent"`,
	`ranksep=0.5`,
	`nodesep=0.3`,
	`node [shape=box, style="rounded,filled", fontname="Helvetica", fontsize=14, margin="0.2,0.1"]`,
	`edge [fontname="Helvetica", fontsize=10]`,
}

// ToDOT converts a skill graph to Graphviz DOT. Nodes keep graph order so
// the output is stable for a given graph.
func ToDOT(g *skill.Graph, opts Options) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		b.WriteString("  ")
		fmt.Fprintf(&b, format, args...)
		b.WriteString(";\n")
	}

	b.WriteString("digraph skill {\n")
	if opts.Pinned {
		line("layout=neato")
	}
	for _, a := range graphAttrs {
		line("%s", a)
	}

	b.WriteByte('\n')
	for _, n := range g.Nodes() {
		line("%q [%s]", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	b.WriteByte('\n')
	for _, e := range g.Edges() {
		if label := routeLabel(g, e); opts.Detailed && label != "" {
			line("%q -> %q [label=%q]", e.Source, e.Target, label)
			continue
		}
		line("%q -> %q", e.Source, e.Target)
	}

	b.WriteString("}\n")
	return b.String()
}

func fmtLabel(n skill.Node, detailed bool) string {
	if !detailed {
		return n.Name
	}
	kind := string(n.Kind)
	if n.SubKind != skill.SubKindNone {
		kind = kind + "/" + string(n.SubKind)
	}
	if n.Ref == nil {
		return n.Name + "\n" + kind
	}
	return n.Name + "\n" + kind + "\n" + n.Ref.WireName()
}

func nodeAttrs(n skill.Node, opts Options) []string {
	attrs := make([]string, 0, 4)
	attrs = append(attrs,
		"label="+strconv.Quote(fmtLabel(n, opts.Detailed)),
		"fillcolor="+strconv.Quote(fills[n.Kind]),
	)
	if !n.Configured {
		attrs = append(attrs, `style="rounded,filled,dashed"`)
	}
	if opts.Pinned {
		// Graphviz y grows upwards, the canvas y downwards.
		x, y := n.Position.X*pinScale, -n.Position.Y*pinScale
		attrs = append(attrs, fmt.Sprintf(`pos="%.2f,%.2f!"`, x, y))
	}
	return attrs
}

// routeLabel names the routes an edge joins, or "" when either end has
// none.
func routeLabel(g *skill.Graph, e skill.Edge) string {
	src, _ := g.Node(e.Source)
	dst, _ := g.Node(e.Target)
	out, ok := src.Ref.OutputRoute()
	if !ok {
		return ""
	}
	in, ok := dst.Ref.InputRoute()
	if !ok {
		return ""
	}
	return out + " → " + in
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
