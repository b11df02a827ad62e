package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/render"
	"github.com/matzehuels/skillgraph/pkg/render/nodelink"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// RenderOptions controls [Render].
type RenderOptions struct {
	Formats  []string
	Detailed bool
	Pinned   bool

	// Scale is the PNG resolution factor. Zero means 2.
	Scale float64
}

// Render generates output artifacts in the requested formats. Payload
// output requires a graph that encodes; it is not validated first.
func Render(ctx context.Context, g *skill.Graph, opts RenderOptions) (map[string][]byte, error) {
	if len(opts.Formats) == 0 {
		opts.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, err
	}
	if opts.Scale == 0 {
		opts.Scale = 2
	}

	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: opts.Detailed, Pinned: opts.Pinned})
	var svg []byte
	svgOnce := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		svg, err = nodelink.RenderSVG(ctx, dot)
		return svg, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatSVG:
			data, err = svgOnce()
		case FormatPNG:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = svgOnce(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		case FormatPayload:
			var p codec.Payload
			if p, err = codec.Encode(g); err == nil {
				data, err = codec.MarshalPayload(p)
			}
		case FormatSnapshot:
			data, err = codec.MarshalSnapshot(g)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
