package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (several)
	formats  []string // dot, svg, png, pdf, payload, snapshot
	detailed bool     // kind, subKind and wire name in labels
	pinned   bool     // keep canvas positions instead of letting dot rank
	scale    float64  // PNG resolution factor
	noCache  bool
	layout   layoutFlags
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: 2}

	cmd := &cobra.Command{
		Use:   "render [payload.json|snapshot.json]",
		Short: "Render a skill pipeline as a node-link diagram",
		Long: `Render a skill pipeline as a node-link diagram.

Formats: dot, svg (default), png and pdf (both need rsvg-convert), plus
payload and snapshot to write the graph itself. Several formats can be
given comma-separated; -o is then used as the base path.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf, payload, snapshot (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show kind and wire name in node labels")
	cmd.Flags().BoolVar(&opts.pinned, "pinned", false, "place nodes at their canvas positions")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	opts.layout.register(cmd)

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	lo, err := c.loadOptions(input)
	if err != nil {
		return err
	}
	opts.layout.apply(cmd, &lo.Layout)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Load(ctx, lo)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	artifacts, err := pipeline.Render(ctx, res.Graph, pipeline.RenderOptions{
		Formats:  opts.formats,
		Detailed: opts.detailed,
		Pinned:   opts.pinned,
		Scale:    opts.scale,
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(input, opts.output, opts.formats, artifacts)
	if err != nil {
		return err
	}

	printSuccess("Rendered %d nodes", res.Stats.NodeCount)
	for _, p := range paths {
		printFile(p)
	}
	if !res.Validation.OK() {
		printWarning("%s", res.Validation.Message)
	}
	return nil
}

// writeArtifacts writes one file per format and returns their paths in
// format order.
func writeArtifacts(input, output string, formats []string, artifacts map[string][]byte) ([]string, error) {
	base := output
	if base == "" {
		base = outputPath(input, "")
	}
	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := artifactPath(base, f, len(formats) == 1 && output != "")
		if err := os.WriteFile(path, artifacts[f], 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// artifactPath returns base itself for an explicit single output, else
// base with the format's extension.
func artifactPath(base, format string, exact bool) string {
	if exact {
		return base
	}
	base = strings.TrimSuffix(base, "."+format)
	switch format {
	case pipeline.FormatPayload:
		return base + ".payload.json"
	case pipeline.FormatSnapshot:
		return base + ".snapshot.json"
	}
	return base + "." + format
}
