package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/layout"
	"github.com/matzehuels/skillgraph/pkg/pipeline"
)

// layoutFlags holds the layout overrides of the layout and render commands.
type layoutFlags struct {
	jitter float64
	seed   uint64
	sweeps int
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	d := layout.DefaultOptions()
	cmd.Flags().Float64Var(&f.jitter, "jitter", d.Jitter, "horizontal jitter bound, 0 disables it")
	cmd.Flags().Uint64Var(&f.seed, "seed", d.Seed, "jitter seed")
	cmd.Flags().IntVar(&f.sweeps, "sweeps", d.Sweeps, "barycenter ordering passes")
}

// apply overrides opts with the flags the user set explicitly.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *layout.Options) {
	if cmd.Flags().Changed("jitter") {
		opts.Jitter = f.jitter
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
	if cmd.Flags().Changed("sweeps") {
		opts.Sweeps = f.sweeps
	}
}

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [payload.json|snapshot.json]",
		Short: "Compute canvas positions for a skill pipeline",
		Long: `Compute canvas positions for a skill pipeline.

Nodes are ranked by longest path from the camera source, ordered within a
rank to reduce edge crossings and placed on the editor canvas. Snapshot
positions are discarded. The result is written as a snapshot.

Layouts of payloads are cached locally by payload hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(args[0])
			if err != nil {
				return err
			}
			flags.apply(cmd, &opts.Layout)
			opts.Relayout = true
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute and overwrite cached layouts")
	flags.register(cmd)

	return cmd
}

// runLayout loads the graph, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.LoadOptions, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	res, err := runner.Load(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	snap, err := codec.MarshalSnapshot(res.Graph)
	if err != nil {
		return err
	}
	if output == "" {
		output = outputPath(input, ".layout.json")
	}
	if err := os.WriteFile(output, snap, 0644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)
	printNewline()
	printNextStep("Render", appName+" render "+output)

	return nil
}
