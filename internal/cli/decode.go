package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/codec"
)

// decodeCommand creates the decode command.
func (c *CLI) decodeCommand() *cobra.Command {
	var (
		output  string
		strict  bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "decode [payload.json]",
		Short: "Rebuild an editor snapshot from an execution payload",
		Long: `Rebuild an editor snapshot from an execution payload.

Nodes are matched against the catalog (models by catalog id, everything else
by entry name), configurations are re-derived from the wire fields and the
graph is laid out. Layouts are cached by payload hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDecode(cmd.Context(), args[0], output, strict, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.snapshot.json, - for stdout)")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on catalog references that cannot be resolved")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")
	return cmd
}

func (c *CLI) runDecode(ctx context.Context, input, output string, strict, noCache bool) error {
	opts, err := c.loadOptions(input)
	if err != nil {
		return err
	}
	if opts.Payload == nil {
		return fmt.Errorf("%s is a snapshot, not a payload", input)
	}
	opts.Strict = strict

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	prog.done("decoded", "nodes", res.Stats.NodeCount, "unresolved", len(res.Unresolved))

	snap, err := codec.MarshalSnapshot(res.Graph)
	if err != nil {
		return err
	}

	if output == "" {
		output = outputPath(input, ".snapshot.json")
	}
	if err := writeOutput(output, snap); err != nil || output == "-" {
		return err
	}

	printSuccess("Decoded pipeline")
	printFile(output)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.CacheInfo.LayoutHit)
	printUnresolved(res)
	if !res.Validation.OK() {
		printWarning("%s", res.Validation.Message)
	}
	printNewline()
	printNextStep("Edit interactively", appName+" inspect "+output)
	return nil
}
