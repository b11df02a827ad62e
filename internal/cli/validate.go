package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/pipeline"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// validateCommand creates the validate command.
func (c *CLI) validateCommand() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate [payload.json|snapshot.json]",
		Short: "Check that a skill pipeline is complete and connected",
		Long: `Check that a skill pipeline is complete and connected.

The input is either a wire payload or an editor snapshot. The checks run in
order and the first failure is reported: the graph has nodes, a model, an
export, every node is configured, every node is connected, and display
names are unique.

Wire names the catalog does not know are reported as warnings; with
--strict they fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(cmd.Context(), args[0], strict)
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on catalog references that cannot be resolved")
	return cmd
}

func (c *CLI) runValidate(ctx context.Context, input string, strict bool) error {
	opts, err := c.loadOptions(input)
	if err != nil {
		return err
	}
	opts.Strict = strict

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	printUnresolved(res)
	printValidation(res.Validation)
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, false)
	return res.Validation.Err()
}

// printUnresolved warns about every wire name the catalog did not know.
func printUnresolved(res *pipeline.LoadResult) {
	for _, u := range res.Unresolved {
		printWarning("%s", u.String())
	}
	for _, c := range res.Dropped {
		printWarning("edge %s -> %s dropped: input already connected", c.Source, c.Target)
	}
}

// printValidation prints a validation result.
func printValidation(r validate.Result) {
	if r.OK() {
		printSuccess("Pipeline is valid")
		return
	}
	printError("%s", r.Message)
	if r.Node != "" {
		printDetail("node %s (%s)", r.Node, r.Name)
	}
	printDetail("code: %s", r.Code)
}
