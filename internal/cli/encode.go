package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/codec"
)

// encodeCommand creates the encode command.
func (c *CLI) encodeCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "encode [snapshot.json]",
		Short: "Encode an editor snapshot into the execution payload",
		Long: `Encode an editor snapshot into the execution payload.

The snapshot must pass validation. Configurations are projected onto the
fields each node kind carries on the wire, edge ports are resolved into
routes, and deployment parameters are left as placeholders.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEncode(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.payload.json, - for stdout)")
	return cmd
}

func (c *CLI) runEncode(ctx context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	g, err := codec.UnmarshalSnapshot(data)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Commit(ctx, g)
	if err != nil {
		return err
	}
	out, err := codec.MarshalPayload(res.Payload)
	if err != nil {
		return err
	}

	if output == "" {
		output = outputPath(input, ".payload.json")
	}
	if err := writeOutput(output, out); err != nil {
		return err
	}
	if output == "-" {
		return nil
	}

	printSuccess("Encoded %d nodes, %d edges", len(res.Payload.Nodes), len(res.Payload.Edges))
	printFile(output)
	printKeyValue("hash", res.Hash)
	return nil
}
