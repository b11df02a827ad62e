package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/editor"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "inspect [payload.json|snapshot.json]",
		Short: "Browse and prune a skill pipeline interactively",
		Long: `Browse and prune a skill pipeline interactively.

Lists the nodes with their connections and configuration next to the
current validation result. Nodes can be removed and the result saved as a
snapshot.

Keys: up/down or j/k select, d removes the selected node, w writes the
snapshot, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = outputPath(args[0], ".snapshot.json")
			}
			return c.runInspect(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "snapshot written by w (default: <input>.snapshot.json)")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, output string) error {
	opts, err := c.loadOptions(input)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	ed := editor.Open(res.Graph,
		editor.WithCatalog(runner.Catalog),
		editor.WithLogger(loggerFromContext(ctx)))

	m := newInspectModel(ctx, ed, output)
	final, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(os.Stderr)).Run()
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	if fm, ok := final.(inspectModel); ok && fm.saved {
		printSuccess("Snapshot saved")
		printFile(output)
	}
	return nil
}
