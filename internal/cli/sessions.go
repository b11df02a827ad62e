package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/editor"
	"github.com/matzehuels/skillgraph/pkg/session"
)

// sessionsCommand creates the sessions command for stored editing sessions.
func (c *CLI) sessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored editing sessions",
		Long: `Manage the editing sessions of the configured store (session.backend).

The memory backend keeps nothing between runs; use the file or redis
backend to share sessions with a running server.`,
	}

	cmd.AddCommand(c.sessionsListCommand())
	cmd.AddCommand(c.sessionsShowCommand())
	cmd.AddCommand(c.sessionsExportCommand())
	cmd.AddCommand(c.sessionsImportCommand())
	cmd.AddCommand(c.sessionsDeleteCommand())

	return cmd
}

// withStore opens the configured session store for the duration of fn.
func (c *CLI) withStore(ctx context.Context, fn func(session.Store) error) error {
	store, err := openStore(ctx, c.Config.Session)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

func (c *CLI) sessionsListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recently edited first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store session.Store) error {
				list, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(os.Stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(list)
				}
				if len(list) == 0 {
					printInfo("No sessions")
					return nil
				}
				fmt.Println(sessionTable(list, time.Now()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (c *CLI) sessionsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store session.Store) error {
				rec, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				g, err := codec.UnmarshalSnapshot(rec.Snapshot)
				if err != nil {
					return err
				}
				ed := editor.Open(g)

				printKeyValue("ID", rec.ID)
				printKeyValue("Name", rec.Name)
				printKeyValue("State", string(ed.State()))
				printKeyValue("Updated", rec.UpdatedAt.Format(time.DateTime))
				if !rec.ExpiresAt.IsZero() {
					printKeyValue("Expires", rec.ExpiresAt.Format(time.DateTime))
				}
				printStats(g.NodeCount(), g.EdgeCount(), false)
				if r := ed.Result(); !r.OK() {
					printNewline()
					printValidation(r)
				}
				return nil
			})
		},
	}
}

func (c *CLI) sessionsExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write the snapshot of a session to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store session.Store) error {
				rec, err := store.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if output == "" {
					output = rec.ID + ".snapshot.json"
				}
				if err := writeOutput(output, rec.Snapshot); err != nil {
					return err
				}
				if output != "-" {
					printSuccess("Session exported")
					printFile(output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <id>.snapshot.json)")
	return cmd
}

func (c *CLI) sessionsImportCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <payload.json|snapshot.json>",
		Short: "Store a pipeline file as a new session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.loadOptions(args[0])
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
			printUnresolved(res)
			snap, err := codec.MarshalSnapshot(res.Graph)
			if err != nil {
				return err
			}
			if name == "" {
				name = outputPath(args[0], "")
			}

			return c.withStore(ctx, func(store session.Store) error {
				rec := session.New(name, snap, c.Config.Session.TTL.Duration)
				if err := store.Set(ctx, rec); err != nil {
					return err
				}
				printSuccess("Session %s created", StyleHighlight.Render(rec.ID))
				printKeyValue("State", string(editor.StateOf(res.Graph, res.Validation)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "session name (default: input file name)")
	return cmd
}

func (c *CLI) sessionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete sessions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd.Context(), func(store session.Store) error {
				for _, id := range args {
					if err := store.Delete(cmd.Context(), id); err != nil {
						return fmt.Errorf("delete %s: %w", id, err)
					}
					printSuccess("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

// sessionTable renders session summaries with their age relative to now.
func sessionTable(list []session.Summary, now time.Time) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{s.ID, s.Name, age(now.Sub(s.UpdatedAt))})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Name", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// age formats d coarsely, e.g. "just now", "5m ago", "3h ago", "2d ago".
func age(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}
