package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skillgraph/pkg/catalog"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	var (
		kind   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the catalog entries nodes can reference",
		Long: `List the catalog entries nodes can reference.

The catalog combines the built-in source, transform and export entries with
the file and MongoDB collection named in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter skill.Kind
			if kind != "" {
				k, err := skill.ParseKind(kind)
				if err != nil {
					return err
				}
				filter = k
			}

			cat, err := c.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			entries := filterEntries(cat.Entries(), filter)

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			fmt.Println(catalogTable(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list entries of this kind: source, model, transform, export")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entries as JSON")
	return cmd
}

func filterEntries(entries []catalog.Entry, kind skill.Kind) []catalog.Entry {
	if kind == "" {
		return entries
	}
	out := entries[:0:0]
	for _, e := range entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func catalogTable(entries []catalog.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		wire := e.Name
		if e.Kind == skill.KindModel {
			wire = e.KanID
		}
		rows = append(rows, []string{strconv.Itoa(e.ID), kindLabel(e.Kind, skill.SubKindNone), e.Name, e.DisplayName, wire})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Kind", "Name", "Display", "Wire name").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Render()
}
