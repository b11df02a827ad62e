package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/skillgraph/pkg/editor"
	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// inspectModel - Interactive pipeline browser
// =============================================================================

// inspectModel is the bubbletea model of the inspect command.
type inspectModel struct {
	ctx    context.Context
	ed     *editor.Session
	output string

	nodes  []skill.Node
	cursor int
	height int
	offset int

	status string
	saved  bool
}

func newInspectModel(ctx context.Context, ed *editor.Session, output string) inspectModel {
	m := inspectModel{ctx: ctx, ed: ed, output: output, height: 12}
	m.reload()
	return m
}

// reload refreshes the node list after a mutation.
func (m *inspectModel) reload() {
	m.nodes = m.ed.Graph().Nodes()
	if m.cursor >= len(m.nodes) {
		m.cursor = max(len(m.nodes)-1, 0)
	}
}

func (m inspectModel) Init() tea.Cmd {
	return nil
}

func (m inspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.nodes)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "d":
			if len(m.nodes) == 0 {
				return m, nil
			}
			id := m.nodes[m.cursor].ID
			if _, err := m.ed.RemoveNode(m.ctx, id); err != nil {
				m.status = "cannot remove: " + errs.UserMessage(err)
			} else {
				m.status = "removed node " + id
				m.reload()
			}
		case "w":
			m.status = m.save()
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-14, 5)
	}
	return m, nil
}

func (m *inspectModel) save() string {
	snap, err := m.ed.Snapshot()
	if err == nil {
		err = os.WriteFile(m.output, snap, 0644)
	}
	if err != nil {
		return "save failed: " + err.Error()
	}
	m.saved = true
	return "saved " + m.output
}

func (m inspectModel) View() string {
	var b strings.Builder

	st := m.ed.State()
	b.WriteString(StyleTitle.Render("Skill Pipeline"))
	b.WriteString("  ")
	b.WriteString(stateStyles[st].Render(string(st)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  d remove  w save  q quit"))
	b.WriteString("\n\n")

	b.WriteString(m.nodeTable())
	b.WriteString("\n")

	if len(m.nodes) > 0 {
		b.WriteString(m.details(m.nodes[m.cursor]))
		b.WriteString("\n")
	}

	if r := m.ed.Result(); r.OK() {
		b.WriteString(StyleSuccess.Render(iconSuccess + " ready to commit"))
	} else {
		b.WriteString(StyleWarning.Render(iconWarning + " " + r.Message))
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(listDimStyle.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

func (m inspectModel) nodeTable() string {
	g := m.ed.Graph()
	end := min(m.offset+m.height, len(m.nodes))

	rows := [][]string{}
	for i := m.offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		configured := iconSuccess
		if !n.Configured && !n.IsSource() {
			configured = "—"
		}
		rows = append(rows, []string{
			cursor, n.ID, n.Name, kindLabel(n.Kind, n.SubKind), configured,
			fmt.Sprintf("%d/%d", g.InDegree(n.ID), g.OutDegree(n.ID)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Kind", "Set", "In/Out").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.offset+row == m.cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// details describes the selected node: its wire name, neighbours and
// configuration fields.
func (m inspectModel) details(n skill.Node) string {
	g := m.ed.Graph()
	var b strings.Builder

	b.WriteString(StyleHighlight.Render(n.Name))
	if n.Ref != nil {
		b.WriteString(" " + listDimStyle.Render(n.Ref.WireName()))
	}
	b.WriteString("\n")
	if parents := g.Parents(n.ID); len(parents) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("from"), strings.Join(parents, ", "))
	}
	if children := g.Children(n.ID); len(children) > 0 {
		fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render("to  "), strings.Join(children, ", "))
	}
	for _, kv := range configFields(n.Config) {
		fmt.Fprintf(&b, "  %s %s\n", listDimStyle.Render(kv[0]), StyleValue.Render(kv[1]))
	}
	return b.String()
}

// configFields lists the non-empty settings of c in name order.
func configFields(c skill.Configuration) [][2]string {
	var fields map[string]any
	switch cfg := c.(type) {
	case nil:
		return nil
	case skill.SourceConfig:
		fields = map[string]any{"ip": cfg.IP, "fps": cfg.FPS, "device": cfg.DeviceName}
	case skill.ModelConfig:
		fields = map[string]any{
			"model":      cfg.Model.Name,
			"confidence": fmt.Sprintf("%d-%d", cfg.ConfidenceLower, cfg.ConfidenceUpper),
			"capture":    string(cfg.CaptureData),
		}
		if cfg.MaxImages > 0 {
			fields["max_images"] = cfg.MaxImages
		}
	case skill.FilterConfig:
		fields = map[string]any{"labels": strings.Join(cfg.Labels, ","), "threshold": cfg.ConfidenceThreshold}
	case skill.GrpcConfig:
		fields = map[string]any{"type": cfg.Type, "endpoint": cfg.EndpointURL, "container": cfg.ContainerName}
	case skill.SnippetConfig:
		fields = map[string]any{"prefix": cfg.FilenamePrefix, "duration": cfg.RecordingDuration, "delay": cfg.DelayBuffer}
	case skill.IoTHubConfig:
		fields = map[string]any{"delay": cfg.DelayBuffer}
	case skill.IoTEdgeConfig:
		fields = map[string]any{"module": cfg.ModuleName, "input": cfg.ModuleInput, "delay": cfg.DelayBuffer}
	case skill.HTTPConfig:
		fields = map[string]any{"url": cfg.URL}
	case skill.MQTTConfig:
		fields = map[string]any{"broker": cfg.BrokerAddress, "delay": cfg.DelayBuffer}
	}

	out := make([][2]string, 0, len(fields))
	for k, v := range fields {
		if s := fmt.Sprint(v); s != "" {
			out = append(out, [2]string{k, s})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
