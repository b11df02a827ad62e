package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/skillgraph/pkg/editor"
	"github.com/matzehuels/skillgraph/pkg/skill"
)

// Palette
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorPurple = lipgloss.Color("141")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	// StyleHighlight for node names and ids.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)
	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	// StyleWarning for warnings and validation failures.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleKey     = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// kindStyles colours nodes by kind, following the flow from source to export.
var kindStyles = map[skill.Kind]lipgloss.Style{
	skill.KindSource:    lipgloss.NewStyle().Foreground(colorGray),
	skill.KindModel:     lipgloss.NewStyle().Foreground(colorPurple),
	skill.KindTransform: lipgloss.NewStyle().Foreground(colorBlue),
	skill.KindExport:    lipgloss.NewStyle().Foreground(colorGreen),
}

// stateStyles colours editor states.
var stateStyles = map[editor.State]lipgloss.Style{
	editor.StateEmpty:   lipgloss.NewStyle().Foreground(colorGray),
	editor.StatePartial: lipgloss.NewStyle().Foreground(colorYellow),
	editor.StateValid:   lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
}

// kindLabel renders "kind" or "kind/subKind" in the kind's colour.
func kindLabel(kind skill.Kind, sub skill.SubKind) string {
	label := string(kind)
	if sub != skill.SubKindNone {
		label += "/" + string(sub)
	}
	return kindStyles[kind].Render(label)
}

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(StyleSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(StyleWarning.Render(iconWarning + " " + fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output file.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the size of a graph and whether its layout came from
// the cache.
func printStats(nodeCount, edgeCount int, layoutCached bool) {
	fmt.Println("  " + statsLine(nodeCount, edgeCount, layoutCached))
}

func statsLine(nodeCount, edgeCount int, layoutCached bool) string {
	parts := []string{
		plural(nodeCount, "node"),
		plural(edgeCount, "edge"),
	}
	if layoutCached {
		parts = append(parts, StyleSuccess.Render("layout cached"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return StyleDim.Render("1 " + noun)
	}
	return StyleDim.Render(fmt.Sprintf("%d %ss", n, noun))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
