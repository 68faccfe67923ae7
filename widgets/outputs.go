package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// OutputStyle holds the colours and symbols for the output row
type OutputStyle struct {
	Active, Idle, Off          [3]uint8
	ActiveSym, IdleSym, OffSym rune
}

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderOutputs renders one cell per output: number, state symbol and
// voltage. Outputs at or beyond count are drawn as off.
func RenderOutputs(levels []float64, count, active int, st OutputStyle) string {
	cells := make([]string, 0, len(levels))
	for i, v := range levels {
		sym, color := st.OffSym, st.Off
		switch {
		case i == active && i < count:
			sym, color = st.ActiveSym, st.Active
		case i < count:
			sym, color = st.IdleSym, st.Idle
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
		cells = append(cells, style.Render(fmt.Sprintf("%d%c %4.1fV", i+1, sym, v)))
	}
	return strings.Join(cells, "  ")
}

// RenderMeter renders value/full as a bar of width cells
func RenderMeter(value, full float64, width int, color [3]uint8) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if full > 0 && value > 0 {
		filled = int(value/full*float64(width) + 0.5)
	}
	filled = min(filled, width)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color))).Render(bar)
}

// RenderChoices renders names with the current one marked
func RenderChoices(names []string, current int, mark, blank rune) string {
	parts := make([]string, len(names))
	for i, n := range names {
		m := blank
		if i == current {
			m = mark
		}
		parts[i] = fmt.Sprintf("%c%s", m, n)
	}
	return strings.Join(parts, " ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
