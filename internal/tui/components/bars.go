package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/tui/theme"
)

// BarRow is one labeled entry in a horizontal bar list.
type BarRow struct {
	Label string
	Value float64
	Text  string // formatted value shown after the label
	Color lipgloss.Color
}

// HBarList renders rows as horizontal bars scaled to the largest value.
// width is the full usable width; labels and values are left-aligned in
// fixed columns so the bars line up.
func HBarList(rows []BarRow, width int) string {
	if len(rows) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 0
	textW := 0
	maxVal := 0.0
	for _, r := range rows {
		if len(r.Label) > labelW {
			labelW = len(r.Label)
		}
		if lipgloss.Width(r.Text) > textW {
			textW = lipgloss.Width(r.Text)
		}
		if r.Value > maxVal {
			maxVal = r.Value
		}
	}

	barMax := width - labelW - textW - 2
	if barMax < 1 {
		barMax = 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder
	for _, r := range rows {
		barLen := 0
		if maxVal > 0 {
			barLen = int(r.Value / maxVal * float64(barMax))
		}
		if r.Value > 0 && barLen == 0 {
			barLen = 1
		}
		color := r.Color
		if color == "" {
			color = t.Accent
		}
		bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", barLen))
		fmt.Fprintf(&b, "%s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-*s", labelW, r.Label)),
			textStyle.Render(fmt.Sprintf("%*s", textW, r.Text)),
			bar)
	}
	return b.String()
}

// ProgressBar renders a fraction as a filled bar of the given width.
func ProgressBar(fraction float64, width int) string {
	t := theme.Active
	if width < 1 {
		width = 1
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	filled := int(fraction * float64(width))
	if filled > width {
		filled = width
	}

	fillStyle := lipgloss.NewStyle().Foreground(t.Accent)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	return fillStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}
