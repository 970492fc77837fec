package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/tui/theme"
)

// Tab is a single entry in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Clients", Key: 'c', KeyPos: 0},
	{Name: "Projects", Key: 'p', KeyPos: 0},
	{Name: "Payments", Key: 'a', KeyPos: 1},
	{Name: "Expenses", Key: 'e', KeyPos: 0},
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	dimStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Background(t.Surface)

	var parts []string
	for i, tab := range Tabs {
		var rendered string
		if i == activeIdx {
			rendered = activeStyle.Render(" " + tab.Name + " ")
		} else if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
			before := tab.Name[:tab.KeyPos]
			key := string(tab.Name[tab.KeyPos])
			after := tab.Name[tab.KeyPos+1:]
			rendered = inactiveStyle.Render(" "+before) +
				dimStyle.Render("[") + keyStyle.Render(key) + dimStyle.Render("]") +
				inactiveStyle.Render(after+" ")
		} else {
			rendered = inactiveStyle.Render(" "+tab.Name) +
				dimStyle.Render("[") + keyStyle.Render(string(tab.Key)) + dimStyle.Render("] ")
		}
		parts = append(parts, rendered)
	}

	row := strings.Join(parts, dimStyle.Render("│"))

	rowStyle := lipgloss.NewStyle().
		Background(t.Surface).
		Width(width)
	return rowStyle.Render(row)
}

// TabVisualWidth returns the rendered width of one tab. Mouse hitboxes in
// the app are derived from this, so it must match RenderTabBar exactly.
func TabVisualWidth(tab Tab, active bool) int {
	if active {
		return lipgloss.Width(" " + tab.Name + " ")
	}
	if tab.KeyPos >= 0 {
		// Brackets around the shortcut letter add two columns.
		return lipgloss.Width(" "+tab.Name+" ") + 2
	}
	// Key shown in brackets after the name.
	return lipgloss.Width(" " + tab.Name + "[" + string(tab.Key) + "] ")
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
