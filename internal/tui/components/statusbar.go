package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar: key hints on the left,
// signed-in account and sync state on the right.
func RenderStatusBar(width int, user string, syncing bool, lastErr string) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Width(width)

	left := " [?]help  [r]efresh  [q]uit"

	right := ""
	if lastErr != "" {
		errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		right = errStyle.Render("! "+lastErr) + " "
	} else if syncing {
		right = "syncing… "
	}
	if user != "" {
		right += fmt.Sprintf("%s ", user)
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
