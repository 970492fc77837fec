package components

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/tui/theme"
)

func TestTabIdxByKey(t *testing.T) {
	cases := []struct {
		key  rune
		want int
	}{
		{'o', 0},
		{'c', 1},
		{'p', 2},
		{'a', 3},
		{'e', 4},
		{'z', -1},
	}
	for _, tc := range cases {
		if got := TabIdxByKey(tc.key); got != tc.want {
			t.Fatalf("TabIdxByKey(%q) = %d, want %d", tc.key, got, tc.want)
		}
	}
}

func TestTabShortcutLettersMatchKeyPos(t *testing.T) {
	for _, tab := range Tabs {
		if tab.KeyPos < 0 {
			continue
		}
		if tab.KeyPos >= len(tab.Name) {
			t.Fatalf("tab %q KeyPos %d out of range", tab.Name, tab.KeyPos)
		}
		letter := rune(tab.Name[tab.KeyPos])
		if letter != tab.Key && letter != tab.Key-('a'-'A') {
			t.Fatalf("tab %q: letter at KeyPos is %q, shortcut is %q", tab.Name, letter, tab.Key)
		}
	}
}

func TestRenderTabBarFillsWidth(t *testing.T) {
	theme.SetActive("flexoki-dark")

	bar := RenderTabBar(0, 120)
	if got := lipgloss.Width(bar); got != 120 {
		t.Fatalf("tab bar width = %d, want 120", got)
	}
}
