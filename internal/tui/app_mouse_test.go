package tui

import (
	"testing"

	"github.com/pmdash/pmdash/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := 0; active < len(components.Tabs); active++ {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w
			if i < len(components.Tabs)-1 {
				pos++ // separator
			}
		}
	}
}

func TestTabAtXOutsideBarIsMiss(t *testing.T) {
	a := App{activeTab: 0}
	total := 0
	for i, tab := range components.Tabs {
		total += components.TabVisualWidth(tab, i == 0)
		if i < len(components.Tabs)-1 {
			total++
		}
	}
	if got := a.tabAtX(total + 5); got != -1 {
		t.Fatalf("tabAtX beyond bar = %d, want -1", got)
	}
}
