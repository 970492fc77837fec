package query

import (
	"strings"
	"testing"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/model"
)

func TestKeyString_UnitSeparatorJoin(t *testing.T) {
	k := NewKey("clients", "id/with/slashes", "payment-summary")
	got := k.String()
	want := "clients\x1fid/with/slashes\x1fpayment-summary"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if strings.Count(got, "\x1f") != 2 {
		t.Fatalf("separator count = %d, want 2", strings.Count(got, "\x1f"))
	}
}

func TestKeyHasPrefix(t *testing.T) {
	k := NewKey("projects", "p1", "phases", "ph2")

	cases := []struct {
		name   string
		prefix Key
		want   bool
	}{
		{"resource head", ProjectsKey(), true},
		{"detail", ProjectKey("p1"), true},
		{"sub-resource", PhasesKey("p1"), true},
		{"exact", NewKey("projects", "p1", "phases", "ph2"), true},
		{"empty prefix", Key{}, true},
		{"other resource", ClientsKey(), false},
		{"other id", ProjectKey("p2"), false},
		{"longer than key", NewKey("projects", "p1", "phases", "ph2", "extra"), false},
	}
	for _, tc := range cases {
		if got := k.HasPrefix(tc.prefix); got != tc.want {
			t.Fatalf("%s: HasPrefix(%v) = %v, want %v", tc.name, tc.prefix, got, tc.want)
		}
	}
}

func TestFoldFilter_StructurallyEqualOptionsShareKeys(t *testing.T) {
	a := ClientsListKey(api.ClientListOptions{Page: 2, Limit: 25, Query: "acme"})
	b := ClientsListKey(api.ClientListOptions{Page: 2, Limit: 25, Query: "acme"})
	if a.String() != b.String() {
		t.Fatalf("equal options fold to different keys: %q vs %q", a, b)
	}

	c := ClientsListKey(api.ClientListOptions{Page: 3, Limit: 25, Query: "acme"})
	if a.String() == c.String() {
		t.Fatalf("different pages fold to the same key: %q", a)
	}
}

func TestStatsKeysShareStatisticsPrefix(t *testing.T) {
	r := model.DateRange{FromDate: "2026-01-01", ToDate: "2026-06-30"}
	for _, k := range []Key{DashboardStatsKey(r), FinancialStatsKey(r), OverviewStatsKey()} {
		if !k.HasPrefix(StatisticsKey()) {
			t.Fatalf("key %v lacks statistics prefix", k)
		}
	}
}
