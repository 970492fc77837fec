package cli

import (
	"testing"

	"github.com/pmdash/pmdash/internal/model"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{999.999, "$1,000.00"},
		{1_000_000, "$1,000,000.00"},
		{-42.25, "-$42.25"},
		{0.1, "$0.10"},
	}
	for _, tc := range cases {
		if got := FormatMoney(tc.in); got != tc.want {
			t.Fatalf("FormatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1_000, "1,000"},
		{1_234_567, "1,234,567"},
		{-5_000, "-5,000"},
	}
	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "—"},
		{"2026-03-15T10:30:00Z", "2026-03-15"},
		{"2026-03-15", "2026-03-15"},
		{"2026-03-15 10:30:00", "2026-03-15"},
		{"short", "short"},
	}
	for _, tc := range cases {
		if got := FormatDate(tc.in); got != tc.want {
			t.Fatalf("FormatDate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPageFooter(t *testing.T) {
	got := FormatPageFooter(model.Pagination{Page: 2, Limit: 10, Total: 25})
	if got != "page 2/3 · 25 total" {
		t.Fatalf("FormatPageFooter = %q, want %q", got, "page 2/3 · 25 total")
	}

	got = FormatPageFooter(model.Pagination{Total: 7})
	if got != "7 total" {
		t.Fatalf("FormatPageFooter without limit = %q, want %q", got, "7 total")
	}
}

func TestStatusLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"on_hold", "On Hold"},
		{"active", "Active"},
		{"bank_transfer", "Bank Transfer"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := StatusLabel(tc.in); got != tc.want {
			t.Fatalf("StatusLabel(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"a longer string", 8, "a longe…"},
		{"héllo wörld", 6, "héllo…"},
		{"ab", 1, "a"},
	}
	for _, tc := range cases {
		if got := Truncate(tc.in, tc.max); got != tc.want {
			t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.max, got, tc.want)
		}
	}
}

func TestDash(t *testing.T) {
	if got := Dash(""); got != "—" {
		t.Fatalf("Dash(\"\") = %q, want em dash", got)
	}
	if got := Dash("x"); got != "x" {
		t.Fatalf("Dash(\"x\") = %q, want \"x\"", got)
	}
}
