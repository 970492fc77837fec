package model

import "testing"

func TestPaginationTotalPages(t *testing.T) {
	cases := []struct {
		name string
		p    Pagination
		want int
	}{
		{"exact multiple", Pagination{Limit: 10, Total: 30}, 3},
		{"partial last page", Pagination{Limit: 10, Total: 31}, 4},
		{"single page", Pagination{Limit: 10, Total: 3}, 1},
		{"empty listing", Pagination{Limit: 10, Total: 0}, 0},
		{"limit unset", Pagination{Total: 40}, 0},
	}
	for _, tc := range cases {
		if got := tc.p.TotalPages(); got != tc.want {
			t.Fatalf("%s: TotalPages() = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestEnumValidity(t *testing.T) {
	for _, s := range ProjectStatuses {
		if !s.Valid() {
			t.Fatalf("ProjectStatus %q not valid", s)
		}
	}
	if ProjectStatus("archived").Valid() {
		t.Fatal("unknown project status reported valid")
	}

	for _, m := range PaymentMethods {
		if !m.Valid() {
			t.Fatalf("PaymentMethod %q not valid", m)
		}
	}
	if PaymentMethod("barter").Valid() {
		t.Fatal("unknown payment method reported valid")
	}

	for _, e := range ExpenseTypes {
		if !e.Valid() {
			t.Fatalf("ExpenseType %q not valid", e)
		}
	}
	if ExpenseType("capital").Valid() {
		t.Fatal("unknown expense type reported valid")
	}
}
