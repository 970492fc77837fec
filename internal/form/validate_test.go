package form

import (
	"testing"

	"github.com/pmdash/pmdash/internal/model"
)

func floatPtr(f float64) *float64 { return &f }

func TestValidateClient(t *testing.T) {
	cases := []struct {
		name       string
		in         model.CreateClientInput
		wantFields []string
	}{
		{"valid minimal", model.CreateClientInput{Name: "Acme"}, nil},
		{"valid with email", model.CreateClientInput{Name: "Acme", Email: "billing@acme.test"}, nil},
		{"missing name", model.CreateClientInput{Email: "billing@acme.test"}, []string{"name"}},
		{"whitespace name", model.CreateClientInput{Name: "   "}, []string{"name"}},
		{"bad email", model.CreateClientInput{Name: "Acme", Email: "not-an-email"}, []string{"email"}},
		{"empty email allowed", model.CreateClientInput{Name: "Acme", Email: ""}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkErrors(t, ValidateClient(tc.in), tc.wantFields)
		})
	}
}

func TestValidateProject(t *testing.T) {
	cases := []struct {
		name       string
		in         model.CreateProjectInput
		wantFields []string
	}{
		{
			"valid",
			model.CreateProjectInput{ClientID: "c1", Title: "Site redesign", StartDate: "2026-01-10", DueDate: "2026-03-01", Price: floatPtr(4_500), Status: model.StatusActive},
			nil,
		},
		{"missing client and title", model.CreateProjectInput{}, []string{"client_id", "title"}},
		{"bad start date", model.CreateProjectInput{ClientID: "c1", Title: "T", StartDate: "10/01/2026"}, []string{"start_date"}},
		{"due before start", model.CreateProjectInput{ClientID: "c1", Title: "T", StartDate: "2026-03-01", DueDate: "2026-01-10"}, []string{"due_date"}},
		{"due equals start ok", model.CreateProjectInput{ClientID: "c1", Title: "T", StartDate: "2026-03-01", DueDate: "2026-03-01"}, nil},
		{"negative price", model.CreateProjectInput{ClientID: "c1", Title: "T", Price: floatPtr(-1)}, []string{"price"}},
		{"zero price ok", model.CreateProjectInput{ClientID: "c1", Title: "T", Price: floatPtr(0)}, nil},
		{"unknown status", model.CreateProjectInput{ClientID: "c1", Title: "T", Status: "archived"}, []string{"status"}},
		{"empty status defaults", model.CreateProjectInput{ClientID: "c1", Title: "T"}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkErrors(t, ValidateProject(tc.in), tc.wantFields)
		})
	}
}

func TestValidatePhase(t *testing.T) {
	cases := []struct {
		name       string
		in         model.CreatePhaseInput
		wantFields []string
	}{
		{"valid", model.CreatePhaseInput{Title: "Discovery", StartDate: "2026-01-01", EndDate: "2026-01-15", Amount: 1_000}, nil},
		{"dates required", model.CreatePhaseInput{Title: "Discovery"}, []string{"start_date", "end_date"}},
		{"end before start", model.CreatePhaseInput{Title: "D", StartDate: "2026-02-01", EndDate: "2026-01-01"}, []string{"end_date"}},
		{"zero amount ok", model.CreatePhaseInput{Title: "D", StartDate: "2026-01-01", EndDate: "2026-01-01"}, nil},
		{"negative amount", model.CreatePhaseInput{Title: "D", StartDate: "2026-01-01", EndDate: "2026-01-02", Amount: -5}, []string{"amount"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkErrors(t, ValidatePhase(tc.in), tc.wantFields)
		})
	}
}

func TestValidatePayment(t *testing.T) {
	cases := []struct {
		name       string
		in         model.CreatePaymentInput
		wantFields []string
	}{
		{"valid", model.CreatePaymentInput{ProjectID: "p1", Amount: 250, PaymentDate: "2026-02-02", PaymentMethod: model.MethodBankTransfer}, nil},
		{"empty date allowed", model.CreatePaymentInput{ProjectID: "p1", Amount: 250, PaymentMethod: model.MethodCash}, nil},
		{"zero amount", model.CreatePaymentInput{ProjectID: "p1", PaymentMethod: model.MethodCash}, []string{"amount"}},
		{"missing project", model.CreatePaymentInput{Amount: 10, PaymentMethod: model.MethodCash}, []string{"project_id"}},
		{"unknown method", model.CreatePaymentInput{ProjectID: "p1", Amount: 10, PaymentMethod: "barter"}, []string{"payment_method"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkErrors(t, ValidatePayment(tc.in), tc.wantFields)
		})
	}
}

func TestValidateExpense(t *testing.T) {
	cases := []struct {
		name       string
		in         model.CreateExpenseInput
		wantFields []string
	}{
		{"valid", model.CreateExpenseInput{Title: "Hosting", Amount: 29, ExpenseDate: "2026-02-02", Type: model.ExpenseOperational}, nil},
		{"empty date allowed", model.CreateExpenseInput{Title: "Hosting", Amount: 29, Type: model.ExpenseDirect}, nil},
		{"missing title and amount", model.CreateExpenseInput{Type: model.ExpenseDirect}, []string{"title", "amount"}},
		{"bad date", model.CreateExpenseInput{Title: "H", Amount: 1, ExpenseDate: "yesterday", Type: model.ExpenseDirect}, []string{"expense_date"}},
		{"unknown type", model.CreateExpenseInput{Title: "H", Amount: 1, Type: "capital"}, []string{"type"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			checkErrors(t, ValidateExpense(tc.in), tc.wantFields)
		})
	}
}

func TestValidEmail(t *testing.T) {
	for email, want := range map[string]bool{
		"user@example.com":     true,
		"first.last@sub.co.uk": true,
		"no-at-sign":           false,
		"two@@example.com":     false,
		"spaces in@host.com":   false,
		"":                     false,
	} {
		if got := ValidEmail(email); got != want {
			t.Fatalf("ValidEmail(%q) = %v, want %v", email, got, want)
		}
	}
}

func TestValidDate(t *testing.T) {
	for date, want := range map[string]bool{
		"2026-02-28": true,
		"2026-02-30": false,
		"02/28/2026": false,
		"":           false,
	} {
		if got := ValidDate(date); got != want {
			t.Fatalf("ValidDate(%q) = %v, want %v", date, got, want)
		}
	}
}

func TestErrorsError_SortedAndJoined(t *testing.T) {
	errs := Errors{"title": "Title is required", "amount": "Amount must be greater than zero"}
	want := "amount: Amount must be greater than zero; title: Title is required"
	if got := errs.Error(); got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
	if errs.Valid() {
		t.Fatal("Valid() = true for non-empty Errors")
	}
	if !(Errors{}).Valid() {
		t.Fatal("Valid() = false for empty Errors")
	}
}

func checkErrors(t *testing.T, errs Errors, wantFields []string) {
	t.Helper()
	if len(wantFields) == 0 {
		if !errs.Valid() {
			t.Fatalf("unexpected validation errors: %v", errs)
		}
		return
	}
	if len(errs) != len(wantFields) {
		t.Fatalf("got %d errors (%v), want fields %v", len(errs), errs, wantFields)
	}
	for _, f := range wantFields {
		if _, ok := errs[f]; !ok {
			t.Fatalf("missing error for field %q; got %v", f, errs)
		}
	}
}
