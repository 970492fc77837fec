// Package form provides client-side validation for entity inputs.
// Validation is a UX optimization only; the server remains authoritative
// and its rejections surface as form-level errors.
package form

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pmdash/pmdash/internal/model"
)

const dateLayout = "2006-01-02"

// Errors maps field names to validation messages. An empty map passes.
type Errors map[string]string

// Valid reports whether no field failed.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Error joins the field messages so Errors can travel as an error value.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(e[f])
	}
	return b.String()
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidDate reports whether s is a YYYY-MM-DD date.
func ValidDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

// dateBefore reports whether a <= b. Both must already be valid dates.
func dateOrdered(a, b string) bool {
	ta, _ := time.Parse(dateLayout, a)
	tb, _ := time.Parse(dateLayout, b)
	return !tb.Before(ta)
}

// ValidateClient checks a client input. Name is required; email is only
// checked when present.
func ValidateClient(in model.CreateClientInput) Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name is required"
	}
	if in.Email != "" && !ValidEmail(in.Email) {
		errs["email"] = "Invalid email address"
	}
	return errs
}

// ValidateProject checks a project input, including the date-ordering
// rule when both dates are present.
func ValidateProject(in model.CreateProjectInput) Errors {
	errs := Errors{}
	if in.ClientID == "" {
		errs["client_id"] = "Client is required"
	}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}
	if in.StartDate != "" && !ValidDate(in.StartDate) {
		errs["start_date"] = "Invalid date (use YYYY-MM-DD)"
	}
	if in.DueDate != "" && !ValidDate(in.DueDate) {
		errs["due_date"] = "Invalid date (use YYYY-MM-DD)"
	}
	if errs.Valid() && in.StartDate != "" && in.DueDate != "" && !dateOrdered(in.StartDate, in.DueDate) {
		errs["due_date"] = "Due date must be on or after start date"
	}
	if in.Price != nil && *in.Price < 0 {
		errs["price"] = "Price must be zero or more"
	}
	if in.Status != "" && !in.Status.Valid() {
		errs["status"] = "Unknown status"
	}
	return errs
}

// ValidatePhase checks a phase input. Both dates are required and must
// be ordered; amount may be zero but not negative.
func ValidatePhase(in model.CreatePhaseInput) Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}
	if in.StartDate == "" {
		errs["start_date"] = "Start date is required"
	} else if !ValidDate(in.StartDate) {
		errs["start_date"] = "Invalid date (use YYYY-MM-DD)"
	}
	if in.EndDate == "" {
		errs["end_date"] = "End date is required"
	} else if !ValidDate(in.EndDate) {
		errs["end_date"] = "Invalid date (use YYYY-MM-DD)"
	}
	if _, ok := errs["start_date"]; !ok {
		if _, ok := errs["end_date"]; !ok && !dateOrdered(in.StartDate, in.EndDate) {
			errs["end_date"] = "End date must be on or after start date"
		}
	}
	if in.Amount < 0 {
		errs["amount"] = "Amount must be zero or more"
	}
	return errs
}

// ValidatePayment checks a payment input. An empty date is allowed; the
// server defaults it to the submission day.
func ValidatePayment(in model.CreatePaymentInput) Errors {
	errs := Errors{}
	if in.ProjectID == "" {
		errs["project_id"] = "Project is required"
	}
	if in.Amount <= 0 {
		errs["amount"] = "Amount must be greater than zero"
	}
	if in.PaymentDate != "" && !ValidDate(in.PaymentDate) {
		errs["payment_date"] = "Invalid date (use YYYY-MM-DD)"
	}
	if !in.PaymentMethod.Valid() {
		errs["payment_method"] = "Unknown payment method"
	}
	return errs
}

// ValidateExpense checks an expense input. An empty date is allowed; the
// server defaults it to the submission day.
func ValidateExpense(in model.CreateExpenseInput) Errors {
	errs := Errors{}
	if strings.TrimSpace(in.Title) == "" {
		errs["title"] = "Title is required"
	}
	if in.Amount <= 0 {
		errs["amount"] = "Amount must be greater than zero"
	}
	if in.ExpenseDate != "" && !ValidDate(in.ExpenseDate) {
		errs["expense_date"] = "Invalid date (use YYYY-MM-DD)"
	}
	if !in.Type.Valid() {
		errs["type"] = "Unknown expense type"
	}
	return errs
}
