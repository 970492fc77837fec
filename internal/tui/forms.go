package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/form"
	"github.com/pmdash/pmdash/internal/model"
	"github.com/pmdash/pmdash/internal/tui/theme"
)

// formKind identifies which create modal is open.
type formKind int

const (
	formNone formKind = iota
	formClient
	formPayment
	formExpense
)

type loginValues struct {
	email    string
	password string
}

// formValues backs every create modal. Amounts are edited as strings
// and parsed on submit.
type formValues struct {
	// client
	clientName  string
	clientEmail string
	clientPhone string
	clientNotes string

	// payment
	payProjectID string
	payAmount    string
	payDate      string
	payMethod    string
	payNotes     string

	// expense
	expAmount string
	expDate   string
	expTitle  string
	expDesc   string
	expType   string
}

// projectRefsMsg delivers the short list used by the payment form's
// project dropdown.
type projectRefsMsg struct {
	refs []model.ProjectRef
	err  error
}

func formWidth(termWidth int) int {
	w := termWidth - 8
	if w > 64 {
		w = 64
	}
	if w < 40 {
		w = 40
	}
	return w
}

func notEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validAmount(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("enter a number")
	}
	if v <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func optionalDate(s string) error {
	if s == "" {
		return nil
	}
	if !form.ValidDate(s) {
		return fmt.Errorf("use YYYY-MM-DD")
	}
	return nil
}

// ─── Login ──────────────────────────────────────────────────────

func (a App) startLogin() (App, tea.Cmd) {
	a.loginVals = &loginValues{}
	a.loginForm = huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Email").
			Validate(func(s string) error {
				if !form.ValidEmail(s) {
					return fmt.Errorf("invalid email address")
				}
				return nil
			}).
			Value(&a.loginVals.email),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Validate(notEmpty("password")).
			Value(&a.loginVals.password),
	))
	if a.width > 0 {
		a.loginForm = a.loginForm.WithWidth(formWidth(a.width))
	}
	return a, a.loginForm.Init()
}

func (a App) updateLoginForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f, cmd := a.loginForm.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		a.loginForm = hf
	}

	if a.loginForm.State == huh.StateCompleted {
		email := a.loginVals.email
		password := a.loginVals.password
		a.loginForm = nil
		return a, loginCmd(a.sess, a.cache.API, email, password)
	}
	if a.loginForm.State == huh.StateAborted {
		return a, tea.Quit
	}
	return a, cmd
}

func (a App) viewLogin() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ pmdash"))
	b.WriteString(subStyle.Render(" · Sign in"))
	b.WriteString("\n\n")
	if a.authErr != "" {
		b.WriteString(errStyle.Render(a.authErr))
		b.WriteString("\n\n")
	}
	if a.loginForm != nil {
		b.WriteString(a.loginForm.View())
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subStyle.Render(" Signing in..."))
	}

	card := cardStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Create modals ──────────────────────────────────────────────

// startCreate opens the create form for the active tab. The payment
// form needs the project dropdown options first.
func (a App) startCreate(s slot) (tea.Model, tea.Cmd) {
	switch s {
	case slotClients:
		a.formVals = &formValues{}
		a.modalKind = formClient
		a.modal = a.newClientForm()
		return a, a.modal.Init()

	case slotExpenses:
		a.formVals = &formValues{expType: string(model.ExpenseOperational)}
		a.modalKind = formExpense
		a.modal = a.newExpenseForm()
		return a, a.modal.Init()

	case slotPayments:
		cache := a.cache
		return a, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			refs, err := cache.ProjectsShortList(ctx)
			return projectRefsMsg{refs: refs, err: err}
		}
	}
	return a, nil
}

// openPaymentForm builds the payment modal once project refs arrived.
func (a App) openPaymentForm(refs []model.ProjectRef) (App, tea.Cmd) {
	a.formVals = &formValues{payMethod: string(model.MethodBankTransfer)}
	a.modalKind = formPayment
	a.modal = a.newPaymentForm(refs)
	return a, a.modal.Init()
}

func (a App) newClientForm() *huh.Form {
	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Name").
			Validate(notEmpty("name")).
			Value(&a.formVals.clientName),
		huh.NewInput().
			Title("Email").
			Validate(func(s string) error {
				if s != "" && !form.ValidEmail(s) {
					return fmt.Errorf("invalid email address")
				}
				return nil
			}).
			Value(&a.formVals.clientEmail),
		huh.NewInput().
			Title("Phone").
			Value(&a.formVals.clientPhone),
		huh.NewInput().
			Title("Notes").
			Value(&a.formVals.clientNotes),
	))
	if a.width > 0 {
		f = f.WithWidth(formWidth(a.width))
	}
	return f
}

func (a App) newPaymentForm(refs []model.ProjectRef) *huh.Form {
	opts := make([]huh.Option[string], 0, len(refs))
	for _, r := range refs {
		opts = append(opts, huh.NewOption(r.Title, r.ID))
	}

	methodOpts := make([]huh.Option[string], 0, len(model.PaymentMethods))
	for _, m := range model.PaymentMethods {
		methodOpts = append(methodOpts, huh.NewOption(string(m), string(m)))
	}

	f := huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title("Project").
			Options(opts...).
			Value(&a.formVals.payProjectID),
		huh.NewInput().
			Title("Amount").
			Validate(validAmount).
			Value(&a.formVals.payAmount),
		huh.NewInput().
			Title("Date (YYYY-MM-DD, blank = today)").
			Validate(optionalDate).
			Value(&a.formVals.payDate),
		huh.NewSelect[string]().
			Title("Method").
			Options(methodOpts...).
			Value(&a.formVals.payMethod),
		huh.NewInput().
			Title("Notes").
			Value(&a.formVals.payNotes),
	))
	if a.width > 0 {
		f = f.WithWidth(formWidth(a.width))
	}
	return f
}

func (a App) newExpenseForm() *huh.Form {
	typeOpts := make([]huh.Option[string], 0, len(model.ExpenseTypes))
	for _, et := range model.ExpenseTypes {
		typeOpts = append(typeOpts, huh.NewOption(string(et), string(et)))
	}

	f := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Title").
			Validate(notEmpty("title")).
			Value(&a.formVals.expTitle),
		huh.NewInput().
			Title("Amount").
			Validate(validAmount).
			Value(&a.formVals.expAmount),
		huh.NewInput().
			Title("Date (YYYY-MM-DD, blank = today)").
			Validate(optionalDate).
			Value(&a.formVals.expDate),
		huh.NewSelect[string]().
			Title("Type").
			Options(typeOpts...).
			Value(&a.formVals.expType),
		huh.NewInput().
			Title("Description").
			Value(&a.formVals.expDesc),
	))
	if a.width > 0 {
		f = f.WithWidth(formWidth(a.width))
	}
	return f
}

func (a App) updateModalForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f, cmd := a.modal.Update(msg)
	if hf, ok := f.(*huh.Form); ok {
		a.modal = hf
	}

	if a.modal.State == huh.StateCompleted {
		kind := a.modalKind
		a.modal = nil
		a.modalKind = formNone
		return a, a.submitForm(kind)
	}
	if a.modal.State == huh.StateAborted {
		a.modal = nil
		a.modalKind = formNone
		return a, nil
	}
	return a, cmd
}

// submitForm turns the collected values into a cache mutation. Field
// validators already ran; the form-level validation is the last gate
// before the write goes out.
func (a App) submitForm(kind formKind) tea.Cmd {
	cache := a.cache
	v := *a.formVals

	switch kind {
	case formClient:
		in := model.CreateClientInput{
			Name:  strings.TrimSpace(v.clientName),
			Email: strings.TrimSpace(v.clientEmail),
			Phone: strings.TrimSpace(v.clientPhone),
			Notes: strings.TrimSpace(v.clientNotes),
		}
		if errs := form.ValidateClient(in); !errs.Valid() {
			return func() tea.Msg { return mutationMsg{err: errs} }
		}
		return mutateCmd(func(ctx context.Context) error {
			_, err := cache.CreateClient(ctx, in)
			return err
		})

	case formPayment:
		amount, _ := strconv.ParseFloat(strings.TrimSpace(v.payAmount), 64)
		in := model.CreatePaymentInput{
			ProjectID:     v.payProjectID,
			Amount:        amount,
			PaymentDate:   strings.TrimSpace(v.payDate),
			PaymentMethod: model.PaymentMethod(v.payMethod),
			Notes:         strings.TrimSpace(v.payNotes),
		}
		if errs := form.ValidatePayment(in); !errs.Valid() {
			return func() tea.Msg { return mutationMsg{err: errs} }
		}
		return mutateCmd(func(ctx context.Context) error {
			_, err := cache.CreatePayment(ctx, in)
			return err
		})

	case formExpense:
		amount, _ := strconv.ParseFloat(strings.TrimSpace(v.expAmount), 64)
		in := model.CreateExpenseInput{
			Amount:      amount,
			ExpenseDate: strings.TrimSpace(v.expDate),
			Title:       strings.TrimSpace(v.expTitle),
			Description: strings.TrimSpace(v.expDesc),
			Type:        model.ExpenseType(v.expType),
		}
		if errs := form.ValidateExpense(in); !errs.Valid() {
			return func() tea.Msg { return mutationMsg{err: errs} }
		}
		return mutateCmd(func(ctx context.Context) error {
			_, err := cache.CreateExpense(ctx, in)
			return err
		})
	}
	return nil
}

func (a App) viewModal() string {
	t := theme.Active

	titles := map[formKind]string{
		formClient:  "New Client",
		formPayment: "New Payment",
		formExpense: "New Expense",
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render(titles[a.modalKind]))
	b.WriteString("\n\n")
	b.WriteString(a.modal.View())
	b.WriteString("\n")
	b.WriteString(hintStyle.Render("Esc to cancel"))

	card := cardStyle.Render(b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}
