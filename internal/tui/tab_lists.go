package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/cli"
	"github.com/pmdash/pmdash/internal/tui/components"
	"github.com/pmdash/pmdash/internal/tui/theme"
)

// listRow is one rendered row in a split list pane.
type listRow struct {
	line string
}

// renderSplitList renders a compact list on the left and the selected
// record's detail card on the right. In compact layouts only the list
// is shown.
func (a App) renderSplitList(s slot, title string, rows []listRow, detail, detailTitle string, cw, h int) string {
	t := theme.Active

	if len(rows) == 0 {
		empty := lipgloss.NewStyle().Foreground(t.TextMuted).Render("Nothing here yet — press n to add")
		return components.ContentCard(title, empty, cw)
	}

	p := a.pagination(s)
	footer := fmt.Sprintf("page %d/%d · %d total", p.Page, p.TotalPages(), p.Total)

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	compact := a.isCompactLayout()
	leftW := cw
	if !compact {
		leftW = cw * 2 / 5
		if leftW < 34 {
			leftW = 34
		}
	}
	leftInner := components.CardInnerWidth(leftW)

	visible := h - 5 // border + title + footer line
	if visible < 3 {
		visible = 3
	}

	cursor := a.cursors[s]
	offset := 0
	if cursor >= visible {
		offset = cursor - visible + 1
	}
	end := offset + visible
	if end > len(rows) {
		end = len(rows)
	}

	var body strings.Builder
	for i := offset; i < end; i++ {
		line := truncStr(rows[i].line, leftInner)
		if i == cursor {
			body.WriteString(selectedStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
		body.WriteString("\n")
	}
	body.WriteString(dimStyle.Render(footer))

	leftCard := components.ContentCard(title, body.String(), leftW)
	if compact {
		return leftCard
	}

	rightCard := components.ContentCard(detailTitle, detail, cw-leftW)
	return components.CardRow([]string{leftCard, rightCard})
}

// detailKV renders aligned label/value pairs for a detail pane.
func detailKV(pairs [][2]string) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	labelW := 0
	for _, p := range pairs {
		if len(p[0]) > labelW {
			labelW = len(p[0])
		}
	}

	var b strings.Builder
	for _, p := range pairs {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW+2, p[0])))
		b.WriteString(valueStyle.Render(p[1]))
		b.WriteString("\n")
	}
	return b.String()
}

// ─── Clients ────────────────────────────────────────────────────

func (a App) renderClientsTab(cw, h int) string {
	if a.clients == nil {
		return a.renderTabLoading("Loading clients", cw)
	}

	rows := make([]listRow, 0, len(a.clients.Clients))
	for _, c := range a.clients.Clients {
		rows = append(rows, listRow{line: c.Name})
	}

	detail := ""
	detailTitle := "Client"
	if n := len(a.clients.Clients); n > 0 && a.cursors[slotClients] < n {
		c := a.clients.Clients[a.cursors[slotClients]]
		detailTitle = "Client · " + truncStr(c.Name, 30)
		detail = detailKV([][2]string{
			{"Name", c.Name},
			{"Email", cli.Dash(c.Email)},
			{"Phone", cli.Dash(c.Phone)},
			{"Address", cli.Dash(c.Address)},
			{"Since", cli.FormatDate(c.CreatedAt)},
			{"Notes", cli.Dash(truncStr(c.Notes, 60))},
		})
	}

	return a.renderSplitList(slotClients, "Clients", rows, detail, detailTitle, cw, h)
}

// ─── Projects ───────────────────────────────────────────────────

func (a App) renderProjectsTab(cw, h int) string {
	if a.projects == nil {
		return a.renderTabLoading("Loading projects", cw)
	}

	rows := make([]listRow, 0, len(a.projects.Projects))
	for _, p := range a.projects.Projects {
		rows = append(rows, listRow{
			line: fmt.Sprintf("%-10s %s", cli.StatusLabel(string(p.Status)), p.Title),
		})
	}

	detail := ""
	detailTitle := "Project"
	if n := len(a.projects.Projects); n > 0 && a.cursors[slotProjects] < n {
		p := a.projects.Projects[a.cursors[slotProjects]]
		detailTitle = "Project · " + truncStr(p.Title, 30)

		price := "—"
		if p.Price != nil {
			price = cli.FormatMoney(*p.Price)
		}
		detail = detailKV([][2]string{
			{"Title", p.Title},
			{"Status", cli.StatusLabel(string(p.Status))},
			{"Price", price},
			{"Start", cli.FormatDate(p.StartDate)},
			{"Due", cli.FormatDate(p.DueDate)},
			{"Details", cli.Dash(truncStr(p.Details, 60))},
		})
	}

	return a.renderSplitList(slotProjects, "Projects", rows, detail, detailTitle, cw, h)
}

// ─── Payments ───────────────────────────────────────────────────

func (a App) renderPaymentsTab(cw, h int) string {
	if a.payments == nil {
		return a.renderTabLoading("Loading payments", cw)
	}

	rows := make([]listRow, 0, len(a.payments.Payments))
	for _, p := range a.payments.Payments {
		rows = append(rows, listRow{
			line: fmt.Sprintf("%-10s %12s", cli.FormatDate(p.PaymentDate), cli.FormatMoney(p.Amount)),
		})
	}

	detail := ""
	detailTitle := "Payment"
	if n := len(a.payments.Payments); n > 0 && a.cursors[slotPayments] < n {
		p := a.payments.Payments[a.cursors[slotPayments]]
		detail = detailKV([][2]string{
			{"Amount", cli.FormatMoney(p.Amount)},
			{"Date", cli.FormatDate(p.PaymentDate)},
			{"Method", cli.StatusLabel(string(p.PaymentMethod))},
			{"Project", p.ProjectID},
			{"Notes", cli.Dash(truncStr(p.Notes, 60))},
		})
	}

	return a.renderSplitList(slotPayments, "Payments", rows, detail, detailTitle, cw, h)
}

// ─── Expenses ───────────────────────────────────────────────────

func (a App) renderExpensesTab(cw, h int) string {
	if a.expenses == nil {
		return a.renderTabLoading("Loading expenses", cw)
	}

	rows := make([]listRow, 0, len(a.expenses.Expenses))
	for _, e := range a.expenses.Expenses {
		rows = append(rows, listRow{
			line: fmt.Sprintf("%-10s %12s  %s", cli.FormatDate(e.ExpenseDate),
				cli.FormatMoney(e.Amount), e.Title),
		})
	}

	detail := ""
	detailTitle := "Expense"
	if n := len(a.expenses.Expenses); n > 0 && a.cursors[slotExpenses] < n {
		e := a.expenses.Expenses[a.cursors[slotExpenses]]
		detailTitle = "Expense · " + truncStr(e.Title, 30)
		detail = detailKV([][2]string{
			{"Title", e.Title},
			{"Amount", cli.FormatMoney(e.Amount)},
			{"Date", cli.FormatDate(e.ExpenseDate)},
			{"Type", cli.StatusLabel(string(e.Type))},
			{"Description", cli.Dash(truncStr(e.Description, 60))},
		})
	}

	return a.renderSplitList(slotExpenses, "Expenses", rows, detail, detailTitle, cw, h)
}
