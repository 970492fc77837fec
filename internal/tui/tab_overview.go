package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmdash/pmdash/internal/cli"
	"github.com/pmdash/pmdash/internal/model"
	"github.com/pmdash/pmdash/internal/tui/components"
	"github.com/pmdash/pmdash/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	if a.stats == nil {
		return a.renderTabLoading("Loading dashboard", cw)
	}
	stats := a.stats
	ov := stats.Overview
	fin := stats.Financial

	var b strings.Builder

	// Row 1: headline metric cards
	cards := []struct{ Label, Value, Sub string }{
		{"Clients", cli.FormatNumber(int64(ov.TotalClients)), ""},
		{"Projects", cli.FormatNumber(int64(ov.TotalProjects)),
			cli.FormatMoney(ov.TotalProjectValue) + " total value"},
		{"Received", cli.FormatMoney(ov.TotalPaymentsReceived),
			fmt.Sprintf("%d payments", ov.TotalPaymentsCount)},
		{"Net Profit", cli.FormatMoney(fin.NetProfit),
			cli.FormatPercent(fin.ProfitMargin.Percent) + " margin"},
	}
	b.WriteString(components.MetricCardRow(cards, cw))
	b.WriteString("\n")

	// Row 2: projects by status + expense split
	halves := components.LayoutRow(cw, 2)

	statusCard := components.ContentCard("Projects by Status",
		a.renderStatusBars(components.CardInnerWidth(halves[0])), halves[0])

	expenseCard := components.ContentCard("Expenses",
		a.renderExpenseBars(components.CardInnerWidth(halves[1])), halves[1])

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Projects by Status",
			a.renderStatusBars(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Expenses",
			a.renderExpenseBars(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
	} else {
		b.WriteString(components.CardRow([]string{statusCard, expenseCard}))
		b.WriteString("\n")
	}

	// Row 3: financial breakdown
	b.WriteString(components.ContentCard("Financial", a.renderFinancialBody(), cw))

	return b.String()
}

// renderStatusBars renders the projects-by-status breakdown as bars in
// the enum's display order, with unknown statuses appended.
func (a App) renderStatusBars(width int) string {
	t := theme.Active
	byStatus := a.stats.ProjectsByStatus
	if len(byStatus) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("No projects yet")
	}

	statusColor := map[model.ProjectStatus]lipgloss.Color{
		model.StatusDraft:     t.TextDim,
		model.StatusActive:    t.Green,
		model.StatusOnHold:    t.Yellow,
		model.StatusCancelled: t.Red,
		model.StatusCompleted: t.Blue,
	}

	var rows []components.BarRow
	seen := make(map[string]bool, len(byStatus))
	for _, s := range model.ProjectStatuses {
		if n, ok := byStatus[string(s)]; ok {
			rows = append(rows, components.BarRow{
				Label: cli.StatusLabel(string(s)),
				Value: float64(n),
				Text:  cli.FormatNumber(int64(n)),
				Color: statusColor[s],
			})
			seen[string(s)] = true
		}
	}
	rest := make([]string, 0)
	for s := range byStatus {
		if !seen[s] {
			rest = append(rest, s)
		}
	}
	sort.Strings(rest)
	for _, s := range rest {
		rows = append(rows, components.BarRow{
			Label: cli.StatusLabel(s),
			Value: float64(byStatus[s]),
			Text:  cli.FormatNumber(int64(byStatus[s])),
		})
	}

	return components.HBarList(rows, width)
}

func (a App) renderExpenseBars(width int) string {
	t := theme.Active
	es := a.stats.ExpensesSummary
	if es.Count == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Render("No expenses yet")
	}

	rows := []components.BarRow{
		{Label: "Direct", Value: es.ByType.Direct, Text: cli.FormatMoney(es.ByType.Direct), Color: t.Orange},
		{Label: "Operational", Value: es.ByType.Operational, Text: cli.FormatMoney(es.ByType.Operational), Color: t.Magenta},
	}

	body := components.HBarList(rows, width)
	totalStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	body += fmt.Sprintf("%s %s (%d records)",
		mutedStyle.Render("Total"),
		totalStyle.Render(cli.FormatMoney(es.Total)),
		es.Count)
	return body
}

func (a App) renderFinancialBody() string {
	t := theme.Active
	fin := a.stats.Financial

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	pctStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	profitStyle := lipgloss.NewStyle().Foreground(t.Green)
	if fin.NetProfit < 0 {
		profitStyle = lipgloss.NewStyle().Foreground(t.Red)
	}

	rows := []struct {
		label string
		value string
		pct   string
		style lipgloss.Style
	}{
		{"Revenue", cli.FormatMoney(fin.TotalRevenue), "", valueStyle},
		{"Direct expenses", cli.FormatMoney(fin.DirectExpenses), "", valueStyle},
		{"Gross profit", cli.FormatMoney(fin.GrossProfit), cli.FormatPercent(fin.GrossMargin.Percent), valueStyle},
		{"Operating income", cli.FormatMoney(fin.OperatingIncome), cli.FormatPercent(fin.OperatingMargin.Percent), valueStyle},
		{"Net profit", cli.FormatMoney(fin.NetProfit), cli.FormatPercent(fin.ProfitMargin.Percent), profitStyle},
	}

	var b strings.Builder
	for _, r := range rows {
		line := fmt.Sprintf("%s %s",
			labelStyle.Render(fmt.Sprintf("%-18s", r.label)),
			r.style.Render(fmt.Sprintf("%14s", r.value)))
		if r.pct != "" {
			line += " " + pctStyle.Render("("+r.pct+")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// renderTabLoading shows a spinner card while a tab's first fetch runs.
func (a App) renderTabLoading(label string, cw int) string {
	t := theme.Active
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	body := a.spinner.View() + " " + mutedStyle.Render(label+"...")
	return components.ContentCard("", body, cw)
}
