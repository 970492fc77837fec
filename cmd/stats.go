package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pmdash/pmdash/internal/cli"
	"github.com/pmdash/pmdash/internal/model"
	"github.com/pmdash/pmdash/internal/query"
)

var (
	flagStatsFrom string
	flagStatsTo   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the dashboard aggregate",
	RunE:  runStatsDashboard,
}

var statsFinancialCmd = &cobra.Command{
	Use:   "financial",
	Short: "Show the profit and margin breakdown",
	RunE:  runStatsFinancial,
}

var statsOverviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show the headline counters",
	RunE:  runStatsOverview,
}

func init() {
	statsCmd.PersistentFlags().StringVar(&flagStatsFrom, "from", "", "From date (YYYY-MM-DD)")
	statsCmd.PersistentFlags().StringVar(&flagStatsTo, "to", "", "To date (YYYY-MM-DD)")

	statsCmd.AddCommand(statsFinancialCmd, statsOverviewCmd)
	rootCmd.AddCommand(statsCmd)
}

func statsRange() model.DateRange {
	return model.DateRange{FromDate: flagStatsFrom, ToDate: flagStatsTo}
}

// runOverview backs the bare `pmdash` invocation: a compact snapshot of
// the business without drilling into any one resource.
func runOverview(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var stats *model.DashboardStats
	if flagOffline {
		stats = &model.DashboardStats{}
		if err := app.loadOffline(query.DashboardStatsKey(model.DateRange{}), stats); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		stats, err = app.Cache.DashboardStats(cmd.Context(), model.DateRange{})
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(stats)
	}

	ov := stats.Overview
	fmt.Println()
	fmt.Print(cli.RenderTitle("Dashboard"))
	fmt.Print(cli.RenderKV([][2]string{
		{"Clients", cli.FormatNumber(int64(ov.TotalClients))},
		{"Projects", cli.FormatNumber(int64(ov.TotalProjects))},
		{"Project value", cli.FormatMoney(ov.TotalProjectValue)},
		{"Payments received", cli.FormatMoney(ov.TotalPaymentsReceived)},
		{"Expenses", cli.FormatMoney(ov.TotalExpenses)},
		{"Net profit", cli.FormatMoney(stats.Financial.NetProfit)},
	}))

	if len(stats.ProjectsByStatus) > 0 {
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Projects by status",
			Headers: []string{"Status", "Count"},
			Rows:    statusRows(stats.ProjectsByStatus),
		}))
	}
	return nil
}

// statusRows orders the status breakdown by the enum's display order,
// appending any statuses the server added that the client doesn't know.
func statusRows(byStatus map[string]int) [][]string {
	rows := make([][]string, 0, len(byStatus))
	seen := make(map[string]bool, len(byStatus))
	for _, s := range model.ProjectStatuses {
		if n, ok := byStatus[string(s)]; ok {
			rows = append(rows, []string{cli.StatusLabel(string(s)), strconv.Itoa(n)})
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
		rows = append(rows, []string{cli.StatusLabel(s), strconv.Itoa(byStatus[s])})
	}
	return rows
}

func runStatsDashboard(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	r := statsRange()
	var stats *model.DashboardStats
	if flagOffline {
		stats = &model.DashboardStats{}
		if err := app.loadOffline(query.DashboardStatsKey(r), stats); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		stats, err = app.Cache.DashboardStats(cmd.Context(), r)
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(stats)
	}

	ov := stats.Overview
	fmt.Println()
	fmt.Print(cli.RenderTitle("Overview"))
	fmt.Print(cli.RenderKV([][2]string{
		{"Clients", cli.FormatNumber(int64(ov.TotalClients))},
		{"Projects", cli.FormatNumber(int64(ov.TotalProjects))},
		{"Project value", cli.FormatMoney(ov.TotalProjectValue)},
		{"Payments", fmt.Sprintf("%s (%d)", cli.FormatMoney(ov.TotalPaymentsReceived), ov.TotalPaymentsCount)},
		{"Expenses", fmt.Sprintf("%s (%d)", cli.FormatMoney(ov.TotalExpenses), ov.TotalExpensesCount)},
	}))

	es := stats.ExpensesSummary
	fmt.Println()
	fmt.Print(cli.RenderTitle("Expenses"))
	fmt.Print(cli.RenderKV([][2]string{
		{"Direct", cli.FormatMoney(es.ByType.Direct)},
		{"Operational", cli.FormatMoney(es.ByType.Operational)},
		{"Total", cli.FormatMoney(es.Total)},
	}))

	fmt.Println()
	fmt.Print(cli.RenderTitle("Financial"))
	printFinancial(stats.Financial)
	return nil
}

func runStatsFinancial(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	r := statsRange()
	var fin *model.FinancialStats
	if flagOffline {
		fin = &model.FinancialStats{}
		if err := app.loadOffline(query.FinancialStatsKey(r), fin); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		fin, err = app.Cache.FinancialStats(cmd.Context(), r)
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(fin)
	}

	fmt.Println()
	fmt.Print(cli.RenderTitle("Financial"))
	printFinancial(*fin)
	return nil
}

func printFinancial(f model.FinancialStats) {
	fmt.Print(cli.RenderKV([][2]string{
		{"Revenue", cli.FormatMoney(f.TotalRevenue)},
		{"Direct expenses", cli.FormatMoney(f.DirectExpenses)},
		{"Operational expenses", cli.FormatMoney(f.OperationalExpenses)},
		{"Gross profit", fmt.Sprintf("%s (%s)", cli.FormatMoney(f.GrossProfit), cli.FormatPercent(f.GrossMargin.Percent))},
		{"Operating income", fmt.Sprintf("%s (%s)", cli.FormatMoney(f.OperatingIncome), cli.FormatPercent(f.OperatingMargin.Percent))},
		{"Net profit", fmt.Sprintf("%s (%s)", cli.FormatMoney(f.NetProfit), cli.FormatPercent(f.ProfitMargin.Percent))},
	}))
}

func runStatsOverview(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var ov *model.OverviewStats
	if flagOffline {
		ov = &model.OverviewStats{}
		if err := app.loadOffline(query.OverviewStatsKey(), ov); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		ov, err = app.Cache.OverviewStats(cmd.Context())
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(ov)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Clients", cli.FormatNumber(int64(ov.TotalClients))},
		{"Projects", cli.FormatNumber(int64(ov.TotalProjects))},
		{"Payments", cli.FormatNumber(int64(ov.TotalPaymentsCount))},
		{"Expenses", cli.FormatNumber(int64(ov.TotalExpensesCount))},
	}))
	return nil
}
