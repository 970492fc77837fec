package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/cli"
	"github.com/pmdash/pmdash/internal/form"
	"github.com/pmdash/pmdash/internal/model"
	"github.com/pmdash/pmdash/internal/query"
)

var (
	flagExpType  string
	flagExpFrom  string
	flagExpTo    string
	flagExpQuery string

	expAmount float64
	expDate   string
	expTitle  string
	expDesc   string
	expType   string
)

var expensesCmd = &cobra.Command{
	Use:   "expenses",
	Short: "Manage expenses",
}

var expensesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses",
	RunE:  runExpensesList,
}

var expensesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesGet,
}

var expensesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record an expense",
	RunE:  runExpensesAdd,
}

var expensesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update an expense (only changed flags are sent)",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesEdit,
}

var expensesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runExpensesRm,
}

func init() {
	expensesListCmd.Flags().StringVar(&flagExpType, "type", "", "Filter by type (direct|operational)")
	expensesListCmd.Flags().StringVar(&flagExpFrom, "from", "", "From date (YYYY-MM-DD)")
	expensesListCmd.Flags().StringVar(&flagExpTo, "to", "", "To date (YYYY-MM-DD)")
	expensesListCmd.Flags().StringVarP(&flagExpQuery, "query", "q", "", "Free-text search")

	for _, c := range []*cobra.Command{expensesAddCmd, expensesEditCmd} {
		c.Flags().Float64Var(&expAmount, "amount", 0, "Amount")
		c.Flags().StringVar(&expDate, "date", "", "Expense date (YYYY-MM-DD, default today server-side)")
		c.Flags().StringVar(&expTitle, "title", "", "Title")
		c.Flags().StringVar(&expDesc, "desc", "", "Description")
		c.Flags().StringVar(&expType, "type", string(model.ExpenseOperational), "Type (direct|operational)")
	}

	expensesCmd.AddCommand(expensesListCmd, expensesGetCmd, expensesAddCmd,
		expensesEditCmd, expensesRmCmd)
	rootCmd.AddCommand(expensesCmd)
}

func runExpensesList(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	opts := api.ExpenseListOptions{
		Page:     flagPage,
		Limit:    app.PageLimit(),
		Type:     flagExpType,
		FromDate: flagExpFrom,
		ToDate:   flagExpTo,
		Query:    flagExpQuery,
	}

	var list *api.ExpenseList
	if flagOffline {
		list = &api.ExpenseList{}
		if err := app.loadOffline(query.ExpensesListKey(opts), list); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		list, err = app.Cache.Expenses(cmd.Context(), opts)
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(list)
	}
	if len(list.Expenses) == 0 {
		fmt.Println("\n  No expenses found.")
		return nil
	}

	rows := make([][]string, 0, len(list.Expenses))
	for _, e := range list.Expenses {
		rows = append(rows, []string{
			e.ID,
			cli.Truncate(e.Title, 24),
			cli.StatusLabel(string(e.Type)),
			cli.FormatDate(e.ExpenseDate),
			cli.FormatMoney(e.Amount),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Title", "Type", "Date", "Amount"},
		Rows:    rows,
		Footer:  cli.FormatPageFooter(list.Pagination),
	}))
	return nil
}

func runExpensesGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	e, err := app.Cache.Expense(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(e)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Title", e.Title},
		{"Amount", cli.FormatMoney(e.Amount)},
		{"Date", cli.FormatDate(e.ExpenseDate)},
		{"Type", cli.StatusLabel(string(e.Type))},
		{"Description", cli.Dash(e.Description)},
	}))
	return nil
}

func runExpensesAdd(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	in := model.CreateExpenseInput{
		Amount:      expAmount,
		ExpenseDate: expDate,
		Title:       expTitle,
		Description: expDesc,
		Type:        model.ExpenseType(expType),
	}
	if errs := form.ValidateExpense(in); !errs.Valid() {
		return errs
	}

	e, err := app.Cache.CreateExpense(cmd.Context(), in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Recorded %s expense %q\n", cli.FormatMoney(e.Amount), e.Title)
	return nil
}

func runExpensesEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	current, err := app.Cache.Expense(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	in := model.CreateExpenseInput{
		Amount:      current.Amount,
		ExpenseDate: current.ExpenseDate,
		Title:       current.Title,
		Description: current.Description,
		Type:        current.Type,
	}
	if cmd.Flags().Changed("amount") {
		in.Amount = expAmount
	}
	if cmd.Flags().Changed("date") {
		in.ExpenseDate = expDate
	}
	if cmd.Flags().Changed("title") {
		in.Title = expTitle
	}
	if cmd.Flags().Changed("desc") {
		in.Description = expDesc
	}
	if cmd.Flags().Changed("type") {
		in.Type = model.ExpenseType(expType)
	}

	if errs := form.ValidateExpense(in); !errs.Valid() {
		return errs
	}

	e, err := app.Cache.UpdateExpense(cmd.Context(), args[0], in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Updated expense %s\n", e.Title)
	return nil
}

func runExpensesRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	if err := app.Cache.DeleteExpense(cmd.Context(), args[0]); err != nil {
		return loginBoundary(err)
	}

	fmt.Println("\n  Expense deleted.")
	return nil
}
