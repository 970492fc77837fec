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
	flagPayProject string
	flagPayClient  string
	flagPayFrom    string
	flagPayTo      string

	payProject string
	payAmount  float64
	payDate    string
	payMethod  string
	payNotes   string
)

var paymentsCmd = &cobra.Command{
	Use:   "payments",
	Short: "Manage payments",
}

var paymentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List payments",
	RunE:  runPaymentsList,
}

var paymentsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one payment",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaymentsGet,
}

var paymentsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a payment",
	RunE:  runPaymentsAdd,
}

var paymentsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a payment (only changed flags are sent)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaymentsEdit,
}

var paymentsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a payment",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaymentsRm,
}

func init() {
	paymentsListCmd.Flags().StringVar(&flagPayProject, "project", "", "Filter by project id")
	paymentsListCmd.Flags().StringVar(&flagPayClient, "client", "", "Filter by client id")
	paymentsListCmd.Flags().StringVar(&flagPayFrom, "from", "", "From date (YYYY-MM-DD)")
	paymentsListCmd.Flags().StringVar(&flagPayTo, "to", "", "To date (YYYY-MM-DD)")

	for _, c := range []*cobra.Command{paymentsAddCmd, paymentsEditCmd} {
		c.Flags().StringVar(&payProject, "project", "", "Owning project id")
		c.Flags().Float64Var(&payAmount, "amount", 0, "Amount")
		c.Flags().StringVar(&payDate, "date", "", "Payment date (YYYY-MM-DD, default today server-side)")
		c.Flags().StringVar(&payMethod, "method", string(model.MethodBankTransfer), "Method (cash|bank_transfer|credit_card|other)")
		c.Flags().StringVar(&payNotes, "notes", "", "Notes")
	}

	paymentsCmd.AddCommand(paymentsListCmd, paymentsGetCmd, paymentsAddCmd,
		paymentsEditCmd, paymentsRmCmd)
	rootCmd.AddCommand(paymentsCmd)
}

func runPaymentsList(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	opts := api.PaymentListOptions{
		Page:      flagPage,
		Limit:     app.PageLimit(),
		ProjectID: flagPayProject,
		ClientID:  flagPayClient,
		FromDate:  flagPayFrom,
		ToDate:    flagPayTo,
	}

	var list *api.PaymentList
	if flagOffline {
		list = &api.PaymentList{}
		if err := app.loadOffline(query.PaymentsListKey(opts), list); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		list, err = app.Cache.Payments(cmd.Context(), opts)
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(list)
	}
	if len(list.Payments) == 0 {
		fmt.Println("\n  No payments found.")
		return nil
	}

	rows := make([][]string, 0, len(list.Payments))
	for _, p := range list.Payments {
		rows = append(rows, []string{
			p.ID,
			p.ProjectID,
			cli.FormatDate(p.PaymentDate),
			cli.StatusLabel(string(p.PaymentMethod)),
			cli.FormatMoney(p.Amount),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Project", "Date", "Method", "Amount"},
		Rows:    rows,
		Footer:  cli.FormatPageFooter(list.Pagination),
	}))
	return nil
}

func runPaymentsGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	p, err := app.Cache.Payment(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(p)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Project", p.ProjectID},
		{"Amount", cli.FormatMoney(p.Amount)},
		{"Date", cli.FormatDate(p.PaymentDate)},
		{"Method", cli.StatusLabel(string(p.PaymentMethod))},
		{"Notes", cli.Dash(p.Notes)},
	}))
	return nil
}

func runPaymentsAdd(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	in := model.CreatePaymentInput{
		ProjectID:     payProject,
		Amount:        payAmount,
		PaymentDate:   payDate,
		PaymentMethod: model.PaymentMethod(payMethod),
		Notes:         payNotes,
	}
	if errs := form.ValidatePayment(in); !errs.Valid() {
		return errs
	}

	p, err := app.Cache.CreatePayment(cmd.Context(), in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Recorded %s payment on %s\n", cli.FormatMoney(p.Amount), cli.FormatDate(p.PaymentDate))
	return nil
}

func runPaymentsEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	current, err := app.Cache.Payment(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	in := model.CreatePaymentInput{
		ProjectID:     current.ProjectID,
		Amount:        current.Amount,
		PaymentDate:   current.PaymentDate,
		PaymentMethod: current.PaymentMethod,
		Notes:         current.Notes,
	}
	if cmd.Flags().Changed("project") {
		in.ProjectID = payProject
	}
	if cmd.Flags().Changed("amount") {
		in.Amount = payAmount
	}
	if cmd.Flags().Changed("date") {
		in.PaymentDate = payDate
	}
	if cmd.Flags().Changed("method") {
		in.PaymentMethod = model.PaymentMethod(payMethod)
	}
	if cmd.Flags().Changed("notes") {
		in.Notes = payNotes
	}

	if errs := form.ValidatePayment(in); !errs.Valid() {
		return errs
	}

	p, err := app.Cache.UpdatePayment(cmd.Context(), args[0], in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Updated payment %s\n", p.ID)
	return nil
}

func runPaymentsRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	if err := app.Cache.DeletePayment(cmd.Context(), args[0]); err != nil {
		return loginBoundary(err)
	}

	fmt.Println("\n  Payment deleted.")
	return nil
}
