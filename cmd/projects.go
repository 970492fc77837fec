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
	flagProjectClient string
	flagProjectStatus string
	flagProjectQuery  string

	projTitle   string
	projClient  string
	projDetails string
	projStart   string
	projDue     string
	projPrice   float64
	projStatus  string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectsList,
}

var projectsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsGet,
}

var projectsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a project",
	RunE:  runProjectsAdd,
}

var projectsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a project (only changed flags are sent)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsEdit,
}

var projectsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsRm,
}

var projectsPaymentsCmd = &cobra.Command{
	Use:   "payments <id>",
	Short: "List a project's payments",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsPayments,
}

func init() {
	projectsListCmd.Flags().StringVar(&flagProjectClient, "client", "", "Filter by client id")
	projectsListCmd.Flags().StringVar(&flagProjectStatus, "status", "", "Filter by status")
	projectsListCmd.Flags().StringVarP(&flagProjectQuery, "query", "q", "", "Free-text search")

	for _, c := range []*cobra.Command{projectsAddCmd, projectsEditCmd} {
		c.Flags().StringVar(&projClient, "client", "", "Owning client id")
		c.Flags().StringVar(&projTitle, "title", "", "Project title")
		c.Flags().StringVar(&projDetails, "details", "", "Details")
		c.Flags().StringVar(&projStart, "start", "", "Start date (YYYY-MM-DD)")
		c.Flags().StringVar(&projDue, "due", "", "Due date (YYYY-MM-DD)")
		c.Flags().Float64Var(&projPrice, "price", 0, "Price")
		c.Flags().StringVar(&projStatus, "status", "", "Status (draft|active|on_hold|cancelled|completed)")
	}

	projectsCmd.AddCommand(projectsListCmd, projectsGetCmd, projectsAddCmd,
		projectsEditCmd, projectsRmCmd, projectsPaymentsCmd)
	rootCmd.AddCommand(projectsCmd)
}

func projectRow(p model.Project) []string {
	price := "—"
	if p.Price != nil {
		price = cli.FormatMoney(*p.Price)
	}
	return []string{
		p.ID,
		cli.Truncate(p.Title, 24),
		cli.StatusLabel(string(p.Status)),
		cli.FormatDate(p.StartDate),
		cli.FormatDate(p.DueDate),
		price,
	}
}

func runProjectsList(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	opts := api.ProjectListOptions{
		Page:     flagPage,
		Limit:    app.PageLimit(),
		ClientID: flagProjectClient,
		Status:   flagProjectStatus,
		Query:    flagProjectQuery,
	}

	var list *api.ProjectList
	if flagOffline {
		list = &api.ProjectList{}
		if err := app.loadOffline(query.ProjectsListKey(opts), list); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		list, err = app.Cache.Projects(cmd.Context(), opts)
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(list)
	}
	if len(list.Projects) == 0 {
		fmt.Println("\n  No projects found.")
		return nil
	}

	rows := make([][]string, 0, len(list.Projects))
	for _, p := range list.Projects {
		rows = append(rows, projectRow(p))
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Title", "Status", "Start", "Due", "Price"},
		Rows:    rows,
		Footer:  cli.FormatPageFooter(list.Pagination),
	}))
	return nil
}

func runProjectsGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	p, err := app.Cache.Project(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(p)
	}

	price := "—"
	if p.Price != nil {
		price = cli.FormatMoney(*p.Price)
	}
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Title", p.Title},
		{"Client", p.ClientID},
		{"Status", cli.StatusLabel(string(p.Status))},
		{"Start", cli.FormatDate(p.StartDate)},
		{"Due", cli.FormatDate(p.DueDate)},
		{"Price", price},
		{"Details", cli.Dash(p.Details)},
		{"Created", cli.FormatDate(p.CreatedAt)},
	}))
	return nil
}

func projectInputFromFlags(cmd *cobra.Command) model.CreateProjectInput {
	in := model.CreateProjectInput{
		ClientID:  projClient,
		Title:     projTitle,
		Details:   projDetails,
		StartDate: projStart,
		DueDate:   projDue,
		Status:    model.ProjectStatus(projStatus),
	}
	if cmd.Flags().Changed("price") {
		price := projPrice
		in.Price = &price
	}
	return in
}

func runProjectsAdd(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	in := projectInputFromFlags(cmd)
	if errs := form.ValidateProject(in); !errs.Valid() {
		return errs
	}

	p, err := app.Cache.CreateProject(cmd.Context(), in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Created project %s (%s), status %s\n", p.Title, p.ID, p.Status)
	return nil
}

func runProjectsEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	current, err := app.Cache.Project(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	in := model.CreateProjectInput{
		ClientID:  current.ClientID,
		Title:     current.Title,
		Details:   current.Details,
		StartDate: current.StartDate,
		DueDate:   current.DueDate,
		Price:     current.Price,
		Status:    current.Status,
	}
	if cmd.Flags().Changed("client") {
		in.ClientID = projClient
	}
	if cmd.Flags().Changed("title") {
		in.Title = projTitle
	}
	if cmd.Flags().Changed("details") {
		in.Details = projDetails
	}
	if cmd.Flags().Changed("start") {
		in.StartDate = projStart
	}
	if cmd.Flags().Changed("due") {
		in.DueDate = projDue
	}
	if cmd.Flags().Changed("price") {
		price := projPrice
		in.Price = &price
	}
	if cmd.Flags().Changed("status") {
		in.Status = model.ProjectStatus(projStatus)
	}

	if errs := form.ValidateProject(in); !errs.Valid() {
		return errs
	}

	p, err := app.Cache.UpdateProject(cmd.Context(), args[0], in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Updated project %s\n", p.Title)
	return nil
}

func runProjectsRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	if err := app.Cache.DeleteProject(cmd.Context(), args[0]); err != nil {
		return loginBoundary(err)
	}

	fmt.Println("\n  Project deleted.")
	return nil
}

func runProjectsPayments(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	payments, err := app.Cache.ProjectPayments(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(payments)
	}
	if len(payments) == 0 {
		fmt.Println("\n  No payments recorded.")
		return nil
	}

	rows := make([][]string, 0, len(payments))
	var total float64
	for _, p := range payments {
		total += p.Amount
		rows = append(rows, []string{
			p.ID,
			cli.FormatDate(p.PaymentDate),
			cli.StatusLabel(string(p.PaymentMethod)),
			cli.FormatMoney(p.Amount),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Date", "Method", "Amount"},
		Rows:    rows,
		Footer:  "total " + cli.FormatMoney(total),
	}))
	return nil
}
