package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmdash/pmdash/internal/cli"
	"github.com/pmdash/pmdash/internal/form"
	"github.com/pmdash/pmdash/internal/model"
)

var (
	flagPhaseProject string

	phaseTitle  string
	phaseStart  string
	phaseEnd    string
	phaseAmount float64
	phaseNotes  string
)

var phasesCmd = &cobra.Command{
	Use:   "phases",
	Short: "Manage project phases",
}

var phasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's phases",
	RunE:  runPhasesList,
}

var phasesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one phase",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhasesGet,
}

var phasesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a phase",
	RunE:  runPhasesAdd,
}

var phasesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a phase (only changed flags are sent)",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhasesEdit,
}

var phasesRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a phase",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhasesRm,
}

func init() {
	phasesCmd.PersistentFlags().StringVarP(&flagPhaseProject, "project", "P", "", "Owning project id (required)")
	_ = phasesCmd.MarkPersistentFlagRequired("project")

	for _, c := range []*cobra.Command{phasesAddCmd, phasesEditCmd} {
		c.Flags().StringVar(&phaseTitle, "title", "", "Phase title")
		c.Flags().StringVar(&phaseStart, "start", "", "Start date (YYYY-MM-DD)")
		c.Flags().StringVar(&phaseEnd, "end", "", "End date (YYYY-MM-DD)")
		c.Flags().Float64Var(&phaseAmount, "amount", 0, "Amount")
		c.Flags().StringVar(&phaseNotes, "notes", "", "Notes")
	}

	phasesCmd.AddCommand(phasesListCmd, phasesGetCmd, phasesAddCmd,
		phasesEditCmd, phasesRmCmd)
	rootCmd.AddCommand(phasesCmd)
}

func runPhasesList(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	list, err := app.Cache.Phases(cmd.Context(), flagPhaseProject, flagPage, app.PageLimit())
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(list)
	}
	if len(list.Phases) == 0 {
		fmt.Println("\n  No phases found.")
		return nil
	}

	rows := make([][]string, 0, len(list.Phases))
	for _, ph := range list.Phases {
		rows = append(rows, []string{
			ph.ID,
			cli.Truncate(ph.Title, 24),
			cli.FormatDate(ph.StartDate),
			cli.FormatDate(ph.EndDate),
			cli.FormatMoney(ph.Amount),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Title", "Start", "End", "Amount"},
		Rows:    rows,
		Footer:  cli.FormatPageFooter(list.Pagination),
	}))
	return nil
}

func runPhasesGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	ph, err := app.Cache.Phase(cmd.Context(), flagPhaseProject, args[0])
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(ph)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Title", ph.Title},
		{"Start", cli.FormatDate(ph.StartDate)},
		{"End", cli.FormatDate(ph.EndDate)},
		{"Amount", cli.FormatMoney(ph.Amount)},
		{"Notes", cli.Dash(ph.Notes)},
	}))
	return nil
}

func runPhasesAdd(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	in := model.CreatePhaseInput{
		Title:     phaseTitle,
		StartDate: phaseStart,
		EndDate:   phaseEnd,
		Amount:    phaseAmount,
		Notes:     phaseNotes,
	}
	if errs := form.ValidatePhase(in); !errs.Valid() {
		return errs
	}

	ph, err := app.Cache.CreatePhase(cmd.Context(), flagPhaseProject, in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Created phase %s (%s)\n", ph.Title, ph.ID)
	return nil
}

func runPhasesEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	current, err := app.Cache.Phase(cmd.Context(), flagPhaseProject, args[0])
	if err != nil {
		return loginBoundary(err)
	}

	in := model.CreatePhaseInput{
		Title:     current.Title,
		StartDate: current.StartDate,
		EndDate:   current.EndDate,
		Amount:    current.Amount,
		Notes:     current.Notes,
	}
	if cmd.Flags().Changed("title") {
		in.Title = phaseTitle
	}
	if cmd.Flags().Changed("start") {
		in.StartDate = phaseStart
	}
	if cmd.Flags().Changed("end") {
		in.EndDate = phaseEnd
	}
	if cmd.Flags().Changed("amount") {
		in.Amount = phaseAmount
	}
	if cmd.Flags().Changed("notes") {
		in.Notes = phaseNotes
	}

	if errs := form.ValidatePhase(in); !errs.Valid() {
		return errs
	}

	ph, err := app.Cache.UpdatePhase(cmd.Context(), flagPhaseProject, args[0], in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Updated phase %s\n", ph.Title)
	return nil
}

func runPhasesRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	if err := app.Cache.DeletePhase(cmd.Context(), flagPhaseProject, args[0]); err != nil {
		return loginBoundary(err)
	}

	fmt.Println("\n  Phase deleted.")
	return nil
}
