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
	flagClientQuery string
	clientInput     model.CreateClientInput
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage clients",
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clients",
	RunE:  runClientsList,
}

var clientsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsGet,
}

var clientsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a client",
	RunE:  runClientsAdd,
}

var clientsEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update a client (only changed flags are sent)",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsEdit,
}

var clientsRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a client",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsRm,
}

var clientsSummaryCmd = &cobra.Command{
	Use:   "summary <id>",
	Short: "Show a client's payment summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runClientsSummary,
}

func init() {
	clientsListCmd.Flags().StringVarP(&flagClientQuery, "query", "q", "", "Free-text search")

	for _, c := range []*cobra.Command{clientsAddCmd, clientsEditCmd} {
		c.Flags().StringVar(&clientInput.Name, "name", "", "Client name")
		c.Flags().StringVar(&clientInput.Email, "email", "", "Email address")
		c.Flags().StringVar(&clientInput.Phone, "phone", "", "Phone number")
		c.Flags().StringVar(&clientInput.Address, "address", "", "Address")
		c.Flags().StringVar(&clientInput.Notes, "notes", "", "Notes")
		c.Flags().StringVar(&clientInput.Feedback, "feedback", "", "Feedback")
	}

	clientsCmd.AddCommand(clientsListCmd, clientsGetCmd, clientsAddCmd,
		clientsEditCmd, clientsRmCmd, clientsSummaryCmd)
	rootCmd.AddCommand(clientsCmd)
}

func runClientsList(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	opts := api.ClientListOptions{
		Page:  flagPage,
		Limit: app.PageLimit(),
		Query: flagClientQuery,
	}

	var list *api.ClientList
	if flagOffline {
		list = &api.ClientList{}
		if err := app.loadOffline(query.ClientsListKey(opts), list); err != nil {
			return err
		}
	} else {
		if err := app.requireAuth(); err != nil {
			return err
		}
		list, err = app.Cache.Clients(cmd.Context(), opts)
		if err != nil {
			return loginBoundary(err)
		}
	}

	if flagJSON {
		return printJSON(list)
	}
	if len(list.Clients) == 0 {
		fmt.Println("\n  No clients found.")
		return nil
	}

	rows := make([][]string, 0, len(list.Clients))
	for _, c := range list.Clients {
		rows = append(rows, []string{
			c.ID,
			cli.Truncate(c.Name, 24),
			cli.Dash(c.Email),
			cli.Dash(c.Phone),
			cli.FormatDate(c.CreatedAt),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"ID", "Name", "Email", "Phone", "Created"},
		Rows:    rows,
		Footer:  cli.FormatPageFooter(list.Pagination),
	}))
	return nil
}

func runClientsGet(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	client, err := app.Cache.Client(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(client)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Name", client.Name},
		{"Email", cli.Dash(client.Email)},
		{"Phone", cli.Dash(client.Phone)},
		{"Address", cli.Dash(client.Address)},
		{"Notes", cli.Dash(client.Notes)},
		{"Feedback", cli.Dash(client.Feedback)},
		{"Created", cli.FormatDate(client.CreatedAt)},
	}))
	return nil
}

func runClientsAdd(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	if errs := form.ValidateClient(clientInput); !errs.Valid() {
		return errs
	}

	client, err := app.Cache.CreateClient(cmd.Context(), clientInput)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Created client %s (%s)\n", client.Name, client.ID)
	return nil
}

func runClientsEdit(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	// Merge flags over the current entity so validation sees the whole
	// picture, then send the merged input (partial-update semantics: the
	// unchanged fields carry their existing values).
	current, err := app.Cache.Client(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	in := model.CreateClientInput{
		Name:     current.Name,
		Email:    current.Email,
		Phone:    current.Phone,
		Address:  current.Address,
		Notes:    current.Notes,
		Feedback: current.Feedback,
	}
	applyIfChanged(cmd, map[string]*string{
		"name":     &in.Name,
		"email":    &in.Email,
		"phone":    &in.Phone,
		"address":  &in.Address,
		"notes":    &in.Notes,
		"feedback": &in.Feedback,
	}, map[string]string{
		"name":     clientInput.Name,
		"email":    clientInput.Email,
		"phone":    clientInput.Phone,
		"address":  clientInput.Address,
		"notes":    clientInput.Notes,
		"feedback": clientInput.Feedback,
	})

	if errs := form.ValidateClient(in); !errs.Valid() {
		return errs
	}

	client, err := app.Cache.UpdateClient(cmd.Context(), args[0], in)
	if err != nil {
		return loginBoundary(err)
	}

	fmt.Printf("\n  Updated client %s\n", client.Name)
	return nil
}

func runClientsRm(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	if err := app.Cache.DeleteClient(cmd.Context(), args[0]); err != nil {
		return loginBoundary(err)
	}

	fmt.Println("\n  Client deleted.")
	return nil
}

func runClientsSummary(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	sum, err := app.Cache.ClientPaymentSummary(cmd.Context(), args[0])
	if err != nil {
		return loginBoundary(err)
	}

	if flagJSON {
		return printJSON(sum)
	}

	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Total to pay", cli.FormatMoney(sum.TotalAmountToPay)},
		{"Paid", cli.FormatMoney(sum.AmountPaid)},
		{"Remaining", cli.FormatMoney(sum.Remaining)},
	}))
	return nil
}

// applyIfChanged copies flag values over targets for flags the user set.
func applyIfChanged(cmd *cobra.Command, targets map[string]*string, values map[string]string) {
	for name, target := range targets {
		if cmd.Flags().Changed(name) {
			*target = values[name]
		}
	}
}
