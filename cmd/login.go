package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pmdash/pmdash/internal/cli"
	"github.com/pmdash/pmdash/internal/form"
)

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Sign in and store the session token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and drop the stored token",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	var email, password string
	if len(args) == 1 {
		email = args[0]
	}

	fields := []huh.Field{}
	if email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Validate(func(s string) error {
				if !form.ValidEmail(s) {
					return fmt.Errorf("invalid email address")
				}
				return nil
			}).
			Value(&email))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if s == "" {
				return fmt.Errorf("password is required")
			}
			return nil
		}).
		Value(&password))

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	user, err := app.Sess.Login(cmd.Context(), app.API, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("\n  Signed in as %s <%s>\n", user.Name, user.Email)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	app.Sess.Logout(cmd.Context(), app.API)
	fmt.Println("\n  Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}
	if err := app.Sess.Init(cmd.Context(), app.API); err != nil {
		return loginBoundary(err)
	}

	user := app.Sess.CurrentUser()
	if user == nil {
		return fmt.Errorf("session expired — run `pmdash login` to sign in again")
	}

	if flagJSON {
		return printJSON(user)
	}

	pairs := [][2]string{
		{"Name", user.Name},
		{"Email", user.Email},
		{"Status", cli.StatusLabel(user.Status)},
	}
	if user.Company != nil {
		pairs = append(pairs, [2]string{"Company", user.Company.Name})
	}
	fmt.Println()
	fmt.Print(cli.RenderKV(pairs))
	return nil
}
