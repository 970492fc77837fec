package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/cli"
	"github.com/pmdash/pmdash/internal/config"
	"github.com/pmdash/pmdash/internal/query"
	"github.com/pmdash/pmdash/internal/session"
	"github.com/pmdash/pmdash/internal/store"
)

var (
	flagPage    int
	flagLimit   int
	flagJSON    bool
	flagOffline bool
)

var rootCmd = &cobra.Command{
	Use:   "pmdash",
	Short: "Project management dashboard CLI",
	Long:  "Track clients, projects, payments, and expenses from the terminal.",
	RunE:  runOverview,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagPage, "page", 1, "Page number (1-based)")
	rootCmd.PersistentFlags().IntVarP(&flagLimit, "limit", "l", 0, "Page size (default from config)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print raw JSON")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Serve last-known data without contacting the API")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

// App bundles the configured client stack shared by all commands.
type App struct {
	Config config.Config
	Sess   *session.Store
	API    *api.Client
	Cache  *query.Cache
	Snaps  *store.Snapshots
	Log    zerolog.Logger
}

// newApp wires config, session, API client, snapshot store, and cache.
func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.General.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.WarnLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	sess := session.NewStore(config.ConfigDir())
	client := api.New(cfg.API.BaseURL,
		api.WithToken(sess.Token),
		api.WithUnauthorizedHook(sess.Clear),
		api.WithLogger(logger),
	)

	opts := []query.StoreOption{query.WithStoreLogger(logger)}

	snaps, err := store.Open(store.DefaultPath(), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("snapshot store unavailable")
		snaps = nil
	} else {
		opts = append(opts, query.WithSnapshotter(snaps))
	}

	return &App{
		Config: cfg,
		Sess:   sess,
		API:    client,
		Cache:  query.NewCache(client, opts...),
		Snaps:  snaps,
		Log:    logger,
	}, nil
}

// Close releases the app's resources.
func (a *App) Close() {
	if a.Snaps != nil {
		_ = a.Snaps.Close()
	}
}

// PageLimit resolves the effective page size.
func (a *App) PageLimit() int {
	if flagLimit > 0 {
		return flagLimit
	}
	return a.Config.General.PageLimit
}

// requireAuth fails fast when no credential is stored. A 401 later in
// the command still clears the credential via the adapter hook.
func (a *App) requireAuth() error {
	if !a.Sess.LoggedIn() {
		return fmt.Errorf("not logged in — run `pmdash login` first")
	}
	return nil
}

// loginBoundary translates an unauthorized failure into the next step a
// terminal user can take. The stored token is already cleared.
func loginBoundary(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("session expired — run `pmdash login` to sign in again")
	}
	return err
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// loadOffline decodes the snapshot under key into out, reporting when no
// snapshot exists.
func (a *App) loadOffline(key query.Key, out any) error {
	if a.Snaps == nil {
		return fmt.Errorf("offline mode: snapshot store unavailable")
	}
	at, ok, err := a.Snaps.LoadInto(key, out)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("offline mode: no cached data for this query")
	}
	fmt.Fprintf(os.Stderr, "  (offline — data as of %s)\n", at.Local().Format("2006-01-02 15:04"))
	return nil
}
