package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pmdash/pmdash/internal/daemon"
	"github.com/pmdash/pmdash/internal/model"
)

var (
	flagDaemonAddr     string
	flagDaemonInterval int
	flagDaemonFrom     string
	flagDaemonTo       string
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the background statistics monitor",
	Long: "Polls the dashboard aggregate on an interval and serves snapshots,\n" +
		"deltas, and a live SSE stream on a local HTTP address.",
	RunE: runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&flagDaemonAddr, "addr", "", "Listen address (default from config)")
	daemonCmd.Flags().IntVar(&flagDaemonInterval, "interval", 0, "Poll interval in seconds (default from config)")
	daemonCmd.Flags().StringVar(&flagDaemonFrom, "from", "", "From date for the polled range (YYYY-MM-DD)")
	daemonCmd.Flags().StringVar(&flagDaemonTo, "to", "", "To date for the polled range (YYYY-MM-DD)")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.requireAuth(); err != nil {
		return err
	}

	addr := app.Config.Daemon.Addr
	if flagDaemonAddr != "" {
		addr = flagDaemonAddr
	}
	intervalSecs := app.Config.Daemon.IntervalSecs
	if flagDaemonInterval > 0 {
		intervalSecs = flagDaemonInterval
	}

	svc := daemon.New(daemon.Config{
		Addr:     addr,
		Interval: time.Duration(intervalSecs) * time.Second,
		Range:    model.DateRange{FromDate: flagDaemonFrom, ToDate: flagDaemonTo},
	}, app.Cache, app.Log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("daemon listening on http://%s (poll every %ds)\n", addr, intervalSecs)
	return svc.Run(ctx)
}
