// Package cmd implements the pmdash CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current defaults",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [API]")
	if cfg.API.BaseURL != "" {
		fmt.Printf("    Base URL: %s\n", cfg.API.BaseURL)
	} else {
		fmt.Printf("    Base URL: %s (default)\n", api.DefaultBaseURL)
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Page limit: %d\n", cfg.General.PageLimit)
	fmt.Printf("    Log level:  %s\n", cfg.General.LogLevel)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSecs)
	fmt.Println()

	fmt.Println("  Run `pmdash config init` to write this to disk, then edit it.")
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	if config.Exists() {
		return fmt.Errorf("config file already exists at %s", config.ConfigPath())
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Printf("  Wrote %s\n", config.ConfigPath())
	return nil
}
