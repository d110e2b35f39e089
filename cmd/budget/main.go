package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"envelope/internal/cli"
	"envelope/internal/config"
	"envelope/internal/ledger"
)

const closeTimeout = 30 * time.Second

var (
	version     = "dev"
	backendFlag string
	logLevel    string
	rootCmd     = &cobra.Command{
		Use:   "budget",
		Short: "Envelope budgeting ledger",
		Long: `budget keeps an envelope-style plan: money in accounts is assigned to
categories, and spending draws those categories down.

Accounts, categories and groups can be referenced by id or by name.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "data backend (memory, sqlite, sheets); overrides DATA_BACKEND")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(spendCmd())
	rootCmd.AddCommand(assignCmd())
	rootCmd.AddCommand(moveCmd())
	rootCmd.AddCommand(targetCmd())
	rootCmd.AddCommand(groupCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(planCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	cli.LoadEnvFile()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the global flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	if backendFlag != "" {
		cfg.DataBackend = backendFlag
	}
	if cmd.Flags().Changed("log-level") || os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withLedger opens the ledger, runs fn and waits for every write to land
// before returning, so a command that printed success has been saved.
func withLedger(cmd *cobra.Command, fn func(ctx context.Context, store *ledger.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeLedger, err := cli.OpenLedger(ctx, cfg, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	runErr := fn(ctx, store)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := closeLedger(closeCtx); err != nil {
		return errors.Join(runErr, fmt.Errorf("save ledger: %w", err))
	}
	return runErr
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "budget", version)
		},
	}
}
