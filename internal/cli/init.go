// Package cli provides common process bootstrap shared by cmd/budget and
// cmd/ledger-mirror.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"

	"envelope/internal/backend"
	"envelope/internal/budget"
	"envelope/internal/config"
	"envelope/internal/ledger"
	"envelope/internal/log"
)

// SetupLogger initializes structured logging at the given level and sets it
// as the process default. An unknown level falls back to info.
func SetupLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	logger := log.New(log.Config{
		Level:     lvl,
		Component: log.ComponentCLI,
		Output:    os.Stderr,
	})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// OpenLedger builds the configured backend and opens the ledger store on
// it. Writes that fail every attempt are announced on notices. The returned
// close function flushes pending writes, stops the store and releases the
// backend.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger, notices io.Writer) (*ledger.Store, func(context.Context) error, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	policy, err := budget.ParseSpendPolicy(cfg.SpendPolicy)
	if err != nil {
		return nil, nil, err
	}

	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create backend: %w", err)
	}

	ledgerLogger := logger.WithComponent(log.ComponentLedger)
	opts := []ledger.Option{
		ledger.WithEngine(budget.Engine{Policy: policy}),
		ledger.WithLogger(ledgerLogger),
		ledger.WithWriterConfig(ledger.WriterConfig{
			MaxRetries: cfg.PersistMaxRetries,
			RetryDelay: cfg.PersistRetryDelay,
		}),
		ledger.OnPersistError(PersistNotice(notices)),
	}
	if result.Publisher != nil {
		opts = append(opts, ledger.WithPublisher(result.Publisher))
	}

	store, err := ledger.Open(ctx, result.Adapter, opts...)
	if err != nil {
		result.Close()
		return nil, nil, fmt.Errorf("open ledger: %w", err)
	}

	closeFn := func(ctx context.Context) error {
		storeErr := store.Close(ctx)
		if err := result.Close(); err != nil {
			logger.Warn("Failed to release backend", log.FieldError, err)
		}
		return storeErr
	}
	return store, closeFn, nil
}

// PersistNotice tells the user that a change is only held in memory. The
// writer has already logged the failure.
func PersistNotice(w io.Writer) func(*budget.PersistenceError) {
	return func(perr *budget.PersistenceError) {
		if w == nil {
			return
		}
		fmt.Fprintf(w, "warning: %s not saved after %d attempt(s), retrying before exit: %v\n",
			perr.Key, perr.Attempts, perr.Err)
	}
}
