package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"envelope/internal/amqp"
	"envelope/internal/backend"
	"envelope/internal/cli"
	"envelope/internal/config"
	"envelope/internal/log"
	"envelope/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(log.ComponentWorker)

	logger.Info("Starting ledger-mirror")

	if err := cfg.ValidateMirror(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	factory := backend.NewFactory(logger.WithComponent(log.ComponentBackend))

	// The primary is read only here, so it never publishes change events.
	primaryCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid primary backend", log.FieldError, err)
		os.Exit(1)
	}
	primaryCfg.AMQPURL = ""
	primary, err := factory.CreateBackend(ctx, primaryCfg)
	if err != nil {
		logger.Error("Failed to open primary backend", log.FieldError, err, log.FieldBackend, primaryCfg.Type)
		os.Exit(1)
	}
	defer primary.Close()

	mirrorCfg, err := backend.MirrorFromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid mirror backend", log.FieldError, err)
		os.Exit(1)
	}
	target, err := factory.CreateBackend(ctx, mirrorCfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets mirror", log.FieldError, err)
		os.Exit(1)
	}
	defer target.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	mirrorConfig := worker.DefaultMirrorConfig()
	mirrorConfig.ResyncInterval = cfg.MirrorResyncInterval
	mirror := worker.NewMirror(primary.Adapter, target.Adapter, logger, mirrorConfig)

	// Catch up on anything changed while the worker was down
	logger.Info("Performing startup full copy...")
	if err := mirror.FullCopy(ctx); err != nil {
		logger.LogError(ctx, "Startup full copy failed", err)
		// Don't exit - change events and the periodic resync will catch up
	}

	if err := mirror.Start(ctx); err != nil {
		logger.Error("Failed to start mirror worker", log.FieldError, err)
		os.Exit(1)
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeLedgerChanged(ctx, mirror.HandleLedgerChanged)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-consumeErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			exitCode = 1
		}
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	logger.Info("Shutting down worker...")
	if err := mirror.Stop(shutdownCtx); err != nil {
		logger.Warn("Shutdown timeout reached", log.FieldError, err)
	}
	logger.Info("Worker shutdown complete")

	if exitCode != 0 {
		// deferred closes do not run on os.Exit
		amqpClient.Close()
		target.Close()
		primary.Close()
		os.Exit(exitCode)
	}
}
