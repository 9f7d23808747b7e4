package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WayneDavenport/Mediaq-sub000/internal/config"
)

func init() {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the queue audit scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	})
}

func runServe() error {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// 2. Wire database, engine, server and scheduler
	app, cleanup, err := initializeApp(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer cleanup()
	logger := app.Logger
	logger.Info().Str("config_dir", cfg.ConfigDir).Str("database", cfg.DatabaseFile).Msg("Starting mediaq")

	// 3. Start scheduler
	if err := app.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer app.Scheduler.Stop()

	// 4. Start HTTP server
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- app.Server.Start(ctx)
	}()

	// 5. Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info().Msg("mediaq is running")

	select {
	case err := <-serverErrChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
		if err := <-serverErrChan; err != nil {
			logger.Error().Err(err).Msg("Error during server shutdown")
		}
	}

	logger.Info().Msg("mediaq stopped")
	return nil
}
