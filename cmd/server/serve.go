package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"hireboard/internal/app"
	"hireboard/internal/config"

	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and websocket server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if servePort != "" {
		cfg.App.HTTPPort = servePort
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP port: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bootstrap, cleanup, err := app.Bootstrap(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to bootstrap app: %w", err)
	}
	log := bootstrap.Container.Logger
	defer func() {
		if err := cleanup(); err != nil {
			log.WithError(err).Error("cleanup failed")
		}
	}()

	if cfg.Store.Driver == app.DriverMemory {
		if err := seedDemo(ctx, bootstrap.Container); err != nil {
			return fmt.Errorf("seed memory store: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		errCh <- bootstrap.Fiber.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(sctx); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
		return nil
	}
}
