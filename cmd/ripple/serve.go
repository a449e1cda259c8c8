package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ripplestate/ripple/internal/config"
	"github.com/ripplestate/ripple/pkg/hub"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a sync hub",
		Long: `Run a sync hub, the relay that connected clients exchange
state deltas through.

Configuration is read from ripple.json in the working directory;
flags override the file.

Examples:
  ripple serve
  ripple serve --addr=0.0.0.0:7510`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from ripple.json)")

	return cmd
}

func runServe(addr string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.Addr = addr
	}

	pingInterval, err := cfg.PingIntervalDuration()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))

	h := hub.New(
		hub.WithLogger(logger),
		hub.WithMetricsEndpoint(cfg.Metrics),
		hub.WithMaxMessageSize(cfg.MaxMessageSize),
		hub.WithPingInterval(pingInterval),
	)
	defer h.Close()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("hub listening", "addr", cfg.Addr, "metrics", cfg.Metrics)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("hub server: %w", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
