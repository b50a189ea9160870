package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/liamashdown/holderscope/internal/httpserver"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve holder analysis over HTTP",
	Long: `Run the HTTP API with health, readiness and Prometheus metrics.

Endpoints:
  GET /api/events/{slug}/markets
  GET /api/events/{slug}/holders?market=&top=&side=
  GET /health, /ready, /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Listen port (default HTTP_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = a.cfg.HTTPPort
	}

	server := httpserver.New(&httpserver.Config{
		Port:          port,
		Log:           a.log,
		HealthChecker: httpserver.NewHealthChecker(),
		Events:        httpserver.NewEventsHandler(a.resolver, a.processor, a.log),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.log.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.log.Info("Graceful shutdown complete")
	return nil
}
