package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/histroute/pkg/bridge"
	"github.com/vango-dev/histroute/pkg/middleware"
	"github.com/vango-dev/histroute/pkg/router"
	"github.com/vango-dev/histroute/pkg/urlpattern"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port    int
		host    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the websocket bridge server",
		Long: `Run a server that keeps a route controller per connected browser tab.

Endpoints:
  GET /ws          websocket bridge
  GET /routes      route table
  GET /state       route state of every session
  GET /state/{id}  route state of one session
  GET /metrics     Prometheus metrics

Examples:
  histroute serve --routes routes.yaml
  histroute serve --port=8080 --host=0.0.0.0 --allow-origin https://app.example`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, routes, err := loadRoutes(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if port > 0 {
				cfg.Serve.Port = port
			}
			if host != "" {
				cfg.Serve.Host = host
			}
			if len(origins) > 0 {
				cfg.Serve.AllowedOrigins = origins
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			bridgeCfg := &bridge.Config{
				Logger: slog.Default(),
			}
			if flags.base != "" {
				base, err := cfg.BaseURL()
				if err != nil {
					return err
				}
				bridgeCfg.Base = base
			}
			if len(cfg.Serve.AllowedOrigins) > 0 {
				bridgeCfg.CheckOrigin = bridge.AllowOrigins(cfg.Serve.AllowedOrigins...)
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			bridgeCfg.Gatherer = registry
			bridgeCfg.Middleware = []router.Middleware{
				middleware.NewMetrics(middleware.WithRegistry(registry)),
				middleware.OpenTelemetry(),
			}

			srv, err := bridge.New(routes, urlpattern.Compile, bridgeCfg)
			if err != nil {
				return err
			}

			return runServer(cmd.Context(), cfg.ServeAddress(), srv)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from histroute.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from histroute.json)")
	cmd.Flags().StringArrayVar(&origins, "allow-origin", nil, "Extra origin allowed to connect (repeatable)")

	return cmd
}

// runServer serves until SIGINT or SIGTERM, then shuts down gracefully.
func runServer(ctx context.Context, addr string, srv *bridge.Server) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		slog.Info("shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("session shutdown error", "error", err)
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server shutdown complete")
	return nil
}
