package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scenegen/internal/server"
)

var serveAddr string

// serveCmd runs the HTTP API
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scene generation HTTP API",
	Long: `Serve POST /generate-scene and POST /refine-scene.

Both return the asset bytes with the generated script in the
X-Generated-Script header. GET /healthz, /models and /metrics are also served.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr, or :$PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	catalog := buildCatalog(cfg)
	srv := server.New(buildPipeline(cfg, catalog, reg), cfg,
		server.WithCatalog(catalog),
		server.WithGatherer(reg),
		server.WithLogger(logger.Named("http")))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting HTTP server",
		zap.String("addr", cfg.Server.Addr),
		zap.String("temp_dir", cfg.GetTempDir()),
		zap.String("default_model", catalog.Default().ID))
	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render("scenegen API listening on "+cfg.Server.Addr))

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("Server exiting")
	return nil
}
