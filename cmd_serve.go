package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-demo/pkg/config"
	"shop-demo/pkg/diagnostics"
	"shop-demo/pkg/orders"
	"shop-demo/pkg/server"
	"shop-demo/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	configPath  string
	writeConfig string
)

// serveCmd starts the API server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the shop API and client",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config (optional)")
	serveCmd.Flags().StringVar(&writeConfig, "write-config", "", "Write the effective config to this path and exit")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if writeConfig != "" {
		if err := cfg.Save(writeConfig); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", writeConfig)
		return nil
	}

	if err := initLogger(cfg.LogLevel); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exporter, err := tracing.NewExporter(ctx, cfg.Tracing, cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("failed to create span exporter: %w", err)
	}
	tracer := tracing.NewTracer(cfg.Tracing.ServiceName, exporter)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}()

	metrics := diagnostics.NewMetrics()

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		Config:  cfg,
		Placer:  orders.NewPlacer(cfg.Orders.IDLimit),
		Metrics: metrics,
		Tracer:  tracer,
		Logger:  logger,
	})

	logger.Info("Serving shop",
		zap.String("addr", cfg.Server.Addr()),
		zap.Int("products", len(cfg.Catalog)),
		zap.String("login_user", cfg.Auth.Username),
		zap.String("tracing", cfg.Tracing.Exporter))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.New(cfg.Server.Addr(), router, logger).Run(ctx)
	})

	if cfg.Diagnostics.Enabled {
		diag := diagnostics.NewServer(cfg.Diagnostics.Port, metrics)
		g.Go(diag.Start)
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return diag.Shutdown(shutdownCtx)
		})
		logger.Info("Diagnostics enabled", zap.Int("port", cfg.Diagnostics.Port))
	}

	return g.Wait()
}
