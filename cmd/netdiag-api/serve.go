package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fgeck/netdiag-api/internal/config"
	"github.com/fgeck/netdiag-api/internal/server"
	"github.com/fgeck/netdiag-api/internal/services/diagnostics"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the diagnostics HTTP server",
	Long: `Start the HTTP server:
  GET  /health          liveness and server location
  POST /api/ping        run ping against {"target": ...}
  POST /api/traceroute  run traceroute against {"target": ...}
  GET  /metrics         prometheus metrics (if enabled)`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
		return err
	}

	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	platform := diagnostics.CurrentPlatform()
	log.Info().
		Int("port", cfg.Server.Port).
		Str("location", cfg.Server.Location).
		Str("platform", platform.String()).
		Bool("rate_limit", cfg.RateLimit.Enabled).
		Msg("configuration loaded")

	// Set up context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	gin.SetMode(gin.ReleaseMode)

	diagSvc := diagnostics.New(log.Logger, cfg.Diagnostics)
	srv := server.New(log.Logger, *cfg, diagSvc)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server failed")
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
