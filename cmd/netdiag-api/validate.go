package main

import (
	"fmt"
	"os"

	"github.com/fgeck/netdiag-api/internal/config"
	"github.com/fgeck/netdiag-api/internal/services/diagnostics"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  `Validate the configuration file and environment without starting the server.`,
	RunE:  validateConfig,
}

func validateConfig(cmd *cobra.Command, args []string) error {
	// Check if file exists
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			log.Error().Str("file", configFile).Msg("config file not found")
			return fmt.Errorf("config file not found: %s", configFile)
		}
	}

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to parse config")
		return err
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Error().Err(err).Msg("configuration validation failed")
		return err
	}

	out := cmd.OutOrStdout()

	// Print configuration summary
	fmt.Fprintln(out, "Configuration is valid!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Server:")
	fmt.Fprintf(out, "  Port: %d\n", cfg.Server.Port)
	fmt.Fprintf(out, "  Location: %s\n", cfg.Server.Location)
	fmt.Fprintf(out, "  Trusted proxies: %v\n", cfg.Server.TrustedProxies)
	fmt.Fprintf(out, "  Shutdown timeout: %s\n", cfg.Server.ShutdownTimeout)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Diagnostics:")
	fmt.Fprintf(out, "  Platform: %s\n", diagnostics.CurrentPlatform())
	fmt.Fprintf(out, "  Ping count: %d\n", cfg.Diagnostics.PingCount)
	fmt.Fprintf(out, "  Ping timeout: %s\n", cfg.Diagnostics.PingTimeout)
	fmt.Fprintf(out, "  Traceroute timeout: %s\n", cfg.Diagnostics.TracerouteTimeout)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Optional Features:")
	fmt.Fprintf(out, "  Rate limit: %v\n", cfg.RateLimit.Enabled)
	fmt.Fprintf(out, "  Metrics: %v\n", cfg.Metrics.Enabled)
	fmt.Fprintf(out, "  CORS origins: %v\n", cfg.CORS.AllowedOrigins)

	if cfg.RateLimit.Enabled {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Rate Limit Configuration:")
		fmt.Fprintf(out, "  Requests: %d per %s per client IP\n", cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	if cfg.Metrics.Enabled {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Metrics Configuration:")
		fmt.Fprintf(out, "  Path: %s\n", cfg.Metrics.Path)
	}

	return nil
}
