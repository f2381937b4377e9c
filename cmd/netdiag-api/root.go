package main

import (
	"io"
	"os"
	"strings"

	"github.com/fgeck/netdiag-api/internal/config"
	"github.com/fgeck/netdiag-api/internal/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "dev"

	// Configuration flags.
	configFile string
	verbose    bool
	quiet      bool
	jsonOutput bool

	// Logs go to stderr so probe output on stdout stays pipeable.
	logOutput io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "netdiag-api",
	Short: "Network diagnostics (ping, traceroute) over HTTP",
	Long: `netdiag-api exposes the host's ping and traceroute tools over HTTP:
  - POST /api/ping and /api/traceroute with {"target": "<hostname or IPv4>"}
  - targets are validated against strict hostname/IPv4 grammars
  - every run has a hard deadline (ping 30s, traceroute 60s by default)
  - per-client rate limiting on /api routes

Configuration comes from an optional YAML file, PORT / SERVER_LOCATION,
and NETDIAG_* environment variables.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
	SilenceUsage: true,
	Version:      Version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose (debug) output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "enable quiet mode (errors only)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output logs in JSON format")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(validateCmd)
}

func setupLogging() {
	log.Logger = newLogger(logOutput, jsonOutput)

	// Set log level
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func newLogger(w io.Writer, asJSON bool) zerolog.Logger {
	if asJSON {
		return zerolog.New(w).With().Timestamp().Logger()
	}
	output := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	output.FormatLevel = func(i interface{}) string {
		if s, ok := i.(string); ok {
			return strings.ToUpper(s)
		}
		return ""
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// loadConfig reads the config file when one is given and falls back to
// defaults and the environment otherwise.
func loadConfig() (*models.Config, error) {
	parser := config.NewParser()
	if configFile == "" {
		return parser.Load()
	}
	return parser.LoadFile(configFile)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
