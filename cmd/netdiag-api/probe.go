package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/fgeck/netdiag-api/internal/models"
	"github.com/fgeck/netdiag-api/internal/services/diagnostics"
	"github.com/fgeck/netdiag-api/internal/services/validator"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <ping|traceroute> <target>",
	Short: "Run a single diagnostic locally",
	Long: `Run one diagnostic against a target with the same validation and
deadlines as the HTTP server, and print the tool's output.`,
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(models.OperationPing), string(models.OperationTraceroute)},
	RunE:      runProbe,
}

func runProbe(cmd *cobra.Command, args []string) error {
	op := models.Operation(args[0])
	target := args[1]

	if !slices.Contains(models.Operations, op) {
		return fmt.Errorf("unknown operation %q (want ping or traceroute)", args[0])
	}
	if !validator.ValidTarget(target) {
		log.Error().Str("target", target).Msg("invalid target")
		return fmt.Errorf("invalid target %q: must be a valid hostname or IPv4 address", target)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Error().Err(err).Str("file", configFile).Msg("failed to load config")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	diagSvc := diagnostics.New(log.Logger, cfg.Diagnostics)

	var result *models.CommandResult
	if op == models.OperationPing {
		result, err = diagSvc.Ping(ctx, target)
	} else {
		result, err = diagSvc.Traceroute(ctx, target)
	}
	if err != nil {
		log.Error().Err(err).Str("operation", string(op)).Msg("probe failed")
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), result.Output)
	return nil
}
