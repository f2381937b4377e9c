// Package diagnostics runs the host's ping and traceroute tools and maps their
// outcome to a response envelope.
package diagnostics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/fgeck/netdiag-api/internal/metrics"
	"github.com/fgeck/netdiag-api/internal/models"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout           = 30 * time.Second
	DefaultTracerouteTimeout = 60 * time.Second
	DefaultPingCount         = 4

	// waitDelay bounds how long Wait blocks on output pipes after the
	// process has been killed.
	waitDelay = 2 * time.Second
)

var (
	// ErrExecution marks every failed run. Callers map it to a server error.
	ErrExecution = errors.New("command execution failed")
	// ErrTimeout marks runs killed by their deadline; it wraps ErrExecution.
	ErrTimeout = fmt.Errorf("%w: deadline exceeded", ErrExecution)
	// ErrUnknownOperation is returned for operations outside the command table.
	ErrUnknownOperation = errors.New("unknown operation")
)

// Service defines the interface for diagnostic operations.
type Service interface {
	Run(ctx context.Context, op models.Operation, target string, timeout time.Duration) (*models.CommandResult, error)
	Ping(ctx context.Context, target string) (*models.CommandResult, error)
	Traceroute(ctx context.Context, target string) (*models.CommandResult, error)
}

// CommandExecutor allows mocking exec.Command in tests.
type CommandExecutor interface {
	Execute(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// DefaultExecutor is the default command executor using os/exec.
type DefaultExecutor struct{}

// Execute runs a command and returns its standard output and standard error.
// The process is killed when ctx is done.
func (e *DefaultExecutor) Execute(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Impl implements the Service interface.
type Impl struct {
	executor CommandExecutor
	platform Platform
	settings models.DiagnosticsSettings
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a new diagnostics service for the current platform.
func New(logger zerolog.Logger, settings models.DiagnosticsSettings) *Impl {
	return NewWithExecutor(logger, settings, &DefaultExecutor{}, CurrentPlatform())
}

// NewWithExecutor creates a new diagnostics service with a custom executor and platform (for testing).
func NewWithExecutor(logger zerolog.Logger, settings models.DiagnosticsSettings, executor CommandExecutor, platform Platform) *Impl {
	if settings.PingCount <= 0 {
		settings.PingCount = DefaultPingCount
	}
	if settings.PingTimeout <= 0 {
		settings.PingTimeout = DefaultTimeout
	}
	if settings.TracerouteTimeout <= 0 {
		settings.TracerouteTimeout = DefaultTracerouteTimeout
	}

	return &Impl{
		executor: executor,
		platform: platform,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Ping runs ping against an already validated target.
func (s *Impl) Ping(ctx context.Context, target string) (*models.CommandResult, error) {
	return s.Run(ctx, models.OperationPing, target, s.settings.PingTimeout)
}

// Traceroute runs traceroute against an already validated target.
func (s *Impl) Traceroute(ctx context.Context, target string) (*models.CommandResult, error) {
	return s.Run(ctx, models.OperationTraceroute, target, s.settings.TracerouteTimeout)
}

// Run executes op against target with a hard deadline. The target is not
// re-validated here.
//
// On success the result holds the command output and the error is nil. On
// failure the result is a failure envelope and the error wraps ErrExecution
// (and ErrTimeout when the deadline fired).
func (s *Impl) Run(ctx context.Context, op models.Operation, target string, timeout time.Duration) (*models.CommandResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	name, args, err := BuildCommand(s.platform, op, target, s.settings.PingCount)
	if err != nil {
		return s.fail(op, metrics.OutcomeFailure, 0, fmt.Errorf("%w: %w", ErrExecution, err))
	}

	log := s.logger.With().
		Str("operation", string(op)).
		Str("target", target).
		Logger()
	log.Info().Str("command", name).Dur("timeout", timeout).Msg("running diagnostic")

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, err := s.executor.Execute(runCtx, name, args...)
	duration := time.Since(start)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			log.Warn().Err(ctx.Err()).Dur("duration", duration).Msg("diagnostic cancelled")
			return s.fail(op, metrics.OutcomeFailure, duration,
				fmt.Errorf("%w: %s cancelled: %w", ErrExecution, op, ctx.Err()))
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			log.Warn().Dur("duration", duration).Msg("diagnostic timed out")
			return s.fail(op, metrics.OutcomeTimeout, duration,
				fmt.Errorf("%w: %s timed out after %s", ErrTimeout, op, timeout))
		default:
			log.Warn().Err(err).Dur("duration", duration).Msg("diagnostic failed")
			return s.fail(op, metrics.OutcomeFailure, duration,
				fmt.Errorf("%w: %s failed: %w%s", ErrExecution, op, err, detail(stdout, stderr)))
		}
	}

	output := string(stdout)
	if len(stdout) == 0 {
		output = string(stderr)
	}
	if output == "" {
		log.Warn().Dur("duration", duration).Msg("diagnostic produced no output")
		return s.fail(op, metrics.OutcomeFailure, duration,
			fmt.Errorf("%w: %s produced no output", ErrExecution, op))
	}

	metrics.RecordDiagnosticRun(string(op), metrics.OutcomeSuccess, duration)
	log.Info().Dur("duration", duration).Int("bytes", len(output)).Msg("diagnostic completed")

	return models.NewSuccessResult(output, s.now()), nil
}

func (s *Impl) fail(op models.Operation, outcome string, duration time.Duration, err error) (*models.CommandResult, error) {
	metrics.RecordDiagnosticRun(string(op), outcome, duration)
	return models.NewFailureResult(err.Error(), s.now()), err
}

// detail picks the most useful stream of a failed run for the error message.
func detail(stdout, stderr []byte) string {
	if msg := strings.TrimSpace(string(stderr)); msg != "" {
		return ": " + msg
	}
	if msg := strings.TrimSpace(string(stdout)); msg != "" {
		return ": " + msg
	}
	return ""
}
