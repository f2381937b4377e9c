// Package server exposes the diagnostics service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/fgeck/netdiag-api/internal/metrics"
	"github.com/fgeck/netdiag-api/internal/models"
	"github.com/fgeck/netdiag-api/internal/services/diagnostics"
	"github.com/fgeck/netdiag-api/internal/services/ratelimit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Server wires the diagnostics service to a gin router.
type Server struct {
	cfg         models.Config
	diagnostics diagnostics.Service
	limiter     *ratelimit.Limiter // nil when rate limiting is disabled
	router      *gin.Engine
	logger      zerolog.Logger
	now         func() time.Time

	// runCtx outlives individual requests and is cancelled on shutdown.
	runCtx   context.Context
	stopRuns context.CancelFunc
}

// New creates a server and registers its routes.
func New(logger zerolog.Logger, cfg models.Config, diagSvc diagnostics.Service) *Server {
	s := &Server{
		cfg:         cfg,
		diagnostics: diagSvc,
		logger:      logger,
		now:         time.Now,
	}
	s.runCtx, s.stopRuns = context.WithCancel(context.Background())
	if cfg.RateLimit.Enabled {
		s.limiter = ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	metrics.RegisterMetrics()

	r := gin.New()
	r.Use(Recovery(logger))
	r.Use(RequestLogger(logger))
	r.Use(RequestMetrics())
	r.Use(SecurityHeaders())
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))
	if s.limiter != nil {
		r.Use(RateLimit(s.limiter, apiPrefix))
	}
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Warn().Err(err).Strs("proxies", cfg.Server.TrustedProxies).Msg("invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}
	s.router = r

	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully within the configured shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.stopRuns()

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("location", s.cfg.Server.Location).
		Msg("diagnostics server listening")

	var sweep <-chan time.Time
	if s.limiter != nil {
		ticker := time.NewTicker(s.limiter.Window())
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("serving http: %w", err)
		case now := <-sweep:
			if n := s.limiter.Sweep(now); n > 0 {
				s.logger.Debug().Int("evicted", n).Msg("rate limiter swept idle clients")
			}
		case <-ctx.Done():
			s.logger.Info().Dur("timeout", s.cfg.Server.ShutdownTimeout).Msg("shutting down server")
			s.stopRuns()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutting down: %w", err)
			}
			return nil
		}
	}
}

// runContext detaches a diagnostic run from the client connection. Only the
// run deadline or server shutdown cancels it.
func (s *Server) runContext(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(req))
	stop := context.AfterFunc(s.runCtx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
