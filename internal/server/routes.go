package server

import (
	"context"
	"net/http"

	"github.com/fgeck/netdiag-api/internal/models"
	"github.com/fgeck/netdiag-api/internal/services/validator"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client-facing error messages.
const (
	MsgInvalidTarget   = "Invalid target. Must be a valid hostname or IPv4 address."
	MsgNotFound        = "Endpoint not found"
	MsgInternalError   = "Internal server error"
	MsgTooManyRequests = "Too many requests, please try again later."
)

const apiPrefix = "/api/"

type diagnosticRequest struct {
	Target any `json:"target"`
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	if s.cfg.Metrics.Enabled {
		s.router.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	api := s.router.Group("/api")
	api.POST("/ping", s.handleDiagnostic(models.OperationPing, s.diagnostics.Ping))
	api.POST("/traceroute", s.handleDiagnostic(models.OperationTraceroute, s.diagnostics.Traceroute))

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   MsgNotFound,
		})
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthStatus{
		Status:    "ok",
		Timestamp: models.FormatTimestamp(s.now()),
		Location:  s.cfg.Server.Location,
	})
}

type runFunc func(ctx context.Context, target string) (*models.CommandResult, error)

func (s *Server) handleDiagnostic(op models.Operation, run runFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req diagnosticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.logger.Debug().Err(err).Str("operation", string(op)).Msg("unreadable request body")
		}

		if !validator.Validate(req.Target) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   MsgInvalidTarget,
			})
			return
		}
		target := req.Target.(string)

		ctx, cancel := s.runContext(c.Request.Context())
		defer cancel()

		result, err := run(ctx, target)
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("operation", string(op)).
				Str("target", target).
				Msg("diagnostic failed")
			if result == nil {
				result = models.NewFailureResult(err.Error(), s.now())
			}
			c.JSON(http.StatusInternalServerError, result)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
