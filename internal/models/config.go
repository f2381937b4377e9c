// Package models contains the data structures used throughout netdiag-api.
package models

import "time"

// Config holds the complete configuration for the diagnostics server.
type Config struct {
	Server      ServerSettings
	RateLimit   RateLimitSettings
	CORS        CORSSettings
	Diagnostics DiagnosticsSettings
	Metrics     MetricsSettings
}

// ServerSettings holds HTTP listener settings.
type ServerSettings struct {
	Port            int
	Location        string // surfaced verbatim in /health
	TrustedProxies  []string
	ShutdownTimeout time.Duration
}

// RateLimitSettings defines per-client admission control for /api routes.
type RateLimitSettings struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// CORSSettings holds cross-origin settings.
type CORSSettings struct {
	AllowedOrigins []string
}

// DiagnosticsSettings holds per-operation execution limits.
type DiagnosticsSettings struct {
	PingCount         int
	PingTimeout       time.Duration
	TracerouteTimeout time.Duration
}

// MetricsSettings controls the prometheus endpoint.
type MetricsSettings struct {
	Enabled bool
	Path    string
}
