// Package config provides configuration file parsing.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fgeck/netdiag-api/internal/models"
	"github.com/spf13/viper"
)

// Defaults applied when neither the config file nor the environment sets a value.
const (
	DefaultPort              = 3000
	DefaultLocation          = "Unknown"
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = time.Minute
	DefaultPingCount         = 4
	DefaultPingTimeout       = 30 * time.Second
	DefaultTracerouteTimeout = 60 * time.Second
	DefaultMetricsPath       = "/metrics"
)

// Parser handles configuration file parsing.
type Parser struct {
	v *viper.Viper
}

// NewParser creates a new configuration parser.
func NewParser() *Parser {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.location", DefaultLocation)
	v.SetDefault("server.trusted_proxies", []string{"127.0.0.1", "::1"})
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", DefaultRateLimitRequests)
	v.SetDefault("rate_limit.window", DefaultRateLimitWindow)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("diagnostics.ping_count", DefaultPingCount)
	v.SetDefault("diagnostics.ping_timeout", DefaultPingTimeout)
	v.SetDefault("diagnostics.traceroute_timeout", DefaultTracerouteTimeout)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", DefaultMetricsPath)

	// PORT and SERVER_LOCATION are the conventional deployment variables;
	// everything else can be overridden with NETDIAG_<SECTION>_<KEY>.
	_ = v.BindEnv("server.port", "PORT")
	_ = v.BindEnv("server.location", "SERVER_LOCATION")
	v.SetEnvPrefix("netdiag")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Parser{v: v}
}

// Load builds configuration from defaults and the environment only.
func (p *Parser) Load() (*models.Config, error) {
	return p.parse()
}

// LoadFile loads configuration from a file path.
func (p *Parser) LoadFile(path string) (*models.Config, error) {
	p.v.SetConfigFile(path)

	if err := p.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return p.parse()
}

// LoadReader loads configuration from a reader (useful for testing).
func (p *Parser) LoadReader(content string) (*models.Config, error) {
	if err := p.v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return p.parse()
}

func (p *Parser) parse() (*models.Config, error) {
	cfg := &models.Config{
		Server: models.ServerSettings{
			Port:            p.v.GetInt("server.port"),
			Location:        p.v.GetString("server.location"),
			TrustedProxies:  p.v.GetStringSlice("server.trusted_proxies"),
			ShutdownTimeout: p.v.GetDuration("server.shutdown_timeout"),
		},
		RateLimit: models.RateLimitSettings{
			Enabled:  p.v.GetBool("rate_limit.enabled"),
			Requests: p.v.GetInt("rate_limit.requests"),
			Window:   p.v.GetDuration("rate_limit.window"),
		},
		CORS: models.CORSSettings{
			AllowedOrigins: p.v.GetStringSlice("cors.allowed_origins"),
		},
		Diagnostics: models.DiagnosticsSettings{
			PingCount:         p.v.GetInt("diagnostics.ping_count"),
			PingTimeout:       p.v.GetDuration("diagnostics.ping_timeout"),
			TracerouteTimeout: p.v.GetDuration("diagnostics.traceroute_timeout"),
		},
		Metrics: models.MetricsSettings{
			Enabled: p.v.GetBool("metrics.enabled"),
			Path:    p.v.GetString("metrics.path"),
		},
	}

	if cfg.Server.Location == "" {
		cfg.Server.Location = DefaultLocation
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate performs validation on the loaded configuration.
func Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.Requests <= 0 {
			return fmt.Errorf("rate_limit.requests must be positive")
		}
		if cfg.RateLimit.Window <= 0 {
			return fmt.Errorf("rate_limit.window must be positive")
		}
	}

	if cfg.Diagnostics.PingCount < 1 || cfg.Diagnostics.PingCount > 100 {
		return fmt.Errorf("diagnostics.ping_count must be between 1 and 100, got %d", cfg.Diagnostics.PingCount)
	}
	if cfg.Diagnostics.PingTimeout <= 0 {
		return fmt.Errorf("diagnostics.ping_timeout must be positive")
	}
	if cfg.Diagnostics.TracerouteTimeout <= 0 {
		return fmt.Errorf("diagnostics.traceroute_timeout must be positive")
	}

	if cfg.Metrics.Enabled {
		if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /")
		}
		if cfg.Metrics.Path == "/health" || strings.HasPrefix(cfg.Metrics.Path, "/api/") {
			return fmt.Errorf("metrics.path %q collides with an API route", cfg.Metrics.Path)
		}
	}

	return nil
}
