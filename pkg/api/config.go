package api

import (
	"time"

	"github.com/marmos91/filebank/pkg/api/auth"
	"github.com/marmos91/filebank/pkg/metrics"
)

// Config configures the REST API HTTP server.
type Config struct {
	// Port is the HTTP port for the API endpoints.
	// Default: 8080
	Port int

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body. A zero or negative value means there is no timeout.
	// Default: 30s
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	// Default: 5m
	WriteTimeout time.Duration

	// IdleTimeout is the maximum amount of time to wait for the next request
	// when keep-alives are enabled. Default: 60s
	IdleTimeout time.Duration

	// MaxUploadSize caps multipart upload bodies. 0 disables the limit.
	MaxUploadSize int64

	// Auth enables bearer token checks on /api routes. Nil disables them.
	Auth *AuthConfig

	// Metrics instruments every request. May be nil.
	Metrics *metrics.HTTPMetrics
}

// AuthConfig binds the token validator and the scope sets of each route
// group. A token needs any one scope of the set.
type AuthConfig struct {
	JWT          *auth.JWTService
	ReadScopes   []string
	WriteScopes  []string
	DeleteScopes []string
}

// applyDefaults fills in zero values with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 5 * time.Minute
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
}
