package config

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// ServerConfig holds runtime configuration for the API server.
type ServerConfig struct {
	Port      string `envconfig:"API_PORT" default:"8080"`
	Env       string `envconfig:"API_ENV" default:"development"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`

	PresetDir string `envconfig:"PRESET_DIR" default:"presets"`
	StaticDir string `envconfig:"STATIC_DIR" default:""`

	CacheBackend string        `envconfig:"CACHE_BACKEND" default:"memory"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"30m"`
	RedisAddr    string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPrefix  string        `envconfig:"REDIS_PREFIX" default:"lbo:"`

	GridWorkers int      `envconfig:"GRID_WORKERS" default:"0"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// LoadServer reads configuration from environment variables.
func LoadServer() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	switch cfg.CacheBackend {
	case CacheMemory, CacheRedis, CacheNone:
	default:
		return nil, fmt.Errorf("CACHE_BACKEND must be one of memory, redis, none (got %q)", cfg.CacheBackend)
	}
	if cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive (got %s)", cfg.CacheTTL)
	}
	if cfg.GridWorkers < 0 {
		return nil, fmt.Errorf("GRID_WORKERS must be >= 0 (got %d)", cfg.GridWorkers)
	}
	return &cfg, nil
}

// IsProduction returns true when the server runs in production.
func (c *ServerConfig) IsProduction() bool {
	return c != nil && c.Env == "production"
}

func (c *ServerConfig) Addr() string { return ":" + c.Port }

// NewLogger builds the process logger: JSON in production or when
// LOG_FORMAT=json, text otherwise.
func (c *ServerConfig) NewLogger(w io.Writer) *slog.Logger {
	if c.IsProduction() || c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{AddSource: true}))
}
