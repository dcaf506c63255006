package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Console captures the admin console configuration: where the marketplace
// admin API lives and how the client should talk to it.
type Console struct {
	// APIBaseURL is the base URL of the admin API. Endpoints are relative
	// paths under it; it must not include the /api prefix.
	APIBaseURL string `yaml:"api_base_url"`

	// RequestTimeout bounds every API call. A timeout surfaces as a generic
	// network error to the caller, never as an auth error.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// DebugAddr, when non-empty, serves /metrics and /healthz on localhost
	// for troubleshooting. Empty disables the listener.
	DebugAddr string `yaml:"debug_addr"`

	// TracingEnabled switches the API client from the no-op tracer to otel.
	TracingEnabled bool `yaml:"tracing_enabled"`
}

const (
	defaultBaseURL = "http://localhost:9000"
	defaultTimeout = 30 * time.Second
)

// FromEnv builds a Console config from environment variables so main stays lean.
func FromEnv() Console {
	cfg := Console{
		APIBaseURL:     defaultBaseURL,
		RequestTimeout: defaultTimeout,
	}
	cfg.applyEnv()
	return cfg
}

// Load reads an optional YAML config file, then applies environment
// overrides on top. A missing file is not an error; a malformed one is.
func Load(path string) (Console, error) {
	cfg := Console{
		APIBaseURL:     defaultBaseURL,
		RequestTimeout: defaultTimeout,
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}
	return cfg, nil
}

func (c *Console) applyEnv() {
	if v := os.Getenv("PROPADMIN_API_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("PROPADMIN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.RequestTimeout = d
		}
	}
	if v := os.Getenv("PROPADMIN_DEBUG_ADDR"); v != "" {
		c.DebugAddr = v
	}
	if os.Getenv("PROPADMIN_TRACING") == "true" {
		c.TracingEnabled = true
	}
}
