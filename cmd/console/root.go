package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"propadmin/internal/api"
	"propadmin/internal/api/metrics"
	"propadmin/internal/api/tracer"
	"propadmin/internal/platform/config"
	"propadmin/internal/platform/logger"
	dErrors "propadmin/pkg/domain-errors"
)

// loadConfig resolves configuration from file, environment, and flags, in
// that order of increasing precedence.
func loadConfig(cmd *cobra.Command) (config.Console, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if apiURL, _ := cmd.Flags().GetString("api"); apiURL != "" {
		cfg.APIBaseURL = apiURL
	}
	return cfg, nil
}

// newClient builds the API client from config with logging, metrics, and
// optional tracing wired in.
func newClient(cfg config.Console, registry *prometheus.Registry) (*api.Client, error) {
	log := logger.New()

	opts := []api.Option{
		api.WithLogger(log),
		api.WithTimeout(cfg.RequestTimeout),
		api.WithCircuitBreaker(3, 10*time.Second),
	}
	if registry != nil {
		opts = append(opts, api.WithMetrics(metrics.New(registry)))
	}
	if cfg.TracingEnabled {
		opts = append(opts, api.WithTracer(tracer.NewOTel()))
	}
	return api.New(cfg.APIBaseURL, opts...)
}

// newAuthedClient is the scripting path: it primes CSRF and logs in with
// PROPADMIN_EMAIL / PROPADMIN_PASSWORD. Accounts that need an MFA step-up
// cannot be scripted this way.
func newAuthedClient(ctx context.Context, cmd *cobra.Command) (*api.Client, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	client, err := newClient(cfg, nil)
	if err != nil {
		return nil, err
	}

	email := os.Getenv("PROPADMIN_EMAIL")
	password := os.Getenv("PROPADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil, fmt.Errorf("set PROPADMIN_EMAIL and PROPADMIN_PASSWORD for non-interactive commands")
	}

	client.FetchCSRFToken(ctx)
	result, err := client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %s", dErrors.MessageOf(err, err.Error()))
	}
	if result.Outcome != api.OutcomeAuthenticated {
		return nil, fmt.Errorf("account requires %s; use the interactive console", result.Outcome)
	}
	return client, nil
}
