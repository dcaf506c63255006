// Package debug serves the operational sidecar endpoints: Prometheus metrics
// and a liveness probe. The console only starts it when a debug address is
// configured.
package debug

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the debug HTTP listener.
type Server struct {
	addr   string
	logger *slog.Logger
	srv    *http.Server
}

// New builds a debug server exposing the given registry on /metrics.
func New(addr string, registry *prometheus.Registry, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		addr:   addr,
		logger: logger,
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in a goroutine and returns immediately.
func (s *Server) Start() {
	go func() {
		s.logger.Info("debug listener started", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("debug listener failed", "error", err)
		}
	}()
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
