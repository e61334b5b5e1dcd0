package metrics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Pinger reports whether the service's dependencies (here, the in-memory
// store) are usable. The in-memory store is always ready once
// constructed; this hook exists so the shape matches a service that
// later gains a real dependency to ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves /health, /ready and /metrics on its own listener,
// entirely outside the ZKP wire protocol.
type Server struct {
	http   *http.Server
	logger zerolog.Logger
}

// NewServer builds the side-channel HTTP server.
func NewServer(addr string, pinger Pinger, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pinger.Ping(r.Context()); err != nil {
			logger.Error().Err(err).Msg("readiness check failed")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "not ready", "reason": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
	})

	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		http:   &http.Server{Addr: addr, Handler: mux},
		logger: logger,
	}
}

// ListenAndServe blocks, serving until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
