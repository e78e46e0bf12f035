package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/quake-mechanism-etl/internal/domain"
	"github.com/couchcryptid/quake-mechanism-etl/internal/geometry/matrix"
)

// maxRequestBytes bounds a /decompose request body.
const maxRequestBytes = 1 << 16

// Server exposes health, readiness, metrics and on-demand decomposition
// HTTP endpoints.
type Server struct {
	httpServer   *http.Server
	logger       *slog.Logger
	maxRotations int
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// POST /decompose routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, maxRotations int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:       logger,
		maxRotations: maxRotations,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /decompose", s.handleDecompose)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleDecompose(w http.ResponseWriter, r *http.Request) {
	var in domain.TensorInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	tensor, err := in.Tensor()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	d, err := domain.Decompose(tensor, matrix.WithMaxRotations(s.maxRotations))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrDecompositionFailed) {
			status = http.StatusUnprocessableEntity
		}
		s.logger.Warn("decompose request failed", "error", err)
		writeError(w, status, err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, domain.Summarize(tensor, d))
}

func writeError(w http.ResponseWriter, status int, err error) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": err.Error()})
}
