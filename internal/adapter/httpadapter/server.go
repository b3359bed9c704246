package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/roof-spec-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Analyzer runs one project request through the analysis stages.
type Analyzer interface {
	Analyze(ctx context.Context, source string, req domain.ProjectRequest) (domain.Analysis, error)
}

// Server exposes the analysis API together with health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	analyzer   Analyzer
	maxBytes   int64
	logger     *slog.Logger
}

// NewServer creates an HTTP server with POST /v1/analyses, /healthz, /readyz,
// and /metrics routes. Request bodies larger than maxBytes are rejected.
func NewServer(addr string, ready sharedobs.ReadinessChecker, analyzer Analyzer, maxBytes int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		analyzer: analyzer,
		maxBytes: int64(maxBytes),
		logger:   logger,
	}

	mux.HandleFunc("POST /v1/analyses", s.handleAnalyze)
	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

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
