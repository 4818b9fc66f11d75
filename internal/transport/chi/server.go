// Package chi exposes the quality matrix API over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/metaqual/internal/domain"
	"github.com/kailas-cloud/metaqual/internal/domain/matrix"
	logpkg "github.com/kailas-cloud/metaqual/internal/logger"
	healthuc "github.com/kailas-cloud/metaqual/internal/usecase/health"
	qualityuc "github.com/kailas-cloud/metaqual/internal/usecase/quality"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server handles the quality matrix HTTP API.
type Server struct {
	quality       *qualityuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(quality *qualityuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		quality: quality,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrTreeNotFound, http.StatusNotFound, codeCollectionNotFound),
		sentinelHandler(domain.ErrSnapshotNotFound, http.StatusNotFound, codeSnapshotNotFound),
		sentinelHandler(domain.ErrUnknownMode, http.StatusBadRequest, codeUnknownMode),
		sentinelHandler(domain.ErrUpstreamQuery, http.StatusBadGateway, codeUpstreamQueryFailed),
		sentinelHandler(domain.ErrLabelsUnavailable, http.StatusBadGateway, codeLabelsUnavailable),
	}
	return s
}

// Routes registers every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1/collections/{node_id}/quality-matrix/{mode}", func(r chi.Router) {
		r.Get("/", s.GetQualityMatrix)
		r.Get("/timestamps", s.GetTimestamps)
		r.Get("/timestamps/{timestamp}", s.GetSnapshot)
	})
}

// GetQualityMatrix handles GET /collections/{node_id}/quality-matrix/{mode}.
func (s *Server) GetQualityMatrix(w http.ResponseWriter, r *http.Request) {
	nodeID, mode, ok := s.pathParams(w, r)
	if !ok {
		return
	}

	m, err := s.quality.Compute(r.Context(), nodeID, mode)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matrixToDTO(m))
}

// GetTimestamps handles GET .../quality-matrix/{mode}/timestamps.
func (s *Server) GetTimestamps(w http.ResponseWriter, r *http.Request) {
	nodeID, mode, ok := s.pathParams(w, r)
	if !ok {
		return
	}

	ts, err := s.quality.Timestamps(r.Context(), nodeID, mode)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, timestampsResponse{Timestamps: ts})
}

// GetSnapshot handles GET .../quality-matrix/{mode}/timestamps/{timestamp}.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	nodeID, mode, ok := s.pathParams(w, r)
	if !ok {
		return
	}

	ts, err := strconv.ParseInt(chi.URLParam(r, "timestamp"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "timestamp must be a unix epoch integer")
		return
	}

	m, err := s.quality.AtTimestamp(r.Context(), nodeID, mode, ts)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, matrixToDTO(m))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// pathParams validates node_id and mode from the URL. On failure it has
// already written the error response.
func (s *Server) pathParams(w http.ResponseWriter, r *http.Request) (string, matrix.Mode, bool) {
	nodeID := chi.URLParam(r, "node_id")
	if _, err := uuid.Parse(nodeID); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "node_id must be a UUID")
		return "", "", false
	}

	mode, err := matrix.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return "", "", false
	}

	return nodeID, mode, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrTreeNotFound,
		domain.ErrSnapshotNotFound,
		domain.ErrUnknownMode,
		domain.ErrUpstreamQuery,
		domain.ErrLabelsUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
