// Package httpadapter exposes the analysis pipeline and stored reports
// over HTTP.
package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"sentinel/internal/domain"
	"sentinel/internal/ports"
	reportsvc "sentinel/internal/services/reports"
)

type Server struct {
	pipeline ports.Pipeline
	reports  *reportsvc.Service
	jobs     ports.JobRepository
	logger   *slog.Logger
}

func New(pipeline ports.Pipeline, reports *reportsvc.Service, jobs ports.JobRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{pipeline: pipeline, reports: reports, jobs: jobs, logger: logger}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Route("/api/v1", func(r chi.Router) {
		// Static routes before dynamic ones.
		r.Post("/analyze/batch", s.analyzeBatch)
		r.Post("/analyze/{characterID}", s.analyze)
		r.Get("/reports/{reportID}", s.getReport)
		r.Get("/characters/{characterID}/reports", s.listReports)
		r.Get("/characters/{characterID}/reports/latest", s.latestReport)
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// analyze runs a synchronous analysis. With ?queue=true the request is
// enqueued for the background workers instead and answered with 202.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	characterID, err := strconv.ParseInt(chi.URLParam(r, "characterID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}
	requestedBy := r.URL.Query().Get("requested_by")

	if r.URL.Query().Get("queue") == "true" {
		if s.jobs == nil {
			writeError(w, http.StatusServiceUnavailable, "job queue not configured")
			return
		}
		jobID, err := s.jobs.Enqueue(r.Context(), characterID, requestedBy)
		if err != nil {
			s.fail(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"job_id": jobID})
		return
	}

	report, err := s.pipeline.Analyze(r.Context(), characterID, requestedBy)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type batchRequest struct {
	CharacterIDs []int64 `json:"character_ids"`
	RequestedBy  string  `json:"requested_by"`
}

func (s *Server) analyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if len(req.CharacterIDs) == 0 {
		writeError(w, http.StatusBadRequest, "character_ids is required")
		return
	}
	reports, err := s.pipeline.AnalyzeBatch(r.Context(), req.CharacterIDs, req.RequestedBy)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":   len(reports),
		"reports": reports,
	})
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) latestReport(w http.ResponseWriter, r *http.Request) {
	characterID, err := strconv.ParseInt(chi.URLParam(r, "characterID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}
	report, err := s.reports.LatestForCharacter(r.Context(), characterID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	characterID, err := strconv.ParseInt(chi.URLParam(r, "characterID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid character id")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reports, err := s.reports.ListForCharacter(r.Context(), characterID, limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, "upstream data source unavailable")
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
