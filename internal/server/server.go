package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/nkov/comment-triage/internal/classifier"
	"github.com/nkov/comment-triage/internal/pipeline"
	"github.com/nkov/comment-triage/internal/taxonomy"
)

// Server is the service-side contract of the operator dashboard: one
// synchronous triage call per user action, plus history and analytics.
type Server struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

func New(p *pipeline.Pipeline, logger *zap.Logger) http.Handler {
	s := &Server{pipeline: p, logger: logger}
	mux := http.NewServeMux()

	mux.HandleFunc("/triage", s.handleTriage)
	mux.HandleFunc("/history", s.handleHistory)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

type triageRequest struct {
	Comment    string `json:"comment"`
	ContactRef string `json:"contact_ref,omitempty"`
}

type triageResponse struct {
	ID          string    `json:"id"`
	Comment     string    `json:"comment"`
	Category    string    `json:"category"`
	Score       float64   `json:"score"`
	Reply       string    `json:"reply"`
	CRMStatus   string    `json:"crm_status"`
	Engagement  int       `json:"engagement_score"`
	Warning     string    `json:"warning,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
	DurationMS  int64     `json:"duration_ms"`
}

type statsResponse struct {
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleTriage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req triageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	outcome, err := s.pipeline.Process(r.Context(), req.Comment, req.ContactRef)
	if err != nil {
		if errors.Is(err, classifier.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Triage request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, triageResponse{
		ID:          outcome.ID,
		Comment:     outcome.Comment,
		Category:    string(outcome.Result.Label),
		Score:       outcome.Result.Score,
		Reply:       outcome.Reply,
		CRMStatus:   string(outcome.CRMStatus),
		Engagement:  outcome.Engagement,
		Warning:     outcome.Warning,
		ProcessedAt: outcome.ProcessedAt,
		DurationMS:  outcome.Duration.Milliseconds(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListHistory(w, r)
	case http.MethodDelete:
		s.handleClearHistory(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	outcomes, err := s.pipeline.History(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("Failed to list history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	responses := make([]triageResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		responses = append(responses, triageResponse{
			ID:          outcome.ID,
			Comment:     outcome.Comment,
			Category:    string(outcome.Result.Label),
			Score:       outcome.Result.Score,
			Reply:       outcome.Reply,
			CRMStatus:   string(outcome.CRMStatus),
			Engagement:  outcome.Engagement,
			Warning:     outcome.Warning,
			ProcessedAt: outcome.ProcessedAt,
			DurationMS:  outcome.Duration.Milliseconds(),
		})
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.pipeline.ClearHistory(r.Context()); err != nil {
		s.logger.Error("Failed to clear history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	counts, err := s.pipeline.Stats(r.Context())
	if err != nil {
		s.logger.Error("Failed to compute stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := statsResponse{Categories: make(map[string]int, len(counts))}
	for category, count := range counts {
		resp.Categories[string(category)] = count
		resp.Total += count
	}
	// Always report the full taxonomy so the dashboard can render zero rows.
	for _, category := range taxonomy.Order {
		if _, ok := resp.Categories[string(category)]; !ok {
			resp.Categories[string(category)] = 0
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
