package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "lead-hunter/internal/common/errors"
	"lead-hunter/internal/common/validation"
	"lead-hunter/internal/models"
	"lead-hunter/internal/store/hunts"
)

type startHuntResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

type errorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorCode string `json:"error_code,omitempty"`
}

func huntRequestSchema() validation.JSONSchema {
	notBlank := validation.StringPtr(`\S`)
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"query", "city"},
		Properties: map[string]validation.Property{
			"query": {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(200), Pattern: notBlank},
			"city":  {Type: "string", MinLength: validation.IntPtr(1), MaxLength: validation.IntPtr(100), Pattern: notBlank},
		},
	}
}

func (s *Server) handleStartHunt(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputValidationFailed), "request body must be a JSON object")
		return
	}

	if res := validation.ValidateInput(body, huntRequestSchema()); !res.Valid {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputValidationFailed), "query and city are required: "+res.Error())
		return
	}

	query := models.NewSearchQuery(body["query"].(string), body["city"].(string), requesterFrom(r.Context()))
	huntID, err := s.hunts.Submit(query)
	if err != nil {
		s.writeAppError(w, err)
		return
	}

	s.log.Info("hunt accepted", map[string]interface{}{
		"huntId":      huntID,
		"term":        query.Term,
		"location":    query.Location,
		"requestedBy": query.RequestedBy,
	})
	writeJSON(w, http.StatusAccepted, startHuntResponse{
		Success: true,
		Message: fmt.Sprintf("hunt started for %s in %s", query.Term, query.Location),
		JobID:   huntID,
	})
}

func (s *Server) handleGetHunt(w http.ResponseWriter, r *http.Request) {
	if s.summaries == nil {
		writeError(w, http.StatusNotFound, "", "hunt summaries are not kept")
		return
	}

	summary, err := s.summaries.Get(r.Context(), chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, hunts.ErrNotFound):
		writeError(w, http.StatusNotFound, "", "hunt not found or still running")
	case err != nil:
		s.writeAppError(w, err)
	case summary.RequestedBy != requesterFrom(r.Context()):
		// Indistinguishable from an unknown id.
		writeError(w, http.StatusNotFound, "", "hunt not found or still running")
	default:
		writeJSON(w, http.StatusOK, summary)
	}
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInputValidationFailed), "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	leads, err := s.leads.ListByCreator(r.Context(), requesterFrom(r.Context()), limit)
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"leads":   leads,
		"count":   len(leads),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.leads.StatsByCreator(r.Context(), requesterFrom(r.Context()))
	if err != nil {
		s.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.cfg.Status()
	state := "running"
	if !st.Valid {
		state = "needs configuration"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"app":                 st.App,
		"version":             st.Version,
		"environment":         st.Environment,
		"status":              state,
		"database_configured": st.DatabaseConfigured,
		"search_configured":   st.SearchConfigured,
		"keys_count":          st.KeysCount,
		"dedup_enabled":       st.DedupEnabled,
		"mirrors_enabled":     st.MirrorsEnabled,
		"worker_enabled":      st.WorkerEnabled,
		"valid":               st.Valid,
		"issues":              st.Issues,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	connected := false
	if s.database != nil {
		connected = s.database(r.Context()) == nil
	}

	status, database := "unhealthy", "disconnected"
	if connected {
		status, database = "healthy", "connected"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      status,
		"database":    database,
		"search_keys": len(s.cfg.Hunter.Keys),
		"timestamp":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	results := map[string]string{}
	ready := true
	for name, check := range s.checks {
		if err := check(r.Context()); err != nil {
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]interface{}{
		"ready":  ready,
		"checks": results,
	})
}

func (s *Server) writeAppError(w http.ResponseWriter, err error) {
	stdErr, ok := apperrors.As(err)
	if !ok {
		stdErr = apperrors.NewInternalError(err)
	}

	code := statusFor(stdErr.Code)
	if code >= http.StatusInternalServerError {
		s.log.Error("request failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     err.Error(),
		})
	}
	writeError(w, code, string(stdErr.Code), stdErr.Message)
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInputValidationFailed:
		return http.StatusBadRequest
	case apperrors.ErrCodeHuntBusy, apperrors.ErrCodeHuntQuotaExceeded:
		return http.StatusTooManyRequests
	case apperrors.ErrCodeHuntUnavailable, apperrors.ErrCodeHuntCancelled, apperrors.ErrCodeDatabaseConnectionFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, errorResponse{Success: false, Error: msg, ErrorCode: errCode})
}
