package api

import (
	"errors"
	"net/http"

	"workdays/internal/calendar"
	"workdays/internal/holidays"
	"workdays/internal/metrics"
)

// successResponse is the wire shape for a completed calculation.
type successResponse struct {
	Date string `json:"date"`
}

// handleRoot serves a plain readiness banner.
// GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "NotFound", "resource not found")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Working Days API - ready to calculate business dates"))
}

// handleWorkingDays computes the resulting working instant.
// GET /api/working-days?days=&hours=&date=
func (s *Server) handleWorkingDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed; use GET")
		return
	}

	q := r.URL.Query()
	req, err := calendar.ParseQuery(calendar.Query{
		Days:  q.Get("days"),
		Hours: q.Get("hours"),
		Date:  q.Get("date"),
	})
	if err != nil {
		var verr *calendar.Error
		if errors.As(err, &verr) {
			metrics.IncValidationError(verr.Kind)
			metrics.IncCalcRequest("invalid")
			writeError(w, http.StatusBadRequest, verr.Kind, verr.Message)
			return
		}
		metrics.IncCalcRequest("error")
		writeError(w, http.StatusInternalServerError, "InternalServerError", "an unexpected error occurred")
		return
	}

	result := s.engine.Calculate(req, s.now)
	metrics.IncCalcRequest("ok")
	writeJSON(w, http.StatusOK, successResponse{Date: calendar.FormatInstant(result)})
}

// handleRefresh triggers an immediate holiday reload.
// POST /api/admin/holidays/refresh
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed; use POST")
		return
	}

	err := s.holidays.TryRefresh(r.Context())
	switch {
	case errors.Is(err, holidays.ErrThrottled):
		writeError(w, http.StatusTooManyRequests, "RefreshThrottled", "holiday refresh was triggered too recently")
	case err != nil:
		s.logger.Error().Err(err).Msg("manual holiday refresh failed")
		writeError(w, http.StatusBadGateway, "HolidaySourceUnavailable", "could not refresh holidays from the external source")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"holidays": s.holidays.Oracle().Size()})
	}
}
