package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"expensetrack/internal/core"
	applog "expensetrack/internal/log"
)

// errorResponse is the JSON error body every endpoint shares.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// parsePeriod reads the period query parameter, defaulting to month.
func parsePeriod(r *http.Request) core.Period {
	p := strings.TrimSpace(r.URL.Query().Get("period"))
	if p == "" {
		return core.Month
	}
	return core.Period(p)
}

// parseRefresh reads the refresh query parameter.
func parseRefresh(r *http.Request) bool {
	v := strings.TrimSpace(r.URL.Query().Get("refresh"))
	return v == "true" || v == "1"
}

// handleDashboardStats serves GET /dashboard/stats.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	period := parsePeriod(r)
	stats, err := s.engine.GetDashboardStats(r.Context(), parseRefresh(r), period)
	if err != nil {
		s.respondEngineError(w, r, applog.OpDashboard, "Dashboard stats failed", err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// handleReportSummary serves GET /reports/summary.
func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	period := parsePeriod(r)
	summary, err := s.engine.GetReportSummary(r.Context(), period, parseRefresh(r))
	if err != nil {
		s.respondEngineError(w, r, applog.OpReport, "Report summary failed", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleFilteredReport serves POST /reports/filtered with an analytics
// query in the body.
func (s *Server) handleFilteredReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var query core.AnalyticsQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if query.Period == "" {
		query.Period = core.Month
	}

	summary, err := s.engine.GetFilteredSummary(r.Context(), query)
	if err != nil {
		s.respondEngineError(w, r, applog.OpFilter, "Filtered summary failed", err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// handleInvalidate serves POST /cache/invalidate.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.engine.Invalidate()
	s.logger.InfoContext(r.Context(), "Caches invalidated via API",
		applog.FieldOperation, applog.OpInvalidate)

	writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// handleExport serves POST /reports/export, writing the current period
// summary to the configured spreadsheet.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export is not configured")
		return
	}

	period := parsePeriod(r)
	summary, err := s.engine.GetReportSummary(r.Context(), period, parseRefresh(r))
	if err != nil {
		s.respondEngineError(w, r, applog.OpExport, "Report summary for export failed", err)
		return
	}

	ref, err := s.exporter.ExportSummary(r.Context(), summary)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary export failed",
			applog.FieldOperation, applog.OpExport,
			applog.FieldError, err.Error())
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}

	s.logger.InfoContext(r.Context(), "Report summary exported",
		applog.FieldOperation, applog.OpExport,
		applog.FieldPeriod, string(period),
		"range", ref)

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "exported",
		"range":  ref,
	})
}

// respondEngineError maps engine failures onto status codes: bad input is the
// caller's fault, anything else means the upstream feed let us down.
func (s *Server) respondEngineError(w http.ResponseWriter, r *http.Request, op, msg string, err error) {
	if errors.Is(err, core.ErrInvalidPeriod) || errors.Is(err, core.ErrInvalidEntryType) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.logger.ErrorContext(r.Context(), msg,
		applog.FieldOperation, op,
		applog.FieldError, err.Error())
	writeError(w, http.StatusBadGateway, "upstream data fetch failed")
}
