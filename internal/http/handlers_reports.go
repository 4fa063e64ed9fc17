package http

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"fiscal/internal/report"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	now, err := s.referenceDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	d, err := s.reports.Dashboard(r.Context(), now)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleInsights serves the insights page for ?date= over ?window= months
// (3, 6 or 12; the configured window when omitted).
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	now, err := s.referenceDate(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	window, err := insightsWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in, err := s.reports.Insights(r.Context(), now, window)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

func insightsWindow(r *http.Request) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("window"))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || !report.ValidWindow(n) {
		return 0, fmt.Errorf("window must be one of %v", report.Windows)
	}
	return n, nil
}
