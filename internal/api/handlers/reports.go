package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/salesdesk/backend/internal/reporting"
	"github.com/wonny/salesdesk/backend/pkg/logger"
)

// ReportBuilder builds a named report for a version ("" is latest)
type ReportBuilder interface {
	Build(ctx context.Context, name, version string, p reporting.Params) (interface{}, error)
}

// ReportHandler serves the analytical reports
type ReportHandler struct {
	reports ReportBuilder
	logger  *logger.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ReportBuilder, log *logger.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  log,
	}
}

// GetReport returns one report
// GET /reports/{name}?version=&top_n=&sort_by=
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	query := r.URL.Query()

	var params reporting.Params
	if raw := query.Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid 'top_n' (expected integer)")
			return
		}
		params.TopN = n
	}
	params.SortBy = query.Get("sort_by")

	report, err := h.reports.Build(r.Context(), name, query.Get("version"), params)
	if err != nil {
		respondFailure(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

// ListReports returns the available report names
// GET /reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string][]string{
		"reports": reporting.Names,
	})
}
