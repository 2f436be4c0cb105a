package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/pulsedesk/pulsedesk/internal/domain"
	"github.com/pulsedesk/pulsedesk/internal/usecase"
	"github.com/pulsedesk/pulsedesk/pkg/apperror"
)

// ReportHandler handles HTTP requests for aggregate SLA reports
type ReportHandler struct {
	reportUseCase *usecase.ReportUseCase
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportUseCase *usecase.ReportUseCase) *ReportHandler {
	return &ReportHandler{reportUseCase: reportUseCase}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/reports/sla", h.GetSLAReport).Methods("GET")
	router.HandleFunc("/api/v1/reports/sla/trend", h.GetSLATrend).Methods("GET")
}

// GetSLAReport serves the aggregate SLA report for a filter-selected subset
func (h *ReportHandler) GetSLAReport(w http.ResponseWriter, r *http.Request) {
	filter, err := metricsFilterFromQuery(r)
	if err != nil {
		writeError(w, apperror.NewBadRequest(err.Error()))
		return
	}

	response, err := h.reportUseCase.GetSLAReport(r.Context(), filter)
	if err != nil {
		writeError(w, apperror.MapError(err))
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// GetSLATrend serves the current period's report alongside the preceding
// equal-length period's overall compliance rate
func (h *ReportHandler) GetSLATrend(w http.ResponseWriter, r *http.Request) {
	filter, err := metricsFilterFromQuery(r)
	if err != nil {
		writeError(w, apperror.NewBadRequest(err.Error()))
		return
	}

	response, err := h.reportUseCase.GetSLATrend(r.Context(), filter)
	if err != nil {
		writeError(w, apperror.MapError(err))
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// metricsFilterFromQuery parses agent_id, channel, from and to query params
func metricsFilterFromQuery(r *http.Request) (domain.MetricsFilter, error) {
	var filter domain.MetricsFilter
	q := r.URL.Query()

	if agent := q.Get("agent_id"); agent != "" {
		filter.AgentID = &agent
	}
	if channel := q.Get("channel"); channel != "" {
		ch := domain.Channel(channel)
		filter.Channel = &ch
	}
	if from := q.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return filter, domain.ErrInvalidDateRange
		}
		filter.OpenedFrom = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return filter, domain.ErrInvalidDateRange
		}
		filter.OpenedTo = &t
	}

	return filter, nil
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	writeJSON(w, appErr.Status, appErr)
}
