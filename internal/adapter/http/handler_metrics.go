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

// MetricsHandler handles HTTP requests that trigger metric computation
type MetricsHandler struct {
	computeUseCase *usecase.ComputeUseCase
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(computeUseCase *usecase.ComputeUseCase) *MetricsHandler {
	return &MetricsHandler{computeUseCase: computeUseCase}
}

// RegisterRoutes registers metrics routes
func (h *MetricsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/metrics/recompute", h.Recompute).Methods("POST")
	router.HandleFunc("/api/v1/metrics/conversations/{id}/recompute", h.RecomputeOne).Methods("POST")
}

// RecomputeRequest selects the conversations a recompute batch covers.
// An empty body recomputes everything.
type RecomputeRequest struct {
	AgentID    *string  `json:"agent_id,omitempty"`
	Channel    *string  `json:"channel,omitempty"`
	OpenedFrom *string  `json:"opened_from,omitempty"` // RFC 3339
	OpenedTo   *string  `json:"opened_to,omitempty"`   // RFC 3339
}

// Recompute runs a full metric computation batch over the selected conversations
func (h *MetricsHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	var req RecomputeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperror.NewBadRequest("invalid request body"))
			return
		}
	}

	filter, err := conversationFilterFromRequest(req)
	if err != nil {
		writeError(w, apperror.MapError(err))
		return
	}

	summary, err := h.computeUseCase.Recompute(r.Context(), filter)
	if err != nil {
		writeError(w, apperror.MapError(err))
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// RecomputeOne recomputes metrics for a single conversation
func (h *MetricsHandler) RecomputeOne(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	conversationID := vars["id"]
	if conversationID == "" {
		writeError(w, apperror.NewBadRequest("conversation ID is required"))
		return
	}

	record, err := h.computeUseCase.RecomputeOne(r.Context(), conversationID)
	if err != nil {
		writeError(w, apperror.MapError(err))
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func conversationFilterFromRequest(req RecomputeRequest) (domain.ConversationFilter, error) {
	var filter domain.ConversationFilter

	filter.AgentID = req.AgentID
	if req.Channel != nil {
		ch := domain.Channel(*req.Channel)
		filter.Channel = &ch
	}
	if req.OpenedFrom != nil {
		t, err := time.Parse(time.RFC3339, *req.OpenedFrom)
		if err != nil {
			return filter, domain.ErrInvalidDateRange
		}
		filter.OpenedFrom = &t
	}
	if req.OpenedTo != nil {
		t, err := time.Parse(time.RFC3339, *req.OpenedTo)
		if err != nil {
			return filter, domain.ErrInvalidDateRange
		}
		filter.OpenedTo = &t
	}

	return filter, nil
}
