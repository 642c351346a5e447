package handlers

import (
	"net/http"
	"time"

	"github.com/goodplay/goodplay-backend/services"
)

type AdminHandler struct {
	analyticsService services.AnalyticsService
}

func NewAdminHandler(analyticsService services.AnalyticsService) *AdminHandler {
	return &AdminHandler{analyticsService: analyticsService}
}

// FinancialReport returns donation aggregates for a period. The from/to query
// parameters are RFC 3339; the default window is the last month.
func (h *AdminHandler) FinancialReport(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid from parameter, expected RFC 3339")
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid to parameter, expected RFC 3339")
			return
		}
		to = parsed
	}

	report, err := h.analyticsService.FinancialReport(r.Context(), from, to)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "financial report", report)
}
