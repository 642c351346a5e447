package handlers

import (
	"net/http"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/services"
)

type SessionHandler struct {
	creditService services.CreditService
}

func NewSessionHandler(creditService services.CreditService) *SessionHandler {
	return &SessionHandler{creditService: creditService}
}

func (h *SessionHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input services.RecordSessionInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	session, err := h.creditService.RecordSession(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "session recorded", map[string]interface{}{"session": session})
}

// Convert turns a finished session into credits. Idempotent at the session
// level: a second call returns 409.
func (h *SessionHandler) Convert(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	sessionID, err := objectIDParam(r, "sessionID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	result, err := h.creditService.ConvertSession(r.Context(), userID, sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "session converted", result)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	limit := queryInt64(r, "limit", 50)
	offset := queryInt64(r, "offset", 0)

	sessions, err := h.creditService.ListSessions(r.Context(), userID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "sessions", map[string]interface{}{"sessions": sessions})
}
