package handlers

import (
	"net/http"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/services"
)

type DonationHandler struct {
	donationService services.DonationService
}

func NewDonationHandler(donationService services.DonationService) *DonationHandler {
	return &DonationHandler{donationService: donationService}
}

func (h *DonationHandler) Donate(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input services.DonateInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	donation, err := h.donationService.Donate(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "donation completed", map[string]interface{}{"donation": donation})
}

func (h *DonationHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	limit := queryInt64(r, "limit", 50)
	offset := queryInt64(r, "offset", 0)

	donations, err := h.donationService.ListByUser(r.Context(), userID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "donations", map[string]interface{}{"donations": donations})
}

func (h *DonationHandler) ListByOnlus(w http.ResponseWriter, r *http.Request) {
	onlusID, err := objectIDParam(r, "onlusID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	limit := queryInt64(r, "limit", 50)
	offset := queryInt64(r, "offset", 0)

	donations, err := h.donationService.ListByOnlus(r.Context(), onlusID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "donations", map[string]interface{}{"donations": donations})
}
