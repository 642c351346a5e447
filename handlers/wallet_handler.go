package handlers

import (
	"errors"
	"net/http"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/services"
)

type WalletHandler struct {
	walletService services.WalletService
}

func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	wallet, err := h.walletService.GetWallet(r.Context(), userID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "wallet", map[string]interface{}{"wallet": wallet})
}

func (h *WalletHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	limit := queryInt64(r, "limit", 50)
	offset := queryInt64(r, "offset", 0)

	transactions, err := h.walletService.Transactions(r.Context(), userID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "transactions", map[string]interface{}{"transactions": transactions})
}

func (h *WalletHandler) SetDailyLimit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input struct {
		DailyLimit int64 `json:"daily_limit"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.walletService.SetDailyLimit(r.Context(), userID, input.DailyLimit); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "daily donation limit updated", nil)
}

// AdminAdjust credits or debits an arbitrary user's wallet. Admin only.
func (h *WalletHandler) AdminAdjust(w http.ResponseWriter, r *http.Request) {
	targetID, err := objectIDParam(r, "userID")
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var input struct {
		Amount      int64  `json:"amount"`
		Description string `json:"description"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}
	if input.Description == "" {
		badRequestResponse(w, errors.New("description is required for adjustments"))
		return
	}

	wallet, err := h.walletService.AdminAdjust(r.Context(), targetID, input.Amount, input.Description)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "wallet adjusted", map[string]interface{}{"wallet": wallet})
}
