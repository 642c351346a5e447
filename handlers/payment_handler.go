package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goodplay/goodplay-backend/middleware"
	"github.com/goodplay/goodplay-backend/services"
)

// Signature header sent by the payment provider on webhook deliveries.
const webhookSignatureHeader = "X-Payment-Signature"

type PaymentHandler struct {
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	var input services.CreatePaymentIntentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, err)
		return
	}

	intent, err := h.paymentService.CreateIntent(r.Context(), userID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusCreated, "payment intent created", map[string]interface{}{"intent": intent})
}

// Webhook receives signed provider events. The raw body is needed for
// signature verification, so this endpoint bypasses readJSON.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	signature := r.Header.Get(webhookSignatureHeader)
	if signature == "" {
		errorResponse(w, http.StatusUnauthorized, "missing signature header")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 65536))
	if err != nil {
		badRequestResponse(w, errors.New("failed to read request body"))
		return
	}

	if err := h.paymentService.HandleWebhook(r.Context(), payload, signature, time.Now().UTC()); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	okResponse(w, http.StatusOK, "event processed", nil)
}
