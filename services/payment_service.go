package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// webhookTolerance bounds how old a signed webhook may be before it is
// rejected as a possible replay.
const webhookTolerance = 5 * time.Minute

// CreditPriceCents is the purchase price of one credit.
const CreditPriceCents int64 = 2

type CreatePaymentIntentInput struct {
	Credits  int64  `json:"credits"`
	Currency string `json:"currency"`
}

// WebhookEventPayload is the body the payment provider posts to us.
type WebhookEventPayload struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		IntentID      string `json:"intent_id"`
		FailureReason string `json:"failure_reason,omitempty"`
	} `json:"data"`
}

type PaymentService interface {
	CreateIntent(ctx context.Context, userID primitive.ObjectID, input CreatePaymentIntentInput) (*models.PaymentIntent, error)
	// HandleWebhook verifies the signature header, deduplicates by provider
	// event id, and applies the event. Replayed events return nil without
	// side effects.
	HandleWebhook(ctx context.Context, payload []byte, signatureHeader string, now time.Time) error
}

type paymentService struct {
	paymentRepo   repositories.PaymentRepository
	walletSvc     WalletService
	signingSecret []byte
	logger        *slog.Logger
}

func NewPaymentService(paymentRepo repositories.PaymentRepository, walletSvc WalletService, signingSecret string, logger *slog.Logger) PaymentService {
	return &paymentService{
		paymentRepo:   paymentRepo,
		walletSvc:     walletSvc,
		signingSecret: []byte(signingSecret),
		logger:        logger,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, userID primitive.ObjectID, input CreatePaymentIntentInput) (*models.PaymentIntent, error) {
	if input.Credits <= 0 {
		return nil, ErrInvalidAmount
	}
	currency := strings.ToLower(input.Currency)
	if currency == "" {
		currency = "eur"
	}

	intent := &models.PaymentIntent{
		UserID:           userID,
		ProviderIntentID: "pi_" + uuid.NewString(),
		Credits:          input.Credits,
		AmountCents:      input.Credits * CreditPriceCents,
		Currency:         currency,
		Status:           models.PaymentPending,
	}
	if err := s.paymentRepo.CreateIntent(ctx, intent); err != nil {
		return nil, err
	}
	return intent, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string, now time.Time) error {
	if err := s.verifySignature(payload, signatureHeader, now); err != nil {
		return err
	}

	var event WebhookEventPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("%w: malformed event body", ErrValidationFailed)
	}
	if event.ID == "" || event.Data.IntentID == "" {
		return fmt.Errorf("%w: event id and intent id are required", ErrValidationFailed)
	}

	err := s.paymentRepo.RecordEvent(ctx, &models.WebhookEvent{
		ProviderEventID: event.ID,
		Type:            event.Type,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrWebhookEventDuplicate) {
			s.logger.Info("duplicate webhook event acknowledged", slog.String("event_id", event.ID))
			return nil
		}
		return err
	}

	switch event.Type {
	case "payment_intent.succeeded":
		return s.applySuccess(ctx, event.Data.IntentID)
	case "payment_intent.payment_failed":
		reason := event.Data.FailureReason
		return s.applyFailure(ctx, event.Data.IntentID, reason)
	default:
		// Unknown event types are acknowledged so the provider stops
		// retrying them.
		s.logger.Info("ignoring webhook event", slog.String("type", event.Type))
		return nil
	}
}

func (s *paymentService) applySuccess(ctx context.Context, providerIntentID string) error {
	intent, err := s.paymentRepo.GetIntentByProviderID(ctx, providerIntentID)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentIntentNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	if intent.Status == models.PaymentSucceeded {
		return nil
	}

	if err := s.paymentRepo.UpdateIntentStatus(ctx, providerIntentID, models.PaymentSucceeded, nil); err != nil {
		return err
	}
	if _, err := s.walletSvc.CreditFromPayment(ctx, intent.UserID, intent.ID, intent.Credits); err != nil {
		return fmt.Errorf("failed to credit wallet for intent %s: %w", providerIntentID, err)
	}
	s.logger.Info("payment intent succeeded",
		slog.String("intent", providerIntentID),
		slog.Int64("credits", intent.Credits))
	return nil
}

func (s *paymentService) applyFailure(ctx context.Context, providerIntentID, reason string) error {
	var reasonPtr *string
	if reason != "" {
		reasonPtr = &reason
	}
	err := s.paymentRepo.UpdateIntentStatus(ctx, providerIntentID, models.PaymentFailed, reasonPtr)
	if errors.Is(err, repositories.ErrPaymentIntentNotFound) {
		return ErrPaymentNotFound
	}
	return err
}

// verifySignature checks a header of the form "t=<unix>,v1=<hex hmac>" where
// the hmac is SHA-256 over "<unix>.<payload>" keyed with the shared secret.
func (s *paymentService) verifySignature(payload []byte, header string, now time.Time) error {
	var timestamp, signature string
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signature = v
		}
	}
	if timestamp == "" || signature == "" {
		return ErrWebhookSignatureInvalid
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return ErrWebhookSignatureInvalid
	}
	age := now.Sub(time.Unix(ts, 0))
	if age > webhookTolerance || age < -webhookTolerance {
		return ErrWebhookTimestampStale
	}

	mac := hmac.New(sha256.New, s.signingSecret)
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrWebhookSignatureInvalid
	}
	return nil
}

// SignWebhookPayload produces the signature header for a payload at ts. Used
// by the test suite and by local tooling that simulates provider deliveries.
func SignWebhookPayload(secret string, payload []byte, ts time.Time) string {
	timestamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}
