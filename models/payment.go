package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentIntent mirrors the provider-side intent for a credit purchase.
type PaymentIntent struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`

	// ProviderIntentID is our externally visible identifier, sent to the
	// payment provider as the intent reference.
	ProviderIntentID string `json:"provider_intent_id" bson:"provider_intent_id"`

	Credits     int64  `json:"credits" bson:"credits"`
	AmountCents int64  `json:"amount_cents" bson:"amount_cents"`
	Currency    string `json:"currency" bson:"currency"`

	Status        PaymentStatus `json:"status" bson:"status"`
	FailureReason *string       `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// WebhookEvent records every provider event we have accepted, keyed by the
// provider's event id. Replayed deliveries match an existing record and are
// acknowledged without side effects.
type WebhookEvent struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProviderEventID string             `json:"provider_event_id" bson:"provider_event_id"`
	Type            string             `json:"type" bson:"type"`
	ReceivedAt      time.Time          `json:"received_at" bson:"received_at"`
}
