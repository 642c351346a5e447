package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrPaymentIntentNotFound = errors.New("payment intent not found")
	ErrWebhookEventDuplicate = errors.New("webhook event already processed")
)

type PaymentRepository interface {
	CreateIntent(ctx context.Context, intent *models.PaymentIntent) error
	GetIntentByProviderID(ctx context.Context, providerIntentID string) (*models.PaymentIntent, error)
	UpdateIntentStatus(ctx context.Context, providerIntentID string, status models.PaymentStatus, failureReason *string) error

	// RecordEvent inserts the provider event id, returning
	// ErrWebhookEventDuplicate if it was seen before. The unique index on
	// provider_event_id makes this the idempotency gate for webhook retries.
	RecordEvent(ctx context.Context, event *models.WebhookEvent) error
}

type mongoPaymentRepository struct {
	intents *mongo.Collection
	events  *mongo.Collection
}

func NewMongoPaymentRepository(db *mongo.Database) PaymentRepository {
	return &mongoPaymentRepository{
		intents: db.Collection(collPaymentIntents),
		events:  db.Collection(collWebhookEvents),
	}
}

func (r *mongoPaymentRepository) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	if intent.ID.IsZero() {
		intent.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = now
	}
	intent.UpdatedAt = now
	if _, err := r.intents.InsertOne(ctx, intent); err != nil {
		return fmt.Errorf("failed to insert payment intent: %w", err)
	}
	return nil
}

func (r *mongoPaymentRepository) GetIntentByProviderID(ctx context.Context, providerIntentID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	err := r.intents.FindOne(ctx, bson.M{"provider_intent_id": providerIntentID}).Decode(&intent)
	if err != nil {
		return nil, mapNotFound(err, ErrPaymentIntentNotFound)
	}
	return &intent, nil
}

func (r *mongoPaymentRepository) UpdateIntentStatus(ctx context.Context, providerIntentID string, status models.PaymentStatus, failureReason *string) error {
	set := bson.M{"status": status, "updated_at": time.Now().UTC()}
	if failureReason != nil {
		set["failure_reason"] = *failureReason
	}
	res, err := r.intents.UpdateOne(ctx,
		bson.M{"provider_intent_id": providerIntentID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update payment intent status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrPaymentIntentNotFound
	}
	return nil
}

func (r *mongoPaymentRepository) RecordEvent(ctx context.Context, event *models.WebhookEvent) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.ReceivedAt.IsZero() {
		event.ReceivedAt = time.Now().UTC()
	}
	if _, err := r.events.InsertOne(ctx, event); err != nil {
		if isDuplicateKey(err) {
			return ErrWebhookEventDuplicate
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	return nil
}
