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
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrSessionNotFound         = errors.New("game session not found")
	ErrSessionAlreadyConverted = errors.New("game session already converted")
)

type SessionRepository interface {
	Create(ctx context.Context, session *models.GameSession) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameSession, error)
	// MarkConverted flips the converted flag, guarded so a session can only
	// be converted once.
	MarkConverted(ctx context.Context, id primitive.ObjectID, credits int64) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.GameSession, error)
}

type mongoSessionRepository struct {
	coll *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) SessionRepository {
	return &mongoSessionRepository{coll: db.Collection(collSessions)}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *models.GameSession) error {
	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameSession, error) {
	var session models.GameSession
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		return nil, mapNotFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

func (r *mongoSessionRepository) MarkConverted(ctx context.Context, id primitive.ObjectID, credits int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "converted": false},
		bson.M{"$set": bson.M{"converted": true, "credits_awarded": credits}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark session converted: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either missing or already converted; look it up to tell them apart.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrSessionAlreadyConverted
	}
	return nil
}

func (r *mongoSessionRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.GameSession, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := make([]models.GameSession, 0)
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
