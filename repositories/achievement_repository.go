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
	ErrAchievementNotFound     = errors.New("achievement not found")
	ErrAchievementCodeConflict = errors.New("achievement code already exists")
	ErrUserAchievementNotFound = errors.New("user achievement not found")
	ErrAchievementClaimed      = errors.New("achievement reward already claimed")
)

type AchievementRepository interface {
	Create(ctx context.Context, a *models.Achievement) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error)
	List(ctx context.Context) ([]models.Achievement, error)

	GetUserAchievement(ctx context.Context, userID, achievementID primitive.ObjectID) (*models.UserAchievement, error)
	UpsertProgress(ctx context.Context, ua *models.UserAchievement) error
	// MarkClaimed flips the claimed flag, guarded so the reward pays out at
	// most once even under concurrent claims.
	MarkClaimed(ctx context.Context, userID, achievementID primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error)
}

type mongoAchievementRepository struct {
	defs     *mongo.Collection
	progress *mongo.Collection
}

func NewMongoAchievementRepository(db *mongo.Database) AchievementRepository {
	return &mongoAchievementRepository{
		defs:     db.Collection(collAchievements),
		progress: db.Collection(collUserAchievements),
	}
}

func (r *mongoAchievementRepository) Create(ctx context.Context, a *models.Achievement) error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if _, err := r.defs.InsertOne(ctx, a); err != nil {
		if isDuplicateKey(err) {
			return ErrAchievementCodeConflict
		}
		return fmt.Errorf("failed to insert achievement: %w", err)
	}
	return nil
}

func (r *mongoAchievementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Achievement, error) {
	var a models.Achievement
	if err := r.defs.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, mapNotFound(err, ErrAchievementNotFound)
	}
	return &a, nil
}

func (r *mongoAchievementRepository) List(ctx context.Context) ([]models.Achievement, error) {
	cursor, err := r.defs.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "code", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	achievements := make([]models.Achievement, 0)
	if err := cursor.All(ctx, &achievements); err != nil {
		return nil, err
	}
	return achievements, nil
}

func (r *mongoAchievementRepository) GetUserAchievement(ctx context.Context, userID, achievementID primitive.ObjectID) (*models.UserAchievement, error) {
	var ua models.UserAchievement
	err := r.progress.FindOne(ctx, bson.M{"user_id": userID, "achievement_id": achievementID}).Decode(&ua)
	if err != nil {
		return nil, mapNotFound(err, ErrUserAchievementNotFound)
	}
	return &ua, nil
}

func (r *mongoAchievementRepository) UpsertProgress(ctx context.Context, ua *models.UserAchievement) error {
	ua.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"progress":   ua.Progress,
		"completed":  ua.Completed,
		"updated_at": ua.UpdatedAt,
	}
	if ua.CompletedAt != nil {
		set["completed_at"] = *ua.CompletedAt
	}
	_, err := r.progress.UpdateOne(ctx,
		bson.M{"user_id": ua.UserID, "achievement_id": ua.AchievementID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"claimed": false},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert achievement progress: %w", err)
	}
	return nil
}

func (r *mongoAchievementRepository) MarkClaimed(ctx context.Context, userID, achievementID primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := r.progress.UpdateOne(ctx,
		bson.M{"user_id": userID, "achievement_id": achievementID, "completed": true, "claimed": false},
		bson.M{"$set": bson.M{"claimed": true, "claimed_at": now, "updated_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark achievement claimed: %w", err)
	}
	if res.MatchedCount == 0 {
		ua, getErr := r.GetUserAchievement(ctx, userID, achievementID)
		if getErr != nil {
			return getErr
		}
		if ua.Claimed {
			return ErrAchievementClaimed
		}
		return ErrUserAchievementNotFound
	}
	return nil
}

func (r *mongoAchievementRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	cursor, err := r.progress.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	list := make([]models.UserAchievement, 0)
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}
