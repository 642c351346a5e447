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
	ErrModeNotFound     = errors.New("game mode not found")
	ErrModeNameConflict = errors.New("game mode name already exists")
)

type ModeRepository interface {
	Create(ctx context.Context, mode *models.GameMode) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameMode, error)
	GetByName(ctx context.Context, name string) (*models.GameMode, error)
	Update(ctx context.Context, mode *models.GameMode) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
	List(ctx context.Context) ([]models.GameMode, error)
	ListActive(ctx context.Context) ([]models.GameMode, error)
	// ListScheduled returns modes that have a schedule window set.
	ListScheduled(ctx context.Context) ([]models.GameMode, error)
}

type mongoModeRepository struct {
	coll *mongo.Collection
}

func NewMongoModeRepository(db *mongo.Database) ModeRepository {
	return &mongoModeRepository{coll: db.Collection(collModes)}
}

func (r *mongoModeRepository) Create(ctx context.Context, mode *models.GameMode) error {
	if mode.ID.IsZero() {
		mode.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if mode.CreatedAt.IsZero() {
		mode.CreatedAt = now
	}
	mode.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, mode); err != nil {
		if isDuplicateKey(err) {
			return ErrModeNameConflict
		}
		return fmt.Errorf("failed to insert game mode: %w", err)
	}
	return nil
}

func (r *mongoModeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameMode, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoModeRepository) GetByName(ctx context.Context, name string) (*models.GameMode, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *mongoModeRepository) findOne(ctx context.Context, filter bson.M) (*models.GameMode, error) {
	var mode models.GameMode
	if err := r.coll.FindOne(ctx, filter).Decode(&mode); err != nil {
		return nil, mapNotFound(err, ErrModeNotFound)
	}
	return &mode, nil
}

func (r *mongoModeRepository) Update(ctx context.Context, mode *models.GameMode) error {
	mode.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": mode.ID}, mode)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrModeNameConflict
		}
		return fmt.Errorf("failed to update game mode: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrModeNotFound
	}
	return nil
}

func (r *mongoModeRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"active": active, "updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to set mode active flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrModeNotFound
	}
	return nil
}

func (r *mongoModeRepository) List(ctx context.Context) ([]models.GameMode, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoModeRepository) ListActive(ctx context.Context) ([]models.GameMode, error) {
	return r.find(ctx, bson.M{"active": true})
}

func (r *mongoModeRepository) ListScheduled(ctx context.Context) ([]models.GameMode, error) {
	return r.find(ctx, bson.M{"$or": bson.A{
		bson.M{"starts_at": bson.M{"$ne": nil}},
		bson.M{"ends_at": bson.M{"$ne": nil}},
	}})
}

func (r *mongoModeRepository) find(ctx context.Context, filter bson.M) ([]models.GameMode, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	modes := make([]models.GameMode, 0)
	if err := cursor.All(ctx, &modes); err != nil {
		return nil, err
	}
	return modes, nil
}
