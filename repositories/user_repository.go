package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserNicknameConflict = errors.New("user nickname conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPasswordResetToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.GamingStats) error
	SetTeam(ctx context.Context, id primitive.ObjectID, teamID *primitive.ObjectID) error
	List(ctx context.Context, limit, offset int64) ([]models.User, error)
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(collUsers)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if isDuplicateKey(err) {
			// users has unique indexes on email and nickname; the driver
			// reports the violated index name inside the message.
			we := mongo.WriteException{}
			if errors.As(err, &we) {
				for _, e := range we.WriteErrors {
					if strings.Contains(e.Message, "nickname") {
						return ErrUserNicknameConflict
					}
				}
			}
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *mongoUserRepository) GetByPasswordResetToken(ctx context.Context, token string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"password_reset_token": token})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapNotFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *mongoUserRepository) Update(ctx context.Context, user *models.User) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrUserEmailConflict
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) UpdateStats(ctx context.Context, id primitive.ObjectID, stats models.GamingStats) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"stats": stats}})
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) SetTeam(ctx context.Context, id primitive.ObjectID, teamID *primitive.ObjectID) error {
	var update bson.M
	if teamID == nil {
		update = bson.M{"$unset": bson.M{"team_id": ""}}
	} else {
		update = bson.M{"$set": bson.M{"team_id": *teamID}}
	}
	res, err := r.coll.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to set user team: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *mongoUserRepository) List(ctx context.Context, limit, offset int64) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
