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
	ErrOnlusNotFound        = errors.New("onlus organization not found")
	ErrOnlusTaxCodeConflict = errors.New("onlus tax code already registered")
)

type OnlusRepository interface {
	Create(ctx context.Context, org *models.OnlusOrganization) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.OnlusOrganization, error)
	Update(ctx context.Context, org *models.OnlusOrganization) error
	// AddDonation increments the received totals in one update.
	AddDonation(ctx context.Context, id primitive.ObjectID, amount int64) error
	SetCompliance(ctx context.Context, id primitive.ObjectID, status models.ComplianceStatus, score int) error
	List(ctx context.Context, onlyActive bool, limit, offset int64) ([]models.OnlusOrganization, error)
}

type mongoOnlusRepository struct {
	coll *mongo.Collection
}

func NewMongoOnlusRepository(db *mongo.Database) OnlusRepository {
	return &mongoOnlusRepository{coll: db.Collection(collOrganizations)}
}

func (r *mongoOnlusRepository) Create(ctx context.Context, org *models.OnlusOrganization) error {
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, org); err != nil {
		if isDuplicateKey(err) {
			return ErrOnlusTaxCodeConflict
		}
		return fmt.Errorf("failed to insert onlus organization: %w", err)
	}
	return nil
}

func (r *mongoOnlusRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.OnlusOrganization, error) {
	var org models.OnlusOrganization
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&org); err != nil {
		return nil, mapNotFound(err, ErrOnlusNotFound)
	}
	return &org, nil
}

func (r *mongoOnlusRepository) Update(ctx context.Context, org *models.OnlusOrganization) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": org.ID}, org)
	if err != nil {
		return fmt.Errorf("failed to update onlus organization: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOnlusNotFound
	}
	return nil
}

func (r *mongoOnlusRepository) AddDonation(ctx context.Context, id primitive.ObjectID, amount int64) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"total_received": amount, "donations_count": 1},
	})
	if err != nil {
		return fmt.Errorf("failed to add donation to onlus: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOnlusNotFound
	}
	return nil
}

func (r *mongoOnlusRepository) SetCompliance(ctx context.Context, id primitive.ObjectID, status models.ComplianceStatus, score int) error {
	now := time.Now().UTC()
	res, err := r.coll.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"compliance_status": status,
			"compliance_score":  score,
			"last_reviewed_at":  now,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to set onlus compliance: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrOnlusNotFound
	}
	return nil
}

func (r *mongoOnlusRepository) List(ctx context.Context, onlyActive bool, limit, offset int64) ([]models.OnlusOrganization, error) {
	filter := bson.M{}
	if onlyActive {
		filter = bson.M{"active": true, "verified": true}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orgs := make([]models.OnlusOrganization, 0)
	if err := cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}
