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

var ErrDonationNotFound = errors.New("donation not found")

// DonationTotals is the platform-wide aggregate used by financial reports.
type DonationTotals struct {
	Count        int64   `bson:"count"`
	TotalAmount  int64   `bson:"total_amount"`
	UniqueDonors int64   `bson:"unique_donors"`
	Average      float64 `bson:"average"`
}

// OnlusBreakdownRow is one ONLUS's slice of the donation volume.
type OnlusBreakdownRow struct {
	OnlusID     primitive.ObjectID `bson:"_id" json:"onlus_id"`
	Count       int64              `bson:"count" json:"count"`
	TotalAmount int64              `bson:"total_amount" json:"total_amount"`
}

// DailyVolumeRow is one day of the donation time series.
type DailyVolumeRow struct {
	Day         string `bson:"_id" json:"day"`
	Count       int64  `bson:"count" json:"count"`
	TotalAmount int64  `bson:"total_amount" json:"total_amount"`
}

type DonationRepository interface {
	Create(ctx context.Context, donation *models.Donation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Donation, error)
	ListByOnlus(ctx context.Context, onlusID primitive.ObjectID, limit, offset int64) ([]models.Donation, error)

	Totals(ctx context.Context, from, to time.Time) (*DonationTotals, error)
	OnlusBreakdown(ctx context.Context, from, to time.Time) ([]OnlusBreakdownRow, error)
	DailyVolume(ctx context.Context, from, to time.Time) ([]DailyVolumeRow, error)
}

type mongoDonationRepository struct {
	coll *mongo.Collection
}

func NewMongoDonationRepository(db *mongo.Database) DonationRepository {
	return &mongoDonationRepository{coll: db.Collection(collDonations)}
}

func (r *mongoDonationRepository) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	if donation.CreatedAt.IsZero() {
		donation.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, donation); err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}
	return nil
}

func (r *mongoDonationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var donation models.Donation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&donation); err != nil {
		return nil, mapNotFound(err, ErrDonationNotFound)
	}
	return &donation, nil
}

func (r *mongoDonationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Donation, error) {
	return r.list(ctx, bson.M{"user_id": userID}, limit, offset)
}

func (r *mongoDonationRepository) ListByOnlus(ctx context.Context, onlusID primitive.ObjectID, limit, offset int64) ([]models.Donation, error) {
	return r.list(ctx, bson.M{"onlus_id": onlusID}, limit, offset)
}

func (r *mongoDonationRepository) list(ctx context.Context, filter bson.M, limit, offset int64) ([]models.Donation, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	donations := make([]models.Donation, 0)
	if err := cursor.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}

func dateRangeFilter(from, to time.Time) bson.M {
	return bson.M{"created_at": bson.M{"$gte": from, "$lt": to}}
}

func (r *mongoDonationRepository) Totals(ctx context.Context, from, to time.Time) (*DonationTotals, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: dateRangeFilter(from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"count":        bson.M{"$sum": 1},
			"total_amount": bson.M{"$sum": "$amount"},
			"average":      bson.M{"$avg": "$amount"},
			"donors":       bson.M{"$addToSet": "$user_id"},
		}}},
		{{Key: "$project", Value: bson.M{
			"count":         1,
			"total_amount":  1,
			"average":       1,
			"unique_donors": bson.M{"$size": "$donors"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("donation totals aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []DonationTotals
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &DonationTotals{}, nil
	}
	return &rows[0], nil
}

func (r *mongoDonationRepository) OnlusBreakdown(ctx context.Context, from, to time.Time) ([]OnlusBreakdownRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: dateRangeFilter(from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":          "$onlus_id",
			"count":        bson.M{"$sum": 1},
			"total_amount": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "total_amount", Value: -1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("onlus breakdown aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	rows := make([]OnlusBreakdownRow, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *mongoDonationRepository) DailyVolume(ctx context.Context, from, to time.Time) ([]DailyVolumeRow, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: dateRangeFilter(from, to)}},
		{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"count":        bson.M{"$sum": 1},
			"total_amount": bson.M{"$sum": "$amount"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("daily volume aggregation failed: %w", err)
	}
	defer cursor.Close(ctx)

	rows := make([]DailyVolumeRow, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
