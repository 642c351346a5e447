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

var ErrApplicationNotFound = errors.New("onlus application not found")

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.OnlusApplication) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.OnlusApplication, error)
	Update(ctx context.Context, app *models.OnlusApplication) error
	AddDocument(ctx context.Context, id primitive.ObjectID, doc models.ComplianceDocument) error
	ListByStatus(ctx context.Context, status models.ApplicationStatus, limit, offset int64) ([]models.OnlusApplication, error)
	ListByApplicant(ctx context.Context, applicantID primitive.ObjectID) ([]models.OnlusApplication, error)
}

type mongoApplicationRepository struct {
	coll *mongo.Collection
}

func NewMongoApplicationRepository(db *mongo.Database) ApplicationRepository {
	return &mongoApplicationRepository{coll: db.Collection(collApplications)}
}

func (r *mongoApplicationRepository) Create(ctx context.Context, app *models.OnlusApplication) error {
	if app.ID.IsZero() {
		app.ID = primitive.NewObjectID()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	if app.Documents == nil {
		app.Documents = []models.ComplianceDocument{}
	}
	if _, err := r.coll.InsertOne(ctx, app); err != nil {
		return fmt.Errorf("failed to insert onlus application: %w", err)
	}
	return nil
}

func (r *mongoApplicationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.OnlusApplication, error) {
	var app models.OnlusApplication
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&app); err != nil {
		return nil, mapNotFound(err, ErrApplicationNotFound)
	}
	return &app, nil
}

func (r *mongoApplicationRepository) Update(ctx context.Context, app *models.OnlusApplication) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": app.ID}, app)
	if err != nil {
		return fmt.Errorf("failed to update onlus application: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *mongoApplicationRepository) AddDocument(ctx context.Context, id primitive.ObjectID, doc models.ComplianceDocument) error {
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$push": bson.M{"documents": doc}})
	if err != nil {
		return fmt.Errorf("failed to attach document: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *mongoApplicationRepository) ListByStatus(ctx context.Context, status models.ApplicationStatus, limit, offset int64) ([]models.OnlusApplication, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "submitted_at", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.coll.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	apps := make([]models.OnlusApplication, 0)
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *mongoApplicationRepository) ListByApplicant(ctx context.Context, applicantID primitive.ObjectID) ([]models.OnlusApplication, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"applicant_id": applicantID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	apps := make([]models.OnlusApplication, 0)
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}
