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
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, t *models.TeamTournament) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamTournament, error)
	// Update replaces the whole document; standings are small arrays kept
	// inline, so the service re-sorts in memory and writes back.
	Update(ctx context.Context, t *models.TeamTournament) error
	List(ctx context.Context, status *models.TournamentStatus, limit, offset int64) ([]models.TeamTournament, error)
	ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.TeamTournament, error)
}

type mongoTournamentRepository struct {
	coll *mongo.Collection
}

func NewMongoTournamentRepository(db *mongo.Database) TournamentRepository {
	return &mongoTournamentRepository{coll: db.Collection(collTournaments)}
}

func (r *mongoTournamentRepository) Create(ctx context.Context, t *models.TeamTournament) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if t.Standings == nil {
		t.Standings = []models.TournamentStanding{}
	}
	if _, err := r.coll.InsertOne(ctx, t); err != nil {
		if isDuplicateKey(err) {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	return nil
}

func (r *mongoTournamentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamTournament, error) {
	var t models.TeamTournament
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, mapNotFound(err, ErrTournamentNotFound)
	}
	return &t, nil
}

func (r *mongoTournamentRepository) Update(ctx context.Context, t *models.TeamTournament) error {
	t.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *mongoTournamentRepository) List(ctx context.Context, status *models.TournamentStatus, limit, offset int64) ([]models.TeamTournament, error) {
	filter := bson.M{}
	if status != nil {
		filter["status"] = *status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tournaments := make([]models.TeamTournament, 0)
	if err := cursor.All(ctx, &tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *mongoTournamentRepository) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]models.TeamTournament, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"status": status})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tournaments := make([]models.TeamTournament, 0)
	if err := cursor.All(ctx, &tournaments); err != nil {
		return nil, err
	}
	return tournaments, nil
}
