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
	ErrTeamNotFound       = errors.New("team not found")
	ErrTeamNameConflict   = errors.New("team name is already in use")
	ErrMembershipNotFound = errors.New("team membership not found")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.GlobalTeam) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.GlobalTeam, error)
	Update(ctx context.Context, team *models.GlobalTeam) error
	// AdjustMembers increments the member counter by delta.
	AdjustMembers(ctx context.Context, id primitive.ObjectID, delta int) error
	AddScore(ctx context.Context, id primitive.ObjectID, points int64) error
	Leaderboard(ctx context.Context, limit int64) ([]models.GlobalTeam, error)

	AddMember(ctx context.Context, member *models.TeamMember) error
	GetMember(ctx context.Context, teamID, userID primitive.ObjectID) (*models.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error
	AddContribution(ctx context.Context, teamID, userID primitive.ObjectID, points int64) error
	ListMembers(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMember, error)
}

type mongoTeamRepository struct {
	teams   *mongo.Collection
	members *mongo.Collection
}

func NewMongoTeamRepository(db *mongo.Database) TeamRepository {
	return &mongoTeamRepository{
		teams:   db.Collection(collTeams),
		members: db.Collection(collTeamMembers),
	}
}

func (r *mongoTeamRepository) Create(ctx context.Context, team *models.GlobalTeam) error {
	if team.ID.IsZero() {
		team.ID = primitive.NewObjectID()
	}
	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	if _, err := r.teams.InsertOne(ctx, team); err != nil {
		if isDuplicateKey(err) {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to insert team: %w", err)
	}
	return nil
}

func (r *mongoTeamRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GlobalTeam, error) {
	var team models.GlobalTeam
	if err := r.teams.FindOne(ctx, bson.M{"_id": id}).Decode(&team); err != nil {
		return nil, mapNotFound(err, ErrTeamNotFound)
	}
	return &team, nil
}

func (r *mongoTeamRepository) Update(ctx context.Context, team *models.GlobalTeam) error {
	res, err := r.teams.ReplaceOne(ctx, bson.M{"_id": team.ID}, team)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrTeamNameConflict
		}
		return fmt.Errorf("failed to update team: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (r *mongoTeamRepository) AdjustMembers(ctx context.Context, id primitive.ObjectID, delta int) error {
	res, err := r.teams.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"member_count": delta}})
	if err != nil {
		return fmt.Errorf("failed to adjust member count: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (r *mongoTeamRepository) AddScore(ctx context.Context, id primitive.ObjectID, points int64) error {
	res, err := r.teams.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"total_score": points}})
	if err != nil {
		return fmt.Errorf("failed to add team score: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTeamNotFound
	}
	return nil
}

func (r *mongoTeamRepository) Leaderboard(ctx context.Context, limit int64) ([]models.GlobalTeam, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "total_score", Value: -1}, {Key: "created_at", Value: 1}}).
		SetLimit(limit)

	cursor, err := r.teams.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	teams := make([]models.GlobalTeam, 0)
	if err := cursor.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *mongoTeamRepository) AddMember(ctx context.Context, member *models.TeamMember) error {
	if member.ID.IsZero() {
		member.ID = primitive.NewObjectID()
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	if _, err := r.members.InsertOne(ctx, member); err != nil {
		return fmt.Errorf("failed to insert team member: %w", err)
	}
	return nil
}

func (r *mongoTeamRepository) GetMember(ctx context.Context, teamID, userID primitive.ObjectID) (*models.TeamMember, error) {
	var member models.TeamMember
	err := r.members.FindOne(ctx, bson.M{"team_id": teamID, "user_id": userID}).Decode(&member)
	if err != nil {
		return nil, mapNotFound(err, ErrMembershipNotFound)
	}
	return &member, nil
}

func (r *mongoTeamRepository) RemoveMember(ctx context.Context, teamID, userID primitive.ObjectID) error {
	res, err := r.members.DeleteOne(ctx, bson.M{"team_id": teamID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to remove team member: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (r *mongoTeamRepository) AddContribution(ctx context.Context, teamID, userID primitive.ObjectID, points int64) error {
	res, err := r.members.UpdateOne(ctx,
		bson.M{"team_id": teamID, "user_id": userID},
		bson.M{"$inc": bson.M{"contribution": points}},
	)
	if err != nil {
		return fmt.Errorf("failed to add member contribution: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

func (r *mongoTeamRepository) ListMembers(ctx context.Context, teamID primitive.ObjectID) ([]models.TeamMember, error) {
	cursor, err := r.members.Find(ctx, bson.M{"team_id": teamID},
		options.Find().SetSort(bson.D{{Key: "joined_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	members := make([]models.TeamMember, 0)
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}
