package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StandingsBroadcaster pushes standings updates to live subscribers. The
// websocket hub satisfies this; tests plug in a recorder.
type StandingsBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

type CreateTournamentInput struct {
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	MaxTeams    int       `json:"max_teams"`

	OrganizerID primitive.ObjectID `json:"-"`
}

type ReportScoreInput struct {
	TeamID string `json:"team_id"`
	Points int64  `json:"points"`
}

type TournamentService interface {
	Create(ctx context.Context, input CreateTournamentInput) (*models.TeamTournament, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamTournament, error)
	List(ctx context.Context, status *models.TournamentStatus, limit, offset int64) ([]models.TeamTournament, error)

	EnrollTeam(ctx context.Context, tournamentID, teamID primitive.ObjectID) (*models.TeamTournament, error)
	Start(ctx context.Context, tournamentID primitive.ObjectID) (*models.TeamTournament, error)
	// ReportScore adds points to a team's standing, re-sorts the table and
	// broadcasts the new standings to the tournament room.
	ReportScore(ctx context.Context, tournamentID primitive.ObjectID, input ReportScoreInput) (*models.TeamTournament, error)
	Complete(ctx context.Context, tournamentID primitive.ObjectID) (*models.TeamTournament, error)
	Cancel(ctx context.Context, tournamentID primitive.ObjectID) (*models.TeamTournament, error)

	// AutoTransitionByDates starts and completes tournaments whose dates
	// have passed. Called by the scheduler.
	AutoTransitionByDates(ctx context.Context) error
}

type tournamentService struct {
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	hub            StandingsBroadcaster
	logger         *slog.Logger
}

func NewTournamentService(
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	hub StandingsBroadcaster,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		hub:            hub,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.TeamTournament, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() || !input.StartDate.Before(input.EndDate) {
		return nil, ErrTournamentInvalidDateRange
	}
	maxTeams := input.MaxTeams
	if maxTeams <= 0 {
		maxTeams = models.DefaultTournamentMaxTeams
	}

	t := &models.TeamTournament{
		Name:        input.Name,
		Description: input.Description,
		OrganizerID: input.OrganizerID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      models.TournamentUpcoming,
		MaxTeams:    maxTeams,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TeamTournament, error) {
	return s.get(ctx, id)
}

func (s *tournamentService) List(ctx context.Context, status *models.TournamentStatus, limit, offset int64) ([]models.TeamTournament, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.tournamentRepo.List(ctx, status, limit, offset)
}

func (s *tournamentService) EnrollTeam(ctx context.Context, tournamentID, teamID primitive.ObjectID) (*models.TeamTournament, error) {
	t, err := s.get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentUpcoming {
		return nil, ErrTournamentNotAcceptingTeams
	}
	if t.TeamEnrolled(teamID) {
		return nil, ErrTeamAlreadyEnrolled
	}
	if len(t.Standings) >= t.MaxTeams {
		return nil, ErrTournamentFull
	}

	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	now := time.Now().UTC()
	t.Standings = append(t.Standings, models.TournamentStanding{
		TeamID:     teamID,
		TeamName:   team.Name,
		Score:      0,
		EnrolledAt: now,
		UpdatedAt:  now,
	})
	ResortStandings(t.Standings)

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) Start(ctx context.Context, tournamentID primitive.ObjectID) (*models.TeamTournament, error) {
	t, err := s.get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentUpcoming {
		return nil, ErrTournamentInvalidStatusTransition
	}
	if len(t.Standings) < 2 {
		return nil, ErrTournamentNotEnoughTeams
	}

	t.Status = models.TournamentActive
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.broadcast(t, "TOURNAMENT_STARTED")
	return t, nil
}

func (s *tournamentService) ReportScore(ctx context.Context, tournamentID primitive.ObjectID, input ReportScoreInput) (*models.TeamTournament, error) {
	if input.Points <= 0 {
		return nil, ErrInvalidAmount
	}
	teamID, err := primitive.ObjectIDFromHex(input.TeamID)
	if err != nil {
		return nil, ErrValidationFailed
	}

	t, err := s.get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentActive {
		return nil, ErrTournamentNotActive
	}

	found := false
	now := time.Now().UTC()
	for i := range t.Standings {
		if t.Standings[i].TeamID == teamID {
			t.Standings[i].Score += input.Points
			t.Standings[i].UpdatedAt = now
			found = true
			break
		}
	}
	if !found {
		return nil, ErrTeamNotFound
	}

	ResortStandings(t.Standings)

	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.broadcast(t, "STANDINGS_UPDATED")
	return t, nil
}

func (s *tournamentService) Complete(ctx context.Context, tournamentID primitive.ObjectID) (*models.TeamTournament, error) {
	t, err := s.get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TournamentActive {
		return nil, ErrTournamentInvalidStatusTransition
	}

	t.Status = models.TournamentCompleted
	if len(t.Standings) > 0 {
		winner := t.Standings[0].TeamID
		t.WinnerTeamID = &winner
	}
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.broadcast(t, "TOURNAMENT_COMPLETED")
	return t, nil
}

func (s *tournamentService) Cancel(ctx context.Context, tournamentID primitive.ObjectID) (*models.TeamTournament, error) {
	t, err := s.get(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TournamentCompleted || t.Status == models.TournamentCancelled {
		return nil, ErrTournamentInvalidStatusTransition
	}

	t.Status = models.TournamentCancelled
	if err := s.tournamentRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.broadcast(t, "TOURNAMENT_CANCELLED")
	return t, nil
}

func (s *tournamentService) AutoTransitionByDates(ctx context.Context) error {
	now := time.Now().UTC()

	upcoming, err := s.tournamentRepo.ListByStatus(ctx, models.TournamentUpcoming)
	if err != nil {
		return fmt.Errorf("failed to list upcoming tournaments: %w", err)
	}
	for i := range upcoming {
		t := &upcoming[i]
		if t.StartDate.After(now) || len(t.Standings) < 2 {
			continue
		}
		if _, err := s.Start(ctx, t.ID); err != nil {
			s.logger.Error("auto-start failed",
				slog.String("tournament_id", t.ID.Hex()),
				slog.Any("error", err))
		}
	}

	active, err := s.tournamentRepo.ListByStatus(ctx, models.TournamentActive)
	if err != nil {
		return fmt.Errorf("failed to list active tournaments: %w", err)
	}
	for i := range active {
		t := &active[i]
		if t.EndDate.After(now) {
			continue
		}
		if _, err := s.Complete(ctx, t.ID); err != nil {
			s.logger.Error("auto-complete failed",
				slog.String("tournament_id", t.ID.Hex()),
				slog.Any("error", err))
		}
	}
	return nil
}

func (s *tournamentService) get(ctx context.Context, id primitive.ObjectID) (*models.TeamTournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) broadcast(t *models.TeamTournament, event string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(t.ID.Hex(), map[string]interface{}{
		"type": event,
		"payload": map[string]interface{}{
			"tournament_id": t.ID.Hex(),
			"status":        t.Status,
			"standings":     t.Standings,
		},
	})
}

// ResortStandings orders the table by score descending, breaking ties by
// earlier enrollment and then team id for a stable order, and reassigns
// positions 1..n.
func ResortStandings(standings []models.TournamentStanding) {
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		if !standings[i].EnrolledAt.Equal(standings[j].EnrolledAt) {
			return standings[i].EnrolledAt.Before(standings[j].EnrolledAt)
		}
		return standings[i].TeamID.Hex() < standings[j].TeamID.Hex()
	})
	for i := range standings {
		standings[i].Position = i + 1
	}
}
