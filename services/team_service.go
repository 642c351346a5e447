package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"github.com/goodplay/goodplay-backend/storage"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var allowedLogoTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type CreateTeamInput struct {
	Name       string `json:"name"`
	MaxMembers int    `json:"max_members"`
	Recruiting *bool  `json:"recruiting"`

	CreatorID primitive.ObjectID `json:"-"`
}

type ContributeInput struct {
	Points int64 `json:"points"`
}

type TeamService interface {
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.GlobalTeam, error)
	GetTeamByID(ctx context.Context, id primitive.ObjectID) (*models.GlobalTeam, error)
	JoinTeam(ctx context.Context, teamID, userID primitive.ObjectID) (*models.TeamMember, error)
	LeaveTeam(ctx context.Context, teamID, userID primitive.ObjectID) error
	// Contribute adds points to the member's contribution and the team's
	// total score.
	Contribute(ctx context.Context, teamID, userID primitive.ObjectID, input ContributeInput) (*models.GlobalTeam, error)
	Leaderboard(ctx context.Context, limit int64) ([]models.GlobalTeam, error)
	// SetLogo uploads a team logo image. Only the team creator may change it.
	SetLogo(ctx context.Context, teamID, userID primitive.ObjectID, contentType string, r io.Reader) (*models.GlobalTeam, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewTeamService(teamRepo repositories.TeamRepository, userRepo repositories.UserRepository, uploader storage.FileUploader) TeamService {
	return &teamService{
		teamRepo: teamRepo,
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.GlobalTeam, error) {
	if input.Name == "" {
		return nil, ErrTeamNameRequired
	}

	creator, err := s.getUser(ctx, input.CreatorID)
	if err != nil {
		return nil, err
	}
	if creator.TeamID != nil {
		return nil, ErrUserAlreadyInTeam
	}

	maxMembers := input.MaxMembers
	if maxMembers <= 0 {
		maxMembers = models.DefaultTeamMaxMembers
	}
	recruiting := true
	if input.Recruiting != nil {
		recruiting = *input.Recruiting
	}

	team := &models.GlobalTeam{
		Name:        input.Name,
		CreatorID:   input.CreatorID,
		MaxMembers:  maxMembers,
		Recruiting:  recruiting,
		MemberCount: 1,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrTeamNameConflict
		}
		return nil, err
	}

	member := &models.TeamMember{TeamID: team.ID, UserID: input.CreatorID}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add creator to team: %w", err)
	}
	if err := s.userRepo.SetTeam(ctx, input.CreatorID, &team.ID); err != nil {
		return nil, fmt.Errorf("failed to link creator to team: %w", err)
	}

	return team, nil
}

func (s *teamService) GetTeamByID(ctx context.Context, id primitive.ObjectID) (*models.GlobalTeam, error) {
	team, err := s.getTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.teamRepo.ListMembers(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Members = members
	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) SetLogo(ctx context.Context, teamID, userID primitive.ObjectID, contentType string, r io.Reader) (*models.GlobalTeam, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}
	ext, ok := allowedLogoTypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported logo content type %q", ErrValidationFailed, contentType)
	}

	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if team.CreatorID != userID {
		return nil, ErrForbiddenOperation
	}

	key := fmt.Sprintf("teams/%s/%s%s", teamID.Hex(), uuid.NewString(), ext)
	result, err := s.uploader.Upload(ctx, key, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("failed to upload team logo: %w", err)
	}

	oldKey := team.LogoKey
	team.LogoKey = &result.Key
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		// Replaced logos are orphans otherwise; deletion failure is not fatal.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	s.populateLogoURL(team)
	return team, nil
}

func (s *teamService) JoinTeam(ctx context.Context, teamID, userID primitive.ObjectID) (*models.TeamMember, error) {
	team, err := s.getTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.Recruiting {
		return nil, ErrTeamNotRecruiting
	}
	if team.MaxMembers > 0 && team.MemberCount >= team.MaxMembers {
		return nil, ErrTeamFull
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// A user belongs to at most one global team.
	if user.TeamID != nil {
		return nil, ErrUserAlreadyInTeam
	}

	member := &models.TeamMember{TeamID: teamID, UserID: userID}
	if err := s.teamRepo.AddMember(ctx, member); err != nil {
		return nil, err
	}
	if err := s.teamRepo.AdjustMembers(ctx, teamID, 1); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetTeam(ctx, userID, &teamID); err != nil {
		return nil, fmt.Errorf("failed to link user to team: %w", err)
	}
	return member, nil
}

func (s *teamService) LeaveTeam(ctx context.Context, teamID, userID primitive.ObjectID) error {
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.teamRepo.RemoveMember(ctx, teamID, userID); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return ErrUserNotInTeam
		}
		return err
	}
	if err := s.teamRepo.AdjustMembers(ctx, teamID, -1); err != nil {
		return err
	}
	return s.userRepo.SetTeam(ctx, userID, nil)
}

func (s *teamService) Contribute(ctx context.Context, teamID, userID primitive.ObjectID, input ContributeInput) (*models.GlobalTeam, error) {
	if input.Points <= 0 {
		return nil, ErrInvalidAmount
	}
	if _, err := s.getTeam(ctx, teamID); err != nil {
		return nil, err
	}

	if err := s.teamRepo.AddContribution(ctx, teamID, userID, input.Points); err != nil {
		if errors.Is(err, repositories.ErrMembershipNotFound) {
			return nil, ErrUserNotInTeam
		}
		return nil, err
	}
	if err := s.teamRepo.AddScore(ctx, teamID, input.Points); err != nil {
		return nil, err
	}
	return s.getTeam(ctx, teamID)
}

func (s *teamService) Leaderboard(ctx context.Context, limit int64) ([]models.GlobalTeam, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	teams, err := s.teamRepo.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.populateLogoURL(&teams[i])
	}
	return teams, nil
}

func (s *teamService) populateLogoURL(team *models.GlobalTeam) {
	if s.uploader == nil || team.LogoKey == nil {
		return
	}
	url := s.uploader.PublicURL(*team.LogoKey)
	team.LogoURL = &url
}

func (s *teamService) getTeam(ctx context.Context, id primitive.ObjectID) (*models.GlobalTeam, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (s *teamService) getUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
