package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateModeInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Multiplier  float64    `json:"multiplier"`
	Active      bool       `json:"active"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type UpdateModeInput struct {
	Description *string    `json:"description"`
	Multiplier  *float64   `json:"multiplier"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

type ModeService interface {
	Create(ctx context.Context, input CreateModeInput) (*models.GameMode, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameMode, error)
	Update(ctx context.Context, id primitive.ObjectID, input UpdateModeInput) (*models.GameMode, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.GameMode, error)
	List(ctx context.Context) ([]models.GameMode, error)
	ListActive(ctx context.Context) ([]models.GameMode, error)
	// SyncScheduledModes flips the active flag of every scheduled mode to
	// match its window at now. Returns how many modes changed state.
	SyncScheduledModes(ctx context.Context, now time.Time) (int, error)
}

type modeService struct {
	modeRepo repositories.ModeRepository
}

func NewModeService(modeRepo repositories.ModeRepository) ModeService {
	return &modeService{modeRepo: modeRepo}
}

func (s *modeService) Create(ctx context.Context, input CreateModeInput) (*models.GameMode, error) {
	if input.Name == "" {
		return nil, ErrValidationFailed
	}
	if input.Multiplier <= 0 {
		return nil, fmt.Errorf("%w: multiplier must be positive", ErrValidationFailed)
	}
	if input.StartsAt != nil && input.EndsAt != nil && !input.StartsAt.Before(*input.EndsAt) {
		return nil, fmt.Errorf("%w: mode window must end after it starts", ErrValidationFailed)
	}

	mode := &models.GameMode{
		Name:        input.Name,
		Description: input.Description,
		Multiplier:  input.Multiplier,
		Active:      input.Active,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}
	if err := s.modeRepo.Create(ctx, mode); err != nil {
		if errors.Is(err, repositories.ErrModeNameConflict) {
			return nil, fmt.Errorf("%w: mode %s already exists", ErrValidationFailed, input.Name)
		}
		return nil, err
	}
	return mode, nil
}

func (s *modeService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.GameMode, error) {
	return s.get(ctx, id)
}

func (s *modeService) Update(ctx context.Context, id primitive.ObjectID, input UpdateModeInput) (*models.GameMode, error) {
	mode, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		mode.Description = *input.Description
	}
	if input.Multiplier != nil {
		if *input.Multiplier <= 0 {
			return nil, fmt.Errorf("%w: multiplier must be positive", ErrValidationFailed)
		}
		mode.Multiplier = *input.Multiplier
	}
	if input.StartsAt != nil {
		mode.StartsAt = input.StartsAt
	}
	if input.EndsAt != nil {
		mode.EndsAt = input.EndsAt
	}
	if mode.StartsAt != nil && mode.EndsAt != nil && !mode.StartsAt.Before(*mode.EndsAt) {
		return nil, fmt.Errorf("%w: mode window must end after it starts", ErrValidationFailed)
	}

	if err := s.modeRepo.Update(ctx, mode); err != nil {
		if errors.Is(err, repositories.ErrModeNotFound) {
			return nil, ErrModeNotFound
		}
		return nil, err
	}
	return mode, nil
}

func (s *modeService) SetActive(ctx context.Context, id primitive.ObjectID, active bool) (*models.GameMode, error) {
	if err := s.modeRepo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, repositories.ErrModeNotFound) {
			return nil, ErrModeNotFound
		}
		return nil, err
	}
	return s.get(ctx, id)
}

func (s *modeService) List(ctx context.Context) ([]models.GameMode, error) {
	return s.modeRepo.List(ctx)
}

func (s *modeService) ListActive(ctx context.Context) ([]models.GameMode, error) {
	return s.modeRepo.ListActive(ctx)
}

func (s *modeService) SyncScheduledModes(ctx context.Context, now time.Time) (int, error) {
	modes, err := s.modeRepo.ListScheduled(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list scheduled modes: %w", err)
	}

	changed := 0
	for i := range modes {
		mode := &modes[i]
		want := mode.ShouldBeActive(now)
		if want == mode.Active {
			continue
		}
		if err := s.modeRepo.SetActive(ctx, mode.ID, want); err != nil {
			return changed, fmt.Errorf("failed to flip mode %s: %w", mode.Name, err)
		}
		changed++
	}
	return changed, nil
}

func (s *modeService) get(ctx context.Context, id primitive.ObjectID) (*models.GameMode, error) {
	mode, err := s.modeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrModeNotFound) {
			return nil, ErrModeNotFound
		}
		return nil, err
	}
	return mode, nil
}
