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

// Credit conversion constants. Rates come from the platform's economy
// configuration and are deliberately conservative.
const (
	BaseCreditsPerMinute   int64   = 10
	FirstSessionDailyBonus int64   = 25
	StreakBonusPerDay      float64 = 0.10
	StreakBonusCap         float64 = 2.0
	MinSessionSeconds      int64   = 30
	MaxSessionSeconds      int64   = 8 * 60 * 60
)

// CreditCalculator converts play time into credits. Pure arithmetic, kept
// separate from the service so the rates are testable in isolation.
type CreditCalculator struct{}

// Calculate returns the credits for a session of durationSeconds played
// while modes with combined modeMultiplier were active. streakDays is the
// number of consecutive play days before today; firstOfDay adds the flat
// daily bonus.
func (CreditCalculator) Calculate(durationSeconds int64, modeMultiplier float64, streakDays int, firstOfDay bool) int64 {
	if durationSeconds < MinSessionSeconds {
		return 0
	}
	if durationSeconds > MaxSessionSeconds {
		durationSeconds = MaxSessionSeconds
	}
	if modeMultiplier <= 0 {
		modeMultiplier = 1.0
	}

	streakFactor := 1.0 + StreakBonusPerDay*float64(streakDays)
	if streakFactor > StreakBonusCap {
		streakFactor = StreakBonusCap
	}

	base := float64(BaseCreditsPerMinute) * float64(durationSeconds) / 60.0
	credits := int64(base * modeMultiplier * streakFactor)
	if firstOfDay {
		credits += FirstSessionDailyBonus
	}
	return credits
}

// CombinedMultiplier stacks the multipliers of all active modes
// multiplicatively. An empty set means normal play (1.0).
func CombinedMultiplier(modes []models.GameMode) float64 {
	multiplier := 1.0
	for i := range modes {
		if modes[i].Multiplier > 0 {
			multiplier *= modes[i].Multiplier
		}
	}
	return multiplier
}

type RecordSessionInput struct {
	GameID          string `json:"game_id"`
	ModeName        string `json:"mode_name"`
	DurationSeconds int64  `json:"duration_seconds"`
}

// ConversionResult reports what a session conversion produced.
type ConversionResult struct {
	Session        *models.GameSession `json:"session"`
	CreditsAwarded int64               `json:"credits_awarded"`
	Multiplier     float64             `json:"multiplier"`
	StreakDays     int                 `json:"streak_days"`
	Wallet         *models.Wallet      `json:"wallet"`
}

type CreditService interface {
	RecordSession(ctx context.Context, userID primitive.ObjectID, input RecordSessionInput) (*models.GameSession, error)
	ConvertSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*ConversionResult, error)
	ListSessions(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.GameSession, error)
}

type creditService struct {
	calc        CreditCalculator
	sessionRepo repositories.SessionRepository
	modeRepo    repositories.ModeRepository
	userRepo    repositories.UserRepository
	walletSvc   WalletService
	achievement AchievementEvaluator
}

func NewCreditService(
	sessionRepo repositories.SessionRepository,
	modeRepo repositories.ModeRepository,
	userRepo repositories.UserRepository,
	walletSvc WalletService,
	achievement AchievementEvaluator,
) CreditService {
	return &creditService{
		sessionRepo: sessionRepo,
		modeRepo:    modeRepo,
		userRepo:    userRepo,
		walletSvc:   walletSvc,
		achievement: achievement,
	}
}

func (s *creditService) RecordSession(ctx context.Context, userID primitive.ObjectID, input RecordSessionInput) (*models.GameSession, error) {
	if input.GameID == "" || input.DurationSeconds <= 0 {
		return nil, ErrValidationFailed
	}
	if input.ModeName == "" {
		input.ModeName = models.ModeNormal
	}

	now := time.Now().UTC()
	session := &models.GameSession{
		UserID:          userID,
		GameID:          input.GameID,
		ModeName:        input.ModeName,
		DurationSeconds: input.DurationSeconds,
		StartedAt:       now.Add(-time.Duration(input.DurationSeconds) * time.Second),
		EndedAt:         now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *creditService) ConvertSession(ctx context.Context, userID, sessionID primitive.ObjectID) (*ConversionResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrForbiddenOperation
	}
	if session.Converted {
		return nil, ErrSessionAlreadyCredited
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	activeModes, err := s.modeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active modes: %w", err)
	}
	multiplier := CombinedMultiplier(activeModes)

	now := time.Now().UTC()
	today := now.Format(models.DonationDayFormat)
	lastDay := user.Stats.LastSessionAt.UTC().Format(models.DonationDayFormat)
	firstOfDay := user.Stats.LastSessionAt.IsZero() || lastDay != today

	streak := user.Stats.CurrentStreakDays
	if firstOfDay {
		yesterday := now.AddDate(0, 0, -1).Format(models.DonationDayFormat)
		if lastDay == yesterday {
			streak++
		} else {
			streak = 0
		}
	}

	credits := s.calc.Calculate(session.DurationSeconds, multiplier, streak, firstOfDay)

	if err := s.sessionRepo.MarkConverted(ctx, session.ID, credits); err != nil {
		if errors.Is(err, repositories.ErrSessionAlreadyConverted) {
			return nil, ErrSessionAlreadyCredited
		}
		return nil, err
	}
	session.Converted = true
	session.CreditsAwarded = credits

	wallet, err := s.walletSvc.CreditFromSession(ctx, userID, session.ID, credits)
	if err != nil {
		return nil, err
	}

	user.Stats.SessionsPlayed++
	user.Stats.TotalPlayTime += session.DurationSeconds
	user.Stats.CreditsEarned += credits
	user.Stats.CurrentStreakDays = streak
	user.Stats.LastSessionAt = now
	if err := s.userRepo.UpdateStats(ctx, userID, user.Stats); err != nil {
		return nil, fmt.Errorf("failed to update user stats: %w", err)
	}

	if s.achievement != nil {
		// Progress updates are best-effort; conversion already succeeded.
		s.achievement.EvaluateUser(ctx, user)
	}

	return &ConversionResult{
		Session:        session,
		CreditsAwarded: credits,
		Multiplier:     multiplier,
		StreakDays:     streak,
		Wallet:         wallet,
	}, nil
}

func (s *creditService) ListSessions(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.GameSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.sessionRepo.ListByUser(ctx, userID, limit, offset)
}
