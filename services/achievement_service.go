package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AchievementEvaluator is the slice of the achievement service the credit and
// donation flows need. Evaluation is best-effort for callers.
type AchievementEvaluator interface {
	EvaluateUser(ctx context.Context, user *models.User)
}

type CreateAchievementInput struct {
	Code          string                     `json:"code"`
	Name          string                     `json:"name"`
	Description   string                     `json:"description"`
	Category      models.AchievementCategory `json:"category"`
	Metric        string                     `json:"metric"`
	Threshold     int64                      `json:"threshold"`
	RewardCredits int64                      `json:"reward_credits"`
}

// ClaimResult reports a claimed reward and the wallet it was paid into.
type ClaimResult struct {
	Achievement *models.Achievement `json:"achievement"`
	Credits     int64               `json:"credits"`
	Wallet      *models.Wallet      `json:"wallet"`
}

type AchievementService interface {
	AchievementEvaluator

	Create(ctx context.Context, input CreateAchievementInput) (*models.Achievement, error)
	List(ctx context.Context) ([]models.Achievement, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error)
	// ClaimReward pays out a completed achievement's credits. Pays at most
	// once per user per achievement.
	ClaimReward(ctx context.Context, userID, achievementID primitive.ObjectID) (*ClaimResult, error)
}

type achievementService struct {
	achievementRepo repositories.AchievementRepository
	walletSvc       WalletService
	logger          *slog.Logger
}

func NewAchievementService(achievementRepo repositories.AchievementRepository, walletSvc WalletService, logger *slog.Logger) AchievementService {
	return &achievementService{
		achievementRepo: achievementRepo,
		walletSvc:       walletSvc,
		logger:          logger,
	}
}

func (s *achievementService) Create(ctx context.Context, input CreateAchievementInput) (*models.Achievement, error) {
	if input.Code == "" || input.Name == "" || input.Threshold <= 0 {
		return nil, ErrValidationFailed
	}
	if !validMetric(input.Metric) {
		return nil, fmt.Errorf("%w: unknown trigger metric %q", ErrValidationFailed, input.Metric)
	}
	switch input.Category {
	case models.CategoryGaming, models.CategorySocial, models.CategoryImpact:
	default:
		return nil, fmt.Errorf("%w: unknown category %q", ErrValidationFailed, input.Category)
	}

	a := &models.Achievement{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		Category:    input.Category,
		Trigger: models.AchievementTrigger{
			Metric:    input.Metric,
			Threshold: input.Threshold,
		},
		RewardCredits: input.RewardCredits,
	}
	if err := s.achievementRepo.Create(ctx, a); err != nil {
		if errors.Is(err, repositories.ErrAchievementCodeConflict) {
			return nil, fmt.Errorf("%w: achievement code %s already exists", ErrValidationFailed, input.Code)
		}
		return nil, err
	}
	return a, nil
}

func (s *achievementService) List(ctx context.Context) ([]models.Achievement, error) {
	return s.achievementRepo.List(ctx)
}

func (s *achievementService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserAchievement, error) {
	defs, err := s.achievementRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byAchievement := make(map[primitive.ObjectID]models.UserAchievement, len(progress))
	for _, ua := range progress {
		byAchievement[ua.AchievementID] = ua
	}

	// Every definition appears in the result, at zero progress if untouched.
	result := make([]models.UserAchievement, 0, len(defs))
	for i := range defs {
		def := defs[i]
		ua, ok := byAchievement[def.ID]
		if !ok {
			ua = models.UserAchievement{
				UserID:        userID,
				AchievementID: def.ID,
			}
		}
		ua.Achievement = &def
		result = append(result, ua)
	}
	return result, nil
}

func (s *achievementService) ClaimReward(ctx context.Context, userID, achievementID primitive.ObjectID) (*ClaimResult, error) {
	def, err := s.achievementRepo.GetByID(ctx, achievementID)
	if err != nil {
		if errors.Is(err, repositories.ErrAchievementNotFound) {
			return nil, ErrAchievementNotFound
		}
		return nil, err
	}

	if err := s.achievementRepo.MarkClaimed(ctx, userID, achievementID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrAchievementClaimed):
			return nil, ErrRewardAlreadyClaimed
		case errors.Is(err, repositories.ErrUserAchievementNotFound):
			return nil, ErrAchievementNotCompleted
		}
		return nil, err
	}

	result := &ClaimResult{Achievement: def, Credits: def.RewardCredits}
	if def.RewardCredits > 0 {
		wallet, err := s.walletSvc.CreditReward(ctx, userID, def.RewardCredits,
			fmt.Sprintf("Achievement reward: %s", def.Name))
		if err != nil {
			return nil, fmt.Errorf("failed to pay achievement reward: %w", err)
		}
		result.Wallet = wallet
	}
	return result, nil
}

// EvaluateUser recomputes progress for every achievement against the user's
// current stats. Errors are logged, not returned, so callers can fire and
// forget after their own write succeeded.
func (s *achievementService) EvaluateUser(ctx context.Context, user *models.User) {
	defs, err := s.achievementRepo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list achievements for evaluation", slog.Any("error", err))
		return
	}

	now := time.Now().UTC()
	for i := range defs {
		def := &defs[i]
		value := metricValue(user.Stats, def.Trigger.Metric)

		progress := float64(0)
		if def.Trigger.Threshold > 0 {
			progress = float64(value) / float64(def.Trigger.Threshold) * 100
		}
		if progress > 100 {
			progress = 100
		}

		ua := &models.UserAchievement{
			UserID:        user.ID,
			AchievementID: def.ID,
			Progress:      progress,
			Completed:     value >= def.Trigger.Threshold,
		}
		if ua.Completed {
			ua.CompletedAt = &now
		}
		if err := s.achievementRepo.UpsertProgress(ctx, ua); err != nil {
			s.logger.Error("failed to update achievement progress",
				slog.String("user_id", user.ID.Hex()),
				slog.String("achievement", def.Code),
				slog.Any("error", err))
		}
	}
}

func validMetric(metric string) bool {
	switch metric {
	case models.MetricSessionsPlayed, models.MetricPlayTime, models.MetricCreditsEarned,
		models.MetricCreditsDonated, models.MetricDonationsMade, models.MetricStreakDays:
		return true
	}
	return false
}

func metricValue(stats models.GamingStats, metric string) int64 {
	switch metric {
	case models.MetricSessionsPlayed:
		return int64(stats.SessionsPlayed)
	case models.MetricPlayTime:
		return stats.TotalPlayTime
	case models.MetricCreditsEarned:
		return stats.CreditsEarned
	case models.MetricCreditsDonated:
		return stats.CreditsDonated
	case models.MetricDonationsMade:
		return int64(stats.DonationsMade)
	case models.MetricStreakDays:
		return int64(stats.CurrentStreakDays)
	}
	return 0
}
