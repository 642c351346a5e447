package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type achievementFixture struct {
	svc             AchievementService
	achievementRepo *fakeAchievementRepo
	walletRepo      *fakeWalletRepo
	txRepo          *fakeTransactionRepo
}

func newAchievementFixture(t *testing.T) *achievementFixture {
	t.Helper()
	achievementRepo := newFakeAchievementRepo()
	walletRepo := newFakeWalletRepo()
	txRepo := newFakeTransactionRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	walletSvc := NewWalletService(walletRepo, txRepo)
	return &achievementFixture{
		svc:             NewAchievementService(achievementRepo, walletSvc, logger),
		achievementRepo: achievementRepo,
		walletRepo:      walletRepo,
		txRepo:          txRepo,
	}
}

func (f *achievementFixture) createDefinition(t *testing.T, code, metric string, threshold, reward int64) *models.Achievement {
	t.Helper()
	def, err := f.svc.Create(context.Background(), CreateAchievementInput{
		Code:          code,
		Name:          "Achievement " + code,
		Category:      models.CategoryGaming,
		Metric:        metric,
		Threshold:     threshold,
		RewardCredits: reward,
	})
	require.NoError(t, err)
	return def
}

func TestCreateAchievementValidation(t *testing.T) {
	f := newAchievementFixture(t)

	_, err := f.svc.Create(context.Background(), CreateAchievementInput{
		Name:      "nameless",
		Category:  models.CategoryGaming,
		Metric:    models.MetricSessionsPlayed,
		Threshold: 10,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.Create(context.Background(), CreateAchievementInput{
		Code:      "bad-metric",
		Name:      "Bad metric",
		Category:  models.CategoryGaming,
		Metric:    "unknown_metric",
		Threshold: 10,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.Create(context.Background(), CreateAchievementInput{
		Code:      "bad-category",
		Name:      "Bad category",
		Category:  "mystery",
		Metric:    models.MetricSessionsPlayed,
		Threshold: 10,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)

	f.createDefinition(t, "first-session", models.MetricSessionsPlayed, 1, 50)
	_, err = f.svc.Create(context.Background(), CreateAchievementInput{
		Code:      "first-session",
		Name:      "Duplicate",
		Category:  models.CategoryGaming,
		Metric:    models.MetricSessionsPlayed,
		Threshold: 1,
	})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestEvaluateUserProgress(t *testing.T) {
	f := newAchievementFixture(t)
	def := f.createDefinition(t, "marathon", models.MetricSessionsPlayed, 10, 100)

	user := &models.User{
		ID:    primitive.NewObjectID(),
		Stats: models.GamingStats{SessionsPlayed: 5},
	}
	f.svc.EvaluateUser(context.Background(), user)

	ua, err := f.achievementRepo.GetUserAchievement(context.Background(), user.ID, def.ID)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, ua.Progress, 1e-9)
	assert.False(t, ua.Completed)

	user.Stats.SessionsPlayed = 25
	f.svc.EvaluateUser(context.Background(), user)

	ua, err = f.achievementRepo.GetUserAchievement(context.Background(), user.ID, def.ID)
	require.NoError(t, err)
	// Progress caps at 100 even when the metric overshoots.
	assert.InDelta(t, 100.0, ua.Progress, 1e-9)
	assert.True(t, ua.Completed)
	assert.NotNil(t, ua.CompletedAt)
}

func TestClaimRewardPaysOnce(t *testing.T) {
	f := newAchievementFixture(t)
	def := f.createDefinition(t, "marathon", models.MetricSessionsPlayed, 10, 100)

	user := &models.User{
		ID:    primitive.NewObjectID(),
		Stats: models.GamingStats{SessionsPlayed: 10},
	}
	require.NoError(t, f.walletRepo.Create(context.Background(), &models.Wallet{UserID: user.ID}))
	f.svc.EvaluateUser(context.Background(), user)

	result, err := f.svc.ClaimReward(context.Background(), user.ID, def.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Credits)
	require.NotNil(t, result.Wallet)
	assert.Equal(t, int64(100), result.Wallet.CurrentBalance)

	ledger, err := f.txRepo.ListByUser(context.Background(), user.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.TransactionAchievementReward, ledger[0].Type)

	_, err = f.svc.ClaimReward(context.Background(), user.ID, def.ID)
	assert.ErrorIs(t, err, ErrRewardAlreadyClaimed)

	// Re-evaluation after the claim must not reopen the reward.
	f.svc.EvaluateUser(context.Background(), user)
	_, err = f.svc.ClaimReward(context.Background(), user.ID, def.ID)
	assert.ErrorIs(t, err, ErrRewardAlreadyClaimed)
}

func TestClaimRewardRequiresCompletion(t *testing.T) {
	f := newAchievementFixture(t)
	def := f.createDefinition(t, "marathon", models.MetricSessionsPlayed, 10, 100)

	user := &models.User{
		ID:    primitive.NewObjectID(),
		Stats: models.GamingStats{SessionsPlayed: 3},
	}
	require.NoError(t, f.walletRepo.Create(context.Background(), &models.Wallet{UserID: user.ID}))
	f.svc.EvaluateUser(context.Background(), user)

	_, err := f.svc.ClaimReward(context.Background(), user.ID, def.ID)
	assert.ErrorIs(t, err, ErrAchievementNotCompleted)

	_, err = f.svc.ClaimReward(context.Background(), user.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrAchievementNotFound)
}

func TestListForUserIncludesUntouchedDefinitions(t *testing.T) {
	f := newAchievementFixture(t)
	started := f.createDefinition(t, "marathon", models.MetricSessionsPlayed, 10, 100)
	untouched := f.createDefinition(t, "philanthropist", models.MetricDonationsMade, 5, 200)

	user := &models.User{
		ID:    primitive.NewObjectID(),
		Stats: models.GamingStats{SessionsPlayed: 5},
	}
	f.svc.EvaluateUser(context.Background(), user)

	list, err := f.svc.ListForUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byID := make(map[primitive.ObjectID]models.UserAchievement, len(list))
	for _, ua := range list {
		require.NotNil(t, ua.Achievement)
		byID[ua.AchievementID] = ua
	}
	assert.InDelta(t, 50.0, byID[started.ID].Progress, 1e-9)
	// Donations metric reads zero for this user, so progress stays at zero.
	assert.InDelta(t, 0.0, byID[untouched.ID].Progress, 1e-9)
}
