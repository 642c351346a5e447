package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/goodplay/goodplay-backend/repositories"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DonateInput struct {
	OnlusID string  `json:"onlus_id"`
	Amount  int64   `json:"amount"`
	Message *string `json:"message"`
}

type DonationService interface {
	Donate(ctx context.Context, userID primitive.ObjectID, input DonateInput) (*models.Donation, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Donation, error)
	ListByOnlus(ctx context.Context, onlusID primitive.ObjectID, limit, offset int64) ([]models.Donation, error)
}

type donationService struct {
	donationRepo repositories.DonationRepository
	onlusRepo    repositories.OnlusRepository
	userRepo     repositories.UserRepository
	walletSvc    WalletService
	achievement  AchievementEvaluator
}

func NewDonationService(
	donationRepo repositories.DonationRepository,
	onlusRepo repositories.OnlusRepository,
	userRepo repositories.UserRepository,
	walletSvc WalletService,
	achievement AchievementEvaluator,
) DonationService {
	return &donationService{
		donationRepo: donationRepo,
		onlusRepo:    onlusRepo,
		userRepo:     userRepo,
		walletSvc:    walletSvc,
		achievement:  achievement,
	}
}

func (s *donationService) Donate(ctx context.Context, userID primitive.ObjectID, input DonateInput) (*models.Donation, error) {
	if input.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	onlusID, err := primitive.ObjectIDFromHex(input.OnlusID)
	if err != nil {
		return nil, ErrValidationFailed
	}

	onlus, err := s.onlusRepo.GetByID(ctx, onlusID)
	if err != nil {
		if errors.Is(err, repositories.ErrOnlusNotFound) {
			return nil, ErrOnlusNotFound
		}
		return nil, err
	}
	if !onlus.CanReceiveDonations() {
		return nil, ErrOnlusNotEligible
	}

	donation := &models.Donation{
		ID:            primitive.NewObjectID(),
		UserID:        userID,
		OnlusID:       onlusID,
		Amount:        input.Amount,
		ReceiptNumber: uuid.NewString(),
		Message:       input.Message,
	}

	// Debit first: the balance guard and daily limit live there. If the
	// debit fails nothing else has happened.
	if _, err := s.walletSvc.DebitForDonation(ctx, userID, donation.ID, input.Amount); err != nil {
		return nil, err
	}

	if err := s.donationRepo.Create(ctx, donation); err != nil {
		return nil, s.refundAfterFailure(ctx, userID, donation.ID, input.Amount,
			fmt.Errorf("failed to record donation: %w", err))
	}

	if err := s.onlusRepo.AddDonation(ctx, onlusID, input.Amount); err != nil {
		return nil, s.refundAfterFailure(ctx, userID, donation.ID, input.Amount,
			fmt.Errorf("failed to update onlus totals: %w", err))
	}

	// Update donor stats and re-evaluate impact achievements.
	if user, userErr := s.userRepo.GetByID(ctx, userID); userErr == nil {
		user.Stats.CreditsDonated += input.Amount
		user.Stats.DonationsMade++
		if err := s.userRepo.UpdateStats(ctx, userID, user.Stats); err == nil && s.achievement != nil {
			s.achievement.EvaluateUser(ctx, user)
		}
	}

	donation.Onlus = onlus
	return donation, nil
}

// refundAfterFailure reverses the debit behind a donation whose follow-up
// write failed, so the donor's credits are not lost.
func (s *donationService) refundAfterFailure(ctx context.Context, userID, donationID primitive.ObjectID, amount int64, cause error) error {
	if _, err := s.walletSvc.RefundDonation(ctx, userID, donationID, amount); err != nil {
		return fmt.Errorf("%w (refund of %d credits also failed: %v)", cause, amount, err)
	}
	return cause
}

func (s *donationService) ListByUser(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Donation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.donationRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *donationService) ListByOnlus(ctx context.Context, onlusID primitive.ObjectID, limit, offset int64) ([]models.Donation, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.donationRepo.ListByOnlus(ctx, onlusID, limit, offset)
}
