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

type WalletService interface {
	GetWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)
	Transactions(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Transaction, error)

	CreditFromSession(ctx context.Context, userID, sessionID primitive.ObjectID, amount int64) (*models.Wallet, error)
	CreditFromPayment(ctx context.Context, userID, paymentID primitive.ObjectID, amount int64) (*models.Wallet, error)
	CreditReward(ctx context.Context, userID primitive.ObjectID, amount int64, description string) (*models.Wallet, error)

	// DebitForDonation enforces the daily donation limit and the
	// non-negative balance invariant, then records the ledger entry.
	DebitForDonation(ctx context.Context, userID, donationID primitive.ObjectID, amount int64) (*models.Wallet, error)
	// RefundDonation reverses a donation debit whose follow-up writes failed.
	RefundDonation(ctx context.Context, userID, donationID primitive.ObjectID, amount int64) (*models.Wallet, error)

	AdminAdjust(ctx context.Context, userID primitive.ObjectID, amount int64, description string) (*models.Wallet, error)
	SetDailyLimit(ctx context.Context, userID primitive.ObjectID, limit int64) error
}

type walletService struct {
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
}

func NewWalletService(walletRepo repositories.WalletRepository, txRepo repositories.TransactionRepository) WalletService {
	return &walletService{
		walletRepo: walletRepo,
		txRepo:     txRepo,
	}
}

func (s *walletService) GetWallet(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}

func (s *walletService) Transactions(ctx context.Context, userID primitive.ObjectID, limit, offset int64) ([]models.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.txRepo.ListByUser(ctx, userID, limit, offset)
}

func (s *walletService) CreditFromSession(ctx context.Context, userID, sessionID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	if amount == 0 {
		// Sessions under the minimum duration convert to zero credits; no
		// ledger entry for those.
		return s.GetWallet(ctx, userID)
	}
	wallet, err := s.credit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return wallet, s.record(ctx, wallet, models.TransactionEarned, amount, &models.Transaction{SessionID: &sessionID})
}

func (s *walletService) CreditFromPayment(ctx context.Context, userID, paymentID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	wallet, err := s.credit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return wallet, s.record(ctx, wallet, models.TransactionPurchased, amount, &models.Transaction{PaymentID: &paymentID})
}

func (s *walletService) CreditReward(ctx context.Context, userID primitive.ObjectID, amount int64, description string) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	wallet, err := s.credit(ctx, userID, amount)
	if err != nil {
		return nil, err
	}
	return wallet, s.record(ctx, wallet, models.TransactionAchievementReward, amount, &models.Transaction{Description: description})
}

func (s *walletService) DebitForDonation(ctx context.Context, userID, donationID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Fast-path check; the authoritative limit guard sits inside the
	// conditional Debit so concurrent donations cannot slip past it.
	day := time.Now().UTC().Format(models.DonationDayFormat)
	if wallet.RemainingDailyAllowance(day) < amount {
		return nil, ErrDailyLimitExceeded
	}

	wallet, err = s.walletRepo.Debit(ctx, userID, amount, day)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInsufficientBalance):
			return nil, ErrInsufficientCredits
		case errors.Is(err, repositories.ErrDailyLimitExceeded):
			return nil, ErrDailyLimitExceeded
		case errors.Is(err, repositories.ErrWalletNotFound):
			return nil, ErrWalletNotFound
		}
		return nil, err
	}

	return wallet, s.record(ctx, wallet, models.TransactionDonated, -amount, &models.Transaction{DonationID: &donationID})
}

func (s *walletService) RefundDonation(ctx context.Context, userID, donationID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	wallet, err := s.walletRepo.Refund(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, s.record(ctx, wallet, models.TransactionRefund, amount, &models.Transaction{DonationID: &donationID})
}

func (s *walletService) AdminAdjust(ctx context.Context, userID primitive.ObjectID, amount int64, description string) (*models.Wallet, error) {
	if amount == 0 {
		return nil, ErrInvalidAmount
	}
	wallet, err := s.walletRepo.Adjust(ctx, userID, amount)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrInsufficientBalance):
			return nil, ErrInsufficientCredits
		case errors.Is(err, repositories.ErrWalletNotFound):
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, s.record(ctx, wallet, models.TransactionAdminAdjustment, amount, &models.Transaction{Description: description})
}

func (s *walletService) SetDailyLimit(ctx context.Context, userID primitive.ObjectID, limit int64) error {
	if limit <= 0 {
		return ErrInvalidAmount
	}
	err := s.walletRepo.SetDailyLimit(ctx, userID, limit)
	if errors.Is(err, repositories.ErrWalletNotFound) {
		return ErrWalletNotFound
	}
	return err
}

func (s *walletService) credit(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	wallet, err := s.walletRepo.Credit(ctx, userID, amount)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return wallet, nil
}

// record appends the ledger entry behind a wallet mutation. refs carries the
// optional foreign references and description for the entry.
func (s *walletService) record(ctx context.Context, wallet *models.Wallet, txType models.TransactionType, amount int64, refs *models.Transaction) error {
	tx := &models.Transaction{
		UserID:       wallet.UserID,
		WalletID:     wallet.ID,
		Type:         txType,
		Amount:       amount,
		BalanceAfter: wallet.CurrentBalance,
	}
	if refs != nil {
		tx.SessionID = refs.SessionID
		tx.DonationID = refs.DonationID
		tx.PaymentID = refs.PaymentID
		tx.Description = refs.Description
	}
	if err := s.txRepo.Create(ctx, tx); err != nil {
		return fmt.Errorf("failed to record %s transaction: %w", txType, err)
	}
	return nil
}
