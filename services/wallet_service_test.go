package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newWalletServiceForTest(t *testing.T, balance int64) (WalletService, primitive.ObjectID, *fakeWalletRepo, *fakeTransactionRepo) {
	t.Helper()
	walletRepo := newFakeWalletRepo()
	txRepo := newFakeTransactionRepo()
	userID := primitive.NewObjectID()
	require.NoError(t, walletRepo.Create(context.Background(), &models.Wallet{
		UserID:         userID,
		CurrentBalance: balance,
		LifetimeEarned: balance,
	}))
	return NewWalletService(walletRepo, txRepo), userID, walletRepo, txRepo
}

func TestCreditFromSessionRecordsLedgerEntry(t *testing.T) {
	svc, userID, _, txRepo := newWalletServiceForTest(t, 0)
	sessionID := primitive.NewObjectID()

	wallet, err := svc.CreditFromSession(context.Background(), userID, sessionID, 125)
	require.NoError(t, err)
	assert.Equal(t, int64(125), wallet.CurrentBalance)
	assert.Equal(t, int64(125), wallet.LifetimeEarned)

	ledger, err := txRepo.ListByUser(context.Background(), userID, 50, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.TransactionEarned, ledger[0].Type)
	assert.Equal(t, int64(125), ledger[0].Amount)
	assert.Equal(t, int64(125), ledger[0].BalanceAfter)
	require.NotNil(t, ledger[0].SessionID)
	assert.Equal(t, sessionID, *ledger[0].SessionID)
}

func TestCreditFromSessionZeroAmountSkipsLedger(t *testing.T) {
	svc, userID, _, txRepo := newWalletServiceForTest(t, 40)

	wallet, err := svc.CreditFromSession(context.Background(), userID, primitive.NewObjectID(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(40), wallet.CurrentBalance)

	ledger, err := txRepo.ListByUser(context.Background(), userID, 50, 0)
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

func TestDebitForDonationInsufficientBalance(t *testing.T) {
	svc, userID, _, _ := newWalletServiceForTest(t, 10)

	_, err := svc.DebitForDonation(context.Background(), userID, primitive.NewObjectID(), 50)
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	wallet, err := svc.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), wallet.CurrentBalance)
}

func TestDebitForDonationDailyLimit(t *testing.T) {
	svc, userID, _, _ := newWalletServiceForTest(t, 10_000)

	_, err := svc.DebitForDonation(context.Background(), userID, primitive.NewObjectID(), 400)
	require.NoError(t, err)

	// The default limit is 500; 150 more would exceed it.
	_, err = svc.DebitForDonation(context.Background(), userID, primitive.NewObjectID(), 150)
	assert.ErrorIs(t, err, ErrDailyLimitExceeded)

	wallet, err := svc.DebitForDonation(context.Background(), userID, primitive.NewObjectID(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(9_500), wallet.CurrentBalance)
	assert.Equal(t, int64(500), wallet.DonatedToday)
}

func TestDebitForDonationConcurrentLimitEnforcement(t *testing.T) {
	svc, userID, walletRepo, _ := newWalletServiceForTest(t, 10_000)

	// Eight donations of 150 race against the default limit of 500. Only
	// three fit; the guard inside the debit must reject the rest even when
	// their pre-checks all saw a fresh allowance.
	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.DebitForDonation(context.Background(), userID, primitive.NewObjectID(), 150)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrDailyLimitExceeded)
	}
	assert.Equal(t, 3, succeeded)

	wallet, err := walletRepo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(450), wallet.DonatedToday)
	assert.Equal(t, int64(10_000-450), wallet.CurrentBalance)
}

func TestRefundDonationRestoresCounters(t *testing.T) {
	svc, userID, _, txRepo := newWalletServiceForTest(t, 1_000)
	donationID := primitive.NewObjectID()

	_, err := svc.DebitForDonation(context.Background(), userID, donationID, 250)
	require.NoError(t, err)

	wallet, err := svc.RefundDonation(context.Background(), userID, donationID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), wallet.CurrentBalance)
	assert.Equal(t, int64(0), wallet.LifetimeDonated)
	assert.Equal(t, int64(0), wallet.DonatedToday)

	ledger, err := txRepo.ListByUser(context.Background(), userID, 50, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, models.TransactionRefund, ledger[1].Type)
	assert.Equal(t, int64(250), ledger[1].Amount)
	require.NotNil(t, ledger[1].DonationID)
	assert.Equal(t, donationID, *ledger[1].DonationID)
}

func TestDebitForDonationDayRollover(t *testing.T) {
	svc, userID, walletRepo, _ := newWalletServiceForTest(t, 10_000)

	// Wallet spent its full allowance yesterday.
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(models.DonationDayFormat)
	walletRepo.mu.Lock()
	walletRepo.wallets[userID].DonationDay = yesterday
	walletRepo.wallets[userID].DonatedToday = models.DefaultDailyDonationLimit
	walletRepo.mu.Unlock()

	wallet, err := svc.DebitForDonation(context.Background(), userID, primitive.NewObjectID(), 300)
	require.NoError(t, err)
	assert.Equal(t, int64(300), wallet.DonatedToday)
	assert.Equal(t, int64(9_700), wallet.CurrentBalance)
}

func TestDebitForDonationLedgerEntry(t *testing.T) {
	svc, userID, _, txRepo := newWalletServiceForTest(t, 1_000)
	donationID := primitive.NewObjectID()

	wallet, err := svc.DebitForDonation(context.Background(), userID, donationID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(750), wallet.CurrentBalance)
	assert.Equal(t, int64(250), wallet.LifetimeDonated)

	ledger, err := txRepo.ListByUser(context.Background(), userID, 50, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.TransactionDonated, ledger[0].Type)
	assert.Equal(t, int64(-250), ledger[0].Amount)
	assert.Equal(t, int64(750), ledger[0].BalanceAfter)
	require.NotNil(t, ledger[0].DonationID)
	assert.Equal(t, donationID, *ledger[0].DonationID)
}

func TestAdminAdjust(t *testing.T) {
	svc, userID, _, txRepo := newWalletServiceForTest(t, 100)

	_, err := svc.AdminAdjust(context.Background(), userID, 0, "noop")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	wallet, err := svc.AdminAdjust(context.Background(), userID, -30, "support refund reversal")
	require.NoError(t, err)
	assert.Equal(t, int64(70), wallet.CurrentBalance)
	// Adjustments do not touch lifetime counters.
	assert.Equal(t, int64(100), wallet.LifetimeEarned)

	_, err = svc.AdminAdjust(context.Background(), userID, -500, "too much")
	assert.ErrorIs(t, err, ErrInsufficientCredits)

	ledger, err := txRepo.ListByUser(context.Background(), userID, 50, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.TransactionAdminAdjustment, ledger[0].Type)
	assert.Equal(t, "support refund reversal", ledger[0].Description)
}

func TestSetDailyLimit(t *testing.T) {
	svc, userID, walletRepo, _ := newWalletServiceForTest(t, 0)

	assert.ErrorIs(t, svc.SetDailyLimit(context.Background(), userID, 0), ErrInvalidAmount)
	assert.ErrorIs(t, svc.SetDailyLimit(context.Background(), primitive.NewObjectID(), 100), ErrWalletNotFound)

	require.NoError(t, svc.SetDailyLimit(context.Background(), userID, 1_000))
	wallet, err := walletRepo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), wallet.DailyDonationLimit)
}

func TestGetWalletNotFound(t *testing.T) {
	svc, _, _, _ := newWalletServiceForTest(t, 0)
	_, err := svc.GetWallet(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrWalletNotFound)
}
