package services

import (
	"context"
	"errors"
	"testing"

	"github.com/goodplay/goodplay-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type donationFixture struct {
	svc          DonationService
	donationRepo *fakeDonationRepo
	onlusRepo    *fakeOnlusRepo
	userRepo     *fakeUserRepo
	walletRepo   *fakeWalletRepo
	txRepo       *fakeTransactionRepo
	evaluator    *fakeEvaluator
	userID       primitive.ObjectID
	onlusID      primitive.ObjectID
}

func newDonationFixture(t *testing.T, balance int64) *donationFixture {
	t.Helper()
	donationRepo := newFakeDonationRepo()
	onlusRepo := newFakeOnlusRepo()
	userRepo := newFakeUserRepo()
	walletRepo := newFakeWalletRepo()
	txRepo := newFakeTransactionRepo()
	evaluator := &fakeEvaluator{}

	user := &models.User{Email: "donor@example.com", Nickname: "donor"}
	require.NoError(t, userRepo.Create(context.Background(), user))
	require.NoError(t, walletRepo.Create(context.Background(), &models.Wallet{
		UserID:         user.ID,
		CurrentBalance: balance,
		LifetimeEarned: balance,
	}))

	org := &models.OnlusOrganization{
		Name:       "Save The Oceans",
		Verified:   true,
		Active:     true,
		Compliance: models.ComplianceCompliant,
	}
	require.NoError(t, onlusRepo.Create(context.Background(), org))

	walletSvc := NewWalletService(walletRepo, txRepo)
	return &donationFixture{
		svc:          NewDonationService(donationRepo, onlusRepo, userRepo, walletSvc, evaluator),
		donationRepo: donationRepo,
		onlusRepo:    onlusRepo,
		userRepo:     userRepo,
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		evaluator:    evaluator,
		userID:       user.ID,
		onlusID:      org.ID,
	}
}

func TestDonateHappyPath(t *testing.T) {
	f := newDonationFixture(t, 1_000)

	donation, err := f.svc.Donate(context.Background(), f.userID, DonateInput{
		OnlusID: f.onlusID.Hex(),
		Amount:  200,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, donation.ReceiptNumber)
	require.NotNil(t, donation.Onlus)

	wallet, err := f.walletRepo.GetByUserID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(800), wallet.CurrentBalance)
	assert.Equal(t, int64(200), wallet.LifetimeDonated)

	org, err := f.onlusRepo.GetByID(context.Background(), f.onlusID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), org.TotalReceived)
	assert.Equal(t, int64(1), org.DonationsCount)

	user, err := f.userRepo.GetByID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(200), user.Stats.CreditsDonated)
	assert.Equal(t, 1, user.Stats.DonationsMade)
	assert.Contains(t, f.evaluator.calls, f.userID)
}

func TestDonateRefundsWhenDonationInsertFails(t *testing.T) {
	f := newDonationFixture(t, 1_000)
	f.donationRepo.createErr = errors.New("write concern error")

	_, err := f.svc.Donate(context.Background(), f.userID, DonateInput{
		OnlusID: f.onlusID.Hex(),
		Amount:  200,
	})
	require.Error(t, err)

	// The debit must be reversed so the donor keeps their credits.
	wallet, err := f.walletRepo.GetByUserID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), wallet.CurrentBalance)
	assert.Equal(t, int64(0), wallet.LifetimeDonated)
	assert.Equal(t, int64(0), wallet.DonatedToday)

	ledger, err := f.txRepo.ListByUser(context.Background(), f.userID, 50, 0)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, models.TransactionDonated, ledger[0].Type)
	assert.Equal(t, models.TransactionRefund, ledger[1].Type)
	assert.Equal(t, int64(200), ledger[1].Amount)
}

func TestDonateRefundsWhenOnlusUpdateFails(t *testing.T) {
	f := newDonationFixture(t, 1_000)
	f.onlusRepo.addDonationErr = errors.New("write concern error")

	_, err := f.svc.Donate(context.Background(), f.userID, DonateInput{
		OnlusID: f.onlusID.Hex(),
		Amount:  150,
	})
	require.Error(t, err)

	wallet, err := f.walletRepo.GetByUserID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), wallet.CurrentBalance)
	assert.Equal(t, int64(0), wallet.DonatedToday)

	org, err := f.onlusRepo.GetByID(context.Background(), f.onlusID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), org.TotalReceived)
}

func TestDonateIneligibleOnlus(t *testing.T) {
	f := newDonationFixture(t, 1_000)

	suspended := &models.OnlusOrganization{
		Name:       "Suspended Org",
		Verified:   true,
		Active:     true,
		Compliance: models.ComplianceSuspended,
	}
	require.NoError(t, f.onlusRepo.Create(context.Background(), suspended))

	_, err := f.svc.Donate(context.Background(), f.userID, DonateInput{
		OnlusID: suspended.ID.Hex(),
		Amount:  100,
	})
	assert.ErrorIs(t, err, ErrOnlusNotEligible)

	wallet, err := f.walletRepo.GetByUserID(context.Background(), f.userID)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), wallet.CurrentBalance)
}

func TestDonateValidation(t *testing.T) {
	f := newDonationFixture(t, 1_000)

	_, err := f.svc.Donate(context.Background(), f.userID, DonateInput{OnlusID: f.onlusID.Hex(), Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.svc.Donate(context.Background(), f.userID, DonateInput{OnlusID: "not-an-id", Amount: 100})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = f.svc.Donate(context.Background(), f.userID, DonateInput{OnlusID: primitive.NewObjectID().Hex(), Amount: 100})
	assert.ErrorIs(t, err, ErrOnlusNotFound)
}
