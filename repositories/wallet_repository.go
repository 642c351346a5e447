package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodplay/goodplay-backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrWalletNotFound = errors.New("wallet not found")
	// ErrInsufficientBalance is returned when a conditional debit matched no
	// document, meaning the balance guard failed.
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	// ErrDailyLimitExceeded is returned when the debit guard failed on the
	// daily donation allowance rather than the balance.
	ErrDailyLimitExceeded = errors.New("daily donation limit exceeded")
)

type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error)
	// Credit atomically adds amount to the balance and lifetime earned
	// counter, returning the updated wallet.
	Credit(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Wallet, error)
	// Debit atomically subtracts amount. Both the non-negative balance and
	// the daily donation limit live in the conditional update's filter, so
	// concurrent debits cannot overdraw either. Rolls the daily donation
	// counter for day. Returns ErrInsufficientBalance or
	// ErrDailyLimitExceeded when the guard rejects the update.
	Debit(ctx context.Context, userID primitive.ObjectID, amount int64, day string) (*models.Wallet, error)
	// Refund reverses a Debit that could not be followed through, restoring
	// the balance and the donation counters.
	Refund(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Wallet, error)
	// Adjust changes the balance by delta without touching lifetime
	// counters. Negative deltas carry the same non-negative balance guard
	// as Debit.
	Adjust(ctx context.Context, userID primitive.ObjectID, delta int64) (*models.Wallet, error)
	SetDailyLimit(ctx context.Context, userID primitive.ObjectID, limit int64) error
}

type mongoWalletRepository struct {
	coll *mongo.Collection
}

func NewMongoWalletRepository(db *mongo.Database) WalletRepository {
	return &mongoWalletRepository{coll: db.Collection(collWallets)}
}

func (r *mongoWalletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if wallet.ID.IsZero() {
		wallet.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if wallet.CreatedAt.IsZero() {
		wallet.CreatedAt = now
	}
	wallet.UpdatedAt = now
	if wallet.DailyDonationLimit == 0 {
		wallet.DailyDonationLimit = models.DefaultDailyDonationLimit
	}
	if wallet.DonationDay == "" {
		wallet.DonationDay = now.Format(models.DonationDayFormat)
	}
	if _, err := r.coll.InsertOne(ctx, wallet); err != nil {
		return fmt.Errorf("failed to insert wallet: %w", err)
	}
	return nil
}

func (r *mongoWalletRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wallet)
	if err != nil {
		return nil, mapNotFound(err, ErrWalletNotFound)
	}
	return &wallet, nil
}

func (r *mongoWalletRepository) Credit(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	update := bson.M{
		"$inc": bson.M{
			"current_balance": amount,
			"lifetime_earned": amount,
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findAndUpdate(ctx, bson.M{"user_id": userID}, update, ErrWalletNotFound)
}

func (r *mongoWalletRepository) Debit(ctx context.Context, userID primitive.ObjectID, amount int64, day string) (*models.Wallet, error) {
	now := time.Now().UTC()

	// Reset the daily counter first if the UTC day rolled over. Two steps
	// keep the debit guard itself a single conditional update.
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID, "donation_day": bson.M{"$ne": day}},
		bson.M{"$set": bson.M{"donation_day": day, "donated_today": int64(0), "updated_at": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to roll donation day: %w", err)
	}

	filter := bson.M{
		"user_id":         userID,
		"donation_day":    day,
		"current_balance": bson.M{"$gte": amount},
		"$expr": bson.M{"$lte": bson.A{
			bson.M{"$add": bson.A{"$donated_today", amount}},
			"$daily_donation_limit",
		}},
	}
	update := bson.M{
		"$inc": bson.M{
			"current_balance":  -amount,
			"lifetime_donated": amount,
			"donated_today":    amount,
		},
		"$set": bson.M{"updated_at": now},
	}
	wallet, err := r.findAndUpdate(ctx, filter, update, ErrInsufficientBalance)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			// The guard matched nothing; re-read to classify the failure.
			current, getErr := r.GetByUserID(ctx, userID)
			if getErr != nil {
				return nil, getErr
			}
			if current.CurrentBalance < amount {
				return nil, ErrInsufficientBalance
			}
			return nil, ErrDailyLimitExceeded
		}
		return nil, err
	}
	return wallet, nil
}

// Refund assumes it runs right after the failed follow-up to a Debit, so the
// donation day has not rolled over in between.
func (r *mongoWalletRepository) Refund(ctx context.Context, userID primitive.ObjectID, amount int64) (*models.Wallet, error) {
	update := bson.M{
		"$inc": bson.M{
			"current_balance":  amount,
			"lifetime_donated": -amount,
			"donated_today":    -amount,
		},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	return r.findAndUpdate(ctx, bson.M{"user_id": userID}, update, ErrWalletNotFound)
}

func (r *mongoWalletRepository) Adjust(ctx context.Context, userID primitive.ObjectID, delta int64) (*models.Wallet, error) {
	filter := bson.M{"user_id": userID}
	if delta < 0 {
		filter["current_balance"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"current_balance": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}
	wallet, err := r.findAndUpdate(ctx, filter, update, ErrInsufficientBalance)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			if _, getErr := r.GetByUserID(ctx, userID); errors.Is(getErr, ErrWalletNotFound) {
				return nil, ErrWalletNotFound
			}
		}
		return nil, err
	}
	return wallet, nil
}

func (r *mongoWalletRepository) SetDailyLimit(ctx context.Context, userID primitive.ObjectID, limit int64) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"daily_donation_limit": limit, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to set daily limit: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrWalletNotFound
	}
	return nil
}

func (r *mongoWalletRepository) findAndUpdate(ctx context.Context, filter, update bson.M, noMatch error) (*models.Wallet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var wallet models.Wallet
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&wallet)
	if err != nil {
		return nil, mapNotFound(err, noMatch)
	}
	return &wallet, nil
}
