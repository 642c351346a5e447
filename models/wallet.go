package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultDailyDonationLimit is applied to new wallets; admins can raise it
// per user.
const DefaultDailyDonationLimit int64 = 500

type Wallet struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`

	CurrentBalance int64 `json:"current_balance" bson:"current_balance"`
	PendingCredits int64 `json:"pending_credits" bson:"pending_credits"`

	LifetimeEarned  int64 `json:"lifetime_earned" bson:"lifetime_earned"`
	LifetimeDonated int64 `json:"lifetime_donated" bson:"lifetime_donated"`

	DailyDonationLimit int64 `json:"daily_donation_limit" bson:"daily_donation_limit"`
	// DonatedToday is reset when DonationDay rolls over (UTC).
	DonatedToday int64     `json:"donated_today" bson:"donated_today"`
	DonationDay  string    `json:"-" bson:"donation_day"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// RemainingDailyAllowance returns how many credits the user may still donate
// today. day is the current UTC day in DonationDayFormat.
func (w *Wallet) RemainingDailyAllowance(day string) int64 {
	donated := w.DonatedToday
	if w.DonationDay != day {
		donated = 0
	}
	remaining := w.DailyDonationLimit - donated
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DonationDayFormat is the key used to detect UTC day rollover.
const DonationDayFormat = "2006-01-02"
