package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionType string

const (
	TransactionEarned            TransactionType = "earned"
	TransactionDonated           TransactionType = "donated"
	TransactionPurchased         TransactionType = "purchased"
	TransactionAdminAdjustment   TransactionType = "admin_adjustment"
	TransactionAchievementReward TransactionType = "achievement_reward"
	TransactionRefund            TransactionType = "refund"
)

// Transaction is the append-only ledger entry behind every wallet mutation.
type Transaction struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID   primitive.ObjectID `json:"user_id" bson:"user_id"`
	WalletID primitive.ObjectID `json:"wallet_id" bson:"wallet_id"`

	Type   TransactionType `json:"type" bson:"type"`
	Amount int64           `json:"amount" bson:"amount"` // negative for debits
	// BalanceAfter records the wallet balance as of this entry.
	BalanceAfter int64 `json:"balance_after" bson:"balance_after"`

	// Optional references depending on Type.
	SessionID  *primitive.ObjectID `json:"session_id,omitempty" bson:"session_id,omitempty"`
	DonationID *primitive.ObjectID `json:"donation_id,omitempty" bson:"donation_id,omitempty"`
	PaymentID  *primitive.ObjectID `json:"payment_id,omitempty" bson:"payment_id,omitempty"`

	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
