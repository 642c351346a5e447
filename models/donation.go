package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Donation struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID  primitive.ObjectID `json:"user_id" bson:"user_id"`
	OnlusID primitive.ObjectID `json:"onlus_id" bson:"onlus_id"`

	Amount int64 `json:"amount" bson:"amount"`

	// ReceiptNumber is a uuid issued at donation time, shown to the donor.
	ReceiptNumber string  `json:"receipt_number" bson:"receipt_number"`
	Message       *string `json:"message,omitempty" bson:"message,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Onlus *OnlusOrganization `json:"onlus,omitempty" bson:"-"`
}
