package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GameSession is one recorded play session. Credits are computed once, at
// conversion time, and the session is marked converted so it cannot be
// cashed in twice.
type GameSession struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`

	GameID   string `json:"game_id" bson:"game_id"`
	ModeName string `json:"mode_name" bson:"mode_name"`

	DurationSeconds int64     `json:"duration_seconds" bson:"duration_seconds"`
	StartedAt       time.Time `json:"started_at" bson:"started_at"`
	EndedAt         time.Time `json:"ended_at" bson:"ended_at"`

	Converted      bool  `json:"converted" bson:"converted"`
	CreditsAwarded int64 `json:"credits_awarded" bson:"credits_awarded"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
