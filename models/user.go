package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	FirstName    string             `json:"first_name" bson:"first_name"`
	LastName     string             `json:"last_name" bson:"last_name"`
	Nickname     string             `json:"nickname" bson:"nickname"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"password_hash"`
	Role         string             `json:"role" bson:"role"`

	TeamID *primitive.ObjectID `json:"team_id,omitempty" bson:"team_id,omitempty"`

	Stats     GamingStats `json:"stats" bson:"stats"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`

	PasswordResetToken     *string    `json:"-" bson:"password_reset_token,omitempty"`
	PasswordResetExpiresAt *time.Time `json:"-" bson:"password_reset_expires_at,omitempty"`
}

// GamingStats is denormalized onto the user document and updated on every
// recorded session. Achievement triggers read from here.
type GamingStats struct {
	SessionsPlayed    int       `json:"sessions_played" bson:"sessions_played"`
	TotalPlayTime     int64     `json:"total_play_time_seconds" bson:"total_play_time_seconds"`
	CreditsEarned     int64     `json:"credits_earned" bson:"credits_earned"`
	CreditsDonated    int64     `json:"credits_donated" bson:"credits_donated"`
	DonationsMade     int       `json:"donations_made" bson:"donations_made"`
	CurrentStreakDays int       `json:"current_streak_days" bson:"current_streak_days"`
	LastSessionAt     time.Time `json:"last_session_at" bson:"last_session_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
