package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AchievementCategory string

const (
	CategoryGaming AchievementCategory = "gaming"
	CategorySocial AchievementCategory = "social"
	CategoryImpact AchievementCategory = "impact"
)

// Trigger metrics, evaluated against the user's denormalized GamingStats.
const (
	MetricSessionsPlayed = "sessions_played"
	MetricPlayTime       = "total_play_time_seconds"
	MetricCreditsEarned  = "credits_earned"
	MetricCreditsDonated = "credits_donated"
	MetricDonationsMade  = "donations_made"
	MetricStreakDays     = "current_streak_days"
)

// Achievement is a platform-wide definition. Progress toward it lives in
// UserAchievement.
type Achievement struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Code        string              `json:"code" bson:"code"`
	Name        string              `json:"name" bson:"name"`
	Description string              `json:"description" bson:"description"`
	Category    AchievementCategory `json:"category" bson:"category"`

	Trigger       AchievementTrigger `json:"trigger" bson:"trigger"`
	RewardCredits int64              `json:"reward_credits" bson:"reward_credits"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type AchievementTrigger struct {
	Metric    string `json:"metric" bson:"metric"`
	Threshold int64  `json:"threshold" bson:"threshold"`
}

// UserAchievement tracks one user's progress toward one achievement.
type UserAchievement struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"user_id" bson:"user_id"`
	AchievementID primitive.ObjectID `json:"achievement_id" bson:"achievement_id"`

	Progress    float64    `json:"progress" bson:"progress"` // 0..100
	Completed   bool       `json:"completed" bson:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
	Claimed     bool       `json:"claimed" bson:"claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty" bson:"claimed_at,omitempty"`

	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	Achievement *Achievement `json:"achievement,omitempty" bson:"-"`
}
