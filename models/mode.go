package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Well-known mode names. Custom modes can be created by admins; the credit
// calculator only cares about the multiplier of whatever is active.
const (
	ModeNormal     = "normal"
	ModeChallenge  = "challenge"
	ModeTournament = "tournament"
)

// GameMode describes a play mode with a credit multiplier and an optional
// schedule window. The scheduler flips Active as windows open and close.
type GameMode struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description" bson:"description"`

	Multiplier float64 `json:"multiplier" bson:"multiplier"`
	Active     bool    `json:"active" bson:"active"`

	// Schedule window; a mode with neither bound set is managed manually.
	StartsAt *time.Time `json:"starts_at,omitempty" bson:"starts_at,omitempty"`
	EndsAt   *time.Time `json:"ends_at,omitempty" bson:"ends_at,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// ShouldBeActive evaluates the schedule window at now. Manually managed
// modes report their current flag.
func (m *GameMode) ShouldBeActive(now time.Time) bool {
	if m.StartsAt == nil && m.EndsAt == nil {
		return m.Active
	}
	if m.StartsAt != nil && now.Before(*m.StartsAt) {
		return false
	}
	if m.EndsAt != nil && !now.Before(*m.EndsAt) {
		return false
	}
	return true
}
