package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TournamentStatus represents the tournament lifecycle states.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
	TournamentCancelled TournamentStatus = "cancelled"
)

// TeamTournament aggregates score contributions per enrolled team. Standings
// are kept on the document, sorted by score descending, and re-ranked after
// every reported contribution.
type TeamTournament struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description *string            `json:"description,omitempty" bson:"description,omitempty"`
	OrganizerID primitive.ObjectID `json:"organizer_id" bson:"organizer_id"`

	StartDate time.Time `json:"start_date" bson:"start_date"`
	EndDate   time.Time `json:"end_date" bson:"end_date"`

	Status   TournamentStatus `json:"status" bson:"status"`
	MaxTeams int              `json:"max_teams" bson:"max_teams"`

	Standings []TournamentStanding `json:"standings" bson:"standings"`

	WinnerTeamID *primitive.ObjectID `json:"winner_team_id,omitempty" bson:"winner_team_id,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// TournamentStanding is one team's row in the standings array.
type TournamentStanding struct {
	TeamID   primitive.ObjectID `json:"team_id" bson:"team_id"`
	TeamName string             `json:"team_name" bson:"team_name"`

	Score    int64 `json:"score" bson:"score"`
	Position int   `json:"position" bson:"position"`

	EnrolledAt time.Time `json:"enrolled_at" bson:"enrolled_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// TeamEnrolled reports whether a team already has a standings row.
func (t *TeamTournament) TeamEnrolled(teamID primitive.ObjectID) bool {
	for i := range t.Standings {
		if t.Standings[i].TeamID == teamID {
			return true
		}
	}
	return false
}

const DefaultTournamentMaxTeams = 64
