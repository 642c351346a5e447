package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GlobalTeam is a persistent cross-user team that accumulates score from
// member contributions and competes in team tournaments.
type GlobalTeam struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	CreatorID primitive.ObjectID `json:"creator_id" bson:"creator_id"`

	TotalScore  int64 `json:"total_score" bson:"total_score"`
	MemberCount int   `json:"member_count" bson:"member_count"`
	MaxMembers  int   `json:"max_members" bson:"max_members"`
	Recruiting  bool  `json:"recruiting" bson:"recruiting"`

	LogoKey *string `json:"-" bson:"logo_key,omitempty"`
	LogoURL *string `json:"logo_url,omitempty" bson:"-"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`

	Members []TeamMember `json:"members,omitempty" bson:"-"`
}

// TeamMember links a user to a team, with the member's lifetime score
// contribution tracked on the membership itself.
type TeamMember struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TeamID primitive.ObjectID `json:"team_id" bson:"team_id"`
	UserID primitive.ObjectID `json:"user_id" bson:"user_id"`

	Contribution int64     `json:"contribution" bson:"contribution"`
	JoinedAt     time.Time `json:"joined_at" bson:"joined_at"`
}

const DefaultTeamMaxMembers = 100
