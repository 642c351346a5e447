package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

// Collection names, kept in one place so index setup and repositories agree.
const (
	collUsers            = "users"
	collWallets          = "wallets"
	collTransactions     = "transactions"
	collSessions         = "game_sessions"
	collDonations        = "donations"
	collPaymentIntents   = "payment_intents"
	collWebhookEvents    = "webhook_events"
	collApplications     = "onlus_applications"
	collOrganizations    = "onlus_organizations"
	collTeams            = "teams"
	collTeamMembers      = "team_members"
	collTournaments      = "team_tournaments"
	collModes            = "game_modes"
	collAchievements     = "achievements"
	collUserAchievements = "user_achievements"
)

// mapNotFound converts the driver's no-documents error into the repository's
// own sentinel, leaving other errors untouched.
func mapNotFound(err, notFoundErr error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFoundErr
	}
	return err
}

// isDuplicateKey reports whether err is a unique index violation.
func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
