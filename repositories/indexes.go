package repositories

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique and query indexes the repositories rely
// on. Safe to call on every startup; CreateMany is a no-op for indexes that
// already exist.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string][]mongo.IndexModel{
		collUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "nickname", Value: 1}}, Options: unique},
		},
		collWallets: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		collTransactions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collSessions: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collDonations: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "onlus_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
		collPaymentIntents: {
			{Keys: bson.D{{Key: "provider_intent_id", Value: 1}}, Options: unique},
		},
		collWebhookEvents: {
			{Keys: bson.D{{Key: "provider_event_id", Value: 1}}, Options: unique},
		},
		collOrganizations: {
			{Keys: bson.D{{Key: "tax_code", Value: 1}}, Options: unique},
		},
		collTeams: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "total_score", Value: -1}}},
		},
		collTeamMembers: {
			{Keys: bson.D{{Key: "team_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		collTournaments: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		collModes: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		collAchievements: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique},
		},
		collUserAchievements: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "achievement_id", Value: 1}}, Options: unique},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", coll, err)
		}
	}
	return nil
}
