package config

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the application relies on. All of them are
// idempotent; Mongo treats re-creation of an identical index as a no-op.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "auth_provider_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := db.Collection("users").Indexes().CreateMany(ctx, users); err != nil {
		log.Error().Err(err).Msg("create user indexes")
		return err
	}

	// One review per (product, user). The only invariant enforced below the
	// application layer.
	reviews := mongo.IndexModel{
		Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := db.Collection("reviews").Indexes().CreateOne(ctx, reviews); err != nil {
		log.Error().Err(err).Msg("create review index")
		return err
	}

	// At most one pending offer per (product, buyer). The partial filter makes
	// offer creation an atomic conditional insert instead of a racy pre-check.
	offers := mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "buyer_id", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": "pending"}),
	}
	if _, err := db.Collection("offers").Indexes().CreateOne(ctx, offers); err != nil {
		log.Error().Err(err).Msg("create offer index")
		return err
	}

	products := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "brand", Value: "text"},
			},
		},
		{Keys: bson.D{{Key: "seller_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
	}
	if _, err := db.Collection("products").Indexes().CreateMany(ctx, products); err != nil {
		log.Error().Err(err).Msg("create product indexes")
		return err
	}

	log.Info().Msg("database indexes ensured")
	return nil
}
