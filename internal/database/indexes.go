package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("carts").Indexes()

	sessionIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "sessionId", Value: 1}},
		Options: options.Index().
			SetName("sessionId_unique").
			SetUnique(true),
	}

	log.Println("EnsureCartIndexes: creating sessionId_unique index")
	_, err := indexes.CreateOne(ctx, sessionIndex)
	if err != nil {
		log.Println("EnsureCartIndexes: sessionId index error:", err)
		return err
	}
	log.Println("EnsureCartIndexes: sessionId_unique index created")
	return nil
}

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureRefreshTokenIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("refresh_tokens").Indexes()

	tokenIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "tokenHash", Value: 1}},
		Options: options.Index().
			SetName("tokenHash_unique").
			SetUnique(true),
	}

	expiryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
	}

	log.Println("EnsureRefreshTokenIndexes: creating refresh token indexes")
	_, err := indexes.CreateMany(ctx, []mongo.IndexModel{tokenIndex, expiryIndex})
	if err != nil {
		log.Println("EnsureRefreshTokenIndexes: index error:", err)
		return err
	}
	log.Println("EnsureRefreshTokenIndexes: refresh token indexes created")
	return nil
}
