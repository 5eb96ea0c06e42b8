package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/pkg/auth"
)

func init() {
	Register("users", SeedUsers)
}

// SeedUsers creates a demo account for local development. Skipped when the
// email is already registered.
func SeedUsers(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	col := db.Collection("users")
	count, err := col.CountDocuments(ctx, bson.M{"email": "demo@fitbody.shop"})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword("demo-password")
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = col.InsertOne(ctx, models.User{
		Email:     "demo@fitbody.shop",
		Password:  hash,
		Cart:      []models.CartLine{},
		Purchase:  []models.PurchaseLine{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	return err
}
