package seeders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/pkg/collection"
)

func init() {
	Register("products", SeedProducts)
}

// SeedProducts inserts a small starter catalogue. Running it twice is a
// no-op: it skips when any products already exist.
func SeedProducts(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	col := db.Collection("products")
	count, err := col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	catalogue := []models.Product{
		{
			Title:       "Whey Protein 2kg",
			Description: "Chocolate flavour whey protein isolate, 30g protein per serving.",
			Price:       54.90,
			Images:      []string{"https://cdn.fitbody.shop/seed/whey-protein.jpg"},
			Category:    "nutrition",
			Subcategory: "protein",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Title:       "Adjustable Dumbbell 24kg",
			Description: "Space-saving adjustable dumbbell, 2.5kg increments.",
			Price:       189.00,
			Images:      []string{"https://cdn.fitbody.shop/seed/dumbbell.jpg"},
			Category:    "equipment",
			Subcategory: "free-weights",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Title:       "Premium Yoga Mat",
			Description: "6mm non-slip yoga mat with carry strap.",
			Price:       32.50,
			Images:      []string{"https://cdn.fitbody.shop/seed/yoga-mat.jpg"},
			Category:    "equipment",
			Subcategory: "accessories",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			Title:       "Resistance Band Set",
			Description: "Five bands from extra-light to extra-heavy with door anchor.",
			Price:       24.90,
			Images:      []string{"https://cdn.fitbody.shop/seed/bands.jpg"},
			Category:    "equipment",
			Subcategory: "accessories",
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}

	docs := collection.Map(catalogue, func(p models.Product) interface{} { return p })
	_, err = col.InsertMany(ctx, docs)
	return err
}
