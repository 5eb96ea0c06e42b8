package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalogue entry. The purchase flow never mutates it; purchase
// lines carry a denormalized copy of the fields below instead of a live
// reference, so later edits do not rewrite history.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required,min=2,max=200"`
	Description string             `bson:"description" json:"description" validate:"required"`
	Price       float64            `bson:"price" json:"price" validate:"required,gte=0"`
	Images      []string           `bson:"images" json:"images"`
	Sold        int                `bson:"sold" json:"sold"`
	Category    string             `bson:"category" json:"category" validate:"required"`
	Subcategory string             `bson:"subcategory" json:"subcategory" validate:"required"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Snapshot captures the purchasable fields of the product as they are right
// now. This is the only way a PurchaseLine may be constructed.
func (p *Product) Snapshot() PurchaseLine {
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return PurchaseLine{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Images:      images,
	}
}
