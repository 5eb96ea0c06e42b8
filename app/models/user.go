package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the primary user document. The cart and purchase history are
// embedded arrays owned exclusively by this document.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"` // bcrypt hash, never serialised
	Cart      []CartLine         `bson:"cart" json:"cart"`
	Purchase  []PurchaseLine     `bson:"purchase" json:"purchase"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartLine references a product the user intends to buy. Repeated adds
// produce repeated lines; there is no quantity field.
type CartLine struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}

// PurchaseLine is an immutable snapshot of a product at the moment it was
// bought. It is append-only: once written it is never edited or removed, and
// it deliberately holds copies instead of a product reference so price or
// description edits after the sale cannot alter the record.
type PurchaseLine struct {
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description" json:"description"`
	Price       float64  `bson:"price" json:"price"`
	Images      []string `bson:"images" json:"images"`
}
