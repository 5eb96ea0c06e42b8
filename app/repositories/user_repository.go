package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/pkg/metrics"
)

// ErrNotFound is returned when a lookup matches no document.
var ErrNotFound = errors.New("repositories: not found")

// UserRepository handles database operations for User documents.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection("users")}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	defer metrics.ObserveQuery("find", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// FindByID looks up a user by its ObjectID.
func (r *UserRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	defer metrics.ObserveQuery("find", time.Now())

	var user models.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	return user, err
}

// Create persists a new user document and fills in the generated ID.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	defer metrics.ObserveQuery("insert", time.Now())

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	res, err := r.col.InsertOne(ctx, user)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

// PushPurchase appends a single purchase line to the user's history.
// Each line is its own $push so a partial multi-line write leaves the
// earlier lines in place.
func (r *UserRepository) PushPurchase(ctx context.Context, id primitive.ObjectID, line models.PurchaseLine) error {
	defer metrics.ObserveQuery("update", time.Now())

	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"purchase": line},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushCartLine appends a product reference to the user's cart.
func (r *UserRepository) PushCartLine(ctx context.Context, id primitive.ObjectID, line models.CartLine) error {
	defer metrics.ObserveQuery("update", time.Now())

	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$push": bson.M{"cart": line},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullCartLine removes every cart line referencing the given product.
func (r *UserRepository) PullCartLine(ctx context.Context, id, productID primitive.ObjectID) error {
	defer metrics.ObserveQuery("update", time.Now())

	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"cart": bson.M{"product_id": productID}},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearCart empties the user's cart.
func (r *UserRepository) ClearCart(ctx context.Context, id primitive.ObjectID) error {
	defer metrics.ObserveQuery("update", time.Now())

	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"cart": []models.CartLine{}, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

