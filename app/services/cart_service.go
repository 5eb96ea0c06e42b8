package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/pkg/logger"
)

// CartUserStore is the slice of the user repository the cart flow needs.
type CartUserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	PushCartLine(ctx context.Context, id primitive.ObjectID, line models.CartLine) error
	PullCartLine(ctx context.Context, id, productID primitive.ObjectID) error
}

// CartItem is a cart line with its product resolved for display.
type CartItem struct {
	Product models.Product `json:"product"`
	AddedAt time.Time      `json:"added_at"`
}

type CartService struct {
	users    CartUserStore
	products ProductStore
}

func NewCartService(users CartUserStore, products ProductStore) *CartService {
	return &CartService{users: users, products: products}
}

// Get returns the user's cart with each line's product resolved. Lines
// whose product has since been deleted are skipped in the view; they stay
// in the stored cart and will surface as a failure at checkout.
func (s *CartService) Get(ctx context.Context, userID string) ([]CartItem, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]CartItem, 0, len(user.Cart))
	for _, line := range user.Cart {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if errors.Is(err, repositories.ErrNotFound) {
			logger.WithCtx(ctx).Warn("cart references missing product",
				"user_id", user.ID.Hex(), "product_id", line.ProductID.Hex())
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, CartItem{Product: product, AddedAt: line.AddedAt})
	}
	return items, nil
}

// Add appends a line for the product to the user's cart. Repeated adds of
// the same product produce repeated lines.
func (s *CartService) Add(ctx context.Context, userID, productID string) error {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrInvalidProductID
	}
	if _, err := s.products.FindByID(ctx, pid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.PushCartLine(ctx, user.ID, models.CartLine{
		ProductID: pid,
		AddedAt:   time.Now(),
	})
}

// Remove drops every cart line referencing the product.
func (s *CartService) Remove(ctx context.Context, userID, productID string) error {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return ErrInvalidProductID
	}
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.users.PullCartLine(ctx, user.ID, pid)
}

func (s *CartService) loadUser(ctx context.Context, userID string) (models.User, error) {
	return findUserByHex(ctx, s.users, userID)
}
