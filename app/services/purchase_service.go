package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/pkg/collection"
	"github.com/changyuyeo/fitbody/pkg/event"
	"github.com/changyuyeo/fitbody/pkg/metrics"
)

var (
	// ErrInvalidProductID means the product id is not a well-formed ObjectID.
	ErrInvalidProductID = errors.New("invalid product id")
	// ErrProductNotFound means the referenced product does not exist.
	ErrProductNotFound = errors.New("product not found")
	// ErrUserNotFound means the user id resolved to no account.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmptyCart means checkout was requested with nothing in the cart.
	ErrEmptyCart = errors.New("cart is empty")
)

// PurchaseUserStore is the slice of the user repository the purchase flow
// needs: reads of the user document plus the append-only history write and
// the cart clear.
type PurchaseUserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	PushPurchase(ctx context.Context, id primitive.ObjectID, line models.PurchaseLine) error
	ClearCart(ctx context.Context, id primitive.ObjectID) error
}

// ProductStore resolves catalogue entries by id.
type ProductStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

type PurchaseService struct {
	users    PurchaseUserStore
	products ProductStore
}

func NewPurchaseService(users PurchaseUserStore, products ProductStore) *PurchaseService {
	return &PurchaseService{users: users, products: products}
}

// ListPurchases returns the user's purchase history verbatim, oldest first.
func (s *PurchaseService) ListPurchases(ctx context.Context, userID string) ([]models.PurchaseLine, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Purchase, nil
}

// PurchaseProduct records a single purchase: it snapshots the product and
// appends the snapshot to the user's history. The returned history is the
// read taken before the append committed, so the new line is not in it;
// callers that need the fresh list re-fetch.
func (s *PurchaseService) PurchaseProduct(ctx context.Context, userID, productID string) ([]models.PurchaseLine, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return nil, ErrInvalidProductID
	}

	product, err := s.products.FindByID(ctx, pid)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := user.Purchase

	if err := s.users.PushPurchase(ctx, user.ID, product.Snapshot()); err != nil {
		return nil, err
	}

	metrics.PurchasesTotal.WithLabelValues("single").Inc()
	event.FireAsync("purchase.recorded", map[string]interface{}{
		"user_id":    user.ID.Hex(),
		"email":      user.Email,
		"product_id": product.ID.Hex(),
		"title":      product.Title,
		"price":      product.Price,
	})

	return history, nil
}

// CheckoutCart converts every cart line into a purchase-history line, in
// cart order, then clears the cart. Product resolution happens per line:
// if a lookup fails mid-way the operation aborts with ErrProductNotFound
// and the lines already appended stay appended — there is no rollback and
// the cart is left untouched. The returned history is the read taken
// before the loop began.
func (s *PurchaseService) CheckoutCart(ctx context.Context, userID string) ([]models.PurchaseLine, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Cart) == 0 {
		metrics.CheckoutsTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	history := user.Purchase

	purchased := make([]models.PurchaseLine, 0, len(user.Cart))
	for _, line := range user.Cart {
		product, err := s.products.FindByID(ctx, line.ProductID)
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.CheckoutsTotal.WithLabelValues("product_missing").Inc()
			return nil, ErrProductNotFound
		}
		if err != nil {
			return nil, err
		}
		snapshot := product.Snapshot()
		if err := s.users.PushPurchase(ctx, user.ID, snapshot); err != nil {
			return nil, err
		}
		purchased = append(purchased, snapshot)
		metrics.PurchasesTotal.WithLabelValues("checkout").Inc()
	}

	if err := s.users.ClearCart(ctx, user.ID); err != nil {
		return nil, err
	}

	metrics.CheckoutsTotal.WithLabelValues("ok").Inc()
	event.FireAsync("cart.checked_out", map[string]interface{}{
		"user_id": user.ID.Hex(),
		"email":   user.Email,
		"titles":  collection.Map(purchased, func(l models.PurchaseLine) string { return l.Title }),
		"total":   collection.Sum(purchased, func(l models.PurchaseLine) float64 { return l.Price }),
	})

	return history, nil
}

func (s *PurchaseService) loadUser(ctx context.Context, userID string) (models.User, error) {
	return findUserByHex(ctx, s.users, userID)
}

type userFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// findUserByHex resolves a hex user id to its document. A malformed id and
// a missing document both come back as ErrUserNotFound.
func findUserByHex(ctx context.Context, store userFinder, userID string) (models.User, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, ErrUserNotFound
	}
	user, err := store.FindByID(ctx, uid)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}
