package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/app/services"
)

// fakeUserStore keeps user documents in memory. Reads hand back copies the
// way a driver decode would, so callers never share slices with the store.
type fakeUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	out := *u
	out.Cart = append([]models.CartLine(nil), u.Cart...)
	out.Purchase = append([]models.PurchaseLine(nil), u.Purchase...)
	return out, nil
}

func (s *fakeUserStore) PushPurchase(_ context.Context, id primitive.ObjectID, line models.PurchaseLine) error {
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Purchase = append(u.Purchase, line)
	return nil
}

func (s *fakeUserStore) PushCartLine(_ context.Context, id primitive.ObjectID, line models.CartLine) error {
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Cart = append(u.Cart, line)
	return nil
}

func (s *fakeUserStore) PullCartLine(_ context.Context, id, productID primitive.ObjectID) error {
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	kept := u.Cart[:0]
	for _, line := range u.Cart {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	u.Cart = kept
	return nil
}

func (s *fakeUserStore) ClearCart(_ context.Context, id primitive.ObjectID) error {
	u, ok := s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.Cart = []models.CartLine{}
	return nil
}

type fakeProductStore struct {
	products map[primitive.ObjectID]models.Product
}

func newFakeProductStore(products ...models.Product) *fakeProductStore {
	s := &fakeProductStore{products: make(map[primitive.ObjectID]models.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	return p, nil
}

func newUser(cart []models.CartLine, purchase []models.PurchaseLine) *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		Email:    "buyer@fitbody.shop",
		Cart:     cart,
		Purchase: purchase,
	}
}

func newProduct(title string, price float64) models.Product {
	return models.Product{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: title + " description",
		Price:       price,
		Images:      []string{"https://cdn.fitbody.shop/" + title + ".jpg"},
	}
}

func TestListPurchases_EmptyHistory(t *testing.T) {
	user := newUser(nil, nil)
	svc := services.NewPurchaseService(newFakeUserStore(user), newFakeProductStore())

	history, err := svc.ListPurchases(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestListPurchases_PreservesInsertionOrder(t *testing.T) {
	lines := []models.PurchaseLine{
		{Title: "first", Price: 10},
		{Title: "second", Price: 20},
		{Title: "third", Price: 30},
	}
	user := newUser(nil, lines)
	svc := services.NewPurchaseService(newFakeUserStore(user), newFakeProductStore())

	history, err := svc.ListPurchases(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, lines, history)
}

func TestListPurchases_UnknownUser(t *testing.T) {
	svc := services.NewPurchaseService(newFakeUserStore(), newFakeProductStore())

	_, err := svc.ListPurchases(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestPurchaseProduct_MalformedID(t *testing.T) {
	user := newUser(nil, nil)
	store := newFakeUserStore(user)
	svc := services.NewPurchaseService(store, newFakeProductStore())

	_, err := svc.PurchaseProduct(context.Background(), user.ID.Hex(), "not-an-object-id")
	assert.ErrorIs(t, err, services.ErrInvalidProductID)
	assert.Empty(t, store.users[user.ID].Purchase, "a rejected id must not write history")
}

func TestPurchaseProduct_UnknownProduct(t *testing.T) {
	user := newUser(nil, nil)
	store := newFakeUserStore(user)
	svc := services.NewPurchaseService(store, newFakeProductStore())

	_, err := svc.PurchaseProduct(context.Background(), user.ID.Hex(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Empty(t, store.users[user.ID].Purchase)
}

func TestPurchaseProduct_AppendsSnapshotAndReturnsPriorHistory(t *testing.T) {
	existing := models.PurchaseLine{Title: "older", Price: 5}
	user := newUser(nil, []models.PurchaseLine{existing})
	store := newFakeUserStore(user)
	product := newProduct("protein-powder", 39.99)
	svc := services.NewPurchaseService(store, newFakeProductStore(product))

	history, err := svc.PurchaseProduct(context.Background(), user.ID.Hex(), product.ID.Hex())
	require.NoError(t, err)

	// The return value is the history read before the append committed.
	assert.Equal(t, []models.PurchaseLine{existing}, history)

	// The stored history gained exactly one denormalized line.
	stored := store.users[user.ID].Purchase
	require.Len(t, stored, 2)
	assert.Equal(t, models.PurchaseLine{
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Images:      product.Images,
	}, stored[1])
}

func TestPurchaseProduct_RepeatedPurchasesRepeatLines(t *testing.T) {
	user := newUser(nil, nil)
	store := newFakeUserStore(user)
	product := newProduct("yoga-mat", 25)
	svc := services.NewPurchaseService(store, newFakeProductStore(product))

	for i := 0; i < 3; i++ {
		_, err := svc.PurchaseProduct(context.Background(), user.ID.Hex(), product.ID.Hex())
		require.NoError(t, err)
	}
	assert.Len(t, store.users[user.ID].Purchase, 3)
}

func TestPurchaseProduct_SnapshotSurvivesProductEdits(t *testing.T) {
	user := newUser(nil, nil)
	store := newFakeUserStore(user)
	product := newProduct("kettlebell", 49)
	productStore := newFakeProductStore(product)
	svc := services.NewPurchaseService(store, productStore)

	_, err := svc.PurchaseProduct(context.Background(), user.ID.Hex(), product.ID.Hex())
	require.NoError(t, err)

	// Rewrite the catalogue entry after the sale.
	edited := product
	edited.Title = "kettlebell v2"
	edited.Price = 99
	edited.Images = []string{"https://cdn.fitbody.shop/new.jpg"}
	productStore.products[product.ID] = edited

	line := store.users[user.ID].Purchase[0]
	assert.Equal(t, "kettlebell", line.Title)
	assert.Equal(t, 49.0, line.Price)
	assert.Equal(t, []string{"https://cdn.fitbody.shop/kettlebell.jpg"}, line.Images)
}

func TestCheckoutCart_EmptyCart(t *testing.T) {
	user := newUser(nil, []models.PurchaseLine{{Title: "kept", Price: 1}})
	store := newFakeUserStore(user)
	svc := services.NewPurchaseService(store, newFakeProductStore())

	_, err := svc.CheckoutCart(context.Background(), user.ID.Hex())
	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Len(t, store.users[user.ID].Purchase, 1, "an empty-cart checkout must not write")
}

func TestCheckoutCart_UnknownUser(t *testing.T) {
	svc := services.NewPurchaseService(newFakeUserStore(), newFakeProductStore())

	_, err := svc.CheckoutCart(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestCheckoutCart_AppendsAllLinesInOrderAndClearsCart(t *testing.T) {
	a := newProduct("resistance-band", 15)
	b := newProduct("jump-rope", 12)
	user := newUser([]models.CartLine{
		{ProductID: a.ID},
		{ProductID: b.ID},
		{ProductID: a.ID},
	}, nil)
	store := newFakeUserStore(user)
	svc := services.NewPurchaseService(store, newFakeProductStore(a, b))

	history, err := svc.CheckoutCart(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, history, "the pre-checkout history was empty")

	stored := store.users[user.ID].Purchase
	require.Len(t, stored, 3)
	assert.Equal(t, "resistance-band", stored[0].Title)
	assert.Equal(t, "jump-rope", stored[1].Title)
	assert.Equal(t, "resistance-band", stored[2].Title)

	assert.Empty(t, store.users[user.ID].Cart, "the cart is cleared after a full checkout")
}

func TestCheckoutCart_MissingProductAbortsWithoutRollback(t *testing.T) {
	a := newProduct("foam-roller", 22)
	b := newProduct("wrist-wraps", 9)
	missing := primitive.NewObjectID()
	user := newUser([]models.CartLine{
		{ProductID: a.ID},
		{ProductID: b.ID},
		{ProductID: missing},
		{ProductID: a.ID},
	}, nil)
	store := newFakeUserStore(user)
	svc := services.NewPurchaseService(store, newFakeProductStore(a, b))

	_, err := svc.CheckoutCart(context.Background(), user.ID.Hex())
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	// The two lines before the missing product stay appended; nothing after
	// it was processed and the cart is untouched.
	stored := store.users[user.ID].Purchase
	require.Len(t, stored, 2)
	assert.Equal(t, "foam-roller", stored[0].Title)
	assert.Equal(t, "wrist-wraps", stored[1].Title)
	assert.Len(t, store.users[user.ID].Cart, 4)
}

func TestCheckoutCart_SingleMissingProductWritesNothing(t *testing.T) {
	a := newProduct("shaker-bottle", 8)
	user := newUser([]models.CartLine{{ProductID: primitive.NewObjectID()}}, nil)
	store := newFakeUserStore(user)
	svc := services.NewPurchaseService(store, newFakeProductStore(a))

	_, err := svc.CheckoutCart(context.Background(), user.ID.Hex())
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Empty(t, store.users[user.ID].Purchase)
	assert.Len(t, store.users[user.ID].Cart, 1)
}

func TestCheckoutCart_ReturnsHistoryFromBeforeTheLoop(t *testing.T) {
	prior := models.PurchaseLine{Title: "previous-order", Price: 30}
	a := newProduct("gym-towel", 6)
	user := newUser([]models.CartLine{{ProductID: a.ID}}, []models.PurchaseLine{prior})
	store := newFakeUserStore(user)
	svc := services.NewPurchaseService(store, newFakeProductStore(a))

	history, err := svc.CheckoutCart(context.Background(), user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []models.PurchaseLine{prior}, history)
	assert.Len(t, store.users[user.ID].Purchase, 2)
}
