package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changyuyeo/fitbody/app/controllers"
	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/auth"
	"github.com/changyuyeo/fitbody/pkg/middleware"
	"github.com/changyuyeo/fitbody/pkg/router"
)

type memUserStore struct {
	users map[primitive.ObjectID]*models.User
}

func (s *memUserStore) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	out := *u
	out.Cart = append([]models.CartLine(nil), u.Cart...)
	out.Purchase = append([]models.PurchaseLine(nil), u.Purchase...)
	return out, nil
}

func (s *memUserStore) PushPurchase(_ context.Context, id primitive.ObjectID, line models.PurchaseLine) error {
	s.users[id].Purchase = append(s.users[id].Purchase, line)
	return nil
}

func (s *memUserStore) ClearCart(_ context.Context, id primitive.ObjectID) error {
	s.users[id].Cart = []models.CartLine{}
	return nil
}

type memProductStore struct {
	products map[primitive.ObjectID]models.Product
}

func (s *memProductStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, repositories.ErrNotFound
	}
	return p, nil
}

type apiEnvelope struct {
	Status  int                   `json:"status"`
	Message string                `json:"message"`
	Data    []models.PurchaseLine `json:"data"`
}

// newPurchaseAPI mounts the purchase endpoints exactly as the app does and
// returns the handler together with a user and a bearer token for them.
func newPurchaseAPI(t *testing.T, user *models.User, products ...models.Product) (http.Handler, string) {
	t.Helper()

	userStore := &memUserStore{users: map[primitive.ObjectID]*models.User{user.ID: user}}
	productStore := &memProductStore{products: map[primitive.ObjectID]models.Product{}}
	for _, p := range products {
		productStore.products[p.ID] = p
	}

	ctl := controllers.NewPurchaseController(services.NewPurchaseService(userStore, productStore))

	r := router.New()
	purchase := r.Group("/purchase", middleware.Auth)
	purchase.Get("", "purchase.list", ctl.List)
	purchase.Post("/{productId}", "purchase.buy", ctl.Buy)
	purchase.Patch("", "purchase.checkout", ctl.Checkout)

	token, err := auth.GenerateToken(user.ID.Hex(), user.Email)
	require.NoError(t, err)
	return r.Handler(), token
}

func doJSON(t *testing.T, h http.Handler, method, path, token string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env apiEnvelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Email: "buyer@fitbody.shop",
	}
}

func TestPurchaseEndpoints_RequireAuth(t *testing.T) {
	h, _ := newPurchaseAPI(t, testUser())

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/purchase"},
		{http.MethodPost, "/purchase/" + primitive.NewObjectID().Hex()},
		{http.MethodPatch, "/purchase"},
	} {
		rec, _ := doJSON(t, h, tc.method, tc.path, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestListPurchasesEndpoint(t *testing.T) {
	user := testUser()
	user.Purchase = []models.PurchaseLine{
		{Title: "first", Price: 10},
		{Title: "second", Price: 20},
	}
	h, token := newPurchaseAPI(t, user)

	rec, env := doJSON(t, h, http.MethodGet, "/purchase", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.Data, 2)
	assert.Equal(t, "first", env.Data[0].Title)
	assert.Equal(t, "second", env.Data[1].Title)
}

func TestBuyEndpoint_InvalidID(t *testing.T) {
	h, token := newPurchaseAPI(t, testUser())

	rec, env := doJSON(t, h, http.MethodPost, "/purchase/not-a-valid-id", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid product id", env.Message)
}

func TestBuyEndpoint_UnknownProduct(t *testing.T) {
	h, token := newPurchaseAPI(t, testUser())

	rec, env := doJSON(t, h, http.MethodPost, "/purchase/"+primitive.NewObjectID().Hex(), token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "product not found", env.Message)
}

func TestBuyEndpoint_ReturnsPriorHistory(t *testing.T) {
	user := testUser()
	user.Purchase = []models.PurchaseLine{{Title: "older", Price: 5}}
	product := models.Product{
		ID:          primitive.NewObjectID(),
		Title:       "creatine",
		Description: "creatine monohydrate 500g",
		Price:       19.90,
	}
	h, token := newPurchaseAPI(t, user, product)

	rec, env := doJSON(t, h, http.MethodPost, "/purchase/"+product.ID.Hex(), token)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Response reflects the pre-append read; the store has the new line.
	require.Len(t, env.Data, 1)
	assert.Equal(t, "older", env.Data[0].Title)
	require.Len(t, user.Purchase, 2)
	assert.Equal(t, "creatine", user.Purchase[1].Title)
}

func TestCheckoutEndpoint_EmptyCart(t *testing.T) {
	h, token := newPurchaseAPI(t, testUser())

	rec, env := doJSON(t, h, http.MethodPatch, "/purchase", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", env.Message)
}

func TestCheckoutEndpoint_Success(t *testing.T) {
	product := models.Product{
		ID:          primitive.NewObjectID(),
		Title:       "bcaa",
		Description: "bcaa powder",
		Price:       24.50,
	}
	user := testUser()
	user.Cart = []models.CartLine{{ProductID: product.ID}, {ProductID: product.ID}}
	h, token := newPurchaseAPI(t, user, product)

	rec, env := doJSON(t, h, http.MethodPatch, "/purchase", token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.Data, "pre-checkout history was empty")
	assert.Len(t, user.Purchase, 2)
	assert.Empty(t, user.Cart)
}
