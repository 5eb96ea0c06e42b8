package services_test

import (
	"context"
	"encoding/json"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/app/services"
)

type fakeCatalogStore struct {
	products []models.Product
}

func (s *fakeCatalogStore) All(_ context.Context, category string, page, limit int64) ([]models.Product, int64, error) {
	var matched []models.Product
	for _, p := range s.products {
		if category == "" || p.Category == category {
			matched = append(matched, p)
		}
	}
	total := int64(len(matched))
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *fakeCatalogStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Product{}, repositories.ErrNotFound
}

func (s *fakeCatalogStore) Create(_ context.Context, product *models.Product) error {
	product.ID = primitive.NewObjectID()
	s.products = append(s.products, *product)
	return nil
}

func (s *fakeCatalogStore) Update(_ context.Context, product *models.Product) error {
	for i, p := range s.products {
		if p.ID == product.ID {
			s.products[i] = *product
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (s *fakeCatalogStore) Delete(_ context.Context, id primitive.ObjectID) error {
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

// memCache stores marshalled JSON like the Redis-backed cache does, so
// tests observe the same copy semantics as production.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (c *memCache) Get(key string, dest interface{}) bool {
	raw, ok := c.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (c *memCache) Set(key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) ForgetPattern(pattern string) error {
	for k := range c.data {
		if ok, _ := path.Match(pattern, k); ok {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memCache) listingKeys() []string {
	var keys []string
	for k := range c.data {
		if ok, _ := path.Match("products:*", k); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func TestCatalogList_FiltersAndPaginates(t *testing.T) {
	store := &fakeCatalogStore{}
	for i := 0; i < 5; i++ {
		p := newProduct("supplement", 20)
		p.ID = primitive.NewObjectID()
		p.Category = "nutrition"
		store.products = append(store.products, p)
	}
	other := newProduct("treadmill", 900)
	other.Category = "equipment"
	store.products = append(store.products, other)

	svc := services.NewCatalogService(store, newMemCache())

	page, err := svc.List(context.Background(), "nutrition", 1, 3)
	require.NoError(t, err)
	assert.Len(t, page.Products, 3)
	assert.Equal(t, int64(5), page.Total)

	page, err = svc.List(context.Background(), "nutrition", 2, 3)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
}

func TestCatalogList_ClampsBadPaging(t *testing.T) {
	svc := services.NewCatalogService(&fakeCatalogStore{}, newMemCache())

	page, err := svc.List(context.Background(), "", -3, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Page)
	assert.Equal(t, int64(20), page.Limit)
}

func TestCatalogList_ServesFromCache(t *testing.T) {
	store := &fakeCatalogStore{}
	first := newProduct("kettlebell", 60)
	first.ID = primitive.NewObjectID()
	store.products = append(store.products, first)

	svc := services.NewCatalogService(store, newMemCache())

	page, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Products, 1)

	// A write that bypasses the service is invisible until the TTL lapses.
	sneaked := newProduct("foam-roller", 25)
	sneaked.ID = primitive.NewObjectID()
	store.products = append(store.products, sneaked)

	page, err = svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
}

func TestCatalogCreate_InvalidatesListCache(t *testing.T) {
	store := &fakeCatalogStore{}
	seed := newProduct("jump-rope", 15)
	seed.ID = primitive.NewObjectID()
	store.products = append(store.products, seed)

	cache := newMemCache()
	svc := services.NewCatalogService(store, cache)

	// Warm a couple of listing pages.
	_, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), "", 2, 20)
	require.NoError(t, err)
	require.NotEmpty(t, cache.listingKeys())

	created := newProduct("pull-up-bar", 40)
	created.ID = primitive.NilObjectID
	require.NoError(t, svc.Create(context.Background(), &created))

	assert.Empty(t, cache.listingKeys(), "listing pages must be dropped on create")

	page, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Products, 2, "fresh listing must include the new product")
}

func TestCatalogGet_Errors(t *testing.T) {
	svc := services.NewCatalogService(&fakeCatalogStore{}, newMemCache())

	_, err := svc.Get(context.Background(), "bogus")
	assert.ErrorIs(t, err, services.ErrInvalidProductID)

	_, err = svc.Get(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}

func TestCatalogCreate_AssignsID(t *testing.T) {
	store := &fakeCatalogStore{}
	svc := services.NewCatalogService(store, newMemCache())

	p := newProduct("rowing-machine", 450)
	p.ID = primitive.NilObjectID
	require.NoError(t, svc.Create(context.Background(), &p))
	assert.False(t, p.ID.IsZero())

	got, err := svc.Get(context.Background(), p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "rowing-machine", got.Title)
}

func TestCatalogDelete_RemovesProductAndInvalidatesCache(t *testing.T) {
	store := &fakeCatalogStore{}
	keep := newProduct("bench", 120)
	keep.ID = primitive.NewObjectID()
	gone := newProduct("barbell", 90)
	gone.ID = primitive.NewObjectID()
	store.products = append(store.products, keep, gone)

	cache := newMemCache()
	svc := services.NewCatalogService(store, cache)

	_, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	require.NotEmpty(t, cache.listingKeys())

	require.NoError(t, svc.Delete(context.Background(), gone.ID.Hex()))

	assert.Empty(t, cache.listingKeys(), "listing pages must be dropped on delete")
	_, err = svc.Get(context.Background(), gone.ID.Hex())
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	page, err := svc.List(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, "bench", page.Products[0].Title)
}

func TestCatalogDelete_Errors(t *testing.T) {
	svc := services.NewCatalogService(&fakeCatalogStore{}, newMemCache())

	err := svc.Delete(context.Background(), "bogus")
	assert.ErrorIs(t, err, services.ErrInvalidProductID)

	err = svc.Delete(context.Background(), primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, services.ErrProductNotFound)
}
