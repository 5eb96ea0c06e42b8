package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/pkg/logger"
	"github.com/changyuyeo/fitbody/pkg/storage"
)

// listCacheTTL bounds how stale a cached product page may be after a
// catalogue write that slipped past invalidation.
const listCacheTTL = 5 * time.Minute

// listCachePattern covers every cached listing page regardless of
// category or paging.
const listCachePattern = "products:*"

// CatalogStore is the slice of the product repository the catalogue needs.
type CatalogStore interface {
	All(ctx context.Context, category string, page, limit int64) ([]models.Product, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CatalogCache is the slice of the cache layer the catalogue touches.
type CatalogCache interface {
	Get(key string, dest interface{}) bool
	Set(key string, value interface{}, ttl time.Duration) error
	ForgetPattern(pattern string) error
}

// ProductPage is one page of the catalogue listing.
type ProductPage struct {
	Products []models.Product `json:"products"`
	Total    int64            `json:"total"`
	Page     int64            `json:"page"`
	Limit    int64            `json:"limit"`
}

type CatalogService struct {
	products CatalogStore
	cache    CatalogCache
}

func NewCatalogService(products CatalogStore, cache CatalogCache) *CatalogService {
	return &CatalogService{products: products, cache: cache}
}

// List returns a page of products, served from the cache when possible.
func (s *CatalogService) List(ctx context.Context, category string, page, limit int64) (ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	key := fmt.Sprintf("products:%s:%d:%d", category, page, limit)
	var cached ProductPage
	if s.cache.Get(key, &cached) {
		return cached, nil
	}

	products, total, err := s.products.All(ctx, category, page, limit)
	if err != nil {
		return ProductPage{}, err
	}
	result := ProductPage{Products: products, Total: total, Page: page, Limit: limit}

	// Cache errors are not worth failing the listing over.
	_ = s.cache.Set(key, result, listCacheTTL)
	return result, nil
}

// Get returns a single product by its hex id.
func (s *CatalogService) Get(ctx context.Context, productID string) (models.Product, error) {
	pid, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return models.Product{}, ErrInvalidProductID
	}
	product, err := s.products.FindByID(ctx, pid)
	if errors.Is(err, repositories.ErrNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	return product, err
}

// Create adds a new product to the catalogue and drops every cached
// listing page so the next read sees it.
func (s *CatalogService) Create(ctx context.Context, product *models.Product) error {
	if err := s.products.Create(ctx, product); err != nil {
		return err
	}
	s.invalidateListings(ctx)
	return nil
}

// Delete removes a product and cleans up its stored images. Purchase
// history keeps its snapshots; only the live catalogue entry goes away.
func (s *CatalogService) Delete(ctx context.Context, productID string) error {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, product.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if base := storage.URL(""); base != "" {
		for _, img := range product.Images {
			rel, ok := strings.CutPrefix(img, base)
			if !ok {
				continue // image hosted elsewhere
			}
			if err := storage.Delete(rel); err != nil {
				logger.WithCtx(ctx).Warn("catalog: image cleanup failed",
					"product_id", product.ID.Hex(), "path", rel, "error", err)
			}
		}
	}

	s.invalidateListings(ctx)
	return nil
}

// AttachImage stores an uploaded image on the configured disk and appends
// its public URL to the product's image list.
func (s *CatalogService) AttachImage(ctx context.Context, productID, filename string, content io.Reader) (string, error) {
	product, err := s.Get(ctx, productID)
	if err != nil {
		return "", err
	}

	path := fmt.Sprintf("products/%s/%d%s", product.ID.Hex(), time.Now().UnixNano(), filepath.Ext(filename))
	if err := storage.PutStream(path, content); err != nil {
		return "", err
	}

	url := storage.URL(path)
	product.Images = append(product.Images, url)
	if err := s.products.Update(ctx, &product); err != nil {
		return "", err
	}
	s.invalidateListings(ctx)
	return url, nil
}

func (s *CatalogService) invalidateListings(ctx context.Context) {
	if err := s.cache.ForgetPattern(listCachePattern); err != nil {
		logger.WithCtx(ctx).Warn("catalog: cache invalidation failed", "error", err)
	}
}
