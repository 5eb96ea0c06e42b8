package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/changyuyeo/fitbody/app/models"
	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/bind"
	"github.com/changyuyeo/fitbody/pkg/response"
)

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(svc *services.CatalogService) *ProductController {
	return &ProductController{catalog: svc}
}

// Index lists products, optionally filtered by ?category= and paged with
// ?page= and ?limit=.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.ParseInt(q.Get("page"), 10, 64)
	limit, _ := strconv.ParseInt(q.Get("limit"), 10, 64)

	result, err := c.catalog.List(r.Context(), q.Get("category"), page, limit)
	if err != nil {
		fail(w, r, err)
		return
	}

	totalPages := int(result.Total / result.Limit)
	if result.Total%result.Limit != 0 {
		totalPages++
	}
	response.Paginated(w, result.Products, response.Pagination{
		Page:       int(result.Page),
		Limit:      int(result.Limit),
		Total:      result.Total,
		TotalPages: totalPages,
	})
}

// Show returns a single product.
func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	product, err := c.catalog.Get(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, product)
}

// Create adds a product to the catalogue.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if errs, err := bind.JSON(r, &product); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.catalog.Create(r.Context(), &product); err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, product)
}

// Destroy removes a product from the catalogue.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := c.catalog.Delete(r.Context(), chi.URLParam(r, "productId")); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"deleted": chi.URLParam(r, "productId")})
}

// UploadImage attaches a multipart image file to the product and responds
// with the stored file's public URL.
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	url, err := c.catalog.AttachImage(r.Context(), chi.URLParam(r, "productId"), header.Filename, file)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]string{"url": url})
}
