package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/auth"
	"github.com/changyuyeo/fitbody/pkg/response"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(svc *services.CartService) *CartController {
	return &CartController{cart: svc}
}

// Show returns the caller's cart with products resolved.
func (c *CartController) Show(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	items, err := c.cart.Get(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, items)
}

// Add puts the product in the URL into the caller's cart.
func (c *CartController) Add(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	productID := chi.URLParam(r, "productId")

	if err := c.cart.Add(r.Context(), userID, productID); err != nil {
		fail(w, r, err)
		return
	}
	response.Created(w, map[string]string{"product_id": productID})
}

// Remove drops the product from the caller's cart.
func (c *CartController) Remove(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	productID := chi.URLParam(r, "productId")

	if err := c.cart.Remove(r.Context(), userID, productID); err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, map[string]string{"product_id": productID})
}
