package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/auth"
	"github.com/changyuyeo/fitbody/pkg/response"
)

type PurchaseController struct {
	purchases *services.PurchaseService
}

func NewPurchaseController(svc *services.PurchaseService) *PurchaseController {
	return &PurchaseController{purchases: svc}
}

// List returns the caller's purchase history, oldest first.
func (c *PurchaseController) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	history, err := c.purchases.ListPurchases(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, history)
}

// Buy records a single purchase of the product in the URL. The body of the
// response is the history as it stood before this purchase was appended.
func (c *PurchaseController) Buy(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	productID := chi.URLParam(r, "productId")

	history, err := c.purchases.PurchaseProduct(r.Context(), userID, productID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, history)
}

// Checkout converts the caller's cart into purchase-history lines and
// clears the cart. Responds with the history from before the checkout.
func (c *PurchaseController) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromCtx(r.Context())
	history, err := c.purchases.CheckoutCart(r.Context(), userID)
	if err != nil {
		fail(w, r, err)
		return
	}
	response.Success(w, history)
}
