// Package routes wires every HTTP endpoint to its controller.
package routes

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/changyuyeo/fitbody/app/controllers"
	"github.com/changyuyeo/fitbody/app/repositories"
	"github.com/changyuyeo/fitbody/app/services"
	"github.com/changyuyeo/fitbody/pkg/cache"
	"github.com/changyuyeo/fitbody/pkg/metrics"
	"github.com/changyuyeo/fitbody/pkg/middleware"
	"github.com/changyuyeo/fitbody/pkg/router"
)

// RegisterAPI builds the repository → service → controller graph on top of
// db and mounts every route.
func RegisterAPI(r *router.Router, db *mongo.Database) {
	users := repositories.NewUserRepository(db)
	products := repositories.NewProductRepository(db)

	authController := controllers.NewAuthController(services.NewAuthService(users))
	productController := controllers.NewProductController(services.NewCatalogService(products, cache.Redis{}))
	cartController := controllers.NewCartController(services.NewCartService(users, products))
	purchaseController := controllers.NewPurchaseController(services.NewPurchaseService(users, products))

	r.Get("/metrics", "metrics", metrics.Handler())

	user := r.Group("/user")
	user.Post("/register", "user.register", authController.Register)
	user.Post("/login", "user.login", authController.Login)
	user.Get("/me", "user.me", authController.Me, middleware.Auth)

	product := r.Group("/product")
	product.Get("", "product.index", productController.Index)
	product.Get("/{productId}", "product.show", productController.Show)
	product.Post("", "product.create", productController.Create, middleware.Auth)
	product.Post("/{productId}/image", "product.image", productController.UploadImage, middleware.Auth)
	product.Delete("/{productId}", "product.delete", productController.Destroy, middleware.Auth)

	cart := r.Group("/cart", middleware.Auth)
	cart.Get("", "cart.show", cartController.Show)
	cart.Post("/{productId}", "cart.add", cartController.Add)
	cart.Delete("/{productId}", "cart.remove", cartController.Remove)

	purchase := r.Group("/purchase", middleware.Auth)
	purchase.Get("", "purchase.list", purchaseController.List)
	purchase.Post("/{productId}", "purchase.buy", purchaseController.Buy)
	purchase.Patch("", "purchase.checkout", purchaseController.Checkout)
}
