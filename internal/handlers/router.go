package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"wooshop/internal/logging"
	"wooshop/internal/middleware"
	"wooshop/internal/services"
)

// APIPrefix is the root of the WooCommerce compatible REST surface.
const APIPrefix = "/wp-json/wc/v3"

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth      *services.AuthService
	Products  *services.ProductService
	Taxonomy  *services.TaxonomyService
	Reviews   *services.ReviewService
	Carts     *services.CartService
	Orders    *services.OrderService
	Coupons   *services.CouponService
	Customers *services.CustomerService
	Wishlist  *services.WishlistService
	Shipping  *services.ShippingService
	Payment   *services.PaymentService
}

// NewApp builds the fiber application with the request middlewares and
// every API route registered.
func NewApp(svc Services, log *zap.Logger, maxPerPage int) *fiber.App {
	log = logging.OrNop(log)
	app := fiber.New(fiber.Config{
		AppName:               "wooshop",
		ErrorHandler:          ErrorHandler(log),
		DisableStartupMessage: true,
	})
	app.Use(middleware.RequestID())
	app.Use(middleware.AccessLog(log))
	app.Use(middleware.Recover(log))

	guards := Guards{
		Auth:  middleware.AuthRequired(svc.Auth, log),
		Admin: middleware.AdminOnly(),
	}
	pager := Pager{MaxPerPage: maxPerPage}
	api := app.Group(APIPrefix)

	NewAuthHandler(svc.Auth).RegisterRoutes(api, guards)
	// Nested catalog routes go first so /products/:id does not shadow them.
	NewTaxonomyHandler(svc.Taxonomy, pager).RegisterRoutes(api, guards)
	NewReviewHandler(svc.Reviews, pager).RegisterRoutes(api, guards)
	NewProductHandler(svc.Products, pager).RegisterRoutes(api, guards)
	NewCartHandler(svc.Carts).RegisterRoutes(api, guards)
	NewOrderHandler(svc.Orders, pager).RegisterRoutes(api, guards)
	NewCouponHandler(svc.Coupons, pager).RegisterRoutes(api, guards)
	NewCustomerHandler(svc.Customers, pager).RegisterRoutes(api, guards)
	NewWishlistHandler(svc.Wishlist).RegisterRoutes(api, guards)
	NewShippingHandler(svc.Shipping, svc.Payment).RegisterRoutes(api, guards)
	return app
}
