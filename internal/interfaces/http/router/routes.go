package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles the HTTP handlers mounted by Storefront
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Review    *handler.ReviewHandler
	Wishlist  *handler.WishlistHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Order     *handler.OrderHandler
	Outbox    *handler.OutboxHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

// StorefrontConfig carries what the route groups need besides handlers
type StorefrontConfig struct {
	Authenticator middleware.Authenticator
	// AuthLimiter throttles login and registration. Nil disables throttling.
	AuthLimiter *middleware.RateLimiter
	Logger      *zap.Logger
}

// Storefront builds the route groups of the storefront API: public auth and
// health routes, customer routes behind JWT and admin routes behind JWT plus
// the admin role.
func Storefront(h Handlers, cfg StorefrontConfig) []RouteRegistrar {
	jwt := middleware.JWTAuth(cfg.Authenticator, cfg.Logger)

	throttle := func(c *gin.Context) { c.Next() }
	if cfg.AuthLimiter != nil {
		throttle = middleware.RateLimit(cfg.AuthLimiter)
	}

	public := NewDomainGroup("public", "")
	public.GET("/health", h.Health.Health)
	auth := public.Group("auth", "/auth")
	auth.POST("/register", throttle, h.Auth.Register)
	auth.POST("/login", throttle, h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	account := NewDomainGroup("account", "/auth").Use(jwt)
	account.POST("/logout", h.Auth.Logout)
	account.GET("/me", h.Auth.Me)
	account.PUT("/me", h.Auth.UpdateProfile)
	account.PUT("/password", h.Auth.ChangePassword)

	catalog := NewDomainGroup("catalog", "/products").Use(jwt)
	catalog.GET("", h.Product.List)
	catalog.GET("/categories", h.Product.Categories)
	catalog.GET("/:id", h.Product.Get)
	catalog.GET("/:id/reviews", h.Review.List)
	catalog.POST("/:id/reviews", h.Review.Add)

	cart := NewDomainGroup("cart", "/cart").Use(jwt)
	cart.GET("", h.Cart.Get)
	cart.POST("/items", h.Cart.AddItem)
	cart.POST("/items/:id/increment", h.Cart.Increment)
	cart.POST("/items/:id/decrement", h.Cart.Decrement)
	cart.DELETE("/items/:id", h.Cart.Remove)
	cart.POST("/buy-now", h.Cart.BuyNow)

	checkout := NewDomainGroup("checkout", "/checkout").Use(jwt)
	checkout.POST("", h.Checkout.Checkout)

	orders := NewDomainGroup("orders", "/orders").Use(jwt)
	orders.GET("", h.Order.ListMine)
	orders.GET("/:id", h.Order.GetMine)
	orders.GET("/:id/invoice", h.Order.Invoice)

	wishlist := NewDomainGroup("wishlist", "/wishlist").Use(jwt)
	wishlist.GET("", h.Wishlist.List)
	wishlist.POST("", h.Wishlist.Add)
	wishlist.DELETE("/:id", h.Wishlist.Remove)

	admin := NewDomainGroup("admin", "/admin").Use(jwt, middleware.RequireAdmin())
	admin.GET("/dashboard", h.Dashboard.Get)

	products := admin.Group("admin-products", "/products")
	products.POST("", h.Product.Create)
	products.GET("/low-stock", h.Product.LowStock)
	products.POST("/images/upload-url", h.Product.ImageUploadURL)
	products.PUT("/:id", h.Product.Update)
	products.DELETE("/:id", h.Product.Delete)

	adminOrders := admin.Group("admin-orders", "/orders")
	adminOrders.GET("", h.Order.ListAll)
	adminOrders.GET("/export", h.Order.Export)
	adminOrders.GET("/:id", h.Order.Get)
	adminOrders.PUT("/:id/status", h.Order.UpdateStatus)

	outbox := admin.Group("outbox", "/outbox")
	outbox.GET("/stats", h.Outbox.GetStats)
	outbox.GET("/dead", h.Outbox.GetDeadLetterEntries)
	outbox.POST("/dead/retry-all", h.Outbox.RetryAllDeadEntries)
	outbox.GET("/:id", h.Outbox.GetEntry)
	outbox.POST("/:id/retry", h.Outbox.RetryDeadEntry)

	return []RouteRegistrar{public, account, catalog, cart, checkout, orders, wishlist, admin}
}
