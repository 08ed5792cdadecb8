// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/tshirt-store/internal/interfaces/http/handlers"
	"github.com/your-org/tshirt-store/internal/interfaces/http/middleware"
	"github.com/your-org/tshirt-store/internal/pkg/auth"
)

// Handlers bundles everything the API routes dispatch to
type Handlers struct {
	JWT      *auth.JWTManager
	Auth     *handlers.AuthHandler
	Catalog  *handlers.CatalogHandler
	Cart     *handlers.CartHandler
	Checkout *handlers.CheckoutHandler
	Orders   *handlers.OrderHandler
	Admin    *handlers.AdminOrderHandler
}

// SetupRoutes sets up all API routes
func SetupRoutes(rg *gin.RouterGroup, h *Handlers) {
	SetupAuthRoutes(rg, h)
	SetupCatalogRoutes(rg, h)
	SetupCartRoutes(rg, h)
	SetupCheckoutRoutes(rg, h)
	SetupOrderRoutes(rg, h)
	SetupAdminRoutes(rg, h)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, h *Handlers) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/me", middleware.AuthMiddleware(h.JWT), h.Auth.Me)
	}
}

// SetupCatalogRoutes sets up product and category routes
func SetupCatalogRoutes(rg *gin.RouterGroup, h *Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Catalog.ListProducts)
		products.GET("/:id", h.Catalog.GetProduct)
		products.GET("/slug/:slug", h.Catalog.GetProductBySlug)
	}

	rg.GET("/categories", h.Catalog.ListCategories)
}

// SetupCartRoutes sets up cart routes. Carts belong to the session, not the user.
func SetupCartRoutes(rg *gin.RouterGroup, h *Handlers) {
	cartGroup := rg.Group("/cart")
	{
		cartGroup.GET("", h.Cart.GetCart)
		cartGroup.DELETE("", h.Cart.ClearCart)
		cartGroup.POST("/items", h.Cart.AddItem)
		cartGroup.PUT("/items/:product_id", h.Cart.UpdateQuantity)
		cartGroup.DELETE("/items/:product_id", h.Cart.RemoveItem)
	}
}

// SetupCheckoutRoutes sets up checkout and session order routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, h *Handlers) {
	checkout := rg.Group("/checkout")
	{
		checkout.GET("/summary", h.Checkout.GetSummary)
		checkout.POST("/payment-order", h.Checkout.CreatePaymentOrder)
		checkout.POST("/orders", h.Checkout.PlaceOrder)
		checkout.GET("/orders", h.Checkout.ListOrders)
		checkout.GET("/orders/:id", h.Checkout.GetOrder)
		checkout.GET("/orders/:id/invoice", h.Checkout.DownloadInvoice)
	}
}

// SetupOrderRoutes sets up order store routes
func SetupOrderRoutes(rg *gin.RouterGroup, h *Handlers) {
	orders := rg.Group("/orders")
	{
		orders.POST("", middleware.OptionalAuthMiddleware(h.JWT), h.Orders.CreateOrder)

		protected := orders.Group("")
		protected.Use(middleware.AuthMiddleware(h.JWT))
		{
			protected.GET("", h.Orders.GetUserOrders)
			protected.GET("/:number", h.Orders.GetUserOrder)
		}
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, h *Handlers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.AuthMiddleware(h.JWT))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/orders", h.Admin.ListOrders)
		admin.GET("/orders/export", h.Admin.ExportOrders)
		admin.GET("/orders/:number", h.Admin.GetOrder)
		admin.PUT("/orders/:number/status", h.Admin.UpdateOrderStatus)
	}
}
