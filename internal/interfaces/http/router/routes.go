package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chiclet/backend/internal/interfaces/http/handler"
)

// Paths mounted outside /api/v1
const (
	WebhookPath = "/api/razorpaywebhook"
	HealthPath  = "/health"
)

// Handlers groups the HTTP handlers served by the API
type Handlers struct {
	Auth        *handler.AuthHandler
	Products    *handler.ProductHandler
	Cart        *handler.CartHandler
	Addresses   *handler.AddressHandler
	Orders      *handler.OrderHandler
	AdminOrders *handler.AdminOrderHandler
	Payments    *handler.PaymentHandler
	Users       *handler.UserHandler
	Dashboard   *handler.DashboardHandler
	Webhook     *handler.RazorpayWebhookHandler
	System      *handler.SystemHandler
}

// Guards are the access-control middleware applied per group.
type Guards struct {
	// Session requires a valid access token
	Session gin.HandlerFunc
	// Admin requires an active admin or super admin
	Admin gin.HandlerFunc
	// SuperAdmin requires an active super admin
	SuperAdmin gin.HandlerFunc
	// AuthLimit throttles credential endpoints; nil disables it
	AuthLimit gin.HandlerFunc
}

// Mount registers every route of the storefront and back-office API
func Mount(r *Router, h Handlers, g Guards) {
	r.Handle(http.MethodGet, HealthPath, h.System.Health)
	r.Handle(http.MethodPost, WebhookPath, h.Webhook.Handle)

	r.Register(authRoutes(h, g)).
		Register(catalogRoutes(h)).
		Register(cartRoutes(h, g)).
		Register(addressRoutes(h, g)).
		Register(checkoutRoutes(h, g)).
		Register(orderRoutes(h, g)).
		Register(adminRoutes(h, g))
}

func authRoutes(h Handlers, g Guards) *DomainGroup {
	routes := NewDomainGroup("auth", "/auth")

	credentials := routes.Group("credentials", "")
	if g.AuthLimit != nil {
		credentials.Use(g.AuthLimit)
	}
	credentials.POST("/register", h.Auth.Register).
		POST("/login", h.Auth.Login).
		POST("/refresh", h.Auth.Refresh)

	routes.Group("session", "").Use(g.Session).
		GET("/me", h.Auth.Me).
		POST("/logout", h.Auth.Logout)
	return routes
}

func catalogRoutes(h Handlers) *DomainGroup {
	routes := NewDomainGroup("catalog", "")
	routes.GET("/categories", h.Products.ListCategories)
	routes.Group("products", "/products").
		GET("", h.Products.List).
		GET("/:id", h.Products.Get)
	return routes
}

func cartRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("cart", "/cart").Use(g.Session).
		GET("", h.Cart.Get).
		DELETE("", h.Cart.Clear).
		POST("/items", h.Cart.AddItem).
		PATCH("/items/:item_id", h.Cart.UpdateQuantity).
		DELETE("/items/:item_id", h.Cart.RemoveItem)
}

func addressRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("addresses", "/addresses").Use(g.Session).
		GET("", h.Addresses.List).
		POST("", h.Addresses.Create).
		GET("/:id", h.Addresses.Get).
		PUT("/:id", h.Addresses.Update).
		DELETE("/:id", h.Addresses.Delete).
		POST("/:id/default", h.Addresses.SetDefault)
}

func checkoutRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("checkout", "/checkout").Use(g.Session).
		POST("/payment-order", h.Orders.CreatePaymentOrder).
		POST("/confirm", h.Orders.Confirm)
}

func orderRoutes(h Handlers, g Guards) *DomainGroup {
	return NewDomainGroup("orders", "/orders").Use(g.Session).
		GET("", h.Orders.ListMine).
		GET("/:id", h.Orders.GetMine).
		POST("/:id/cancel", h.Orders.Cancel)
}

func adminRoutes(h Handlers, g Guards) *DomainGroup {
	admin := NewDomainGroup("admin", "/admin").Use(g.Session, g.Admin)

	admin.GET("/dashboard/stats", h.Dashboard.Stats)

	admin.Group("products", "/products").
		GET("", h.Products.AdminList).
		POST("", h.Products.Create).
		GET("/:id", h.Products.AdminGet).
		PUT("/:id", h.Products.Update).
		DELETE("/:id", h.Products.Delete).
		POST("/:id/colors", h.Products.AddColor).
		DELETE("/:id/colors/:color_id", h.Products.RemoveColor).
		POST("/:id/activate", h.Products.Activate).
		POST("/:id/deactivate", h.Products.Deactivate).
		POST("/:id/image-upload", h.Products.RequestImageUpload)

	admin.Group("orders", "/orders").
		GET("", h.AdminOrders.List).
		GET("/:id", h.AdminOrders.Get).
		PATCH("/:id/status", h.AdminOrders.UpdateStatus).
		GET("/:id/invoice", h.AdminOrders.Invoice)

	admin.Group("payments", "/payments").
		GET("", h.Payments.List).
		GET("/:id", h.Payments.Get)

	admin.Group("customers", "/customers").
		GET("", h.Users.ListCustomers).
		GET("/:id", h.Users.Get)

	admin.Group("users", "/users").Use(g.SuperAdmin).
		GET("", h.Users.ListAdmins).
		POST("", h.Users.CreateAdmin).
		GET("/:id", h.Users.Get).
		PATCH("/:id/active", h.Users.ToggleActive).
		PATCH("/:id/role", h.Users.ChangeRole)

	return admin
}
