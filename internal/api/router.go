package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/gin-gonic/gin"
)

type RouterConfig struct {
	Orders  *OrderHandlers
	Catalog *CatalogHandlers
	Tokens  middleware.TokenVerifier
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Catalog (public)
	r.GET("/categories", cfg.Catalog.ListCategories)
	r.GET("/categories/resolve", cfg.Catalog.ResolveCategory)
	r.GET("/products", cfg.Catalog.ListProducts)
	r.GET("/products/:id", cfg.Catalog.GetProduct)

	// Customer orders
	orders := r.Group("/orders", middleware.Auth(cfg.Tokens))
	orders.POST("", cfg.Orders.PlaceOrder)
	orders.GET("", cfg.Orders.ListOrders)
	orders.GET("/:id", cfg.Orders.GetOrder)
	orders.PATCH("/:id/addresses", cfg.Orders.UpdateAddresses)

	// Back office
	admin := r.Group("/admin", middleware.Auth(cfg.Tokens))
	admin.GET("/orders", middleware.RequireRole(auth.RoleAdmin), cfg.Orders.ListAllOrders)
	admin.PATCH("/orders/:id/status", middleware.RequireRole(auth.RoleAdmin), cfg.Orders.UpdateStatus)
	admin.PATCH("/orders/:id/payment", middleware.RequireRole(auth.RoleAdmin), cfg.Orders.UpdatePayment)
	admin.POST("/products/import", middleware.RequireRole(auth.RoleAdmin, auth.RoleVendor), cfg.Catalog.ImportProducts)
	admin.POST("/products/:id/restock", middleware.RequireRole(auth.RoleAdmin), cfg.Catalog.Restock)

	return r
}
