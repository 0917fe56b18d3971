package api

import (
	"net/http"
	"strconv"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/category"
	"github.com/example/ec-storefront/internal/domain/inventory"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/gin-gonic/gin"
)

type CatalogHandlers struct {
	catalog  *product.Catalog
	stock    *inventory.Adjuster
	resolver *category.Resolver
}

func NewCatalogHandlers(catalog *product.Catalog, stock *inventory.Adjuster) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, stock: stock, resolver: category.Default()}
}

func (h *CatalogHandlers) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.resolver.Categories()})
}

// ResolveCategory shows which canonical category a free-text label maps to.
func (h *CatalogHandlers) ResolveCategory(c *gin.Context) {
	q := c.Query("q")
	id := h.resolver.Resolve(q)
	c.JSON(http.StatusOK, gin.H{
		"query":    q,
		"category": id,
		"name":     h.resolver.Name(id),
	})
}

func (h *CatalogHandlers) ListProducts(c *gin.Context) {
	filter := product.Filter{
		Category: c.Query("category"),
		Country:  c.Query("country"),
		VendorID: c.Query("vendor"),
	}
	if v := c.Query("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, err)
			return
		}
		filter.InStockOnly = inStock
	}

	products, err := h.catalog.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

func (h *CatalogHandlers) GetProduct(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ImportProducts bulk-creates products. Vendors can only import into their
// own shop.
func (h *CatalogHandlers) ImportProducts(c *gin.Context) {
	var records []product.ImportRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		badRequest(c, err)
		return
	}

	if claims, ok := middleware.Claims(c); ok && claims.Role == auth.RoleVendor {
		for i := range records {
			records[i].VendorID = claims.VendorID
		}
	}

	report, err := h.catalog.Import(c.Request.Context(), records)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusCreated
	if len(report.Imported) == 0 && len(report.Failed) > 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, report)
}

type restockRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (h *CatalogHandlers) Restock(c *gin.Context) {
	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	adj, err := h.stock.Restock(c.Request.Context(), c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adj)
}
