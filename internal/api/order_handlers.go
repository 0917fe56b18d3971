package api

import (
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/gin-gonic/gin"
)

type OrderHandlers struct {
	orders *order.Service
}

func NewOrderHandlers(orders *order.Service) *OrderHandlers {
	return &OrderHandlers{orders: orders}
}

// PlaceOrder creates an order from the posted cart snapshot. Stock updates
// that failed after the order was stored are returned as warnings.
func (h *OrderHandlers) PlaceOrder(c *gin.Context) {
	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	placement, err := h.orders.PlaceOrder(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placement)
}

func (h *OrderHandlers) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListAllOrders is the back-office view of every customer's orders.
func (h *OrderHandlers) ListAllOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), "")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandlers) GetOrder(c *gin.Context) {
	o, ok := h.ownedOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, o)
}

type updateAddressesRequest struct {
	ShippingAddress *order.Address `json:"shippingAddress"`
	BillingAddress  *order.Address `json:"billingAddress"`
}

func (h *OrderHandlers) UpdateAddresses(c *gin.Context) {
	var req updateAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if _, ok := h.ownedOrder(c); !ok {
		return
	}

	if err := h.orders.UpdateAddresses(c.Request.Context(), c.Param("id"), req.ShippingAddress, req.BillingAddress); err != nil {
		respondError(c, err)
		return
	}
	h.respondOrder(c)
}

type updateStatusRequest struct {
	Status         order.Status `json:"status" binding:"required"`
	TrackingNumber string       `json:"trackingNumber"`
}

func (h *OrderHandlers) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.orders.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status, req.TrackingNumber); err != nil {
		respondError(c, err)
		return
	}
	h.respondOrder(c)
}

type updatePaymentRequest struct {
	PaymentStatus order.PaymentStatus `json:"paymentStatus" binding:"required"`
}

func (h *OrderHandlers) UpdatePayment(c *gin.Context) {
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.orders.UpdatePaymentStatus(c.Request.Context(), c.Param("id"), req.PaymentStatus); err != nil {
		respondError(c, err)
		return
	}
	h.respondOrder(c)
}

// ownedOrder loads the order in the path and checks that the caller owns
// it or is an admin. It writes the error response itself.
func (h *OrderHandlers) ownedOrder(c *gin.Context) (*order.Order, bool) {
	o, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	claims, _ := middleware.Claims(c)
	if claims == nil || (o.UserID != claims.UserID && !claims.HasRole(auth.RoleAdmin)) {
		respondError(c, errForbidden)
		return nil, false
	}
	return o, true
}

func (h *OrderHandlers) respondOrder(c *gin.Context) {
	o, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
