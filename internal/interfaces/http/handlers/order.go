// internal/interfaces/http/handlers/order.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/tshirt-store/internal/domain/order"
	"github.com/your-org/tshirt-store/internal/domain/orderstore"
	"github.com/your-org/tshirt-store/internal/interfaces/http/middleware"
)

// OrderHandler serves the order store that storefront orders are mirrored to
type OrderHandler struct {
	orders *orderstore.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *orderstore.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// CreateOrder handles POST /orders. Replays of a known client order id
// return the stored record with 200.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req orderstore.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	var userID *uint
	if id, ok := middleware.GetUserIDFromContext(c); ok {
		userID = &id
	}

	rec, created, err := h.orders.Create(c.Request.Context(), userID, req)
	if err != nil {
		respondOrderStoreError(c, err)
		return
	}

	if !created {
		c.JSON(http.StatusOK, gin.H{
			"message": "Order already exists",
			"data":    rec,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created successfully",
		"data":    rec,
	})
}

// GetUserOrders handles GET /orders
func (h *OrderHandler) GetUserOrders(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var filter orderstore.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}
	filter.UserID = &userID

	result, err := h.orders.List(c.Request.Context(), filter)
	if err != nil {
		respondOrderStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    result,
	})
}

// GetUserOrder handles GET /orders/:number
func (h *OrderHandler) GetUserOrder(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	rec, err := h.orders.GetForUser(c.Request.Context(), c.Param("number"), userID)
	if err != nil {
		respondOrderStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    rec,
	})
}

func respondOrderStoreError(c *gin.Context, err error) {
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid shipping address",
			"details": verr.Fields,
		})
	case errors.Is(err, orderstore.ErrInvalidOrder), errors.Is(err, orderstore.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, orderstore.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	case errors.Is(err, orderstore.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Order was updated concurrently, please retry",
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process order",
		})
	}
}
