// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/domain/orderstore"
	"github.com/your-org/tshirt-store/internal/interfaces/http/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminOrderHandler handles order management for admins
type AdminOrderHandler struct {
	orders *orderstore.Service
	logger *logrus.Logger
}

// NewAdminOrderHandler creates a new admin order handler
func NewAdminOrderHandler(orders *orderstore.Service, logger *logrus.Logger) *AdminOrderHandler {
	return &AdminOrderHandler{
		orders: orders,
		logger: logger,
	}
}

// ListOrders handles GET /admin/orders
func (h *AdminOrderHandler) ListOrders(c *gin.Context) {
	filter, ok := bindAdminFilter(c)
	if !ok {
		return
	}

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

// GetOrder handles GET /admin/orders/:number
func (h *AdminOrderHandler) GetOrder(c *gin.Context) {
	rec, err := h.orders.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondOrderStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    rec,
	})
}

// UpdateOrderStatus handles PUT /admin/orders/:number/status
func (h *AdminOrderHandler) UpdateOrderStatus(c *gin.Context) {
	var req orderstore.StatusUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	rec, err := h.orders.UpdateStatus(c.Request.Context(), c.Param("number"), req)
	if err != nil {
		respondOrderStoreError(c, err)
		return
	}

	adminID, _ := middleware.GetUserIDFromContext(c)
	h.logger.WithFields(logrus.Fields{
		"order_number": rec.OrderNumber,
		"status":       rec.Status,
		"admin_id":     adminID,
	}).Info("Order status updated")

	c.JSON(http.StatusOK, gin.H{
		"message": "Order status updated successfully",
		"data":    rec,
	})
}

// ExportOrders handles GET /admin/orders/export
func (h *AdminOrderHandler) ExportOrders(c *gin.Context) {
	filter, ok := bindAdminFilter(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.orders.ExportXLSX(c.Request.Context(), &buf, filter); err != nil {
		respondOrderStoreError(c, err)
		return
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func bindAdminFilter(c *gin.Context) (orderstore.ListFilter, bool) {
	var filter orderstore.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return filter, false
	}

	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid user ID",
			})
			return filter, false
		}
		userID := uint(id)
		filter.UserID = &userID
	}
	return filter, true
}
