// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/domain/catalog"
)

// AddItemRequest selects a product and size to add
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Size      string `json:"size" binding:"required"`
}

// UpdateQuantityRequest sets a line's quantity. Zero or less removes it.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// CartHandler handles cart endpoints
type CartHandler struct {
	products catalog.Repository
	sessions *Sessions
	policy   cart.ShippingPolicy
	logger   *logrus.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(products catalog.Repository, sessions *Sessions, policy cart.ShippingPolicy, logger *logrus.Logger) *CartHandler {
	return &CartHandler{
		products: products,
		sessions: sessions,
		policy:   policy,
		logger:   logger,
	}
}

// engine loads the caller's cart
func (h *CartHandler) engine(c *gin.Context) (*cart.Engine, bool) {
	sessionID := h.sessions.ID(c)
	store := cart.NewStore(h.sessions.Storage(c), h.logger)

	engine, err := cart.NewEngine(c.Request.Context(), store, h.policy, func(ev cart.Event) {
		h.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"event":      ev.Kind,
			"product_id": ev.ProductID,
			"size":       ev.Variant,
			"item_count": ev.Aggregates.ItemCount,
			"subtotal":   ev.Aggregates.Subtotal,
		}).Debug("Cart updated")
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load cart",
		})
		return nil, false
	}
	return engine, true
}

// GetCart handles GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart retrieved successfully",
		"data":    engine.Summary(),
	})
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	product, err := h.products.FindByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve product",
		})
		return
	}

	if err := cart.ValidateSelection(product, req.Size); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if err := engine.AddItem(c.Request.Context(), product, req.Size); err != nil {
		h.failedUpdate(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item added to cart successfully",
		"data":    engine.Summary(),
	})
}

// UpdateQuantity handles PUT /cart/items/:product_id?size=
func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	size, ok := requiredSize(c)
	if !ok {
		return
	}

	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if err := engine.UpdateQuantity(c.Request.Context(), c.Param("product_id"), size, *req.Quantity); err != nil {
		h.failedUpdate(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart item updated successfully",
		"data":    engine.Summary(),
	})
}

// RemoveItem handles DELETE /cart/items/:product_id?size=
func (h *CartHandler) RemoveItem(c *gin.Context) {
	size, ok := requiredSize(c)
	if !ok {
		return
	}

	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if err := engine.RemoveItem(c.Request.Context(), c.Param("product_id"), size); err != nil {
		h.failedUpdate(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart successfully",
		"data":    engine.Summary(),
	})
}

// ClearCart handles DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	if err := engine.Clear(c.Request.Context()); err != nil {
		h.failedUpdate(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cart cleared successfully",
		"data":    engine.Summary(),
	})
}

func (h *CartHandler) failedUpdate(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to update cart",
	})
}

func requiredSize(c *gin.Context) (string, bool) {
	size := c.Query("size")
	if size == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "size query parameter is required",
		})
		return "", false
	}
	return size, true
}
