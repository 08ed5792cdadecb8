// internal/interfaces/http/handlers/checkout.go
package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/domain/order"
	"github.com/your-org/tshirt-store/internal/domain/payment"
)

// PaymentGateway opens gateway orders for the payment widget
type PaymentGateway interface {
	KeyID() string
	CreateGatewayOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*payment.GatewayOrder, error)
}

// InvoiceRenderer turns a placed order into an invoice
type InvoiceRenderer interface {
	RenderHTML(o *order.Order) (string, error)
	GenerateInvoice(o *order.Order) (*bytes.Buffer, error)
}

// CheckoutSummary is what the checkout page shows before payment
type CheckoutSummary struct {
	cart.Summary
	Currency              string `json:"currency"`
	AmountMinor           int64  `json:"amount_minor"`
	FreeShippingThreshold int64  `json:"free_shipping_threshold"`
	AmountToFreeShipping  int64  `json:"amount_to_free_shipping"`
	RazorpayKeyID         string `json:"razorpay_key_id,omitempty"`
}

// CheckoutHandler handles checkout and the session's placed orders
type CheckoutHandler struct {
	carts    *CartHandler
	checkout *order.Checkout
	gateway  PaymentGateway
	invoices InvoiceRenderer
	currency string
	logger   *logrus.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(carts *CartHandler, checkout *order.Checkout, gateway PaymentGateway, invoices InvoiceRenderer, currency string, logger *logrus.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		carts:    carts,
		checkout: checkout,
		gateway:  gateway,
		invoices: invoices,
		currency: currency,
		logger:   logger,
	}
}

func (h *CheckoutHandler) localOrders(c *gin.Context) *order.LocalStore {
	return order.NewLocalStore(h.carts.sessions.Storage(c), h.logger)
}

func (h *CheckoutHandler) summarize(engine *cart.Engine) CheckoutSummary {
	summary := engine.Summary()
	threshold := h.carts.policy.FreeThreshold

	var remaining int64
	if summary.Subtotal > 0 && summary.Subtotal < threshold {
		remaining = threshold - summary.Subtotal
	}

	return CheckoutSummary{
		Summary:               summary,
		Currency:              h.currency,
		AmountMinor:           summary.Total * 100,
		FreeShippingThreshold: threshold,
		AmountToFreeShipping:  remaining,
		RazorpayKeyID:         h.gateway.KeyID(),
	}
}

// GetSummary handles GET /checkout/summary
func (h *CheckoutHandler) GetSummary(c *gin.Context) {
	engine, ok := h.carts.engine(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Checkout summary retrieved successfully",
		"data":    h.summarize(engine),
	})
}

// CreatePaymentOrder handles POST /checkout/payment-order
func (h *CheckoutHandler) CreatePaymentOrder(c *gin.Context) {
	engine, ok := h.carts.engine(c)
	if !ok {
		return
	}
	if engine.IsEmpty() {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cart is empty",
		})
		return
	}

	summary := h.summarize(engine)
	sessionID := h.carts.sessions.ID(c)
	receipt := "rcpt_" + sessionID[:8] + "_" + strconv.FormatInt(time.Now().UnixMilli(), 36)

	gatewayOrder, err := h.gateway.CreateGatewayOrder(c.Request.Context(), summary.AmountMinor, h.currency, receipt, map[string]string{
		"session_id": sessionID,
	})
	if err != nil {
		_ = c.Error(err)
		if errors.Is(err, payment.ErrGatewayNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Online payment is not available",
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Failed to create payment order",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Payment order created successfully",
		"data": gin.H{
			"order":   gatewayOrder,
			"key_id":  h.gateway.KeyID(),
			"summary": summary,
		},
	})
}

// PlaceOrder handles POST /checkout/orders
func (h *CheckoutHandler) PlaceOrder(c *gin.Context) {
	var req order.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	engine, ok := h.carts.engine(c)
	if !ok {
		return
	}

	placed, err := h.checkout.PlaceOrder(c.Request.Context(), engine, h.localOrders(c), req)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"data":    placed,
		})
	case errors.Is(err, order.ErrMirrorFailed) && placed != nil:
		c.JSON(http.StatusCreated, gin.H{
			"message": "Order placed successfully",
			"warning": "Order was saved but could not be synced to the order service",
			"data":    placed,
		})
	default:
		respondCheckoutError(c, err)
	}
}

func respondCheckoutError(c *gin.Context, err error) {
	var verr *order.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid shipping address",
			"details": verr.Fields,
		})
	case errors.Is(err, order.ErrInvalidPaymentMethod):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	case errors.Is(err, order.ErrPaymentFailed):
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "Payment verification failed",
			"details": err.Error(),
		})
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Cart is empty",
		})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to place order",
		})
	}
}

// ListOrders handles GET /checkout/orders
func (h *CheckoutHandler) ListOrders(c *gin.Context) {
	orders, err := h.localOrders(c).List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Orders retrieved successfully",
		"data":    orders,
	})
}

// GetOrder handles GET /checkout/orders/:id
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	o, ok := h.findOrder(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order retrieved successfully",
		"data":    o,
	})
}

// DownloadInvoice handles GET /checkout/orders/:id/invoice. ?format=html
// returns the rendered page instead of the PDF.
func (h *CheckoutHandler) DownloadInvoice(c *gin.Context) {
	o, ok := h.findOrder(c)
	if !ok {
		return
	}

	if c.Query("format") == "html" {
		page, err := h.invoices.RenderHTML(o)
		if err != nil {
			h.invoiceFailed(c, o, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
		return
	}

	pdfBuffer, err := h.invoices.GenerateInvoice(o)
	if err != nil {
		h.invoiceFailed(c, o, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", o.ID))
	c.Data(http.StatusOK, "application/pdf", pdfBuffer.Bytes())
}

func (h *CheckoutHandler) invoiceFailed(c *gin.Context, o *order.Order, err error) {
	h.logger.WithError(err).WithField("order_id", o.ID).Error("Failed to generate invoice")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to generate invoice",
	})
}

func (h *CheckoutHandler) findOrder(c *gin.Context) (*order.Order, bool) {
	o, err := h.localOrders(c).Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Order not found",
			})
			return nil, false
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to retrieve order",
		})
		return nil, false
	}
	return o, true
}
