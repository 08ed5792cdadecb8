// internal/domain/order/checkout.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/domain/payment"
)

var (
	// ErrInvalidShipping wraps shipping address validation failures
	ErrInvalidShipping = errors.New("invalid shipping address")
	// ErrEmptyCart is returned when checking out with no items
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidPaymentMethod is returned for methods other than razorpay and cod
	ErrInvalidPaymentMethod = errors.New("unsupported payment method")
	// ErrPaymentFailed is returned when the gateway confirmation does not verify
	ErrPaymentFailed = errors.New("payment verification failed")
	// ErrMirrorFailed is returned alongside a placed order when a required mirror fails
	ErrMirrorFailed = errors.New("order mirror failed")
	// ErrOrderNotFound is returned when no local order has the id
	ErrOrderNotFound = errors.New("order not found")
)

// PaymentVerifier checks gateway confirmations
type PaymentVerifier interface {
	Verify(details *payment.Details) error
}

// Checkout turns a cart into an order
type Checkout struct {
	verifier   PaymentVerifier
	dispatcher *Dispatcher
	ids        *IDGenerator
	logger     *logrus.Logger
	now        func() time.Time
}

// NewCheckout creates a checkout over shared dependencies
func NewCheckout(verifier PaymentVerifier, dispatcher *Dispatcher, ids *IDGenerator, logger *logrus.Logger) *Checkout {
	return &Checkout{
		verifier:   verifier,
		dispatcher: dispatcher,
		ids:        ids,
		logger:     logger,
		now:        time.Now,
	}
}

// PlaceOrder snapshots the cart into a new order, stores it locally, hands it
// to the mirror and clears the cart.
//
// No order is created on validation, empty cart or payment errors. Once the
// local write succeeds the order stands: the cart is cleared whatever the
// mirror does, and a required mirror failure comes back as ErrMirrorFailed
// together with the order.
func (c *Checkout) PlaceOrder(ctx context.Context, engine *cart.Engine, orders *LocalStore, req PlaceOrderRequest) (*Order, error) {
	req.ShippingAddress.Normalize()
	if err := ValidateAddress(req.ShippingAddress); err != nil {
		return nil, err
	}

	if engine.IsEmpty() {
		return nil, ErrEmptyCart
	}

	var status Status
	var details *payment.Details
	switch req.PaymentMethod {
	case PaymentMethodRazorpay:
		if err := c.verifier.Verify(req.PaymentDetails); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		status = StatusConfirmed
		d := *req.PaymentDetails
		details = &d
	case PaymentMethodCOD:
		status = StatusPending
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, req.PaymentMethod)
	}

	summary := engine.Summary()
	o := &Order{
		ID:              c.ids.Next(),
		Items:           summary.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  details,
		Subtotal:        summary.Subtotal,
		ShippingCost:    summary.ShippingCost,
		Total:           summary.Subtotal + summary.ShippingCost,
		Status:          status,
		CreatedAt:       c.now().UTC(),
		IdempotencyKey:  uuid.NewString(),
	}

	if err := orders.Append(ctx, o); err != nil {
		return nil, err
	}

	log := c.logger.WithFields(logrus.Fields{
		"order_id":       o.ID,
		"payment_method": o.PaymentMethod,
		"total":          o.Total,
	})
	log.Info("Order placed")

	mirrorErr := c.dispatcher.Dispatch(o)

	if err := engine.Clear(ctx); err != nil {
		log.WithError(err).Error("Failed to clear cart after order placement")
	}

	if mirrorErr != nil {
		return o, fmt.Errorf("%w: %v", ErrMirrorFailed, mirrorErr)
	}
	return o, nil
}
