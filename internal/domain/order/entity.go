// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/domain/payment"
)

// PaymentMethod represents how the shopper pays
type PaymentMethod string

const (
	PaymentMethodRazorpay PaymentMethod = "razorpay"
	PaymentMethodCOD      PaymentMethod = "cod"
)

// Status represents the initial state of a placed order
type Status string

const (
	// StatusConfirmed is used when the gateway already took the money
	StatusConfirmed Status = "confirmed"
	// StatusPending is used for cash on delivery
	StatusPending Status = "pending"
)

// ShippingAddress is where the order goes
type ShippingAddress struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,phone"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Pincode  string `json:"pincode" validate:"required,pincode"`
}

// Order is an immutable snapshot of the cart taken at checkout.
// Total always equals Subtotal plus ShippingCost.
type Order struct {
	ID              string           `json:"order_id"`
	Items           []cart.LineItem  `json:"items"`
	ShippingAddress ShippingAddress  `json:"shipping_address"`
	PaymentMethod   PaymentMethod    `json:"payment_method"`
	PaymentDetails  *payment.Details `json:"payment_details,omitempty"`
	Subtotal        int64            `json:"subtotal"`
	ShippingCost    int64            `json:"shipping_cost"`
	Total           int64            `json:"total"`
	Status          Status           `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	// IdempotencyKey is a random key the remote store dedupes mirror deliveries on
	IdempotencyKey  string           `json:"idempotency_key,omitempty"`
}

// ItemCount sums the quantities of all items
func (o *Order) ItemCount() int {
	return cart.ComputeAggregates(o.Items).ItemCount
}

// PlaceOrderRequest carries the checkout form
type PlaceOrderRequest struct {
	ShippingAddress ShippingAddress  `json:"shipping_address" binding:"required"`
	PaymentMethod   PaymentMethod    `json:"payment_method" binding:"required"`
	PaymentDetails  *payment.Details `json:"payment_details"`
}
