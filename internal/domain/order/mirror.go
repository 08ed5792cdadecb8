// internal/domain/order/mirror.go
package order

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/domain/payment"
)

// MirrorMode selects how hard the dispatcher tries to replicate an order
type MirrorMode string

const (
	// MirrorNone makes one background attempt and only logs a failure
	MirrorNone MirrorMode = "none"
	// MirrorRetry makes background attempts with backoff
	MirrorRetry MirrorMode = "retry"
	// MirrorRequired mirrors synchronously and reports the failure to the caller
	MirrorRequired MirrorMode = "required"
)

// MirrorPolicy is the parsed MIRROR_POLICY value
type MirrorPolicy struct {
	Mode    MirrorMode
	Retries int
}

func (p MirrorPolicy) String() string {
	if p.Mode == MirrorRetry {
		return fmt.Sprintf("retry:%d", p.Retries)
	}
	return string(p.Mode)
}

// attempts is the total number of sends the policy allows
func (p MirrorPolicy) attempts() int {
	if p.Mode == MirrorRetry {
		return 1 + p.Retries
	}
	return 1
}

// ParseMirrorPolicy parses "none", "required" or "retry:<n>". Empty means none.
func ParseMirrorPolicy(s string) (MirrorPolicy, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "none":
		return MirrorPolicy{Mode: MirrorNone}, nil
	case "required":
		return MirrorPolicy{Mode: MirrorRequired}, nil
	}

	if n, ok := strings.CutPrefix(s, "retry:"); ok {
		retries, err := strconv.Atoi(n)
		if err != nil || retries < 1 {
			return MirrorPolicy{}, fmt.Errorf("invalid retry count in mirror policy %q", s)
		}
		return MirrorPolicy{Mode: MirrorRetry, Retries: retries}, nil
	}
	return MirrorPolicy{}, fmt.Errorf("unknown mirror policy %q", s)
}

// MirrorPayload is the body sent to the remote order store
type MirrorPayload struct {
	ClientOrderID   string           `json:"client_order_id"`
	IdempotencyKey  string           `json:"idempotency_key,omitempty"`
	Items           []cart.LineItem  `json:"items"`
	ShippingAddress ShippingAddress  `json:"shipping_address"`
	PaymentMethod   PaymentMethod    `json:"payment_method"`
	PaymentDetails  *payment.Details `json:"payment_details,omitempty"`
	Subtotal        int64            `json:"subtotal"`
	ShippingCost    int64            `json:"shipping_cost"`
	Total           int64            `json:"total"`
}

// NewMirrorPayload builds the remote body for o
func NewMirrorPayload(o *Order) *MirrorPayload {
	return &MirrorPayload{
		ClientOrderID:   o.ID,
		IdempotencyKey:  o.IdempotencyKey,
		Items:           o.Items,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		PaymentDetails:  o.PaymentDetails,
		Subtotal:        o.Subtotal,
		ShippingCost:    o.ShippingCost,
		Total:           o.Total,
	}
}

// Mirror delivers an order to the remote order store
type Mirror interface {
	Send(ctx context.Context, payload *MirrorPayload) error
}

// MirrorFunc adapts a function to Mirror
type MirrorFunc func(ctx context.Context, payload *MirrorPayload) error

func (f MirrorFunc) Send(ctx context.Context, payload *MirrorPayload) error {
	return f(ctx, payload)
}
