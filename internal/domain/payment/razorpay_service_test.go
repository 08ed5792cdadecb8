package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/tshirt-store/internal/config"
	"github.com/your-org/tshirt-store/internal/pkg/logger"
)

const (
	testKeyID     = "rzp_test_key"
	testKeySecret = "rzp_test_secret"
)

func newTestService(baseURL string, requireSignature bool) *RazorpayService {
	cfg := &config.Config{Payment: config.PaymentConfig{
		KeyID:            testKeyID,
		KeySecret:        testKeySecret,
		BaseURL:          baseURL,
		RequireSignature: requireSignature,
		Timeout:          5 * time.Second,
	}}
	return NewRazorpayService(cfg, logger.Discard())
}

func TestSign_KnownVector(t *testing.T) {
	// hex(HMAC-SHA256("secret", "order_1|pay_1"))
	got := Sign("secret", "order_1", "pay_1")
	assert.Len(t, got, 64)
	assert.Equal(t, got, Sign("secret", "order_1", "pay_1"))
	assert.NotEqual(t, got, Sign("secret", "order_1", "pay_2"))
	assert.NotEqual(t, got, Sign("other", "order_1", "pay_1"))
}

func TestVerify(t *testing.T) {
	validSig := Sign(testKeySecret, "order_1", "pay_1")

	tests := []struct {
		name     string
		require  bool
		details  *Details
		expected error
	}{
		{"nil details", false, nil, ErrMissingPaymentID},
		{"missing payment id", false, &Details{RazorpayOrderID: "order_1"}, ErrMissingPaymentID},
		{"payment id only", false, &Details{RazorpayPaymentID: "pay_1"}, nil},
		{"payment id only, signature required", true, &Details{RazorpayPaymentID: "pay_1"}, ErrMissingSignature},
		{"valid signature", true, &Details{RazorpayPaymentID: "pay_1", RazorpayOrderID: "order_1", RazorpaySignature: validSig}, nil},
		{"tampered payment id", false, &Details{RazorpayPaymentID: "pay_2", RazorpayOrderID: "order_1", RazorpaySignature: validSig}, ErrSignatureMismatch},
		{"garbage signature", false, &Details{RazorpayPaymentID: "pay_1", RazorpayOrderID: "order_1", RazorpaySignature: "abc"}, ErrSignatureMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService("", tt.require)
			err := svc.Verify(tt.details)
			if tt.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.expected)
			}
		})
	}
}

func TestVerify_NoSecretConfigured(t *testing.T) {
	svc := newTestService("", false)
	svc.keySecret = ""

	err := svc.Verify(&Details{RazorpayPaymentID: "pay_1", RazorpayOrderID: "order_1", RazorpaySignature: "x"})
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}

func TestCreateGatewayOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, testKeyID, user)
		assert.Equal(t, testKeySecret, pass)

		var req CreateOrderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(59900), req.Amount)
		assert.Equal(t, "INR", req.Currency)
		assert.Equal(t, "rcpt_1", req.Receipt)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GatewayOrder{
			ID: "order_abc", Entity: "order", Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt, Status: "created",
		})
	}))
	defer server.Close()

	svc := newTestService(server.URL, false)
	order, err := svc.CreateGatewayOrder(context.Background(), 59900, "INR", "rcpt_1", nil)
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
	assert.Equal(t, int64(59900), order.Amount)
}

func TestCreateGatewayOrder_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"description":"bad amount"}}`))
	}))
	defer server.Close()

	svc := newTestService(server.URL, false)

	_, err := svc.CreateGatewayOrder(context.Background(), 100, "INR", "r", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")

	_, err = svc.CreateGatewayOrder(context.Background(), 0, "INR", "r", nil)
	assert.Error(t, err)

	svc.keyID = ""
	_, err = svc.CreateGatewayOrder(context.Background(), 100, "INR", "r", nil)
	assert.ErrorIs(t, err, ErrGatewayNotConfigured)
}
