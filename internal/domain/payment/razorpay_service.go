// internal/domain/payment/razorpay_service.go
package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/config"
)

var (
	// ErrMissingPaymentID is returned when the gateway callback carried no payment id
	ErrMissingPaymentID = errors.New("payment id is required")
	// ErrMissingSignature is returned when signatures are mandatory and none was sent
	ErrMissingSignature = errors.New("payment signature is required")
	// ErrSignatureMismatch is returned when the signature does not match the payment
	ErrSignatureMismatch = errors.New("payment signature mismatch")
	// ErrGatewayNotConfigured is returned when Razorpay credentials are missing
	ErrGatewayNotConfigured = errors.New("razorpay credentials not configured")
)

// Details are the identifiers the Razorpay widget hands back on success
type Details struct {
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpayOrderID   string `json:"razorpay_order_id,omitempty"`
	RazorpaySignature string `json:"razorpay_signature,omitempty"`
}

// GatewayOrder is the Razorpay order the widget is opened against
type GatewayOrder struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Receipt   string            `json:"receipt"`
	Status    string            `json:"status"`
	Notes     map[string]string `json:"notes,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

// CreateOrderRequest is the body of POST /orders on the Razorpay API
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// RazorpayService verifies widget callbacks and creates gateway orders
type RazorpayService struct {
	keyID            string
	keySecret        string
	baseURL          string
	requireSignature bool
	httpClient       *http.Client
	logger           *logrus.Logger
}

// NewRazorpayService creates a new Razorpay service
func NewRazorpayService(cfg *config.Config, logger *logrus.Logger) *RazorpayService {
	return &RazorpayService{
		keyID:            cfg.Payment.KeyID,
		keySecret:        cfg.Payment.KeySecret,
		baseURL:          cfg.Payment.BaseURL,
		requireSignature: cfg.Payment.RequireSignature,
		httpClient: &http.Client{
			Timeout: cfg.Payment.Timeout,
		},
		logger: logger,
	}
}

// KeyID is the public key the widget needs
func (r *RazorpayService) KeyID() string {
	return r.keyID
}

// Verify checks the widget callback. A payment id is always required; the
// signature is checked whenever it is present together with an order id.
func (r *RazorpayService) Verify(details *Details) error {
	if details == nil || details.RazorpayPaymentID == "" {
		return ErrMissingPaymentID
	}

	if details.RazorpaySignature == "" || details.RazorpayOrderID == "" {
		if r.requireSignature {
			return ErrMissingSignature
		}
		return nil
	}

	if r.keySecret == "" {
		return ErrGatewayNotConfigured
	}

	expected := Sign(r.keySecret, details.RazorpayOrderID, details.RazorpayPaymentID)
	if !hmac.Equal([]byte(expected), []byte(details.RazorpaySignature)) {
		r.logger.WithFields(logrus.Fields{
			"razorpay_order_id":   details.RazorpayOrderID,
			"razorpay_payment_id": details.RazorpayPaymentID,
		}).Warn("Razorpay signature mismatch")
		return ErrSignatureMismatch
	}
	return nil
}

// Sign computes the Razorpay checkout signature for an order and payment pair
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// CreateGatewayOrder creates a Razorpay order for amountMinor (paise)
func (r *RazorpayService) CreateGatewayOrder(ctx context.Context, amountMinor int64, currency, receipt string, notes map[string]string) (*GatewayOrder, error) {
	if r.keyID == "" || r.keySecret == "" {
		return nil, ErrGatewayNotConfigured
	}
	if amountMinor <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", amountMinor)
	}

	body, err := r.makeAPICall(ctx, http.MethodPost, "/orders", CreateOrderRequest{
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    notes,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Razorpay order: %w", err)
	}

	var order GatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse Razorpay order response: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"razorpay_order_id": order.ID,
		"amount":            order.Amount,
		"receipt":           receipt,
	}).Info("Razorpay order created")

	return &order, nil
}

// makeAPICall makes HTTP calls to Razorpay API
func (r *RazorpayService) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	if data != nil {
		var err error
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API call failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}
