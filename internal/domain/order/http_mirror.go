// internal/domain/order/http_mirror.go
package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

// HTTPMirrorConfig configures the HTTP transport
type HTTPMirrorConfig struct {
	URL string
	// BreakerFailures consecutive failures open the breaker
	BreakerFailures uint32
	// BreakerCooldown is how long the breaker stays open before probing again
	BreakerCooldown time.Duration
}

// HTTPMirror POSTs orders as JSON to the remote order store behind a circuit breaker
type HTTPMirror struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
	logger *logrus.Logger
}

// NewHTTPMirror creates an HTTP mirror. A nil client uses http.DefaultClient.
func NewHTTPMirror(cfg HTTPMirrorConfig, client *http.Client, logger *logrus.Logger) *HTTPMirror {
	if client == nil {
		client = http.DefaultClient
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "order-mirror",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Order mirror circuit breaker changed state")
		},
	})

	return &HTTPMirror{
		url:    cfg.URL,
		client: client,
		cb:     cb,
		logger: logger,
	}
}

// Send posts the payload. Any non-2xx response counts as a failure.
func (m *HTTPMirror) Send(ctx context.Context, payload *MirrorPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode mirror payload: %w", err)
	}

	respBody, err := m.cb.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to reach order store: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("order store returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return respBody, nil
	})
	if err != nil {
		return err
	}

	m.logger.WithFields(logrus.Fields{
		"order_id": payload.ClientOrderID,
		"response": string(respBody),
	}).Debug("Order store response")
	return nil
}

// State exposes the breaker state for health reporting
func (m *HTTPMirror) State() gobreaker.State {
	return m.cb.State()
}
