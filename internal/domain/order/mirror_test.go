package order

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/pkg/logger"
)

func TestParseMirrorPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    MirrorPolicy
		wantErr bool
	}{
		{"", MirrorPolicy{Mode: MirrorNone}, false},
		{"none", MirrorPolicy{Mode: MirrorNone}, false},
		{"REQUIRED", MirrorPolicy{Mode: MirrorRequired}, false},
		{"retry:3", MirrorPolicy{Mode: MirrorRetry, Retries: 3}, false},
		{"retry:0", MirrorPolicy{}, true},
		{"retry:x", MirrorPolicy{}, true},
		{"always", MirrorPolicy{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMirrorPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "retry:3", MirrorPolicy{Mode: MirrorRetry, Retries: 3}.String())
}

// countingMirror fails the first failures calls
type countingMirror struct {
	calls    atomic.Int32
	failures int32
}

func (m *countingMirror) Send(context.Context, *MirrorPayload) error {
	n := m.calls.Add(1)
	if n <= m.failures {
		return errors.New("remote unavailable")
	}
	return nil
}

func newTestDispatcher(m Mirror, policy MirrorPolicy) *Dispatcher {
	return NewDispatcher(m, policy, time.Second, time.Millisecond, logger.Discard())
}

func TestDispatcher_NoneMakesOneBackgroundAttempt(t *testing.T) {
	m := &countingMirror{failures: 10}
	d := newTestDispatcher(m, MirrorPolicy{Mode: MirrorNone})

	assert.NoError(t, d.Dispatch(&Order{ID: "ORD1"}))
	d.Wait()
	assert.Equal(t, int32(1), m.calls.Load())
}

func TestDispatcher_RetryStopsOnSuccess(t *testing.T) {
	m := &countingMirror{failures: 2}
	d := newTestDispatcher(m, MirrorPolicy{Mode: MirrorRetry, Retries: 5})

	assert.NoError(t, d.Dispatch(&Order{ID: "ORD1"}))
	d.Wait()
	assert.Equal(t, int32(3), m.calls.Load())
}

func TestDispatcher_RetryGivesUp(t *testing.T) {
	m := &countingMirror{failures: 100}
	d := newTestDispatcher(m, MirrorPolicy{Mode: MirrorRetry, Retries: 2})

	assert.NoError(t, d.Dispatch(&Order{ID: "ORD1"}))
	d.Wait()
	assert.Equal(t, int32(3), m.calls.Load())
}

func TestDispatcher_RequiredReturnsError(t *testing.T) {
	m := &countingMirror{failures: 1}
	d := newTestDispatcher(m, MirrorPolicy{Mode: MirrorRequired})

	err := d.Dispatch(&Order{ID: "ORD1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ORD1")

	assert.NoError(t, d.Dispatch(&Order{ID: "ORD2"}))
}

func TestDispatcher_AttemptTimeout(t *testing.T) {
	blocking := MirrorFunc(func(ctx context.Context, _ *MirrorPayload) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d := NewDispatcher(blocking, MirrorPolicy{Mode: MirrorRequired}, 20*time.Millisecond, 0, logger.Discard())

	err := d.Dispatch(&Order{ID: "ORD1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewMirrorPayload(t *testing.T) {
	o := &Order{
		ID:            "ORD42",
		Items:         []cart.LineItem{{ProductID: "1", Variant: "M", Name: "Tee", UnitPrice: 499, Quantity: 2}},
		PaymentMethod: PaymentMethodCOD,
		Subtotal:      998,
		ShippingCost:  99,
		Total:         1097,
	}

	data, err := json.Marshal(NewMirrorPayload(o))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, "ORD42", body["client_order_id"])
	assert.Equal(t, "cod", body["payment_method"])
	assert.Equal(t, float64(998), body["subtotal"])
	assert.Equal(t, float64(99), body["shipping_cost"])
	assert.Equal(t, float64(1097), body["total"])
	assert.Contains(t, body, "shipping_address")
	assert.Len(t, body["items"], 1)
}

func TestHTTPMirror_PostsJSON(t *testing.T) {
	var received MirrorPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"Order created successfully"}`))
	}))
	defer server.Close()

	m := NewHTTPMirror(HTTPMirrorConfig{URL: server.URL}, server.Client(), logger.Discard())
	err := m.Send(context.Background(), &MirrorPayload{ClientOrderID: "ORD7", Total: 599})
	require.NoError(t, err)
	assert.Equal(t, "ORD7", received.ClientOrderID)
	assert.Equal(t, int64(599), received.Total)
}

func TestHTTPMirror_ErrorStatusFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Invalid request data"}`))
	}))
	defer server.Close()

	m := NewHTTPMirror(HTTPMirrorConfig{URL: server.URL}, server.Client(), logger.Discard())
	err := m.Send(context.Background(), &MirrorPayload{ClientOrderID: "ORD7"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestHTTPMirror_BreakerOpens(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	m := NewHTTPMirror(HTTPMirrorConfig{URL: server.URL, BreakerFailures: 2, BreakerCooldown: time.Minute}, server.Client(), logger.Discard())
	ctx := context.Background()

	assert.Error(t, m.Send(ctx, &MirrorPayload{ClientOrderID: "ORD1"}))
	assert.Error(t, m.Send(ctx, &MirrorPayload{ClientOrderID: "ORD2"}))
	assert.Equal(t, gobreaker.StateOpen, m.State())

	err := m.Send(ctx, &MirrorPayload{ClientOrderID: "ORD3"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPMirror_UnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	m := NewHTTPMirror(HTTPMirrorConfig{URL: url}, nil, logger.Discard())
	assert.Error(t, m.Send(context.Background(), &MirrorPayload{ClientOrderID: "ORD1"}))
}

// fakeWriter records kafka messages
type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaMirror_Send(t *testing.T) {
	w := &fakeWriter{}
	m := &KafkaMirror{writer: w}

	require.NoError(t, m.Send(context.Background(), &MirrorPayload{ClientOrderID: "ORD9", Total: 1100}))
	require.Len(t, w.messages, 1)
	assert.Equal(t, "ORD9", string(w.messages[0].Key))

	var payload MirrorPayload
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &payload))
	assert.Equal(t, int64(1100), payload.Total)

	w.err = errors.New("leader not available")
	assert.Error(t, m.Send(context.Background(), &MirrorPayload{ClientOrderID: "ORD10"}))
}
