package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/tshirt-store/internal/config"
	"github.com/your-org/tshirt-store/internal/domain/cart"
	"github.com/your-org/tshirt-store/internal/domain/catalog"
	"github.com/your-org/tshirt-store/internal/domain/order"
	"github.com/your-org/tshirt-store/internal/domain/orderstore"
	"github.com/your-org/tshirt-store/internal/domain/payment"
	"github.com/your-org/tshirt-store/internal/domain/user"
	"github.com/your-org/tshirt-store/internal/infrastructure/storage"
	"github.com/your-org/tshirt-store/internal/interfaces/http/handlers"
	"github.com/your-org/tshirt-store/internal/interfaces/http/routes"
	"github.com/your-org/tshirt-store/internal/pkg/auth"
	"github.com/your-org/tshirt-store/internal/pkg/logger"
	"github.com/your-org/tshirt-store/internal/pkg/pdf"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const razorpaySecret = "rzp_test_secret"

type fakeGateway struct {
	keyID  string
	err    error
	amount int64
}

func (f *fakeGateway) KeyID() string { return f.keyID }

func (f *fakeGateway) CreateGatewayOrder(_ context.Context, amountMinor int64, currency, receipt string, _ map[string]string) (*payment.GatewayOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.amount = amountMinor
	return &payment.GatewayOrder{ID: "order_test123", Entity: "order", Amount: amountMinor, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

type testApp struct {
	t          *testing.T
	handler    http.Handler
	jwt        *auth.JWTManager
	gateway    *fakeGateway
	dispatcher *order.Dispatcher
	store      *orderstore.Service
	session    string
	healthErr  error
}

type appOption func(*appSettings)

type appSettings struct {
	policy   order.MirrorPolicy
	mirror   order.Mirror
	products []catalog.Product
}

func withMirror(policy order.MirrorPolicy, mirror order.Mirror) appOption {
	return func(s *appSettings) {
		s.policy = policy
		s.mirror = mirror
	}
}

func withProducts(products []catalog.Product) appOption {
	return func(s *appSettings) { s.products = products }
}

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	cfg := &config.Config{
		App:    config.AppConfig{Name: "tshirt-store", Environment: "test", CompanyName: "The Shirt Unit"},
		Server: config.ServerConfig{Port: "0", RequestTimeout: 5 * time.Second},
		Shop:   config.ShopConfig{Currency: "INR", FreeShippingThreshold: 1000, FlatShippingRate: 99},
		JWT:    config.JWTConfig{Secret: "server-test-secret-long-enough-for-hs256", AccessTokenExpiry: time.Hour},
		Payment: config.PaymentConfig{
			KeyID:     "rzp_test_key",
			KeySecret: razorpaySecret,
		},
		Security: config.SecurityConfig{
			BcryptCost:         4,
			CORSAllowedOrigins: []string{"http://localhost:3000"},
			CORSAllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
			CORSAllowedHeaders: []string{"Content-Type", "Authorization"},
		},
	}
	log := logger.Discard()

	razorpay := payment.NewRazorpayService(cfg, log)
	store := orderstore.NewService(orderstore.NewMemoryRepository(), razorpay, cfg.Shop.Currency, log)
	settings := appSettings{
		policy: order.MirrorPolicy{Mode: order.MirrorNone},
		mirror: order.MirrorFunc(func(ctx context.Context, p *order.MirrorPayload) error {
			_, _, err := store.Create(ctx, nil, orderstore.CreateRequest{MirrorPayload: *p})
			return err
		}),
		products: catalog.SeedProducts(),
	}
	for _, opt := range opts {
		opt(&settings)
	}

	jwt := auth.NewJWTManager(cfg)
	kv := storage.NewMemoryKV()
	policy := cart.ShippingPolicy{FreeThreshold: cfg.Shop.FreeShippingThreshold, FlatRate: cfg.Shop.FlatShippingRate}
	products := catalog.NewMemoryRepository(settings.products)
	sessions := handlers.NewSessions(kv, time.Hour, false)
	gateway := &fakeGateway{keyID: cfg.Payment.KeyID}
	dispatcher := order.NewDispatcher(settings.mirror, settings.policy, time.Second, time.Millisecond, log)
	checkout := order.NewCheckout(razorpay, dispatcher, order.NewIDGenerator(), log)
	users := user.NewService(user.NewMemoryRepository(), auth.NewPasswordManager(cfg.Security.BcryptCost), jwt, log)

	cartHandler := handlers.NewCartHandler(products, sessions, policy, log)
	app := &testApp{
		t:          t,
		jwt:        jwt,
		gateway:    gateway,
		dispatcher: dispatcher,
		store:      store,
		session:    uuid.NewString(),
	}

	srv := NewServer(cfg, Dependencies{
		Handlers: &routes.Handlers{
			JWT:      jwt,
			Auth:     handlers.NewAuthHandler(users),
			Catalog:  handlers.NewCatalogHandler(products),
			Cart:     cartHandler,
			Checkout: handlers.NewCheckoutHandler(cartHandler, checkout, gateway, pdf.NewService(cfg), cfg.Shop.Currency, log),
			Orders:   handlers.NewOrderHandler(store),
			Admin:    handlers.NewAdminOrderHandler(store, log),
		},
		HealthChecks: map[string]HealthCheck{
			"storage": func(context.Context) error { return app.healthErr },
		},
	}, log)
	app.handler = srv.Handler()
	return app
}

type envelope struct {
	Message string          `json:"message"`
	Warning string          `json:"warning"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
	Data    json.RawMessage `json:"data"`
}

type response struct {
	*httptest.ResponseRecorder
	body envelope
}

func (r *response) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body.Data, v), r.Body.String())
}

func (a *testApp) do(method, path string, body any, headers ...string) *response {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", a.session)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)

	resp := &response{ResponseRecorder: w}
	if json.Valid(w.Body.Bytes()) {
		_ = json.Unmarshal(w.Body.Bytes(), &resp.body)
	}
	return resp
}

func (a *testApp) token(id uint, admin bool) string {
	a.t.Helper()
	token, err := a.jwt.GenerateAccessToken(id, "user@example.com", admin)
	require.NoError(a.t, err)
	return "Bearer " + token
}

func (a *testApp) addToCart(productID, size string) cart.Summary {
	a.t.Helper()
	resp := a.do(http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": productID, "size": size})
	require.Equal(a.t, http.StatusOK, resp.Code, resp.Body.String())
	var summary cart.Summary
	resp.decode(a.t, &summary)
	return summary
}

func address() order.ShippingAddress {
	return order.ShippingAddress{
		FullName: "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Address:  "12 MG Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560001",
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/ready", nil).Code)

	app.healthErr = errors.New("connection refused")
	resp := app.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Contains(t, resp.Body.String(), "connection refused")
	assert.Equal(t, http.StatusServiceUnavailable, app.do(http.MethodGet, "/ready", nil).Code)
}

func TestCatalogEndpoints(t *testing.T) {
	app := newTestApp(t)

	var products []catalog.Product
	resp := app.do(http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &products)
	assert.Len(t, products, 16)

	resp = app.do(http.MethodGet, "/api/v1/products?category=hoodies", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &products)
	assert.Len(t, products, 5)
	for _, p := range products {
		assert.Equal(t, catalog.CategoryHoodies, p.Category)
	}

	resp = app.do(http.MethodGet, "/api/v1/products?featured=true", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &products)
	assert.Len(t, products, 8)

	var product catalog.Product
	resp = app.do(http.MethodGet, "/api/v1/products/12", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &product)
	assert.Equal(t, "Black Premium Zip Hoodie", product.Name)

	resp = app.do(http.MethodGet, "/api/v1/products/slug/classic-black-half-sleeve-tee", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &product)
	assert.Equal(t, "1", product.ID)

	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/v1/products/999", nil).Code)

	var categories []catalog.CategorySummary
	resp = app.do(http.MethodGet, "/api/v1/categories", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &categories)
	assert.Len(t, categories, 3)
}

func TestCartFlow(t *testing.T) {
	app := newTestApp(t)

	summary := app.addToCart("1", "M")
	assert.Equal(t, int64(499), summary.Subtotal)
	assert.Equal(t, int64(99), summary.ShippingCost)
	assert.Equal(t, int64(598), summary.Total)

	summary = app.addToCart("1", "M")
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, int64(1097), summary.Total)

	summary = app.addToCart("12", "L")
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, int64(2497), summary.Subtotal)
	assert.Equal(t, int64(0), summary.ShippingCost)

	resp := app.do(http.MethodPut, "/api/v1/cart/items/1?size=M", gin.H{"quantity": 5})
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &summary)
	assert.Equal(t, 5, summary.Items[0].Quantity)

	resp = app.do(http.MethodPut, "/api/v1/cart/items/12?size=L", gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &summary)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, int64(2495), summary.Total)

	resp = app.do(http.MethodDelete, "/api/v1/cart/items/1?size=M", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &summary)
	assert.Empty(t, summary.Items)
	assert.Equal(t, int64(0), summary.ShippingCost)

	app.addToCart("2", "S")
	resp = app.do(http.MethodDelete, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = app.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &summary)
	assert.Empty(t, summary.Items)
	assert.Equal(t, int64(0), summary.Total)
}

func TestCart_SessionsAreIsolated(t *testing.T) {
	app := newTestApp(t)
	app.addToCart("1", "M")

	other := app.session
	app.session = uuid.NewString()

	var summary cart.Summary
	resp := app.do(http.MethodGet, "/api/v1/cart", nil)
	resp.decode(t, &summary)
	assert.Empty(t, summary.Items)

	app.session = other
	resp = app.do(http.MethodGet, "/api/v1/cart", nil)
	resp.decode(t, &summary)
	assert.Len(t, summary.Items, 1)
}

func TestCart_NewSessionIssuesCookie(t *testing.T) {
	app := newTestApp(t)
	app.session = ""

	resp := app.do(http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	issued := resp.Header().Get("X-Session-ID")
	_, err := uuid.Parse(issued)
	require.NoError(t, err)
	assert.Contains(t, resp.Header().Get("Set-Cookie"), "session_id="+issued)
}

func TestCart_Rejections(t *testing.T) {
	soldOut := catalog.Product{ID: "99", Name: "Sold Out Tee", Slug: "sold-out-tee", Category: catalog.CategoryHalfSleeve,
		Price: 399, Sizes: []string{"M"}, InStock: false}
	app := newTestApp(t, withProducts(append(catalog.SeedProducts(), soldOut)))

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown size", http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "1", "size": "XS"}, http.StatusBadRequest},
		{"out of stock", http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "99", "size": "M"}, http.StatusBadRequest},
		{"unknown product", http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "404", "size": "M"}, http.StatusNotFound},
		{"missing size", http.MethodPost, "/api/v1/cart/items", gin.H{"product_id": "1"}, http.StatusBadRequest},
		{"update without size", http.MethodPut, "/api/v1/cart/items/1", gin.H{"quantity": 2}, http.StatusBadRequest},
		{"update without quantity", http.MethodPut, "/api/v1/cart/items/1?size=M", gin.H{}, http.StatusBadRequest},
		{"remove without size", http.MethodDelete, "/api/v1/cart/items/1", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, app.do(tt.method, tt.path, tt.body).Code)
		})
	}

	var summary cart.Summary
	app.do(http.MethodGet, "/api/v1/cart", nil).decode(t, &summary)
	assert.Empty(t, summary.Items)
}

func TestCheckoutSummary(t *testing.T) {
	app := newTestApp(t)
	app.addToCart("1", "M")

	var summary handlers.CheckoutSummary
	resp := app.do(http.MethodGet, "/api/v1/checkout/summary", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &summary)

	assert.Equal(t, int64(598), summary.Total)
	assert.Equal(t, int64(59800), summary.AmountMinor)
	assert.Equal(t, int64(501), summary.AmountToFreeShipping)
	assert.Equal(t, "INR", summary.Currency)
	assert.Equal(t, "rzp_test_key", summary.RazorpayKeyID)
}

func TestCreatePaymentOrder(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, http.StatusConflict, app.do(http.MethodPost, "/api/v1/checkout/payment-order", nil).Code)

	app.addToCart("12", "M")
	resp := app.do(http.MethodPost, "/api/v1/checkout/payment-order", nil)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, int64(149900), app.gateway.amount)

	var data struct {
		Order payment.GatewayOrder `json:"order"`
		KeyID string               `json:"key_id"`
	}
	resp.decode(t, &data)
	assert.Equal(t, "order_test123", data.Order.ID)
	assert.Equal(t, "rzp_test_key", data.KeyID)

	app.gateway.err = payment.ErrGatewayNotConfigured
	assert.Equal(t, http.StatusServiceUnavailable, app.do(http.MethodPost, "/api/v1/checkout/payment-order", nil).Code)

	app.gateway.err = errors.New("gateway returned 500")
	assert.Equal(t, http.StatusBadGateway, app.do(http.MethodPost, "/api/v1/checkout/payment-order", nil).Code)
}

func TestPlaceOrder_CashOnDelivery(t *testing.T) {
	app := newTestApp(t)
	app.addToCart("1", "M")

	resp := app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": address(),
		"payment_method":   "cod",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.Empty(t, resp.body.Warning)

	var placed order.Order
	resp.decode(t, &placed)
	assert.Regexp(t, `^ORD\d+$`, placed.ID)
	assert.Equal(t, order.StatusPending, placed.Status)
	assert.Equal(t, int64(499), placed.Subtotal)
	assert.Equal(t, int64(99), placed.ShippingCost)
	assert.Equal(t, int64(598), placed.Total)

	var summary cart.Summary
	app.do(http.MethodGet, "/api/v1/cart", nil).decode(t, &summary)
	assert.Empty(t, summary.Items)

	var orders []order.Order
	resp = app.do(http.MethodGet, "/api/v1/checkout/orders", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &orders)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.ID, orders[0].ID)

	resp = app.do(http.MethodGet, "/api/v1/checkout/orders/"+placed.ID, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = app.do(http.MethodGet, "/api/v1/checkout/orders/"+placed.ID+"/invoice?format=html", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "INV-"+placed.ID)
	assert.Contains(t, resp.Header().Get("Content-Type"), "text/html")

	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/v1/checkout/orders/ORD1", nil).Code)

	app.dispatcher.Wait()
	var result orderstore.ListResult
	list, err := app.store.List(context.Background(), orderstore.ListFilter{})
	require.NoError(t, err)
	result = *list
	require.Len(t, result.Orders, 1)
	require.NotNil(t, result.Orders[0].ClientOrderID)
	assert.Equal(t, placed.ID, *result.Orders[0].ClientOrderID)
	require.NotEmpty(t, placed.IdempotencyKey)
	require.NotNil(t, result.Orders[0].IdempotencyKey)
	assert.Equal(t, placed.IdempotencyKey, *result.Orders[0].IdempotencyKey)
	assert.Equal(t, int64(598), result.Orders[0].Total)
}

func TestPlaceOrder_Razorpay(t *testing.T) {
	app := newTestApp(t)
	app.addToCart("12", "L")

	details := payment.Details{
		RazorpayPaymentID: "pay_29QQoUBi66xm2f",
		RazorpayOrderID:   "order_test123",
	}
	details.RazorpaySignature = payment.Sign(razorpaySecret, details.RazorpayOrderID, details.RazorpayPaymentID)

	bad := details
	bad.RazorpaySignature = "deadbeef"
	resp := app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": address(),
		"payment_method":   "razorpay",
		"payment_details":  bad,
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.Code)

	resp = app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": address(),
		"payment_method":   "razorpay",
		"payment_details":  details,
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var placed order.Order
	resp.decode(t, &placed)
	assert.Equal(t, order.StatusConfirmed, placed.Status)
	assert.Equal(t, int64(1499), placed.Total)
	assert.Equal(t, int64(0), placed.ShippingCost)
	require.NotNil(t, placed.PaymentDetails)
	assert.Equal(t, "pay_29QQoUBi66xm2f", placed.PaymentDetails.RazorpayPaymentID)

	app.dispatcher.Wait()
	rec, err := app.store.List(context.Background(), orderstore.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rec.Orders, 1)
	assert.Equal(t, orderstore.StatusConfirmed, rec.Orders[0].Status)
	assert.Equal(t, orderstore.PaymentStatusCompleted, rec.Orders[0].Payment.Status)
}

func TestPlaceOrder_Rejections(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": address(),
		"payment_method":   "cod",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)

	app.addToCart("1", "M")

	bad := address()
	bad.Pincode = "5600"
	bad.Email = "not-an-email"
	resp = app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": bad,
		"payment_method":   "cod",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	var details map[string]string
	require.NoError(t, json.Unmarshal(resp.body.Details, &details))
	assert.Contains(t, details, "pincode")
	assert.Contains(t, details, "email")

	resp = app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": address(),
		"payment_method":   "upi",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": address(),
		"payment_method":   "razorpay",
	})
	assert.Equal(t, http.StatusPaymentRequired, resp.Code)

	resp = app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{"payment_method": "cod"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var orders []order.Order
	app.do(http.MethodGet, "/api/v1/checkout/orders", nil).decode(t, &orders)
	assert.Empty(t, orders)

	var summary cart.Summary
	app.do(http.MethodGet, "/api/v1/cart", nil).decode(t, &summary)
	assert.Len(t, summary.Items, 1)
}

func TestPlaceOrder_RequiredMirrorFailureWarns(t *testing.T) {
	failing := order.MirrorFunc(func(context.Context, *order.MirrorPayload) error {
		return errors.New("order service unavailable")
	})
	app := newTestApp(t, withMirror(order.MirrorPolicy{Mode: order.MirrorRequired}, failing))
	app.addToCart("1", "M")

	resp := app.do(http.MethodPost, "/api/v1/checkout/orders", gin.H{
		"shipping_address": address(),
		"payment_method":   "cod",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.NotEmpty(t, resp.body.Warning)

	var orders []order.Order
	app.do(http.MethodGet, "/api/v1/checkout/orders", nil).decode(t, &orders)
	assert.Len(t, orders, 1)

	var summary cart.Summary
	app.do(http.MethodGet, "/api/v1/cart", nil).decode(t, &summary)
	assert.Empty(t, summary.Items)
}

func remoteOrder(clientID string) orderstore.CreateRequest {
	items := []cart.LineItem{{ProductID: "1", Variant: "M", Name: "Classic Black Half Sleeve Tee", UnitPrice: 499, Quantity: 2}}
	return orderstore.CreateRequest{MirrorPayload: order.MirrorPayload{
		ClientOrderID:   clientID,
		IdempotencyKey:  "key-" + clientID,
		Items:           items,
		ShippingAddress: address(),
		PaymentMethod:   order.PaymentMethodCOD,
		Subtotal:        998,
		ShippingCost:    99,
		Total:           1097,
	}}
}

func TestOrderStore_UnverifiedPaymentStaysPending(t *testing.T) {
	app := newTestApp(t)

	forged := remoteOrder("ORD1700000000009")
	forged.PaymentMethod = order.PaymentMethodRazorpay
	forged.PaymentDetails = &payment.Details{
		RazorpayPaymentID: "pay_FORGED",
		RazorpayOrderID:   "order_x",
		RazorpaySignature: "deadbeef",
	}

	resp := app.do(http.MethodPost, "/api/v1/orders", forged)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var rec orderstore.Record
	resp.decode(t, &rec)
	assert.Equal(t, orderstore.StatusPending, rec.Status)
	assert.Equal(t, orderstore.PaymentStatusPending, rec.Payment.Status)
	assert.Equal(t, "pay_FORGED", rec.Payment.TransactionID)
}

func TestOrderStoreEndpoints(t *testing.T) {
	app := newTestApp(t)
	shopper := app.token(7, false)

	resp := app.do(http.MethodPost, "/api/v1/orders", remoteOrder("ORD1700000000001"))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var anonymous orderstore.Record
	resp.decode(t, &anonymous)
	assert.Regexp(t, `^ORD-[0-9A-Z]+-[0-9A-Z]{4}$`, anonymous.OrderNumber)
	assert.Nil(t, anonymous.UserID)

	resp = app.do(http.MethodPost, "/api/v1/orders", remoteOrder("ORD1700000000001"))
	require.Equal(t, http.StatusOK, resp.Code)
	var replay orderstore.Record
	resp.decode(t, &replay)
	assert.Equal(t, anonymous.OrderNumber, replay.OrderNumber)

	bad := remoteOrder("ORD1700000000002")
	bad.Total = 1
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/api/v1/orders", bad).Code)

	resp = app.do(http.MethodPost, "/api/v1/orders", remoteOrder("ORD1700000000003"), "Authorization", shopper)
	require.Equal(t, http.StatusCreated, resp.Code)
	var owned orderstore.Record
	resp.decode(t, &owned)
	require.NotNil(t, owned.UserID)
	assert.Equal(t, uint(7), *owned.UserID)

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/v1/orders", nil).Code)

	var page orderstore.ListResult
	resp = app.do(http.MethodGet, "/api/v1/orders", nil, "Authorization", shopper)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &page)
	require.Len(t, page.Orders, 1)
	assert.Equal(t, owned.OrderNumber, page.Orders[0].OrderNumber)

	assert.Equal(t, http.StatusOK, app.do(http.MethodGet, "/api/v1/orders/"+owned.OrderNumber, nil, "Authorization", shopper).Code)
	assert.Equal(t, http.StatusNotFound, app.do(http.MethodGet, "/api/v1/orders/"+anonymous.OrderNumber, nil, "Authorization", shopper).Code)
	assert.Equal(t, http.StatusNotFound,
		app.do(http.MethodGet, "/api/v1/orders/"+owned.OrderNumber, nil, "Authorization", app.token(8, false)).Code)
}

func TestAdminEndpoints(t *testing.T) {
	app := newTestApp(t)
	admin := app.token(1, true)

	resp := app.do(http.MethodPost, "/api/v1/orders", remoteOrder("ORD1700000000010"))
	require.Equal(t, http.StatusCreated, resp.Code)
	var rec orderstore.Record
	resp.decode(t, &rec)

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/v1/admin/orders", nil).Code)
	assert.Equal(t, http.StatusForbidden, app.do(http.MethodGet, "/api/v1/admin/orders", nil, "Authorization", app.token(2, false)).Code)

	var page orderstore.ListResult
	resp = app.do(http.MethodGet, "/api/v1/admin/orders?status=pending", nil, "Authorization", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	resp.decode(t, &page)
	assert.Equal(t, int64(1), page.Total)

	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/v1/admin/orders?status=lost", nil, "Authorization", admin).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodGet, "/api/v1/admin/orders?user_id=abc", nil, "Authorization", admin).Code)

	statusPath := "/api/v1/admin/orders/" + rec.OrderNumber + "/status"
	resp = app.do(http.MethodPut, statusPath, gin.H{"status": "shipped"}, "Authorization", admin)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = app.do(http.MethodPut, statusPath, gin.H{"status": "confirmed"}, "Authorization", admin)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var updated orderstore.Record
	resp.decode(t, &updated)
	assert.Equal(t, orderstore.StatusConfirmed, updated.Status)

	resp = app.do(http.MethodGet, "/api/v1/admin/orders/"+rec.OrderNumber, nil, "Authorization", admin)
	require.Equal(t, http.StatusOK, resp.Code)

	assert.Equal(t, http.StatusNotFound,
		app.do(http.MethodPut, "/api/v1/admin/orders/ORD-NOPE-0000/status", gin.H{"status": "confirmed"}, "Authorization", admin).Code)

	resp = app.do(http.MethodGet, "/api/v1/admin/orders/export", nil, "Authorization", admin)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Header().Get("Content-Disposition"), ".xlsx")
	assert.NotZero(t, resp.Body.Len())
}

func TestAuthEndpoints(t *testing.T) {
	app := newTestApp(t)

	register := gin.H{
		"email":            "Asha@Example.com",
		"password":         "Cotton#Tee42",
		"confirm_password": "Cotton#Tee42",
		"first_name":       "Asha",
		"last_name":        "Rao",
	}
	resp := app.do(http.MethodPost, "/api/v1/auth/register", register)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var registered user.AuthResponse
	resp.decode(t, &registered)
	assert.NotEmpty(t, registered.AccessToken)
	assert.Equal(t, "asha@example.com", registered.User.Email)

	assert.Equal(t, http.StatusConflict, app.do(http.MethodPost, "/api/v1/auth/register", register).Code)

	mismatch := gin.H{"email": "b@example.com", "password": "Cotton#Tee42", "confirm_password": "Other!Pass1", "first_name": "B", "last_name": "C"}
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/api/v1/auth/register", mismatch).Code)

	weak := gin.H{"email": "c@example.com", "password": "short", "confirm_password": "short", "first_name": "C", "last_name": "D"}
	assert.Equal(t, http.StatusBadRequest, app.do(http.MethodPost, "/api/v1/auth/register", weak).Code)

	resp = app.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "asha@example.com", "password": "Cotton#Tee42"})
	require.Equal(t, http.StatusOK, resp.Code)
	var login user.AuthResponse
	resp.decode(t, &login)

	assert.Equal(t, http.StatusUnauthorized,
		app.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "asha@example.com", "password": "Wrong!Pass1"}).Code)

	resp = app.do(http.MethodGet, "/api/v1/auth/me", nil, "Authorization", "Bearer "+login.AccessToken)
	require.Equal(t, http.StatusOK, resp.Code)
	var me user.User
	resp.decode(t, &me)
	assert.Equal(t, "Asha", me.FirstName)
	assert.NotContains(t, resp.Body.String(), "password")

	assert.Equal(t, http.StatusUnauthorized, app.do(http.MethodGet, "/api/v1/auth/me", nil).Code)
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	app := newTestApp(t)

	resp := app.do(http.MethodGet, "/api/v1/categories", nil)
	assert.Equal(t, "DENY", resp.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header().Get("X-Request-ID"))
}
