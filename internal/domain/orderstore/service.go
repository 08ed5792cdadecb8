// internal/domain/orderstore/service.go
package orderstore

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/domain/order"
)

var (
	// ErrInvalidOrder wraps every create validation failure
	ErrInvalidOrder = errors.New("invalid order")
	// ErrInvalidTransition is returned for status moves the lifecycle does not allow
	ErrInvalidTransition = errors.New("invalid status transition")
)

const (
	numberAlphabet       = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxIdempotencyKeyLen = 64
)

// Service is the remote order store
type Service struct {
	repo      Repository
	verifier  order.PaymentVerifier
	currency  string
	logger    *logrus.Logger
	now       func() time.Time
	newNumber func(time.Time) string
}

// NewService creates a new order store service. Payment details are only
// trusted once verifier accepts them; a nil verifier trusts none.
func NewService(repo Repository, verifier order.PaymentVerifier, currency string, logger *logrus.Logger) *Service {
	if currency == "" {
		currency = "INR"
	}
	return &Service{
		repo:      repo,
		verifier:  verifier,
		currency:  strings.ToUpper(currency),
		logger:    logger,
		now:       time.Now,
		newNumber: generateOrderNumber,
	}
}

// generateOrderNumber formats ORD-<base36 unix ms>-<4 random base36 chars>
func generateOrderNumber(t time.Time) string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = numberAlphabet[rand.Intn(len(numberAlphabet))]
	}
	return fmt.Sprintf("ORD-%s-%s", strings.ToUpper(strconv.FormatInt(t.UnixMilli(), 36)), suffix)
}

// Create validates and stores an order. An order carrying an idempotency key
// that was already stored is returned as is with created set to false.
// Razorpay orders are confirmed only when their payment details verify.
func (s *Service) Create(ctx context.Context, userID *uint, req CreateRequest) (rec *Record, created bool, err error) {
	if err := s.validateCreate(&req); err != nil {
		return nil, false, err
	}

	key := strings.TrimSpace(req.IdempotencyKey)
	if key != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, key)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrOrderNotFound) {
			return nil, false, err
		}
	}

	clientID := strings.TrimSpace(req.ClientOrderID)
	rec = s.buildRecord(userID, clientID, req, s.paymentVerified(clientID, req))
	if key != "" {
		rec.IdempotencyKey = &key
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		// lost a race with another delivery of the same order
		if errors.Is(err, ErrDuplicateOrder) && key != "" {
			if existing, findErr := s.repo.FindByIdempotencyKey(ctx, key); findErr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number":    rec.OrderNumber,
		"client_order_id": clientID,
		"status":          rec.Status,
		"total":           rec.Total,
	}).Info("Order stored")

	return rec, true, nil
}

func (s *Service) validateCreate(req *CreateRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrInvalidOrder)
	}

	var subtotal int64
	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return fmt.Errorf("%w: item %d has no product id", ErrInvalidOrder, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidOrder, i)
		}
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: item %d price cannot be negative", ErrInvalidOrder, i)
		}
		subtotal += item.LineTotal()
	}

	if req.Subtotal != subtotal {
		return fmt.Errorf("%w: subtotal %d does not match items total %d", ErrInvalidOrder, req.Subtotal, subtotal)
	}
	if req.ShippingCost < 0 || req.Tax < 0 {
		return fmt.Errorf("%w: shipping cost and tax cannot be negative", ErrInvalidOrder)
	}
	if want := req.Subtotal + req.ShippingCost + req.Tax; req.Total != want {
		return fmt.Errorf("%w: total %d does not equal subtotal + shipping + tax (%d)", ErrInvalidOrder, req.Total, want)
	}

	switch req.PaymentMethod {
	case order.PaymentMethodRazorpay, order.PaymentMethodCOD:
	default:
		return fmt.Errorf("%w: unsupported payment method %q", ErrInvalidOrder, req.PaymentMethod)
	}

	if len(strings.TrimSpace(req.IdempotencyKey)) > maxIdempotencyKeyLen {
		return fmt.Errorf("%w: idempotency key longer than %d characters", ErrInvalidOrder, maxIdempotencyKeyLen)
	}

	req.ShippingAddress.Normalize()
	if err := order.ValidateAddress(req.ShippingAddress); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOrder, err)
	}
	return nil
}

// paymentVerified reports whether req carries gateway details that verify
func (s *Service) paymentVerified(clientID string, req CreateRequest) bool {
	d := req.PaymentDetails
	if req.PaymentMethod != order.PaymentMethodRazorpay || d == nil || d.RazorpayPaymentID == "" {
		return false
	}
	if s.verifier == nil {
		return false
	}
	if err := s.verifier.Verify(d); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"client_order_id":     clientID,
			"razorpay_payment_id": d.RazorpayPaymentID,
		}).Warn("Payment details did not verify, order kept pending")
		return false
	}
	return true
}

func (s *Service) buildRecord(userID *uint, clientID string, req CreateRequest, paid bool) *Record {
	now := s.now().UTC()

	items := make([]Item, len(req.Items))
	for i, li := range req.Items {
		items[i] = Item{
			ProductID: li.ProductID,
			Name:      li.Name,
			Size:      li.Variant,
			Price:     li.UnitPrice,
			Quantity:  li.Quantity,
		}
		if len(li.Images) > 0 {
			items[i].Image = li.Images[0]
		}
	}

	currency := s.currency
	if req.Currency != "" {
		currency = strings.ToUpper(req.Currency)
	}

	payment := PaymentInfo{
		Method:   req.PaymentMethod,
		Status:   PaymentStatusPending,
		Amount:   req.Total,
		Currency: currency,
	}
	status := StatusPending
	if d := req.PaymentDetails; d != nil && d.RazorpayPaymentID != "" {
		payment.TransactionID = d.RazorpayPaymentID
		payment.GatewayOrderID = d.RazorpayOrderID
	}
	if paid {
		payment.Status = PaymentStatusCompleted
		status = StatusConfirmed
	}

	addr := req.ShippingAddress
	rec := &Record{
		OrderNumber: s.newNumber(now),
		UserID:      userID,
		Items:       items,
		ShippingAddress: Address{
			FullName: addr.FullName,
			Email:    addr.Email,
			Phone:    addr.Phone,
			Address:  addr.Address,
			City:     addr.City,
			State:    addr.State,
			Pincode:  addr.Pincode,
		},
		Payment:      payment,
		Subtotal:     req.Subtotal,
		ShippingCost: req.ShippingCost,
		Tax:          req.Tax,
		Total:        req.Total,
		Status:       status,
		Notes:        strings.TrimSpace(req.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if clientID != "" {
		rec.ClientOrderID = &clientID
	}
	return rec
}

// Get returns the record with the given order number
func (s *Service) Get(ctx context.Context, number string) (*Record, error) {
	return s.repo.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
}

// GetForUser returns the record only when it belongs to userID
func (s *Service) GetForUser(ctx context.Context, number string, userID uint) (*Record, error) {
	rec, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if rec.UserID == nil || *rec.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return rec, nil
}

// List returns a page of records, newest first
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	filter.normalize()
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidOrder, filter.Status)
	}

	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []Record{}
	}

	totalPages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &ListResult{
		Orders:     records,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
	}, nil
}

// UpdateStatus moves an order to a new status if the lifecycle allows it
func (s *Service) UpdateStatus(ctx context.Context, number string, update StatusUpdate) (*Record, error) {
	if !update.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, update.Status)
	}

	rec, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}

	if !isValidStatusTransition(rec.Status, update.Status) {
		return nil, fmt.Errorf("%w from %s to %s", ErrInvalidTransition, rec.Status, update.Status)
	}

	now := s.now().UTC()
	change := StatusChange{
		Status:         update.Status,
		TrackingNumber: rec.TrackingNumber,
		CancelReason:   rec.CancelReason,
		DeliveredAt:    rec.DeliveredAt,
		CancelledAt:    rec.CancelledAt,
		UpdatedAt:      now,
	}

	switch update.Status {
	case StatusShipped:
		if t := strings.TrimSpace(update.TrackingNumber); t != "" {
			change.TrackingNumber = t
		}
	case StatusDelivered:
		change.DeliveredAt = &now
	case StatusCancelled:
		change.CancelledAt = &now
		change.CancelReason = strings.TrimSpace(update.Reason)
	}

	if err := s.repo.UpdateStatus(ctx, rec.OrderNumber, rec.Status, change); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": rec.OrderNumber,
		"from":         rec.Status,
		"to":           update.Status,
	}).Info("Order status updated")

	rec.Status = change.Status
	rec.TrackingNumber = change.TrackingNumber
	rec.CancelReason = change.CancelReason
	rec.DeliveredAt = change.DeliveredAt
	rec.CancelledAt = change.CancelledAt
	rec.UpdatedAt = change.UpdatedAt
	return rec, nil
}

func isValidStatusTransition(from, to Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending: {
			StatusConfirmed,
			StatusCancelled,
		},
		StatusConfirmed: {
			StatusProcessing,
			StatusCancelled,
		},
		StatusProcessing: {
			StatusShipped,
			StatusCancelled,
		},
		StatusShipped: {
			StatusDelivered,
		},
		StatusDelivered: {
			StatusRefunded,
		},
		StatusCancelled: {
			StatusRefunded,
		},
	}

	allowedStatuses, exists := validTransitions[from]
	if !exists {
		return false
	}

	for _, status := range allowedStatuses {
		if status == to {
			return true
		}
	}
	return false
}
