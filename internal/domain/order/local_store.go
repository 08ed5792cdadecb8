// internal/domain/order/local_store.go
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/infrastructure/storage"
)

// recordKey is the session record holding the order list
const recordKey = "orders"

// LocalStore is the session's authoritative order list, stored as one JSON record
type LocalStore struct {
	kv     storage.KV
	logger *logrus.Logger
}

// NewLocalStore creates an order list over a session scoped KV
func NewLocalStore(kv storage.KV, logger *logrus.Logger) *LocalStore {
	return &LocalStore{
		kv:     kv,
		logger: logger,
	}
}

// List returns every order placed in the session, oldest first
func (s *LocalStore) List(ctx context.Context) ([]Order, error) {
	data, err := s.kv.Get(ctx, recordKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []Order{}, nil
		}
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}

	var orders []Order
	if err := json.Unmarshal(data, &orders); err != nil {
		s.logger.WithError(err).Warn("Discarding unreadable order list")
		return []Order{}, nil
	}
	return orders, nil
}

// Get returns one order by id
func (s *LocalStore) Get(ctx context.Context, id string) (*Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// Append adds o to the list and overwrites the record
func (s *LocalStore) Append(ctx context.Context, o *Order) error {
	orders, err := s.List(ctx)
	if err != nil {
		return err
	}
	orders = append(orders, *o)

	data, err := json.Marshal(orders)
	if err != nil {
		return fmt.Errorf("failed to encode orders: %w", err)
	}
	if err := s.kv.Set(ctx, recordKey, data); err != nil {
		return fmt.Errorf("failed to save orders: %w", err)
	}
	return nil
}

// IDGenerator issues ORD<unix-ms> identifiers that strictly increase within the process
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator on the wall clock
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{now: time.Now}
}

// Next returns a fresh order id. Two calls in the same millisecond get consecutive values.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return fmt.Sprintf("ORD%d", ms)
}
