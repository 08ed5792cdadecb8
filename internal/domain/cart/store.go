// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tshirt-store/internal/infrastructure/storage"
)

// recordKey is the session record holding the serialized line items
const recordKey = "cart"

// Store persists a session's line items as one JSON record
type Store struct {
	kv     storage.KV
	logger *logrus.Logger
}

// NewStore creates a cart store over a session scoped KV
func NewStore(kv storage.KV, logger *logrus.Logger) *Store {
	return &Store{
		kv:     kv,
		logger: logger,
	}
}

// Load returns the persisted items. A missing or unreadable record reads as an empty cart.
func (s *Store) Load(ctx context.Context) ([]LineItem, error) {
	data, err := s.kv.Get(ctx, recordKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.WithError(err).Warn("Discarding unreadable cart record")
		return nil, nil
	}
	return items, nil
}

// Save overwrites the record with items
func (s *Store) Save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.kv.Set(ctx, recordKey, data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the record entirely
func (s *Store) Delete(ctx context.Context) error {
	if err := s.kv.Delete(ctx, recordKey); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
