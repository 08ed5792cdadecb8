// internal/domain/cart/engine.go
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/your-org/tshirt-store/internal/domain/catalog"
)

var (
	// ErrUnknownSize is returned when the product is not offered in the requested size
	ErrUnknownSize = errors.New("size not available for this product")
	// ErrOutOfStock is returned when the product cannot currently be bought
	ErrOutOfStock = errors.New("product is out of stock")
)

// ValidateSelection checks that a product can be added in the given size
func ValidateSelection(product *catalog.Product, size string) error {
	if !product.InStock {
		return ErrOutOfStock
	}
	if !product.HasSize(size) {
		return fmt.Errorf("%w: %s", ErrUnknownSize, size)
	}
	return nil
}

// Engine owns one shopper's line items. It is not safe for concurrent use;
// a session has a single writer.
//
// Every mutation persists the whole collection before the in-memory state
// changes, so a failed write leaves the engine as it was.
type Engine struct {
	store     *Store
	policy    ShippingPolicy
	items     []LineItem
	observers []Observer
}

// NewEngine loads the persisted cart and returns an engine over it
func NewEngine(ctx context.Context, store *Store, policy ShippingPolicy, observers ...Observer) (*Engine, error) {
	items, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{
		store:     store,
		policy:    policy,
		items:     items,
		observers: observers,
	}, nil
}

// Subscribe registers an observer for subsequent mutations
func (e *Engine) Subscribe(o Observer) {
	e.observers = append(e.observers, o)
}

// Items returns a copy of the line items in insertion order
func (e *Engine) Items() []LineItem {
	return cloneItems(e.items)
}

// Aggregates recomputes item count and subtotal
func (e *Engine) Aggregates() Aggregates {
	return ComputeAggregates(e.items)
}

// ComputeShippingCost applies the engine's shipping policy to subtotal
func (e *Engine) ComputeShippingCost(subtotal int64) int64 {
	return e.policy.ComputeShippingCost(subtotal)
}

// Summary prices the current cart
func (e *Engine) Summary() Summary {
	return e.policy.Price(e.Items())
}

// IsEmpty reports whether the cart has no line items
func (e *Engine) IsEmpty() bool {
	return len(e.items) == 0
}

// AddItem increments the quantity of an existing product and variant pair,
// or appends a new line with quantity 1 and the product's current price.
func (e *Engine) AddItem(ctx context.Context, product *catalog.Product, variant string) error {
	next := cloneItems(e.items)

	found := false
	for i := range next {
		if next[i].matches(product.ID, variant) {
			next[i].Quantity++
			found = true
			break
		}
	}
	if !found {
		next = append(next, LineItem{
			ProductID: product.ID,
			Variant:   variant,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  1,
			Images:    append([]string(nil), product.Images...),
			InStock:   product.InStock,
		})
	}

	return e.commit(ctx, next, EventItemAdded, product.ID, variant)
}

// RemoveItem deletes the matching line. Absent lines are a no-op.
func (e *Engine) RemoveItem(ctx context.Context, productID, variant string) error {
	idx := e.indexOf(productID, variant)
	if idx < 0 {
		return nil
	}

	next := make([]LineItem, 0, len(e.items)-1)
	next = append(next, e.items[:idx]...)
	next = append(next, e.items[idx+1:]...)

	return e.commit(ctx, cloneItems(next), EventItemRemoved, productID, variant)
}

// UpdateQuantity sets the quantity exactly. Zero or less removes the line.
func (e *Engine) UpdateQuantity(ctx context.Context, productID, variant string, quantity int) error {
	if quantity <= 0 {
		return e.RemoveItem(ctx, productID, variant)
	}

	idx := e.indexOf(productID, variant)
	if idx < 0 {
		return nil
	}

	next := cloneItems(e.items)
	next[idx].Quantity = quantity

	return e.commit(ctx, next, EventQuantityUpdated, productID, variant)
}

// Clear empties the cart and removes the persisted record
func (e *Engine) Clear(ctx context.Context) error {
	if err := e.store.Delete(ctx); err != nil {
		return err
	}
	e.items = nil
	e.notify(Event{Kind: EventCleared})
	return nil
}

func (e *Engine) indexOf(productID, variant string) int {
	for i := range e.items {
		if e.items[i].matches(productID, variant) {
			return i
		}
	}
	return -1
}

func (e *Engine) commit(ctx context.Context, next []LineItem, kind EventKind, productID, variant string) error {
	if err := e.store.Save(ctx, next); err != nil {
		return err
	}
	e.items = next
	e.notify(Event{Kind: kind, ProductID: productID, Variant: variant})
	return nil
}

func (e *Engine) notify(ev Event) {
	if len(e.observers) == 0 {
		return
	}
	ev.Items = e.Items()
	ev.Aggregates = e.Aggregates()
	for _, o := range e.observers {
		o(ev)
	}
}
