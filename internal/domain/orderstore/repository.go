// internal/domain/orderstore/repository.go
package orderstore

import (
	"context"
	"errors"
)

var (
	// ErrOrderNotFound is returned when no record matches
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateOrder is returned when the order number or idempotency key already exists
	ErrDuplicateOrder = errors.New("order already exists")
	// ErrStatusConflict is returned when the record changed status underneath an update
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// Repository persists order records
type Repository interface {
	Create(ctx context.Context, rec *Record) error
	FindByNumber(ctx context.Context, number string) (*Record, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*Record, error)
	// List returns one page, newest first, and the total matching count
	List(ctx context.Context, filter ListFilter) ([]Record, int64, error)
	// UpdateStatus applies change only while the record still has status from
	UpdateStatus(ctx context.Context, number string, from Status, change StatusChange) error
}
