// internal/domain/orderstore/memory_repository.go
package orderstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository keeps records in process. It backs tests and local runs without a database.
type MemoryRepository struct {
	mu      sync.RWMutex
	records []Record
	nextID  uint
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.records {
		if existing.OrderNumber == rec.OrderNumber {
			return ErrDuplicateOrder
		}
		if rec.IdempotencyKey != nil && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *rec.IdempotencyKey {
			return ErrDuplicateOrder
		}
	}

	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, cloneRecord(*rec))
	return nil
}

func (m *MemoryRepository) FindByNumber(_ context.Context, number string) (*Record, error) {
	return m.find(func(r *Record) bool { return r.OrderNumber == number })
}

func (m *MemoryRepository) FindByIdempotencyKey(_ context.Context, key string) (*Record, error) {
	return m.find(func(r *Record) bool { return r.IdempotencyKey != nil && *r.IdempotencyKey == key })
}

func (m *MemoryRepository) find(match func(*Record) bool) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.records {
		if match(&m.records[i]) {
			rec := cloneRecord(m.records[i])
			return &rec, nil
		}
	}
	return nil, ErrOrderNotFound
}

func (m *MemoryRepository) List(_ context.Context, filter ListFilter) ([]Record, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []Record
	for _, rec := range m.records {
		if filter.UserID != nil && (rec.UserID == nil || *rec.UserID != *filter.UserID) {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneRecord(rec))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := filter.offset()
	if start >= len(matched) {
		return []Record{}, total, nil
	}
	end := start + filter.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (m *MemoryRepository) UpdateStatus(_ context.Context, number string, from Status, change StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.records {
		rec := &m.records[i]
		if rec.OrderNumber != number {
			continue
		}
		if rec.Status != from {
			return ErrStatusConflict
		}
		rec.Status = change.Status
		rec.TrackingNumber = change.TrackingNumber
		rec.CancelReason = change.CancelReason
		rec.DeliveredAt = change.DeliveredAt
		rec.CancelledAt = change.CancelledAt
		rec.UpdatedAt = change.UpdatedAt
		return nil
	}
	return ErrStatusConflict
}

func cloneRecord(r Record) Record {
	r.Items = append([]Item(nil), r.Items...)
	return r
}
