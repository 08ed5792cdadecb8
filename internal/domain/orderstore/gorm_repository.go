// internal/domain/orderstore/gorm_repository.go
package orderstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GormRepository stores records in Postgres.
// The *gorm.DB must be opened with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM backed repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, rec *Record) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("failed to create order record: %w", err)
	}
	return nil
}

func (r *GormRepository) FindByNumber(ctx context.Context, number string) (*Record, error) {
	return r.findOne(ctx, "order_number = ?", number)
}

func (r *GormRepository) FindByIdempotencyKey(ctx context.Context, key string) (*Record, error) {
	return r.findOne(ctx, "idempotency_key = ?", key)
}

func (r *GormRepository) findOne(ctx context.Context, query string, arg any) (*Record, error) {
	var rec Record
	if err := r.db.WithContext(ctx).Where(query, arg).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order record: %w", err)
	}
	return &rec, nil
}

func (r *GormRepository) List(ctx context.Context, filter ListFilter) ([]Record, int64, error) {
	query := r.db.WithContext(ctx).Model(&Record{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count order records: %w", err)
	}

	var records []Record
	err := query.Order("created_at DESC, id DESC").
		Offset(filter.offset()).
		Limit(filter.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list order records: %w", err)
	}
	return records, total, nil
}

func (r *GormRepository) UpdateStatus(ctx context.Context, number string, from Status, change StatusChange) error {
	updates := map[string]interface{}{
		"status":          change.Status,
		"tracking_number": change.TrackingNumber,
		"cancel_reason":   change.CancelReason,
		"delivered_at":    change.DeliveredAt,
		"cancelled_at":    change.CancelledAt,
		"updated_at":      change.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Model(&Record{}).
		Where("order_number = ? AND status = ?", number, from).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
