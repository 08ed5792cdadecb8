// internal/domain/catalog/gorm_repository.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository reads products from Postgres
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM backed repository
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) FindByID(ctx context.Context, id string) (*Product, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormRepository) FindBySlug(ctx context.Context, slug string) (*Product, error) {
	return r.findOne(ctx, "slug = ?", strings.ToLower(slug))
}

func (r *GormRepository) findOne(ctx context.Context, query string, arg any) (*Product, error) {
	var p Product
	if err := r.db.WithContext(ctx).Where(query, arg).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	return &p, nil
}

func (r *GormRepository) List(ctx context.Context, filter ListFilter) ([]Product, error) {
	query := r.db.WithContext(ctx).Model(&Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	var products []Product
	// ids are numeric strings in the seed catalog; order by length first to keep 2 before 10
	if err := query.Order("LENGTH(id), id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *GormRepository) Categories(ctx context.Context) ([]CategorySummary, error) {
	var rows []struct {
		Category Category
		Count    int
	}
	err := r.db.WithContext(ctx).Model(&Product{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	counts := make(map[Category]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}

	summaries := make([]CategorySummary, 0, len(Categories))
	for _, c := range Categories {
		summaries = append(summaries, CategorySummary{Slug: c, Name: c.DisplayName(), Count: counts[c]})
	}
	return summaries, nil
}

// Seed upserts products, leaving existing rows with the same id untouched
func (r *GormRepository) Seed(ctx context.Context, products []Product) error {
	if len(products) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&products).Error
	if err != nil {
		return fmt.Errorf("failed to seed products: %w", err)
	}
	return nil
}
