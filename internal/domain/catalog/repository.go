// internal/domain/catalog/repository.go
package catalog

import (
	"context"
	"errors"
	"strings"
)

// ErrProductNotFound is returned when no product matches the lookup
var ErrProductNotFound = errors.New("product not found")

// Repository is the read-only product source used by the cart and the HTTP layer
type Repository interface {
	FindByID(ctx context.Context, id string) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]Product, error)
	Categories(ctx context.Context) ([]CategorySummary, error)
}

// matches applies filter to a single product
func (f ListFilter) matches(p *Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Description), q) {
			return false
		}
	}
	return true
}

// summarize counts products per category, keeping every known category
func summarize(products []Product) []CategorySummary {
	counts := make(map[Category]int, len(Categories))
	for _, p := range products {
		counts[p.Category]++
	}

	summaries := make([]CategorySummary, 0, len(Categories))
	for _, c := range Categories {
		summaries = append(summaries, CategorySummary{
			Slug:  c,
			Name:  c.DisplayName(),
			Count: counts[c],
		})
	}
	return summaries
}
