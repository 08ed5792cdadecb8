// internal/domain/catalog/entity.go
package catalog

import (
	"slices"
	"time"
)

// Category is one of the storefront's product lines
type Category string

const (
	CategoryHalfSleeve Category = "half-sleeve"
	CategoryFullSleeve Category = "full-sleeve"
	CategoryHoodies    Category = "hoodies"
)

// Categories lists every category in display order
var Categories = []Category{CategoryHalfSleeve, CategoryFullSleeve, CategoryHoodies}

// DisplayName returns the human readable category name
func (c Category) DisplayName() string {
	switch c {
	case CategoryHalfSleeve:
		return "Half Sleeve T-Shirts"
	case CategoryFullSleeve:
		return "Full Sleeve T-Shirts"
	case CategoryHoodies:
		return "Hoodies"
	default:
		return string(c)
	}
}

// Product represents a catalog entry. Prices are whole currency units.
type Product struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Name         string    `gorm:"not null;size:255" json:"name"`
	Slug         string    `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Category     Category  `gorm:"index;not null;size:32" json:"category"`
	Price        int64     `gorm:"not null" json:"price"`
	ComparePrice int64     `json:"compare_price,omitempty"`
	Description  string    `gorm:"type:text" json:"description"`
	Images       []string  `gorm:"serializer:json" json:"images"`
	Sizes        []string  `gorm:"serializer:json" json:"sizes"`
	Colors       []string  `gorm:"serializer:json" json:"colors,omitempty"`
	InStock      bool      `gorm:"default:true" json:"in_stock"`
	Featured     bool      `gorm:"index;default:false" json:"featured"`
	Rating       float64   `json:"rating,omitempty"`
	Reviews      int       `json:"reviews,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the table name
func (Product) TableName() string {
	return "products"
}

// HasSize reports whether the product is offered in the given size
func (p *Product) HasSize(size string) bool {
	return slices.Contains(p.Sizes, size)
}

// DiscountPercentage is the saving against the compare price, rounded down
func (p *Product) DiscountPercentage() int {
	if p.ComparePrice <= p.Price {
		return 0
	}
	return int((p.ComparePrice - p.Price) * 100 / p.ComparePrice)
}

// CategorySummary is a category with the number of products in it
type CategorySummary struct {
	Slug  Category `json:"slug"`
	Name  string   `json:"name"`
	Count int      `json:"count"`
}

// ListFilter narrows a product listing. Zero values match everything.
type ListFilter struct {
	Category Category `form:"category"`
	Featured *bool    `form:"featured"`
	Query    string   `form:"q"`
}
