// internal/domain/catalog/fixtures.go
package catalog

import (
	"context"
	"strings"
)

var standardSizes = []string{"S", "M", "L", "XL", "XXL"}

// SeedProducts returns the storefront's launch catalog. Callers get a fresh copy.
func SeedProducts() []Product {
	seed := []Product{
		// Half sleeve
		{ID: "1", Name: "Classic Black Half Sleeve Tee", Slug: "classic-black-half-sleeve-tee", Category: CategoryHalfSleeve,
			Price: 499, ComparePrice: 799, Images: []string{"/images/products/half-sleeve/half-sleeve-1.avif"},
			Description: "Premium 100% cotton half sleeve t-shirt in classic black.",
			Colors:      []string{"Black"}, InStock: true, Featured: true, Rating: 4.7, Reviews: 156},
		{ID: "2", Name: "Minimal White Half Sleeve Tee", Slug: "minimal-white-half-sleeve-tee", Category: CategoryHalfSleeve,
			Price: 449, ComparePrice: 699, Images: []string{"/images/products/half-sleeve/half-sleeve-2.avif"},
			Description: "Clean white half sleeve t-shirt in soft, breathable fabric.",
			Colors:      []string{"White"}, InStock: true, Featured: true, Rating: 4.6, Reviews: 132},
		{ID: "3", Name: "Graphic Print Half Sleeve Tee", Slug: "graphic-print-half-sleeve-tee", Category: CategoryHalfSleeve,
			Price: 599, ComparePrice: 899, Images: []string{"/images/products/half-sleeve/half-sleeve-3.avif"},
			Description: "Half sleeve t-shirt with a bold graphic print.",
			InStock:     true, Rating: 4.4, Reviews: 98},
		{ID: "4", Name: "Urban Style Half Sleeve Tee", Slug: "urban-style-half-sleeve-tee", Category: CategoryHalfSleeve,
			Price: 549, ComparePrice: 799, Images: []string{"/images/products/half-sleeve/half-sleeve-4.avif"},
			Description: "Street style half sleeve t-shirt for casual outings.",
			InStock:     true, Rating: 4.5, Reviews: 87},
		{ID: "5", Name: "Premium Cotton Half Sleeve Tee", Slug: "premium-cotton-half-sleeve-tee", Category: CategoryHalfSleeve,
			Price: 649, ComparePrice: 999, Images: []string{"/images/products/half-sleeve/half-sleeve-5.avif"},
			Description: "Heavyweight premium cotton half sleeve t-shirt.",
			InStock:     true, Featured: true, Rating: 4.8, Reviews: 201},
		{ID: "6", Name: "Sporty Half Sleeve Tee", Slug: "sporty-half-sleeve-tee", Category: CategoryHalfSleeve,
			Price: 499, ComparePrice: 749, Images: []string{"/images/products/half-sleeve/half-sleeve-6.avif"},
			Description: "Athletic fit half sleeve t-shirt for workouts.",
			InStock:     true, Rating: 4.3, Reviews: 76},

		// Full sleeve
		{ID: "7", Name: "Classic White Full Sleeve", Slug: "classic-white-full-sleeve", Category: CategoryFullSleeve,
			Price: 799, ComparePrice: 1099, Images: []string{"/images/products/full-sleeve/full-sleeve-1.avif"},
			Description: "Crisp white full sleeve t-shirt in combed cotton.",
			Colors:      []string{"White"}, InStock: true, Featured: true, Rating: 4.6, Reviews: 143},
		{ID: "8", Name: "Essential Black Full Sleeve", Slug: "essential-black-full-sleeve", Category: CategoryFullSleeve,
			Price: 799, ComparePrice: 1099, Images: []string{"/images/products/full-sleeve/full-sleeve-2.avif"},
			Description: "Everyday black full sleeve t-shirt.",
			Colors:      []string{"Black"}, InStock: true, Featured: true, Rating: 4.7, Reviews: 167},
		{ID: "9", Name: "Navy Blue Full Sleeve", Slug: "navy-blue-full-sleeve", Category: CategoryFullSleeve,
			Price: 849, ComparePrice: 1149, Images: []string{"/images/products/full-sleeve/full-sleeve-3.avif"},
			Description: "Navy full sleeve t-shirt with ribbed cuffs.",
			Colors:      []string{"Navy"}, InStock: true, Rating: 4.4, Reviews: 102},
		{ID: "10", Name: "Grey Henley Full Sleeve", Slug: "grey-henley-full-sleeve", Category: CategoryFullSleeve,
			Price: 899, ComparePrice: 1249, Images: []string{"/images/products/full-sleeve/full-sleeve-4.avif"},
			Description: "Grey henley with a three button placket.",
			Colors:      []string{"Grey"}, InStock: true, Rating: 4.5, Reviews: 89},
		{ID: "11", Name: "Maroon Full Sleeve Polo", Slug: "maroon-full-sleeve-polo", Category: CategoryFullSleeve,
			Price: 949, ComparePrice: 1349, Images: []string{"/images/products/full-sleeve/full-sleeve-5.avif"},
			Description: "Maroon full sleeve polo in pique knit.",
			Colors:      []string{"Maroon"}, InStock: true, Rating: 4.3, Reviews: 67},

		// Hoodies
		{ID: "12", Name: "Black Premium Zip Hoodie", Slug: "black-premium-zip-hoodie", Category: CategoryHoodies,
			Price: 1499, ComparePrice: 1999, Images: []string{"/images/products/hoodies/hoodie-1.avif"},
			Description: "Fleece lined zip hoodie in black.",
			Colors:      []string{"Black"}, InStock: true, Featured: true, Rating: 4.9, Reviews: 234},
		{ID: "13", Name: "Grey Pullover Hoodie", Slug: "grey-pullover-hoodie", Category: CategoryHoodies,
			Price: 1399, ComparePrice: 1899, Images: []string{"/images/products/hoodies/hoodie-2.avif"},
			Description: "Classic grey pullover hoodie with kangaroo pocket.",
			Colors:      []string{"Grey"}, InStock: true, Featured: true, Rating: 4.7, Reviews: 178},
		{ID: "14", Name: "Navy Blue Hoodie", Slug: "navy-blue-hoodie", Category: CategoryHoodies,
			Price: 1299, ComparePrice: 1699, Images: []string{"/images/products/hoodies/hoodie-3.avif"},
			Description: "Midweight navy hoodie.",
			Colors:      []string{"Navy"}, InStock: true, Rating: 4.6, Reviews: 145},
		{ID: "15", Name: "Olive Green Hoodie", Slug: "olive-green-hoodie", Category: CategoryHoodies,
			Price: 1399, ComparePrice: 1799, Images: []string{"/images/products/hoodies/hoodie-4.avif"},
			Description: "Olive hoodie in brushed cotton blend.",
			Colors:      []string{"Olive"}, InStock: true, Rating: 4.5, Reviews: 112},
		{ID: "16", Name: "White Premium Hoodie", Slug: "white-premium-hoodie", Category: CategoryHoodies,
			Price: 1599, ComparePrice: 2099, Images: []string{"/images/products/hoodies/hoodie-5.avif"},
			Description: "Heavyweight white hoodie.",
			Colors:      []string{"White"}, InStock: true, Featured: true, Rating: 4.8, Reviews: 198},
	}

	for i := range seed {
		seed[i].Sizes = append([]string(nil), standardSizes...)
	}
	return seed
}

// MemoryRepository serves a fixed product list from memory
type MemoryRepository struct {
	products []Product
}

// NewMemoryRepository creates a repository over products. Nil means the seed catalog.
func NewMemoryRepository(products []Product) *MemoryRepository {
	if products == nil {
		products = SeedProducts()
	}
	return &MemoryRepository{products: products}
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*Product, error) {
	for i := range r.products {
		if r.products[i].ID == id {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *MemoryRepository) FindBySlug(_ context.Context, slug string) (*Product, error) {
	slug = strings.ToLower(slug)
	for i := range r.products {
		if r.products[i].Slug == slug {
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, ErrProductNotFound
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter) ([]Product, error) {
	result := make([]Product, 0, len(r.products))
	for i := range r.products {
		if filter.matches(&r.products[i]) {
			result = append(result, r.products[i])
		}
	}
	return result, nil
}

func (r *MemoryRepository) Categories(_ context.Context) ([]CategorySummary, error) {
	return summarize(r.products), nil
}
