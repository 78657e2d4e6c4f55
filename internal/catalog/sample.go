package catalog

import "github.com/nexshop/nexshop/internal/domain"

func floatPtr(v float64) *float64 { return &v }

// sampleCatalog is served when the document store is unreachable so the
// storefront still renders something, and seeded as demo data into an
// empty store at first boot.
var sampleCatalog = []domain.Product{
	{
		ID:            1,
		Name:          "Wireless Headphones",
		Description:   "High-quality wireless headphones with noise cancellation",
		Price:         2999,
		OriginalPrice: floatPtr(3999),
		Category:      "electronics",
		Stock:         50,
		OnSale:        true,
	},
	{
		ID:          2,
		Name:        "Cotton T-Shirt",
		Description: "Comfortable cotton t-shirt in various colors",
		Price:       599,
		Category:    "clothing",
		Stock:       100,
	},
	{
		ID:            3,
		Name:          "Smart Watch",
		Description:   "Feature-rich smartwatch with health monitoring",
		Price:         8999,
		OriginalPrice: floatPtr(12999),
		Category:      "electronics",
		Stock:         25,
		OnSale:        true,
	},
	{
		ID:          4,
		Name:        "Plant Pot Set",
		Description: "Beautiful ceramic plant pots for your garden",
		Price:       1299,
		Category:    "home",
		Stock:       30,
	},
}

// SampleProducts returns a copy of the built-in demo catalog.
func SampleProducts() []domain.Product {
	out := make([]domain.Product, len(sampleCatalog))
	copy(out, sampleCatalog)
	return out
}
