package catalog

import (
	"slices"

	"shop-demo/pkg/models"
)

// Catalog is the read-only product list the service was started with
type Catalog struct {
	products []models.Product
}

// New creates a Catalog from the configured products, ordered by id
func New(products []models.Product) *Catalog {
	c := &Catalog{
		products: slices.Clone(products),
	}
	slices.SortFunc(c.products, func(a, b models.Product) int {
		return a.ID - b.ID
	})
	return c
}

// Products returns all products. Callers get their own copy.
func (c *Catalog) Products() []models.Product {
	result := make([]models.Product, len(c.products))
	copy(result, c.products)
	return result
}

// Product returns a product by ID
func (c *Catalog) Product(id int) (models.Product, bool) {
	for _, p := range c.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

// Known reports how many of ids are in the catalog
func (c *Catalog) Known(ids []int) int {
	n := 0
	for _, id := range ids {
		if _, ok := c.Product(id); ok {
			n++
		}
	}
	return n
}

// Len returns the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}
