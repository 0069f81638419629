package models

import "strconv"

// Product represents a catalog entry
type Product struct {
	ID    int     `json:"id" yaml:"id"`
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
}

// Label formats the product the way the storefront lists it, e.g. "Jeans - $40".
func (p Product) Label() string {
	return p.Name + " - $" + strconv.FormatFloat(p.Price, 'f', -1, 64)
}

// MessageResponse is the body of GET /api/message
type MessageResponse struct {
	Message string `json:"message"`
}
