package models

import "time"

// OrderRequest represents the order placement body
type OrderRequest struct {
	UserID     int   `json:"userId"`
	ProductIDs []int `json:"productIds"`
}

// Order is an accepted order. It is never stored.
type Order struct {
	ID         int       `json:"orderId"`
	Reference  string    `json:"reference"`
	UserID     int       `json:"userId"`
	ProductIDs []int     `json:"productIds"`
	PlacedAt   time.Time `json:"placedAt"`
}

// OrderResponse represents the order placement response
type OrderResponse struct {
	Success bool `json:"success"`
	OrderID int  `json:"orderId"`
}
