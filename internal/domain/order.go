package domain

import "time"

const OrderStatusPending = "pending"

// OrderInput is the body of POST /api/orders.
type OrderInput struct {
	SessionID       string     `json:"session_id" binding:"required"`
	Items           []CartItem `json:"items" binding:"required,min=1"`
	Total           float64    `json:"total" binding:"gte=0"`
	Currency        string     `json:"currency" binding:"required"`
	CustomerName    string     `json:"customer_name" binding:"required"`
	CustomerEmail   string     `json:"customer_email" binding:"required,email"`
	ShippingAddress string     `json:"shipping_address" binding:"required"`
}

// Order is a persisted OrderInput.
type Order struct {
	ID              string     `json:"id"`
	SessionID       string     `json:"session_id"`
	Items           []CartItem `json:"items"`
	Total           float64    `json:"total"`
	Currency        string     `json:"currency"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	ShippingAddress string     `json:"shipping_address"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}
