package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a request the backend refuses to process as given.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientStock is returned when a cart line would exceed product stock.
	ErrInsufficientStock = errors.New("insufficient stock")
)
