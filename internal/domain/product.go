package domain

import "time"

// Product prices are stored in the canonical currency (USD).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"image_url"`
	Brand       string    `json:"brand"`
	Condition   string    `json:"condition"`
	Sizes       []string  `json:"sizes"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"-"`
}

// ProductFilter narrows a catalogue listing. Empty fields match everything.
type ProductFilter struct {
	Category  string
	Condition string
}
