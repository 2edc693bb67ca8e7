package domain

// Category is a catalogue facet derived from the products' category field.
type Category struct {
	Name     string `json:"name"`
	Products int    `json:"products"`
	InStock  int    `json:"in_stock"`
}
