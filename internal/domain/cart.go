package domain

// CartItem is the wire shape of one cart line without its product snapshot.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Size      *string `json:"size"`
}

// CartLine is a CartItem denormalized with the product it refers to.
type CartLine struct {
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Size      *string  `json:"size"`
	Product   *Product `json:"product,omitempty"`
}

// Cart is the per-session cart as returned by GET /api/cart/{sessionId}.
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartLine `json:"items"`
}

// Item strips the product snapshot.
func (l CartLine) Item() CartItem {
	return CartItem{ProductID: l.ProductID, Quantity: l.Quantity, Size: l.Size}
}

// Matches reports whether the line has the (productID, size) identity key.
// An absent size never matches a present one.
func (l CartLine) Matches(productID string, size *string) bool {
	return l.ProductID == productID && SameSize(l.Size, size)
}

// SameSize compares optional sizes.
func SameSize(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SizeKey flattens an optional size for storage and map keys.
func SizeKey(size *string) string {
	if size == nil {
		return ""
	}
	return *size
}

// SizeFromKey is the inverse of SizeKey.
func SizeFromKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}
