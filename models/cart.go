package models

// UICartItem represents a single line in the shopper's cart
// Example: {"collectionId": "earrings", "variantId": "earrings-gold-hoop", "name": "Gold Hoop", "unitPriceCents": 1200, "qty": 2}
type UICartItem struct {
	CollectionID   string            `json:"collectionId"`      // Product family
	VariantID      string            `json:"variantId"`         // Unique SKU within the cart
	Name           string            `json:"name"`
	Color          string            `json:"color,omitempty"`
	ImageURL       string            `json:"imageUrl,omitempty"`
	Options        map[string]string `json:"options,omitempty"` // Option name -> chosen value
	UnitPriceCents int64             `json:"unitPriceCents"`    // Display only, never used for pricing
	Qty            int               `json:"qty"`
}

// CartState is the ordered cart plus the derived item count
type CartState struct {
	Items      []UICartItem `json:"items"`
	TotalItems int          `json:"totalItems"` // Always the sum of Items[].Qty
}

// CartLine is the pricing view of a cart line: the only fields the engine trusts
type CartLine struct {
	CollectionID string `json:"collectionId"`
	VariantID    string `json:"variantId"`
	Qty          int    `json:"qty"`
}

// AddCartItemRequest represents the request body for adding an item to the cart
// Example: {"collectionId": "earrings", "variantId": "earrings-gold-hoop", "name": "Gold Hoop", "qty": 1}
type AddCartItemRequest struct {
	UICartItem
}

// UpdateCartItemRequest represents the request body for setting a line quantity
// Example: {"qty": 3}
type UpdateCartItemRequest struct {
	Qty int `json:"qty"`
}
