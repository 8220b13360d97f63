package models

// CatalogVariant is the authoritative price of a purchasable variant
type CatalogVariant struct {
	VariantID      string `json:"variantId"`
	CollectionID   string `json:"collectionId"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

// Catalog is the read-only view of prices and bundle tiers used for one quote
type Catalog struct {
	Currency string                    `json:"currency"`
	Variants map[string]CatalogVariant `json:"variants"` // variantId -> variant
	Tiers    map[string][]Tier         `json:"tiers"`    // collectionId -> tiers, unordered
}
