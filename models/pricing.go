package models

import "time"

// Tier is a fixed total price for exactly MinQty units of one collection
type Tier struct {
	MinQty          int    `json:"minQty"`
	TotalPriceCents int64  `json:"totalPriceCents"`
	Note            string `json:"note,omitempty"` // Display override, e.g. "3 for $27"
}

// AppliedBundle records how many times a tier was applied
type AppliedBundle struct {
	TierMinQty          int   `json:"tierMinQty"`
	BundleCount         int   `json:"bundleCount"`
	TierTotalPriceCents int64 `json:"tierTotalPriceCents"`
}

// CollectionDiscount is the discount earned by one collection
type CollectionDiscount struct {
	CollectionID   string          `json:"collectionId"`
	AppliedBundles []AppliedBundle `json:"appliedBundles"`
	DiscountCents  int64           `json:"discountCents"`
}

// CartQuoteResponse represents the complete pricing calculation result
// Example response:
// {
//   "currency": "CAD",
//   "preDiscountTotalCents": 6000,
//   "discounts": [
//     {"collectionId": "earrings", "appliedBundles": [{"tierMinQty": 3, "bundleCount": 1, "tierTotalPriceCents": 2700}], "discountCents": 900}
//   ],
//   "grandTotalCents": 5100
// }
type CartQuoteResponse struct {
	Currency              string               `json:"currency"`
	PreDiscountTotalCents int64                `json:"preDiscountTotalCents"`
	Discounts             []CollectionDiscount `json:"discounts"`
	GrandTotalCents       int64                `json:"grandTotalCents"`
}

// TotalDiscountCents sums the discount of every collection
func (q CartQuoteResponse) TotalDiscountCents() int64 {
	var total int64
	for _, d := range q.Discounts {
		total += d.DiscountCents
	}
	return total
}

// QuoteMetadata binds a quote to the cart it was computed for
type QuoteMetadata struct {
	Signature      string    `json:"quoteSignature"`
	NormalizedHash string    `json:"normalizedHash"` // SHA-256 of the normalized cart lines
	IssuedAt       time.Time `json:"quoteCreatedAt"`
	ExpiresAt      time.Time `json:"expiresAt"`
}

// SignedQuote is a quote together with its signature metadata
type SignedQuote struct {
	Quote    CartQuoteResponse `json:"quote"`
	Metadata QuoteMetadata     `json:"metadata"`
}

// QuoteView is the quote as returned to the storefront, with display strings
type QuoteView struct {
	SignedQuote
	PreDiscountTotalDisplay string `json:"preDiscountTotalDisplay"`
	DiscountTotalDisplay    string `json:"discountTotalDisplay"`
	GrandTotalDisplay       string `json:"grandTotalDisplay"`
}
