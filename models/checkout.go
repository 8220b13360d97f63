package models

import "time"

// CheckoutItem is a cart line stripped of display-only fields
type CheckoutItem struct {
	CollectionID   string            `json:"collectionId"`
	VariantID      string            `json:"variantId"`
	Qty            int               `json:"qty"`
	Name           string            `json:"name"`
	UnitPriceCents int64             `json:"unitPriceCents"`
	Options        map[string]string `json:"options,omitempty"`
}

// CheckoutTotals mirrors the pricing breakdown of the quote
type CheckoutTotals struct {
	Currency              string               `json:"currency"`
	PreDiscountTotalCents int64                `json:"preDiscountTotalCents"`
	DiscountTotalCents    int64                `json:"discountTotalCents"`
	GrandTotalCents       int64                `json:"grandTotalCents"`
	Discounts             []CollectionDiscount `json:"discounts"`
}

// CheckoutPayload is the immutable body submitted to the checkout API
type CheckoutPayload struct {
	Items      []CheckoutItem `json:"items"`
	Totals     CheckoutTotals `json:"totals"`
	Quote      QuoteMetadata  `json:"quote"`
	SuccessURL string         `json:"successUrl,omitempty"`
	CancelURL  string         `json:"cancelUrl,omitempty"`
}

// CheckoutSessionResponse is returned by the external checkout API
// Example: {"sessionId": "cs_test_123", "url": "https://checkout.example.com/pay/cs_test_123"}
type CheckoutSessionResponse struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	Status    string `json:"status,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty"` // Unix seconds
}

// CheckoutSnapshot is what survives the redirect to the payment page and back
type CheckoutSnapshot struct {
	Payload CheckoutPayload         `json:"payload"`
	Quote   CartQuoteResponse       `json:"quote"`
	Session CheckoutSessionResponse `json:"session"`
	SavedAt time.Time               `json:"savedAt"`
}

// CheckoutRequest represents the optional body of POST /checkout
// Example: {"successUrl": "https://shop.example.com/checkout/success", "cancelUrl": "https://shop.example.com/checkout/cancel"}
type CheckoutRequest struct {
	SuccessURL string `json:"successUrl,omitempty"`
	CancelURL  string `json:"cancelUrl,omitempty"`
}
