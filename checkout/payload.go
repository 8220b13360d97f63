// Package checkout assembles the payload handed to the external checkout API.
package checkout

import "storefront-checkout/models"

// Redirects carries the pages the checkout API sends the shopper back to
type Redirects struct {
	SuccessURL string
	CancelURL  string
}

// BuildPayload combines the cart and a freshly computed, signed quote into a checkout payload.
// An empty cart yields an empty payload with zero totals. Nothing in the result aliases
// the inputs, so later cart mutations cannot leak into a built payload.
func BuildPayload(state models.CartState, signed models.SignedQuote, redirects Redirects) models.CheckoutPayload {
	items := make([]models.CheckoutItem, 0, len(state.Items))
	for _, item := range state.Items {
		items = append(items, models.CheckoutItem{
			CollectionID:   item.CollectionID,
			VariantID:      item.VariantID,
			Qty:            item.Qty,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Options:        copyOptions(item.Options),
		})
	}

	quote := signed.Quote
	return models.CheckoutPayload{
		Items: items,
		Totals: models.CheckoutTotals{
			Currency:              quote.Currency,
			PreDiscountTotalCents: quote.PreDiscountTotalCents,
			DiscountTotalCents:    quote.TotalDiscountCents(),
			GrandTotalCents:       quote.GrandTotalCents,
			Discounts:             CopyDiscounts(quote.Discounts),
		},
		Quote:      signed.Metadata,
		SuccessURL: redirects.SuccessURL,
		CancelURL:  redirects.CancelURL,
	}
}

// CopyDiscounts deep-copies a discount list
func CopyDiscounts(discounts []models.CollectionDiscount) []models.CollectionDiscount {
	out := make([]models.CollectionDiscount, 0, len(discounts))
	for _, d := range discounts {
		bundles := make([]models.AppliedBundle, len(d.AppliedBundles))
		copy(bundles, d.AppliedBundles)
		out = append(out, models.CollectionDiscount{
			CollectionID:   d.CollectionID,
			AppliedBundles: bundles,
			DiscountCents:  d.DiscountCents,
		})
	}
	return out
}

func copyOptions(options map[string]string) map[string]string {
	if len(options) == 0 {
		return nil
	}
	out := make(map[string]string, len(options))
	for k, v := range options {
		out[k] = v
	}
	return out
}
