package checkout

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"storefront-checkout/models"
)

func signedQuote() models.SignedQuote {
	return models.SignedQuote{
		Quote: models.CartQuoteResponse{
			Currency:              "CAD",
			PreDiscountTotalCents: 6000,
			Discounts: []models.CollectionDiscount{{
				CollectionID:   "earrings",
				AppliedBundles: []models.AppliedBundle{{TierMinQty: 3, BundleCount: 1, TierTotalPriceCents: 2700}},
				DiscountCents:  900,
			}},
			GrandTotalCents: 5100,
		},
		Metadata: models.QuoteMetadata{
			Signature:      "sig",
			NormalizedHash: "hash",
			IssuedAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			ExpiresAt:      time.Date(2026, 3, 1, 12, 15, 0, 0, time.UTC),
		},
	}
}

func TestBuildPayloadStripsDisplayFields(t *testing.T) {
	state := models.CartState{
		Items: []models.UICartItem{{
			CollectionID:   "earrings",
			VariantID:      "ear-gold",
			Name:           "Gold Hoop",
			Color:          "gold",
			ImageURL:       "https://cdn.example.com/gold.png",
			Options:        map[string]string{"finish": "matte"},
			UnitPriceCents: 1200,
			Qty:            5,
		}},
		TotalItems: 5,
	}

	payload := BuildPayload(state, signedQuote(), Redirects{SuccessURL: "https://shop/success", CancelURL: "https://shop/cancel"})

	want := models.CheckoutPayload{
		Items: []models.CheckoutItem{{
			CollectionID:   "earrings",
			VariantID:      "ear-gold",
			Qty:            5,
			Name:           "Gold Hoop",
			UnitPriceCents: 1200,
			Options:        map[string]string{"finish": "matte"},
		}},
		Totals: models.CheckoutTotals{
			Currency:              "CAD",
			PreDiscountTotalCents: 6000,
			DiscountTotalCents:    900,
			GrandTotalCents:       5100,
			Discounts:             signedQuote().Quote.Discounts,
		},
		Quote:      signedQuote().Metadata,
		SuccessURL: "https://shop/success",
		CancelURL:  "https://shop/cancel",
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestBuildPayloadEmptyCart(t *testing.T) {
	payload := BuildPayload(models.CartState{}, models.SignedQuote{Quote: models.CartQuoteResponse{Currency: "CAD"}}, Redirects{})
	if len(payload.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(payload.Items))
	}
	if payload.Totals.GrandTotalCents != 0 || payload.Totals.PreDiscountTotalCents != 0 || len(payload.Totals.Discounts) != 0 {
		t.Fatalf("expected zero totals, got %+v", payload.Totals)
	}
}

func TestBuildPayloadDoesNotAliasInputs(t *testing.T) {
	state := models.CartState{
		Items: []models.UICartItem{{
			CollectionID: "earrings",
			VariantID:    "ear-gold",
			Options:      map[string]string{"finish": "matte"},
			Qty:          1,
		}},
		TotalItems: 1,
	}
	signed := signedQuote()
	payload := BuildPayload(state, signed, Redirects{})

	state.Items[0].Options["finish"] = "glossy"
	state.Items[0].Qty = 9
	signed.Quote.Discounts[0].AppliedBundles[0].BundleCount = 42

	if payload.Items[0].Options["finish"] != "matte" || payload.Items[0].Qty != 1 {
		t.Fatalf("payload item changed after cart mutation: %+v", payload.Items[0])
	}
	if payload.Totals.Discounts[0].AppliedBundles[0].BundleCount != 1 {
		t.Fatalf("payload discounts changed after quote mutation")
	}
}
