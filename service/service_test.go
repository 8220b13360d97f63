package service

import (
	"context"
	"errors"
	"time"

	"storefront-checkout/models"
	"storefront-checkout/repository"
	"storefront-checkout/utils"
)

var testLog = utils.DiscardLogger()

func testCatalog() *models.Catalog {
	return &models.Catalog{
		Currency: "CAD",
		Variants: map[string]models.CatalogVariant{
			"ear-gold":   {VariantID: "ear-gold", CollectionID: "earrings", UnitPriceCents: 1200},
			"ear-silver": {VariantID: "ear-silver", CollectionID: "earrings", UnitPriceCents: 1200},
			"neck-pearl": {VariantID: "neck-pearl", CollectionID: "necklaces", UnitPriceCents: 3000},
		},
		Tiers: map[string][]models.Tier{
			"earrings": {{MinQty: 3, TotalPriceCents: 2700}},
		},
	}
}

func earring(variantID string, qty int) models.UICartItem {
	return models.UICartItem{
		CollectionID:   "earrings",
		VariantID:      variantID,
		Name:           "Hoop " + variantID,
		ImageURL:       "https://cdn.example.com/" + variantID + ".jpg",
		UnitPriceCents: 1200,
		Qty:            qty,
	}
}

// failingStore fails every operation
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return errors.New("disk on fire")
}

func (failingStore) Delete(ctx context.Context, key string) error {
	return errors.New("disk on fire")
}

var _ repository.KeyValueStoreInterface = failingStore{}

// fakeSessions records submitted payloads
type fakeSessions struct {
	payloads []models.CheckoutPayload
	keys     []string
	err      error
}

func (f *fakeSessions) CreateSession(ctx context.Context, payload models.CheckoutPayload, idempotencyKey string) (*models.CheckoutSessionResponse, error) {
	f.payloads = append(f.payloads, payload)
	f.keys = append(f.keys, idempotencyKey)
	if f.err != nil {
		return nil, f.err
	}
	return &models.CheckoutSessionResponse{SessionID: "cs_test_1", URL: "https://pay.example.com/cs_test_1"}, nil
}
