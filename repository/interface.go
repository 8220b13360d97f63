package repository

import (
	"context"
	"errors"
	"time"

	"storefront-checkout/models"
)

// ErrNotFound is returned by key-value stores when a key is absent or expired
var ErrNotFound = errors.New("key not found")

// KeyValueStoreInterface defines the persistence boundary used for carts and checkout snapshots.
// Set overwrites the whole value; a zero ttl keeps the value until it is deleted.
type KeyValueStoreInterface interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CatalogRepositoryInterface defines the contract of the catalog collaborator.
// GetCatalog returns the authoritative prices of the given variants and the bundle tiers
// of their collections. Variants the catalog does not know are simply absent from the result.
type CatalogRepositoryInterface interface {
	GetCatalog(ctx context.Context, variantIDs []string) (*models.Catalog, error)
}
