package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"storefront-checkout/db"
	"storefront-checkout/models"
)

// CatalogRepository reads prices and bundle tiers from PostgreSQL
type CatalogRepository struct {
	db       *sql.DB
	currency string
	log      logrus.FieldLogger
}

// NewCatalogRepository creates a new CatalogRepository on the shared connection
func NewCatalogRepository(currency string, log logrus.FieldLogger) *CatalogRepository {
	return &CatalogRepository{db: db.DB, currency: currency, log: log}
}

// Ensure CatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogRepository)(nil)

// GetCatalog retrieves the active variants among variantIDs and the active tiers of their collections
func (r *CatalogRepository) GetCatalog(ctx context.Context, variantIDs []string) (*models.Catalog, error) {
	catalog := &models.Catalog{
		Currency: r.currency,
		Variants: make(map[string]models.CatalogVariant),
		Tiers:    make(map[string][]models.Tier),
	}
	if len(variantIDs) == 0 {
		return catalog, nil
	}

	variantQuery := `
		SELECT variant_id, collection_id, unit_price_cents
		FROM catalog_variants
		WHERE variant_id = ANY($1)
		  AND is_active = true
	`
	rows, err := r.db.QueryContext(ctx, variantQuery, variantIDs)
	if err != nil {
		r.log.Errorf("❌ GetCatalog: Error querying variants: %v", err)
		return nil, fmt.Errorf("failed to query variants: %w", err)
	}
	defer rows.Close()

	collectionSet := make(map[string]struct{})
	for rows.Next() {
		var variant models.CatalogVariant
		if err := rows.Scan(&variant.VariantID, &variant.CollectionID, &variant.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan variant: %w", err)
		}
		catalog.Variants[variant.VariantID] = variant
		collectionSet[variant.CollectionID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate variants: %w", err)
	}

	if len(collectionSet) == 0 {
		return catalog, nil
	}
	collections := make([]string, 0, len(collectionSet))
	for id := range collectionSet {
		collections = append(collections, id)
	}
	sort.Strings(collections)

	tierQuery := `
		SELECT collection_id, min_qty, total_price_cents, COALESCE(note, '')
		FROM bundle_tiers
		WHERE collection_id = ANY($1)
		  AND is_active = true
		ORDER BY collection_id ASC, id ASC
	`
	tierRows, err := r.db.QueryContext(ctx, tierQuery, collections)
	if err != nil {
		r.log.Errorf("❌ GetCatalog: Error querying tiers: %v", err)
		return nil, fmt.Errorf("failed to query tiers: %w", err)
	}
	defer tierRows.Close()

	for tierRows.Next() {
		var collectionID string
		var tier models.Tier
		if err := tierRows.Scan(&collectionID, &tier.MinQty, &tier.TotalPriceCents, &tier.Note); err != nil {
			return nil, fmt.Errorf("failed to scan tier: %w", err)
		}
		catalog.Tiers[collectionID] = append(catalog.Tiers[collectionID], tier)
	}
	if err := tierRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tiers: %w", err)
	}

	r.log.Debugf("🔍 GetCatalog: %d variants, %d collections with tiers", len(catalog.Variants), len(catalog.Tiers))
	return catalog, nil
}
