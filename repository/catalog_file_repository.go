package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"storefront-checkout/models"
)

// CatalogFile represents the JSON catalog file structure
// Example:
// {
//   "currency": "CAD",
//   "collections": {
//     "earrings": {
//       "tiers": [{"minQty": 3, "totalPriceCents": 2700, "note": "3 for $27"}],
//       "variants": {"ear-gold": {"unitPriceCents": 1200}}
//     }
//   }
// }
type CatalogFile struct {
	Currency    string                      `json:"currency"`
	Collections map[string]CollectionConfig `json:"collections"`
}

// CollectionConfig holds the variants and bundle tiers of one collection
type CollectionConfig struct {
	Tiers    []models.Tier          `json:"tiers"`
	Variants map[string]VariantEntry `json:"variants"`
}

// VariantEntry is the price of one variant
type VariantEntry struct {
	UnitPriceCents int64 `json:"unitPriceCents"`
}

// CatalogFileRepository serves the catalog from a JSON file, re-read on every quote
// so price edits apply without a restart
type CatalogFileRepository struct {
	path            string
	defaultCurrency string
}

// Ensure CatalogFileRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*CatalogFileRepository)(nil)

// NewCatalogFileRepository resolves path against the working directory and validates the file once
func NewCatalogFileRepository(path string, defaultCurrency string) (*CatalogFileRepository, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	repo := &CatalogFileRepository{path: path, defaultCurrency: defaultCurrency}
	if _, err := repo.load(); err != nil {
		return nil, err
	}
	return repo, nil
}

// GetCatalog reads the file and returns the requested variants and their collections' tiers
func (r *CatalogFileRepository) GetCatalog(ctx context.Context, variantIDs []string) (*models.Catalog, error) {
	full, err := r.load()
	if err != nil {
		return nil, err
	}
	return filterCatalog(full, variantIDs), nil
}

func (r *CatalogFileRepository) load() (*models.Catalog, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalogFile(data, r.defaultCurrency)
}

// ParseCatalogFile decodes and validates a catalog file
func ParseCatalogFile(data []byte, defaultCurrency string) (*models.Catalog, error) {
	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if err := validateCatalogFile(&file); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}

	catalog := &models.Catalog{
		Currency: file.Currency,
		Variants: make(map[string]models.CatalogVariant),
		Tiers:    make(map[string][]models.Tier),
	}
	if catalog.Currency == "" {
		catalog.Currency = defaultCurrency
	}
	for collectionID, collection := range file.Collections {
		for variantID, entry := range collection.Variants {
			if existing, dup := catalog.Variants[variantID]; dup {
				return nil, fmt.Errorf("invalid catalog file: variant %s listed in %s and %s", variantID, existing.CollectionID, collectionID)
			}
			catalog.Variants[variantID] = models.CatalogVariant{
				VariantID:      variantID,
				CollectionID:   collectionID,
				UnitPriceCents: entry.UnitPriceCents,
			}
		}
		if len(collection.Tiers) > 0 {
			catalog.Tiers[collectionID] = append([]models.Tier(nil), collection.Tiers...)
		}
	}
	return catalog, nil
}

func validateCatalogFile(file *CatalogFile) error {
	if len(file.Collections) == 0 {
		return fmt.Errorf("collections are required")
	}
	for collectionID, collection := range file.Collections {
		for variantID, entry := range collection.Variants {
			if entry.UnitPriceCents < 0 {
				return fmt.Errorf("variant %s has a negative price", variantID)
			}
		}
		for _, tier := range collection.Tiers {
			if tier.MinQty <= 0 {
				return fmt.Errorf("collection %s has a tier with minQty %d", collectionID, tier.MinQty)
			}
			if tier.TotalPriceCents < 0 {
				return fmt.Errorf("collection %s has a tier with a negative price", collectionID)
			}
		}
	}
	return nil
}

// StaticCatalogRepository serves a fixed in-memory catalog
type StaticCatalogRepository struct {
	catalog *models.Catalog
}

// Ensure StaticCatalogRepository implements CatalogRepositoryInterface
var _ CatalogRepositoryInterface = (*StaticCatalogRepository)(nil)

// NewStaticCatalogRepository wraps a catalog
func NewStaticCatalogRepository(catalog *models.Catalog) *StaticCatalogRepository {
	return &StaticCatalogRepository{catalog: catalog}
}

// GetCatalog returns the requested subset of the wrapped catalog
func (r *StaticCatalogRepository) GetCatalog(ctx context.Context, variantIDs []string) (*models.Catalog, error) {
	return filterCatalog(r.catalog, variantIDs), nil
}

// filterCatalog copies the requested variants and the tiers of their collections
func filterCatalog(full *models.Catalog, variantIDs []string) *models.Catalog {
	out := &models.Catalog{
		Currency: full.Currency,
		Variants: make(map[string]models.CatalogVariant),
		Tiers:    make(map[string][]models.Tier),
	}
	for _, id := range variantIDs {
		variant, exists := full.Variants[id]
		if !exists {
			continue
		}
		out.Variants[id] = variant
		if tiers, ok := full.Tiers[variant.CollectionID]; ok {
			out.Tiers[variant.CollectionID] = append([]models.Tier(nil), tiers...)
		}
	}
	return out
}
