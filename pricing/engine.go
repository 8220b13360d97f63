package pricing

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"storefront-checkout/models"
)

// ErrUnknownVariant is returned when a cart line references a variant the catalog does not price
var ErrUnknownVariant = errors.New("variant not found in catalog")

// ErrAmountOverflow is returned when a line or total does not fit in int64 cents
var ErrAmountOverflow = errors.New("amount exceeds representable cents")

// Engine computes quotes from cart lines and a catalog snapshot.
// It holds no state besides its logger; identical inputs always yield identical quotes.
type Engine struct {
	log logrus.FieldLogger
}

// NewEngine creates a new pricing engine
func NewEngine(log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{log: log.WithField("component", "pricing")}
}

// priceRun is a group of units of the same collection sharing a unit price
type priceRun struct {
	unitPrice int64
	count     int
}

// collectionLines holds everything the engine needs about one collection
type collectionLines struct {
	id          string
	qtyTotal    int
	preDiscount int64
	runs        []priceRun
}

// Quote prices the cart lines against the catalog and applies bundle tiers per collection
func (e *Engine) Quote(lines []models.CartLine, catalog *models.Catalog) (*models.CartQuoteResponse, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	quote := &models.CartQuoteResponse{
		Currency:  catalog.Currency,
		Discounts: []models.CollectionDiscount{},
	}

	collections, err := groupByCollection(lines, catalog)
	if err != nil {
		return nil, err
	}

	for _, c := range collections {
		total, ok := addCents(quote.PreDiscountTotalCents, c.preDiscount)
		if !ok {
			return nil, fmt.Errorf("%w: pre-discount total", ErrAmountOverflow)
		}
		quote.PreDiscountTotalCents = total

		discount, ok := applyTiers(c, catalog.Tiers[c.id])
		if !ok {
			e.log.Debugf("💰 Collection %s: qty=%d, no tier applies", c.id, c.qtyTotal)
			continue
		}
		e.log.Debugf("💰 Collection %s: qty=%d, preDiscount=%d, discount=%d", c.id, c.qtyTotal, c.preDiscount, discount.DiscountCents)
		quote.Discounts = append(quote.Discounts, discount)
	}

	quote.GrandTotalCents = quote.PreDiscountTotalCents - quote.TotalDiscountCents()
	return quote, nil
}

// groupByCollection resolves every line against the catalog and groups the units by the
// catalog's collection. Collections come back sorted by ID so output order is stable.
func groupByCollection(lines []models.CartLine, catalog *models.Catalog) ([]*collectionLines, error) {
	byID := make(map[string]*collectionLines)
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		variant, exists := catalog.Variants[line.VariantID]
		if !exists {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, line.VariantID)
		}

		c, exists := byID[variant.CollectionID]
		if !exists {
			c = &collectionLines{id: variant.CollectionID}
			byID[variant.CollectionID] = c
		}
		lineCents, ok := mulCents(variant.UnitPriceCents, line.Qty)
		if !ok || c.qtyTotal > math.MaxInt-line.Qty {
			return nil, fmt.Errorf("%w: variant %s qty %d", ErrAmountOverflow, line.VariantID, line.Qty)
		}
		preDiscount, ok := addCents(c.preDiscount, lineCents)
		if !ok {
			return nil, fmt.Errorf("%w: collection %s", ErrAmountOverflow, variant.CollectionID)
		}
		c.qtyTotal += line.Qty
		c.preDiscount = preDiscount
		c.runs = append(c.runs, priceRun{unitPrice: variant.UnitPriceCents, count: line.Qty})
	}

	collections := make([]*collectionLines, 0, len(byID))
	for _, c := range byID {
		// Bundles consume the most expensive units first.
		sort.SliceStable(c.runs, func(i, j int) bool {
			return c.runs[i].unitPrice > c.runs[j].unitPrice
		})
		collections = append(collections, c)
	}
	sort.Slice(collections, func(i, j int) bool {
		return collections[i].id < collections[j].id
	})
	return collections, nil
}

// mulCents returns price*qty, reporting false on overflow
func mulCents(price int64, qty int) (int64, bool) {
	if price == 0 || qty == 0 {
		return 0, true
	}
	abs := price
	if abs < 0 {
		abs = -abs
	}
	if int64(qty) > math.MaxInt64/abs {
		return 0, false
	}
	return price * int64(qty), true
}

// addCents returns a+b for non-negative amounts, reporting false on overflow
func addCents(a, b int64) (int64, bool) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}

// SortTiers orders tiers by MinQty descending; for equal MinQty the cheapest tier comes first.
// Tiers with a non-positive MinQty or a negative price are dropped.
func SortTiers(tiers []models.Tier) []models.Tier {
	sorted := make([]models.Tier, 0, len(tiers))
	for _, tier := range tiers {
		if tier.MinQty <= 0 || tier.TotalPriceCents < 0 {
			continue
		}
		sorted = append(sorted, tier)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].MinQty != sorted[j].MinQty {
			return sorted[i].MinQty > sorted[j].MinQty
		}
		return sorted[i].TotalPriceCents < sorted[j].TotalPriceCents
	})
	return sorted
}

// applyTiers greedily consumes the collection quantity with whole bundles.
// It reports false when the collection earns no discount.
func applyTiers(c *collectionLines, tiers []models.Tier) (models.CollectionDiscount, bool) {
	sorted := SortTiers(tiers)
	if len(sorted) == 0 || c.qtyTotal < sorted[len(sorted)-1].MinQty {
		return models.CollectionDiscount{}, false
	}

	units := newUnitCursor(c.runs)
	var bundled int64
	applied := []models.AppliedBundle{}

	for i, tier := range sorted {
		// Only the cheapest tier of a given size is considered.
		if i > 0 && sorted[i-1].MinQty == tier.MinQty {
			continue
		}
		count := 0
		for units.remaining >= tier.MinQty {
			regular := units.peek(tier.MinQty)
			if tier.TotalPriceCents > regular {
				// Buying these units individually is cheaper: the tier is inapplicable here.
				break
			}
			units.take(tier.MinQty)
			count++
		}
		if count == 0 {
			continue
		}
		bundled += int64(count) * tier.TotalPriceCents
		applied = append(applied, models.AppliedBundle{
			TierMinQty:          tier.MinQty,
			BundleCount:         count,
			TierTotalPriceCents: tier.TotalPriceCents,
		})
		if units.remaining == 0 {
			break
		}
	}

	if len(applied) == 0 {
		return models.CollectionDiscount{}, false
	}

	leftover := units.peek(units.remaining)
	discount := c.preDiscount - (bundled + leftover)
	if discount <= 0 {
		return models.CollectionDiscount{}, false
	}

	return models.CollectionDiscount{
		CollectionID:   c.id,
		AppliedBundles: applied,
		DiscountCents:  discount,
	}, true
}

// unitCursor walks the units of a collection from most to least expensive
type unitCursor struct {
	runs      []priceRun
	run       int
	offset    int
	remaining int
}

func newUnitCursor(runs []priceRun) *unitCursor {
	cursor := &unitCursor{runs: runs}
	for _, r := range runs {
		cursor.remaining += r.count
	}
	return cursor
}

// peek returns the regular price of the next n units without consuming them
func (u *unitCursor) peek(n int) int64 {
	var total int64
	run, offset := u.run, u.offset
	for n > 0 && run < len(u.runs) {
		available := u.runs[run].count - offset
		take := n
		if take > available {
			take = available
		}
		total += int64(take) * u.runs[run].unitPrice
		n -= take
		offset += take
		if offset == u.runs[run].count {
			run++
			offset = 0
		}
	}
	return total
}

// take consumes the next n units
func (u *unitCursor) take(n int) {
	u.remaining -= n
	for n > 0 && u.run < len(u.runs) {
		available := u.runs[u.run].count - u.offset
		step := n
		if step > available {
			step = available
		}
		n -= step
		u.offset += step
		if u.offset == u.runs[u.run].count {
			u.run++
			u.offset = 0
		}
	}
}
