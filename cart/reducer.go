// Package cart holds the pure state transitions of the shopper's cart.
package cart

import "storefront-checkout/models"

// MaxLineQty caps the quantity of a single cart line. Larger quantities saturate.
const MaxLineQty = 9999

// Action is one of Add, Remove, UpdateQty or Clear
type Action interface {
	apply(state models.CartState) models.CartState
}

// Add merges the item into the line with the same variant, or appends it
type Add struct {
	Item models.UICartItem
}

// Remove deletes the line for a variant
type Remove struct {
	VariantID string
}

// UpdateQty sets a line quantity exactly; Qty <= 0 removes the line
type UpdateQty struct {
	VariantID string
	Qty       int
}

// Clear empties the cart
type Clear struct{}

// Empty returns the empty cart
func Empty() models.CartState {
	return models.CartState{Items: []models.UICartItem{}}
}

// Reduce applies an action and returns the next state. The input is never modified.
func Reduce(state models.CartState, action Action) models.CartState {
	if action == nil {
		return Normalize(state)
	}
	return action.apply(state)
}

func (a Add) apply(state models.CartState) models.CartState {
	items := cloneItems(state.Items)
	incoming := cloneItem(a.Item)
	if incoming.VariantID == "" || incoming.Qty <= 0 {
		return withTotal(items)
	}

	merged := false
	for i := range items {
		if items[i].VariantID != incoming.VariantID {
			continue
		}
		qty := addQty(items[i].Qty, incoming.Qty)
		items[i] = incoming
		items[i].Qty = qty
		merged = true
		break
	}
	if !merged {
		incoming.Qty = clampQty(incoming.Qty)
		items = append(items, incoming)
	}

	return withTotal(items)
}

func (a Remove) apply(state models.CartState) models.CartState {
	items := make([]models.UICartItem, 0, len(state.Items))
	for _, item := range state.Items {
		if item.VariantID == a.VariantID {
			continue
		}
		items = append(items, cloneItem(item))
	}
	return withTotal(items)
}

func (a UpdateQty) apply(state models.CartState) models.CartState {
	if a.Qty <= 0 {
		return Remove{VariantID: a.VariantID}.apply(state)
	}
	items := cloneItems(state.Items)
	for i := range items {
		if items[i].VariantID == a.VariantID {
			items[i].Qty = clampQty(a.Qty)
			break
		}
	}
	return withTotal(items)
}

func (Clear) apply(models.CartState) models.CartState {
	return Empty()
}

// Normalize repairs a rehydrated state: drops lines without a variant or with
// a non-positive quantity, merges duplicate variants and recomputes the total.
func Normalize(state models.CartState) models.CartState {
	next := Empty()
	for _, item := range state.Items {
		if item.VariantID == "" || item.Qty <= 0 {
			continue
		}
		next = Add{Item: item}.apply(next)
	}
	return next
}

// TotalItems sums the quantity of every line
func TotalItems(items []models.UICartItem) int {
	total := 0
	for _, item := range items {
		total += item.Qty
	}
	return total
}

// Lines returns the pricing view of the cart
func Lines(state models.CartState) []models.CartLine {
	lines := make([]models.CartLine, 0, len(state.Items))
	for _, item := range state.Items {
		lines = append(lines, models.CartLine{
			CollectionID: item.CollectionID,
			VariantID:    item.VariantID,
			Qty:          item.Qty,
		})
	}
	return lines
}

// Clone returns a deep copy of the state
func Clone(state models.CartState) models.CartState {
	return models.CartState{Items: cloneItems(state.Items), TotalItems: state.TotalItems}
}

// addQty sums two positive quantities without overflowing, saturating at MaxLineQty
func addQty(a, b int) int {
	a, b = clampQty(a), clampQty(b)
	if a > MaxLineQty-b {
		return MaxLineQty
	}
	return a + b
}

func clampQty(qty int) int {
	if qty > MaxLineQty {
		return MaxLineQty
	}
	return qty
}

func withTotal(items []models.UICartItem) models.CartState {
	return models.CartState{Items: items, TotalItems: TotalItems(items)}
}

func cloneItems(items []models.UICartItem) []models.UICartItem {
	out := make([]models.UICartItem, 0, len(items)+1)
	for _, item := range items {
		out = append(out, cloneItem(item))
	}
	return out
}

func cloneItem(item models.UICartItem) models.UICartItem {
	if item.Options != nil {
		options := make(map[string]string, len(item.Options))
		for k, v := range item.Options {
			options[k] = v
		}
		item.Options = options
	}
	return item
}
