package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"storefront-checkout/cart"
	"storefront-checkout/models"
	"storefront-checkout/service"
)

// CartController handles HTTP requests for the shopper's cart.
// The cart store is taken from the request context, bound by the cart middleware.
type CartController struct {
	log logrus.FieldLogger
}

// NewCartController creates a new CartController
func NewCartController(log logrus.FieldLogger) *CartController {
	return &CartController{log: log.WithField("controller", "cart")}
}

// GetCart handles GET /cart
// Example response:
// {
//   "items": [
//     {"collectionId": "earrings", "variantId": "ear-gold", "name": "Gold hoops", "imageUrl": "https://cdn.example.com/ear-gold.jpg", "unitPriceCents": 1200, "qty": 2}
//   ],
//   "totalItems": 2
// }
func (c *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c.log.Debugf("📥 GetCart: Received %s request to %s", r.Method, r.URL.Path)

	store := service.CartFromContext(r.Context())
	writeJSON(w, c.log, http.StatusOK, store.State())
}

// ClearCart handles DELETE /cart
func (c *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	c.log.Infof("📥 ClearCart: Received %s request to %s", r.Method, r.URL.Path)

	store := service.CartFromContext(r.Context())
	writeJSON(w, c.log, http.StatusOK, store.Clear(r.Context()))
}

// AddItem handles POST /cart/items
// Example request:
// {
//   "collectionId": "earrings",
//   "variantId": "ear-gold",
//   "name": "Gold hoops",
//   "color": "gold",
//   "imageUrl": "https://cdn.example.com/ear-gold.jpg",
//   "options": {"size": "small"},
//   "unitPriceCents": 1200,
//   "qty": 1
// }
// Responds with the updated cart.
func (c *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c.log.Infof("📥 AddItem: Received %s request to %s", r.Method, r.URL.Path)

	var req models.AddCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.log.Warnf("❌ AddItem: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	req.VariantID = strings.TrimSpace(req.VariantID)
	if req.VariantID == "" {
		http.Error(w, "variantId is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.CollectionID) == "" {
		http.Error(w, "collectionId is required", http.StatusBadRequest)
		return
	}
	if req.Qty < 1 {
		c.log.Warnf("❌ AddItem: qty must be at least 1: %d", req.Qty)
		http.Error(w, "qty must be at least 1", http.StatusBadRequest)
		return
	}

	if req.Qty > cart.MaxLineQty {
		c.log.Warnf("❌ AddItem: qty above limit: %d", req.Qty)
		http.Error(w, fmt.Sprintf("qty must be at most %d", cart.MaxLineQty), http.StatusBadRequest)
		return
	}

	store := service.CartFromContext(r.Context())
	state := store.Add(r.Context(), req.UICartItem)

	c.log.Infof("✅ AddItem: Added %d x %s, cart has %d items", req.Qty, req.VariantID, state.TotalItems)
	writeJSON(w, c.log, http.StatusOK, state)
}

// UpdateItem handles PATCH /cart/items/{variantId}
// Example request:
// {"qty": 3}
// A qty of 0 or less removes the line. Unknown variants leave the cart unchanged.
// Quantities above cart.MaxLineQty are rejected.
func (c *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	variantID := mux.Vars(r)["variantId"]
	c.log.Infof("📥 UpdateItem: Received %s request for variant %s", r.Method, variantID)

	var req models.UpdateCartItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		c.log.Warnf("❌ UpdateItem: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	if req.Qty > cart.MaxLineQty {
		c.log.Warnf("❌ UpdateItem: qty above limit: %d", req.Qty)
		http.Error(w, fmt.Sprintf("qty must be at most %d", cart.MaxLineQty), http.StatusBadRequest)
		return
	}

	store := service.CartFromContext(r.Context())
	writeJSON(w, c.log, http.StatusOK, store.UpdateQty(r.Context(), variantID, req.Qty))
}

// RemoveItem handles DELETE /cart/items/{variantId}
func (c *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	variantID := mux.Vars(r)["variantId"]
	c.log.Infof("📥 RemoveItem: Received %s request for variant %s", r.Method, variantID)

	store := service.CartFromContext(r.Context())
	writeJSON(w, c.log, http.StatusOK, store.Remove(r.Context(), variantID))
}
