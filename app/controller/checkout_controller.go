package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"storefront-checkout/checkout"
	"storefront-checkout/models"
	"storefront-checkout/pricing"
	"storefront-checkout/service"
	"storefront-checkout/utils"
)

// CheckoutController handles HTTP requests for quoting and checkout
type CheckoutController struct {
	service *service.CheckoutService
	log     logrus.FieldLogger
}

// NewCheckoutController creates a new CheckoutController
func NewCheckoutController(checkoutService *service.CheckoutService, log logrus.FieldLogger) *CheckoutController {
	return &CheckoutController{
		service: checkoutService,
		log:     log.WithField("controller", "checkout"),
	}
}

// GetQuote handles GET /cart/quote
// Example response:
// {
//   "quote": {
//     "currency": "CAD",
//     "preDiscountTotalCents": 6000,
//     "discounts": [{"collectionId": "earrings", "appliedBundles": [{"tierMinQty": 3, "bundleCount": 1, "tierTotalPriceCents": 2700}], "discountCents": 900}],
//     "grandTotalCents": 5100
//   },
//   "metadata": {"quoteSignature": "9f2c...", "normalizedHash": "e3b0...", "quoteCreatedAt": "2026-01-04T10:30:00Z", "expiresAt": "2026-01-04T10:45:00Z"},
//   "preDiscountTotalDisplay": "$60.00 CAD",
//   "discountTotalDisplay": "$9.00 CAD",
//   "grandTotalDisplay": "$51.00 CAD"
// }
func (c *CheckoutController) GetQuote(w http.ResponseWriter, r *http.Request) {
	c.log.Debugf("📥 GetQuote: Received %s request to %s", r.Method, r.URL.Path)

	store := service.CartFromContext(r.Context())
	signed, err := c.service.Quote(r.Context(), store.State())
	if err != nil {
		c.log.Errorf("❌ GetQuote: Error pricing cart: %v", err)
		c.writeServiceError(w, err)
		return
	}

	quote := signed.Quote
	writeJSON(w, c.log, http.StatusOK, models.QuoteView{
		SignedQuote:             signed,
		PreDiscountTotalDisplay: utils.FormatCents(quote.PreDiscountTotalCents, quote.Currency),
		DiscountTotalDisplay:    utils.FormatCents(quote.TotalDiscountCents(), quote.Currency),
		GrandTotalDisplay:       utils.FormatCents(quote.GrandTotalCents, quote.Currency),
	})
}

// Checkout handles POST /checkout
// Example request (body optional):
// {"successUrl": "https://shop.example.com/checkout/success", "cancelUrl": "https://shop.example.com/checkout/cancel"}
// Example response:
// {"sessionId": "cs_test_123", "url": "https://checkout.example.com/pay/cs_test_123"}
func (c *CheckoutController) Checkout(w http.ResponseWriter, r *http.Request) {
	c.log.Infof("📥 Checkout: Received %s request to %s", r.Method, r.URL.Path)

	var req models.CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
		c.log.Warnf("❌ Checkout: Failed to decode request body: %v", err)
		http.Error(w, fmt.Sprintf("Invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	store := service.CartFromContext(r.Context())
	sessionID := service.SessionIDFromContext(r.Context())
	snapshot, err := c.service.Checkout(r.Context(), store, sessionID, checkout.Redirects{
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		c.log.Errorf("❌ Checkout: %v", err)
		c.writeServiceError(w, err)
		return
	}

	writeJSON(w, c.log, http.StatusOK, snapshot.Session)
}

// GetSnapshot handles GET /checkout/snapshot
func (c *CheckoutController) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := c.service.Snapshot(r.Context(), service.SessionIDFromContext(r.Context()))
	if !ok {
		http.Error(w, "no checkout in progress", http.StatusNotFound)
		return
	}
	writeJSON(w, c.log, http.StatusOK, snapshot)
}

// Success handles POST /checkout/success
// The cart and the snapshot are cleared; the snapshot is returned for the confirmation page.
func (c *CheckoutController) Success(w http.ResponseWriter, r *http.Request) {
	c.log.Infof("📥 Success: Received %s request to %s", r.Method, r.URL.Path)

	store := service.CartFromContext(r.Context())
	snapshot, ok := c.service.Complete(r.Context(), store, service.SessionIDFromContext(r.Context()))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	c.log.Infof("✅ Success: Checkout session %s completed", snapshot.Session.SessionID)
	writeJSON(w, c.log, http.StatusOK, snapshot)
}

// Cancel handles POST /checkout/cancel
// The snapshot is cleared and returned; the cart is kept so the shopper can try again.
func (c *CheckoutController) Cancel(w http.ResponseWriter, r *http.Request) {
	c.log.Infof("📥 Cancel: Received %s request to %s", r.Method, r.URL.Path)

	snapshot, ok := c.service.Cancel(r.Context(), service.SessionIDFromContext(r.Context()))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, c.log, http.StatusOK, snapshot)
}

func (c *CheckoutController) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, pricing.ErrUnknownVariant), errors.Is(err, pricing.ErrAmountOverflow):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, service.ErrCheckoutAPI):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		http.Error(w, fmt.Sprintf("Failed to process checkout: %v", err), http.StatusInternalServerError)
	}
}
