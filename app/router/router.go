package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"storefront-checkout/app/controller"
	"storefront-checkout/telemetry"
)

type Controllers struct {
	Cart     *controller.CartController
	Checkout *controller.CheckoutController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// SetupRoutes builds the HTTP handler. Every route but /ping runs behind the shopper middleware.
func SetupRoutes(controllers *Controllers, shopper *ShopperMiddleware) http.Handler {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware(telemetry.ServiceName))

	r.HandleFunc("/ping", pingHandler).Methods(http.MethodGet)

	s := r.NewRoute().Subrouter()
	s.Use(shopper.Middleware)

	// Cart routes
	s.HandleFunc("/cart", controllers.Cart.GetCart).Methods(http.MethodGet)
	s.HandleFunc("/cart", controllers.Cart.ClearCart).Methods(http.MethodDelete)
	s.HandleFunc("/cart/items", controllers.Cart.AddItem).Methods(http.MethodPost)
	s.HandleFunc("/cart/items/{variantId}", controllers.Cart.UpdateItem).Methods(http.MethodPatch)
	s.HandleFunc("/cart/items/{variantId}", controllers.Cart.RemoveItem).Methods(http.MethodDelete)
	s.HandleFunc("/cart/quote", controllers.Checkout.GetQuote).Methods(http.MethodGet)

	// Checkout routes
	s.HandleFunc("/checkout", controllers.Checkout.Checkout).Methods(http.MethodPost)
	s.HandleFunc("/checkout/snapshot", controllers.Checkout.GetSnapshot).Methods(http.MethodGet)
	s.HandleFunc("/checkout/success", controllers.Checkout.Success).Methods(http.MethodPost)
	s.HandleFunc("/checkout/cancel", controllers.Checkout.Cancel).Methods(http.MethodPost)

	return r
}
