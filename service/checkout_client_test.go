package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront-checkout/models"
)

func TestCheckoutClientCreateSession(t *testing.T) {
	var got models.CheckoutPayload
	var idempotency string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		idempotency = r.Header.Get("Idempotency-Key")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sessionId":"cs_42","url":"https://pay.example.com/cs_42"}`))
	}))
	defer srv.Close()

	payload := models.CheckoutPayload{
		Items:  []models.CheckoutItem{{CollectionID: "earrings", VariantID: "ear-gold", Qty: 1, Name: "Hoop", UnitPriceCents: 1200}},
		Totals: models.CheckoutTotals{Currency: "CAD", PreDiscountTotalCents: 1200, GrandTotalCents: 1200},
		Quote:  models.QuoteMetadata{Signature: "sig-abc"},
	}

	session, err := NewCheckoutClient(srv.URL, time.Second).CreateSession(context.Background(), payload, "key-abc")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if session.SessionID != "cs_42" {
		t.Fatalf("expected cs_42, got %q", session.SessionID)
	}
	if idempotency != "key-abc" {
		t.Fatalf("expected idempotency key key-abc, got %q", idempotency)
	}
	if len(got.Items) != 1 || got.Items[0].VariantID != "ear-gold" {
		t.Fatalf("unexpected payload received %+v", got)
	}
}

func TestCheckoutClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quote expired", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewCheckoutClient(srv.URL, time.Second).CreateSession(context.Background(), models.CheckoutPayload{}, "")
	if !errors.Is(err, ErrCheckoutAPI) {
		t.Fatalf("expected ErrCheckoutAPI, got %v", err)
	}
}

func TestCheckoutClientIncompleteResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"sessionId":"cs_1"}`))
	}))
	defer srv.Close()

	_, err := NewCheckoutClient(srv.URL, time.Second).CreateSession(context.Background(), models.CheckoutPayload{}, "")
	if !errors.Is(err, ErrCheckoutAPI) {
		t.Fatalf("expected ErrCheckoutAPI, got %v", err)
	}
}

func TestCheckoutClientNotConfigured(t *testing.T) {
	_, err := NewCheckoutClient("", time.Second).CreateSession(context.Background(), models.CheckoutPayload{}, "")
	if !errors.Is(err, ErrCheckoutAPI) {
		t.Fatalf("expected ErrCheckoutAPI, got %v", err)
	}
}

func TestCheckoutClientGeneratesKeyWhenMissing(t *testing.T) {
	var idempotency string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idempotency = r.Header.Get("Idempotency-Key")
		w.Write([]byte(`{"sessionId":"cs_1","url":"https://pay.example.com/cs_1"}`))
	}))
	defer srv.Close()

	if _, err := NewCheckoutClient(srv.URL, time.Second).CreateSession(context.Background(), models.CheckoutPayload{}, ""); err != nil {
		t.Fatalf("create session: %v", err)
	}
	if idempotency == "" {
		t.Fatal("expected a generated idempotency key")
	}
}
