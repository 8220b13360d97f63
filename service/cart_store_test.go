package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"storefront-checkout/models"
	"storefront-checkout/repository"
)

func TestCartStorePersistsEveryTransition(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()

	store := OpenCartStore(ctx, kv, "device-1", testLog)
	store.Add(ctx, earring("ear-gold", 2))
	store.Add(ctx, earring("ear-silver", 1))
	store.UpdateQty(ctx, "ear-gold", 3)

	reopened := OpenCartStore(ctx, kv, "device-1", testLog)
	if diff := cmp.Diff(store.State(), reopened.State()); diff != "" {
		t.Fatalf("reloaded cart mismatch (-want +got):\n%s", diff)
	}
	if reopened.State().TotalItems != 4 {
		t.Fatalf("expected 4 items, got %d", reopened.State().TotalItems)
	}
}

func TestCartStoreKeysAreIsolatedPerDevice(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()

	OpenCartStore(ctx, kv, "device-1", testLog).Add(ctx, earring("ear-gold", 1))

	other := OpenCartStore(ctx, kv, "device-2", testLog)
	if len(other.State().Items) != 0 {
		t.Fatalf("expected empty cart for other device, got %+v", other.State())
	}
}

func TestCartStoreLoadsEmptyWhenMalformed(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	if err := kv.Set(ctx, CartKey("device-1"), []byte("{not json"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	store := OpenCartStore(ctx, kv, "device-1", testLog)
	state := store.State()
	if len(state.Items) != 0 || state.TotalItems != 0 {
		t.Fatalf("expected empty cart, got %+v", state)
	}
}

func TestCartStoreNormalizesStoredState(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	stored := `{"items":[{"variantId":"ear-gold","qty":2},{"variantId":"ear-gold","qty":1},{"variantId":"","qty":4},{"variantId":"ear-silver","qty":0}],"totalItems":99}`
	if err := kv.Set(ctx, CartKey("device-1"), []byte(stored), 0); err != nil {
		t.Fatalf("set: %v", err)
	}

	state := OpenCartStore(ctx, kv, "device-1", testLog).State()
	want := models.CartState{
		Items:      []models.UICartItem{{VariantID: "ear-gold", Qty: 3}},
		TotalItems: 3,
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("normalized cart mismatch (-want +got):\n%s", diff)
	}
}

func TestCartStoreSurvivesBackendFailure(t *testing.T) {
	ctx := context.Background()

	store := OpenCartStore(ctx, failingStore{}, "device-1", testLog)
	state := store.Add(ctx, earring("ear-gold", 2))
	if state.TotalItems != 2 {
		t.Fatalf("expected in-memory cart to keep working, got %+v", state)
	}
}

func TestCartStoreStateIsACopy(t *testing.T) {
	ctx := context.Background()
	store := OpenCartStore(ctx, repository.NewMemoryStore(), "device-1", testLog)
	item := earring("ear-gold", 1)
	item.Options = map[string]string{"size": "M"}
	store.Add(ctx, item)

	state := store.State()
	state.Items[0].Qty = 50
	state.Items[0].Options["size"] = "XL"

	fresh := store.State()
	if fresh.Items[0].Qty != 1 || fresh.Items[0].Options["size"] != "M" {
		t.Fatalf("store state was mutated through a copy: %+v", fresh)
	}
}

func TestCartRegistryReusesStores(t *testing.T) {
	ctx := context.Background()
	registry := NewCartRegistry(repository.NewMemoryStore(), 0, testLog)

	first := registry.Open(ctx, "device-1")
	if registry.Open(ctx, "device-1") != first {
		t.Fatal("expected the same store for the same device")
	}
	if registry.Open(ctx, "device-2") == first {
		t.Fatal("expected a different store for another device")
	}

	first.Add(ctx, earring("ear-gold", 1))
	registry.Close()
	if got := registry.Open(ctx, "device-1").State().TotalItems; got != 1 {
		t.Fatalf("expected cart reloaded after close, got %d items", got)
	}
}

func TestCartFromContext(t *testing.T) {
	ctx := context.Background()
	store := OpenCartStore(ctx, repository.NewMemoryStore(), "device-1", testLog)

	if got := CartFromContext(ContextWithCart(ctx, store)); got != store {
		t.Fatal("expected the bound store")
	}
}

func TestCartFromContextPanicsWithoutStore(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	CartFromContext(context.Background())
}

func TestCartRegistryEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	registry := NewCartRegistry(kv, 10, testLog)

	registry.Open(ctx, "device-keep").Add(ctx, earring("ear-gold", 2))
	for i := 0; i < 1000; i++ {
		registry.Open(ctx, fmt.Sprintf("device-%d", i))
	}
	if got := registry.Len(); got != 10 {
		t.Fatalf("expected 10 cached stores, got %d", got)
	}

	if got := registry.Open(ctx, "device-keep").State().TotalItems; got != 2 {
		t.Fatalf("expected evicted cart reloaded with 2 items, got %d", got)
	}
}

func TestCartRegistrySeesWritesFromOtherInstances(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryStore()
	first := NewCartRegistry(kv, 0, testLog)
	second := NewCartRegistry(kv, 0, testLog)

	first.Open(ctx, "device-1").Add(ctx, earring("ear-gold", 1))
	second.Open(ctx, "device-1").Add(ctx, earring("ear-gold", 2))

	state := first.Open(ctx, "device-1").State()
	if state.TotalItems != 3 {
		t.Fatalf("expected 3 items after writes from both instances, got %+v", state)
	}
	if got := first.Open(ctx, "device-1").Add(ctx, earring("ear-silver", 1)).TotalItems; got != 4 {
		t.Fatalf("expected 4 items, got %d", got)
	}
}

// flakyStore fails reads once armed
type flakyStore struct {
	*repository.MemoryStore
	failReads bool
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.failReads {
		return nil, errors.New("connection reset")
	}
	return f.MemoryStore.Get(ctx, key)
}

func TestCartStoreKeepsCachedCartWhenRefreshFails(t *testing.T) {
	ctx := context.Background()
	kv := &flakyStore{MemoryStore: repository.NewMemoryStore()}
	store := OpenCartStore(ctx, kv, "device-1", testLog)
	store.Add(ctx, earring("ear-gold", 2))

	kv.failReads = true
	store.Refresh(ctx)
	if got := store.Add(ctx, earring("ear-gold", 1)).TotalItems; got != 3 {
		t.Fatalf("expected cached cart kept on read failure, got %d items", got)
	}
}
