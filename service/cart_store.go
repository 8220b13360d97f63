package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"storefront-checkout/cart"
	"storefront-checkout/models"
	"storefront-checkout/repository"
)

const cartKeyPrefix = "storefront:cart:"

// CartKey returns the persistence key of a device's cart
func CartKey(deviceID string) string {
	return cartKeyPrefix + deviceID
}

// CartStore owns one shopper's cart. Every transition is applied under a lock
// and the result is written back through the key-value store.
type CartStore struct {
	mu    sync.Mutex
	key   string
	kv    repository.KeyValueStoreInterface
	state models.CartState
	log   logrus.FieldLogger
}

// OpenCartStore loads the cart saved under the device key.
// An absent, unreadable or malformed value yields the empty cart.
func OpenCartStore(ctx context.Context, kv repository.KeyValueStoreInterface, deviceID string, log logrus.FieldLogger) *CartStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &CartStore{
		key:   CartKey(deviceID),
		kv:    kv,
		state: cart.Empty(),
		log:   log.WithField("cart", deviceID),
	}
	s.state = s.load(ctx)
	return s
}

func (s *CartStore) load(ctx context.Context) models.CartState {
	state, err := s.read(ctx)
	if err != nil {
		s.log.Warnf("⚠️ Failed to load cart, starting empty: %v", err)
		return cart.Empty()
	}
	return state
}

// read returns the stored cart. Absent or malformed values read as the empty cart;
// only backend failures are returned.
func (s *CartStore) read(ctx context.Context) (models.CartState, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, repository.ErrNotFound) {
		return cart.Empty(), nil
	}
	if err != nil {
		return models.CartState{}, err
	}

	var state models.CartState
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.Warnf("⚠️ Stored cart is malformed, starting empty: %v", err)
		return cart.Empty(), nil
	}
	return cart.Normalize(state), nil
}

// refresh replaces the in-memory cart with the stored one, so writes made by other
// instances are seen. On a backend failure the in-memory cart is kept. Callers hold mu.
func (s *CartStore) refresh(ctx context.Context) {
	state, err := s.read(ctx)
	if err != nil {
		s.log.Warnf("⚠️ Failed to refresh cart, keeping cached copy: %v", err)
		return
	}
	s.state = state
}

// Refresh reloads the cart from the key-value store
func (s *CartStore) Refresh(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
}

func (s *CartStore) save(ctx context.Context, state models.CartState) {
	data, err := json.Marshal(state)
	if err != nil {
		s.log.Errorf("❌ Failed to encode cart: %v", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, data, 0); err != nil {
		s.log.Errorf("❌ Failed to save cart: %v", err)
	}
}

// State returns a copy of the current cart
func (s *CartStore) State() models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cart.Clone(s.state)
}

// Dispatch applies an action, persists the result and returns a copy of it
func (s *CartStore) Dispatch(ctx context.Context, action cart.Action) models.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	s.state = cart.Reduce(s.state, action)
	s.save(ctx, s.state)
	return cart.Clone(s.state)
}

func (s *CartStore) Add(ctx context.Context, item models.UICartItem) models.CartState {
	return s.Dispatch(ctx, cart.Add{Item: item})
}

func (s *CartStore) Remove(ctx context.Context, variantID string) models.CartState {
	return s.Dispatch(ctx, cart.Remove{VariantID: variantID})
}

func (s *CartStore) UpdateQty(ctx context.Context, variantID string, qty int) models.CartState {
	return s.Dispatch(ctx, cart.UpdateQty{VariantID: variantID, Qty: qty})
}

func (s *CartStore) Clear(ctx context.Context) models.CartState {
	return s.Dispatch(ctx, cart.Clear{})
}

// DefaultCartCacheSize bounds the number of cart stores a registry keeps open
const DefaultCartCacheSize = 10000

// CartRegistry hands out one CartStore per device. Stores are kept in an LRU cache;
// an evicted store is reloaded from the key-value store on the next request.
type CartRegistry struct {
	mu     sync.Mutex
	kv     repository.KeyValueStoreInterface
	stores *lru.Cache
	log    logrus.FieldLogger
}

// NewCartRegistry creates a registry backed by kv holding at most size stores.
// A non-positive size uses DefaultCartCacheSize.
func NewCartRegistry(kv repository.KeyValueStoreInterface, size int, log logrus.FieldLogger) *CartRegistry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if size <= 0 {
		size = DefaultCartCacheSize
	}
	// lru.New only fails for a non-positive size
	stores, _ := lru.New(size)
	return &CartRegistry{
		kv:     kv,
		stores: stores,
		log:    log.WithField("component", "cart"),
	}
}

// Open returns the device's store, loading it on first use and refreshing it otherwise
func (r *CartRegistry) Open(ctx context.Context, deviceID string) *CartStore {
	r.mu.Lock()
	if cached, exists := r.stores.Get(deviceID); exists {
		r.mu.Unlock()
		store := cached.(*CartStore)
		store.Refresh(ctx)
		return store
	}
	store := OpenCartStore(ctx, r.kv, deviceID, r.log)
	r.stores.Add(deviceID, store)
	r.mu.Unlock()
	return store
}

// Len returns the number of cached stores
func (r *CartRegistry) Len() int {
	return r.stores.Len()
}

// Close releases every open store. Carts are saved on each transition so nothing is flushed.
func (r *CartRegistry) Close() {
	r.stores.Purge()
}

type cartContextKey struct{}

// ContextWithCart binds a cart store to a request context
func ContextWithCart(ctx context.Context, store *CartStore) context.Context {
	return context.WithValue(ctx, cartContextKey{}, store)
}

// CartFromContext returns the cart store bound to ctx.
// It panics when none is bound: handlers reading the cart must run behind the cart middleware.
func CartFromContext(ctx context.Context) *CartStore {
	store, ok := ctx.Value(cartContextKey{}).(*CartStore)
	if !ok || store == nil {
		panic("service: no cart store bound to context")
	}
	return store
}
