package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestBoltStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "cart.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestBoltStoreSetGetDelete(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "storefront:cart:device-1", []byte(`{"items":[]}`), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "storefront:cart:device-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"items":[]}` {
		t.Fatalf("expected stored value, got %q", got)
	}

	if err := store.Delete(ctx, "storefront:cart:device-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "storefront:cart:device-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "storefront:cart:device-1"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestBoltStoreOverwrites(t *testing.T) {
	store := openTestBoltStore(t)
	ctx := context.Background()

	_ = store.Set(ctx, "k", []byte("one"), 0)
	_ = store.Set(ctx, "k", []byte("two"), 0)

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "two" {
		t.Fatalf("expected two, got %q", got)
	}
}

func TestBoltStoreExpiresValues(t *testing.T) {
	store := openTestBoltStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("expected value before expiry, got %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cart.db")
	ctx := context.Background()

	store, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Set(ctx, "k", []byte("durable"), 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenBoltStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "durable" {
		t.Fatalf("expected durable, got %q", got)
	}
}

func TestOpenBoltStoreRequiresPath(t *testing.T) {
	if _, err := OpenBoltStore("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}
