package repository

import (
	"context"
	"testing"
)

func TestRedisStorePingUnreachable(t *testing.T) {
	store := NewRedisStore("127.0.0.1:1")
	defer store.Close()

	if err := store.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail against a closed port")
	}
}

func TestRedisStoreAcceptsURL(t *testing.T) {
	store := NewRedisStore("redis://127.0.0.1:1/2")
	defer store.Close()

	if got := store.client.Options().DB; got != 2 {
		t.Fatalf("expected db 2 from url, got %d", got)
	}
}
