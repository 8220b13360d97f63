package repository

import (
	"context"
	"encoding/binary"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
)

const defaultBoltBucket = "storefront"

// BoltStore is a file-backed key-value store that survives process restarts
type BoltStore struct {
	db     *bbolt.DB
	bucket []byte
	now    func() time.Time
}

// Ensure BoltStore implements KeyValueStoreInterface
var _ KeyValueStoreInterface = (*BoltStore)(nil)

// OpenBoltStore opens (or creates) a BoltDB file at the provided path
func OpenBoltStore(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store: %w", err)
	}

	store := &BoltStore{db: db, bucket: []byte(defaultBoltBucket), now: time.Now}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(store.bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}
	return store, nil
}

// Close closes the underlying BoltDB database
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value stored under key, or ErrNotFound when absent or expired
func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(s.bucket).Get([]byte(key))
		if raw == nil {
			return ErrNotFound
		}
		payload, expired, err := decodeEnvelope(raw, s.now())
		if err != nil {
			return err
		}
		if expired {
			return ErrNotFound
		}
		// bbolt memory is only valid inside the transaction
		value = append([]byte(nil), payload...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key, replacing any previous value
func (s *BoltStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).UnixNano()
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), encodeEnvelope(value, expiresAt))
	})
}

// Delete removes key; deleting an absent key is not an error
func (s *BoltStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Values are prefixed with an 8-byte big-endian expiry in Unix nanoseconds (0 = never).
func encodeEnvelope(value []byte, expiresAt int64) []byte {
	out := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(out[:8], uint64(expiresAt))
	copy(out[8:], value)
	return out
}

func decodeEnvelope(raw []byte, now time.Time) ([]byte, bool, error) {
	if len(raw) < 8 {
		return nil, false, fmt.Errorf("stored value is truncated")
	}
	expiresAt := int64(binary.BigEndian.Uint64(raw[:8]))
	if expiresAt != 0 && now.UnixNano() >= expiresAt {
		return nil, true, nil
	}
	return raw[8:], false, nil
}
