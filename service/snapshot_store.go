package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"storefront-checkout/models"
	"storefront-checkout/repository"
)

const snapshotKeyPrefix = "storefront:checkout-snapshot:"

// SnapshotKey returns the persistence key of a session's checkout snapshot
func SnapshotKey(sessionID string) string {
	return snapshotKeyPrefix + sessionID
}

// SnapshotStore keeps the checkout snapshot of each browser session across the
// redirect to the payment page. Failures never reach the caller.
type SnapshotStore struct {
	kv  repository.KeyValueStoreInterface
	ttl time.Duration
	log logrus.FieldLogger
}

// NewSnapshotStore creates a snapshot store whose entries expire after ttl
func NewSnapshotStore(kv repository.KeyValueStoreInterface, ttl time.Duration, log logrus.FieldLogger) *SnapshotStore {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SnapshotStore{kv: kv, ttl: ttl, log: log.WithField("component", "snapshot")}
}

// Stash overwrites the session's snapshot
func (s *SnapshotStore) Stash(ctx context.Context, sessionID string, snapshot models.CheckoutSnapshot) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.log.Errorf("❌ Failed to encode checkout snapshot: %v", err)
		return
	}
	if err := s.kv.Set(ctx, SnapshotKey(sessionID), data, s.ttl); err != nil {
		s.log.Errorf("❌ Failed to stash checkout snapshot: %v", err)
		return
	}
	s.log.Debugf("📋 Stashed checkout snapshot for session %s", sessionID)
}

// Read returns the session's snapshot. Missing, expired or malformed values report false.
func (s *SnapshotStore) Read(ctx context.Context, sessionID string) (*models.CheckoutSnapshot, bool) {
	data, err := s.kv.Get(ctx, SnapshotKey(sessionID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.log.Warnf("⚠️ Failed to read checkout snapshot: %v", err)
		return nil, false
	}

	var snapshot models.CheckoutSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.log.Warnf("⚠️ Checkout snapshot is malformed: %v", err)
		return nil, false
	}
	return &snapshot, true
}

// Clear removes the session's snapshot. Clearing an absent snapshot is fine.
func (s *SnapshotStore) Clear(ctx context.Context, sessionID string) {
	if err := s.kv.Delete(ctx, SnapshotKey(sessionID)); err != nil {
		s.log.Warnf("⚠️ Failed to clear checkout snapshot: %v", err)
	}
}
