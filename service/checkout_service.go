package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront-checkout/cart"
	"storefront-checkout/checkout"
	"storefront-checkout/models"
	"storefront-checkout/pricing"
	"storefront-checkout/repository"
)

// ErrEmptyCart is returned when checking out a cart with no items
var ErrEmptyCart = errors.New("cart is empty")

// CheckoutService prices carts and runs the checkout hand-off
type CheckoutService struct {
	catalog   repository.CatalogRepositoryInterface
	engine    *pricing.Engine
	signer    *pricing.Signer
	sessions  CheckoutSessionCreator
	snapshots *SnapshotStore
	redirects checkout.Redirects
	now       func() time.Time
	tracer    trace.Tracer
	log       logrus.FieldLogger
}

// CheckoutServiceConfig groups the collaborators of a CheckoutService
type CheckoutServiceConfig struct {
	Catalog   repository.CatalogRepositoryInterface
	Engine    *pricing.Engine
	Signer    *pricing.Signer
	Sessions  CheckoutSessionCreator
	Snapshots *SnapshotStore
	Redirects checkout.Redirects
	Now       func() time.Time
	Log       logrus.FieldLogger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(cfg CheckoutServiceConfig) *CheckoutService {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	engine := cfg.Engine
	if engine == nil {
		engine = pricing.NewEngine(log)
	}
	signer := cfg.Signer
	if signer == nil {
		signer = pricing.NewSigner("", 0, now)
	}
	return &CheckoutService{
		catalog:   cfg.Catalog,
		engine:    engine,
		signer:    signer,
		sessions:  cfg.Sessions,
		snapshots: cfg.Snapshots,
		redirects: cfg.Redirects,
		now:       now,
		tracer:    otel.Tracer("storefront-checkout/service"),
		log:       log.WithField("component", "checkout"),
	}
}

// Quote fetches the catalog for the cart's variants and returns a signed quote
func (s *CheckoutService) Quote(ctx context.Context, state models.CartState) (models.SignedQuote, error) {
	lines := cart.Lines(state)

	catalog, err := s.catalog.GetCatalog(ctx, variantIDs(lines))
	if err != nil {
		return models.SignedQuote{}, fmt.Errorf("failed to get catalog: %w", err)
	}

	quote, err := s.engine.Quote(lines, catalog)
	if err != nil {
		return models.SignedQuote{}, fmt.Errorf("failed to price cart: %w", err)
	}

	signed, err := s.signer.Sign(lines, *quote)
	if err != nil {
		return models.SignedQuote{}, fmt.Errorf("failed to sign quote: %w", err)
	}
	return signed, nil
}

// VerifyQuote checks that metadata still matches the cart and has not expired
func (s *CheckoutService) VerifyQuote(state models.CartState, meta models.QuoteMetadata) error {
	return s.signer.Verify(cart.Lines(state), meta)
}

// Checkout prices the cart afresh, submits the payload to the checkout API and stashes
// the snapshot under the session. Redirect URLs left empty fall back to the configured ones.
func (s *CheckoutService) Checkout(ctx context.Context, store *CartStore, sessionID string, redirects checkout.Redirects) (*models.CheckoutSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "checkout.Submit")
	defer span.End()

	state := store.State()
	if len(state.Items) == 0 {
		return nil, ErrEmptyCart
	}

	signed, err := s.Quote(ctx, state)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "quote failed")
		return nil, err
	}

	if redirects.SuccessURL == "" {
		redirects.SuccessURL = s.redirects.SuccessURL
	}
	if redirects.CancelURL == "" {
		redirects.CancelURL = s.redirects.CancelURL
	}
	payload := checkout.BuildPayload(state, signed, redirects)

	span.SetAttributes(
		attribute.Int("cart.total_items", state.TotalItems),
		attribute.Int64("quote.grand_total_cents", signed.Quote.GrandTotalCents),
		attribute.String("quote.currency", signed.Quote.Currency),
	)

	s.log.Infof("💳 Submitting checkout: items=%d, total=%d %s", state.TotalItems, signed.Quote.GrandTotalCents, signed.Quote.Currency)
	session, err := s.sessions.CreateSession(ctx, payload, IdempotencyKey(sessionID, signed))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create session failed")
		s.log.Errorf("❌ Checkout session failed: %v", err)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	snapshot := models.CheckoutSnapshot{
		Payload: payload,
		Quote:   signed.Quote,
		Session: *session,
		SavedAt: s.now().UTC(),
	}
	s.snapshots.Stash(ctx, sessionID, snapshot)

	s.log.Infof("✅ Checkout session %s created", session.SessionID)
	return &snapshot, nil
}

// Snapshot returns the stashed snapshot of the session
func (s *CheckoutService) Snapshot(ctx context.Context, sessionID string) (*models.CheckoutSnapshot, bool) {
	return s.snapshots.Read(ctx, sessionID)
}

// Complete handles the return from a successful payment: the cart and the snapshot are cleared.
// The snapshot read before clearing is returned for the confirmation page.
func (s *CheckoutService) Complete(ctx context.Context, store *CartStore, sessionID string) (*models.CheckoutSnapshot, bool) {
	snapshot, ok := s.snapshots.Read(ctx, sessionID)
	store.Clear(ctx)
	s.snapshots.Clear(ctx, sessionID)
	return snapshot, ok
}

// Cancel handles the return from an abandoned payment: the snapshot is cleared, the cart kept.
func (s *CheckoutService) Cancel(ctx context.Context, sessionID string) (*models.CheckoutSnapshot, bool) {
	snapshot, ok := s.snapshots.Read(ctx, sessionID)
	s.snapshots.Clear(ctx, sessionID)
	return snapshot, ok
}

// IdempotencyKey identifies a checkout attempt by browser session, cart contents and totals.
// Retrying the same cart at the same prices from the same session yields the same key.
func IdempotencyKey(sessionID string, signed models.SignedQuote) string {
	name := fmt.Sprintf("%s|%s|%d|%s", sessionID, signed.Metadata.NormalizedHash,
		signed.Quote.GrandTotalCents, signed.Quote.Currency)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// variantIDs returns the distinct variants of the lines, sorted
func variantIDs(lines []models.CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		if _, exists := seen[line.VariantID]; exists {
			continue
		}
		seen[line.VariantID] = struct{}{}
		ids = append(ids, line.VariantID)
	}
	sort.Strings(ids)
	return ids
}
