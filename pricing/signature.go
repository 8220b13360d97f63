package pricing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront-checkout/models"
)

var (
	// ErrQuoteSignatureMismatch is returned when a quote does not match its cart or secret
	ErrQuoteSignatureMismatch = errors.New("quote signature mismatch")
	// ErrQuoteExpired is returned when a quote is verified after its expiry
	ErrQuoteExpired = errors.New("quote expired")
)

// Signer binds quotes to the cart they were computed for
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. A zero ttl defaults to 15 minutes.
func NewSigner(secret string, ttl time.Duration, now func() time.Time) *Signer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: now}
}

// NormalizeLines returns the canonical JSON form of the cart lines: merged by variant,
// non-positive quantities dropped, sorted by collection then variant.
func NormalizeLines(lines []models.CartLine) (string, error) {
	merged := make(map[string]models.CartLine)
	for _, line := range lines {
		if line.Qty <= 0 || line.VariantID == "" {
			continue
		}
		existing := merged[line.VariantID]
		existing.CollectionID = line.CollectionID
		existing.VariantID = line.VariantID
		existing.Qty += line.Qty
		merged[line.VariantID] = existing
	}

	normalized := make([]models.CartLine, 0, len(merged))
	for _, line := range merged {
		normalized = append(normalized, line)
	}
	sort.Slice(normalized, func(i, j int) bool {
		if normalized[i].CollectionID != normalized[j].CollectionID {
			return normalized[i].CollectionID < normalized[j].CollectionID
		}
		return normalized[i].VariantID < normalized[j].VariantID
	})

	data, err := json.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("failed to marshal normalized cart: %w", err)
	}
	return string(data), nil
}

// HashLines returns the hex SHA-256 of the normalized cart
func HashLines(lines []models.CartLine) (string, error) {
	normalized, err := NormalizeLines(lines)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), nil
}

// Sign issues metadata for a quote computed over the given lines
func (s *Signer) Sign(lines []models.CartLine, quote models.CartQuoteResponse) (models.SignedQuote, error) {
	normalized, err := NormalizeLines(lines)
	if err != nil {
		return models.SignedQuote{}, err
	}
	sum := sha256.Sum256([]byte(normalized))
	issuedAt := s.now().UTC()
	expiresAt := issuedAt.Add(s.ttl)

	return models.SignedQuote{
		Quote: quote,
		Metadata: models.QuoteMetadata{
			Signature:      s.signature(normalized, issuedAt, expiresAt),
			NormalizedHash: hex.EncodeToString(sum[:]),
			IssuedAt:       issuedAt,
			ExpiresAt:      expiresAt,
		},
	}, nil
}

// Verify checks that the metadata was issued by this signer for these lines and has not expired
func (s *Signer) Verify(lines []models.CartLine, meta models.QuoteMetadata) error {
	normalized, err := NormalizeLines(lines)
	if err != nil {
		return err
	}
	expected := s.signature(normalized, meta.IssuedAt.UTC(), meta.ExpiresAt.UTC())
	if !hmac.Equal([]byte(expected), []byte(meta.Signature)) {
		return ErrQuoteSignatureMismatch
	}
	if !s.now().Before(meta.ExpiresAt) {
		return ErrQuoteExpired
	}
	return nil
}

func (s *Signer) signature(normalized string, issuedAt, expiresAt time.Time) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(normalized))
	mac.Write([]byte("|" + issuedAt.Format(time.RFC3339Nano)))
	mac.Write([]byte("|" + expiresAt.Format(time.RFC3339Nano)))
	return hex.EncodeToString(mac.Sum(nil))
}
