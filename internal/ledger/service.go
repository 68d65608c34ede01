package ledger

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/sokoplace/sokoplace-backend/pkg/errors"
)

// Entry is one buyer's recorded purchase intent: the expected amount plus the
// delivery selection the order must be materialized with. Amount is in major
// currency units. RecordedAt drives lazy expiry on read, independent of
// whatever TTL the backing store enforces on its own.
type Entry struct {
	Amount         decimal.Decimal `json:"amount"`
	ContactPhone   string          `json:"contact_phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	DeliveryMethod string          `json:"delivery_method,omitempty"`
	RecordedAt     time.Time       `json:"recorded_at"`
}

// Store is the persistence surface the ledger writes through. Implementations
// keep at most one entry per buyer.
type Store interface {
	Put(ctx context.Context, buyerID string, payload []byte, ttl time.Duration) error
	Get(ctx context.Context, buyerID string) ([]byte, bool, error)
	Delete(ctx context.Context, buyerID string) error
}

// Service records what a buyer is expected to pay, together with the delivery
// selection they submitted, so the payment callback can reconcile the
// gateway's figure and materialize the order as it was checked out.
type Service interface {
	// Record stores the buyer's purchase intent, replacing any previous
	// entry regardless of its age. RecordedAt is stamped here; any value
	// on the input entry is ignored.
	Record(ctx context.Context, buyerID string, entry Entry) error
	// Read returns the buyer's entry if one exists and is still fresh.
	// Stale entries are deleted and reported as absent.
	Read(ctx context.Context, buyerID string) (*Entry, error)
	// Clear removes the buyer's entry. Clearing an absent entry is not an error.
	Clear(ctx context.Context, buyerID string) error
}

type service struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewService builds the ledger service. ttl bounds how long a recorded amount
// stays usable for reconciliation.
func NewService(store Store, ttl time.Duration) (Service, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger store is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &service{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

func (s *service) Record(ctx context.Context, buyerID string, entry Entry) error {
	if buyerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	entry.RecordedAt = s.now().UTC()
	payload, err := json.Marshal(entry)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding ledger entry")
	}
	if err := s.store.Put(ctx, buyerID, payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "recording expected amount")
	}
	return nil
}

func (s *service) Read(ctx context.Context, buyerID string) (*Entry, error) {
	if buyerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	payload, found, err := s.store.Get(ctx, buyerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading expected amount")
	}
	if !found {
		return nil, nil
	}
	var entry Entry
	if err := json.Unmarshal(payload, &entry); err != nil {
		// A corrupt entry cannot be reconciled against. Drop it rather than
		// blocking the buyer's verification forever.
		_ = s.store.Delete(ctx, buyerID)
		return nil, nil
	}
	if s.now().Sub(entry.RecordedAt) > s.ttl {
		_ = s.store.Delete(ctx, buyerID)
		return nil, nil
	}
	return &entry, nil
}

func (s *service) Clear(ctx context.Context, buyerID string) error {
	if buyerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if err := s.store.Delete(ctx, buyerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing expected amount")
	}
	return nil
}
