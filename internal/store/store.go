package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claim-router/internal/model"
)

// ErrNotFound is returned when no decision exists for a claim ID.
var ErrNotFound = eris.New("store: decision not found")

// DecisionFilter specifies criteria for listing decisions.
type DecisionFilter struct {
	Team   string `json:"team,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store keeps routing decisions. Decisions are append-only: saving a claim
// ID twice keeps both records and GetDecision returns the latest.
type Store interface {
	// SaveDecision takes ownership of dec. A missing claim ID is assigned
	// while the store holds its write lock, so concurrent saves never race
	// on ID assignment.
	SaveDecision(ctx context.Context, dec *model.DecisionRecord) error
	GetDecision(ctx context.Context, claimID string) (*model.DecisionRecord, error)
	// ListDecisions returns decisions in insertion order. A zero Limit
	// returns everything after Offset.
	ListDecisions(ctx context.Context, filter DecisionFilter) ([]model.DecisionRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// New opens the store named by driver ("memory" or "sqlite").
func New(driver, dsn string) (Store, error) {
	switch driver {
	case "", "memory":
		return NewMemory(), nil
	case "sqlite":
		return NewSQLite(dsn)
	default:
		return nil, eris.Errorf("store: unknown driver %q", driver)
	}
}

// assignID fills in the claim ID and the decision time. Callers hold the
// store's lock or transaction.
func assignID(dec *model.DecisionRecord) {
	if dec.DecidedAt.IsZero() {
		dec.DecidedAt = time.Now().UTC()
	}
	if dec.ClaimID == "" {
		dec.ClaimID = dec.ClaimData.ClaimID
	}
	if dec.ClaimID == "" {
		dec.ClaimID = model.NewClaimID()
	}
	dec.ClaimData.ClaimID = dec.ClaimID
}
