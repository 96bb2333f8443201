package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claim-router/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestMemory(t *testing.T) Store {
	t.Helper()
	s := NewMemory()
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestMemoryStore(t *testing.T) {
	storeTestSuite(t, newTestMemory)
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

func decision(id, team string) *model.DecisionRecord {
	return &model.DecisionRecord{
		ClaimID:       id,
		AssignedTeam:  team,
		Urgency:       model.UrgencyLow,
		RiskScore:     0.2,
		CustomerValue: model.ValueStandard,
		Reasoning:     []string{"Standard premium (€350.00)"},
		ClaimData: model.ClaimRecord{
			ClaimID:         id,
			PolicyholderAge: model.Ptr(34),
			ClaimRegion:     model.Ptr("Lombardy"),
			ClaimAmountPaid: model.Ptr(1200.0),
		},
		FraudIndicators: []string{},
		RoutedBy:        model.RoutedByRules,
		MatchedRule:     "standard",
		DecidedAt:       time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC),
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("SaveAndGetDecision", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		dec := decision("claim-1", "Standard Claims Processing")
		dec.Classifier = &model.ClassifierSuggestion{Department: "Standard", Confidence: 0.41}
		require.NoError(t, s.SaveDecision(ctx, dec))

		got, err := s.GetDecision(ctx, "claim-1")
		require.NoError(t, err)
		assert.Equal(t, "claim-1", got.ClaimID)
		assert.Equal(t, "Standard Claims Processing", got.AssignedTeam)
		assert.Equal(t, model.RoutedByRules, got.RoutedBy)
		assert.Equal(t, []string{"Standard premium (€350.00)"}, got.Reasoning)
		assert.Equal(t, 34, *got.ClaimData.PolicyholderAge)
		assert.Equal(t, "Lombardy", *got.ClaimData.ClaimRegion)
		assert.Nil(t, got.ClaimData.VehicleBrand)
		require.NotNil(t, got.Classifier)
		assert.InDelta(t, 0.41, got.Classifier.Confidence, 1e-9)
		assert.True(t, dec.DecidedAt.Equal(got.DecidedAt))
	})

	t.Run("AssignsMissingID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		dec := decision("", "VIP Customer Service")
		dec.ClaimData.ClaimID = ""
		require.NoError(t, s.SaveDecision(ctx, dec))
		require.NotEmpty(t, dec.ClaimID)
		assert.Equal(t, dec.ClaimID, dec.ClaimData.ClaimID)

		got, err := s.GetDecision(ctx, dec.ClaimID)
		require.NoError(t, err)
		assert.Equal(t, "VIP Customer Service", got.AssignedTeam)
		assert.Equal(t, dec.ClaimID, got.ClaimData.ClaimID)
	})

	t.Run("StampsDecidedAt", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		dec := decision("claim-1", "Standard Claims Processing")
		dec.DecidedAt = time.Time{}
		before := time.Now()
		require.NoError(t, s.SaveDecision(ctx, dec))
		require.False(t, dec.DecidedAt.IsZero())
		assert.False(t, dec.DecidedAt.Before(before.Add(-time.Second)))

		got, err := s.GetDecision(ctx, "claim-1")
		require.NoError(t, err)
		assert.True(t, dec.DecidedAt.Equal(got.DecidedAt))
	})

	t.Run("KeepsExistingDecidedAt", func(t *testing.T) {
		s := newStore(t)
		dec := decision("claim-1", "Standard Claims Processing")
		want := dec.DecidedAt
		require.NoError(t, s.SaveDecision(context.Background(), dec))
		assert.True(t, want.Equal(dec.DecidedAt))
	})

	t.Run("UsesClaimDataID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		dec := decision("", "Legal Claims Department")
		dec.ClaimData.ClaimID = "from-claim"
		require.NoError(t, s.SaveDecision(ctx, dec))
		assert.Equal(t, "from-claim", dec.ClaimID)
	})

	t.Run("LatestRecordWins", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		require.NoError(t, s.SaveDecision(ctx, decision("claim-1", "Standard Claims Processing")))
		require.NoError(t, s.SaveDecision(ctx, decision("claim-1", "Fraud Investigation Unit")))

		got, err := s.GetDecision(ctx, "claim-1")
		require.NoError(t, err)
		assert.Equal(t, "Fraud Investigation Unit", got.AssignedTeam)

		all, err := s.ListDecisions(ctx, DecisionFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})

	t.Run("GetDecisionNotFound", func(t *testing.T) {
		s := newStore(t)

		got, err := s.GetDecision(context.Background(), "nope")
		assert.Nil(t, got)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("ReturnedRecordIsACopy", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		dec := decision("claim-1", "Standard Claims Processing")
		require.NoError(t, s.SaveDecision(ctx, dec))
		dec.Reasoning[0] = "mutated"

		got, err := s.GetDecision(ctx, "claim-1")
		require.NoError(t, err)
		got.Reasoning[0] = "mutated again"

		again, err := s.GetDecision(ctx, "claim-1")
		require.NoError(t, err)
		assert.Equal(t, "Standard premium (€350.00)", again.Reasoning[0])
	})

	t.Run("ListDecisionsFilterAndPaging", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		teams := []string{"A", "B", "A", "A", "B"}
		for i, team := range teams {
			require.NoError(t, s.SaveDecision(ctx, decision(fmt.Sprintf("c%d", i), team)))
		}

		all, err := s.ListDecisions(ctx, DecisionFilter{})
		require.NoError(t, err)
		require.Len(t, all, 5)
		assert.Equal(t, "c0", all[0].ClaimID)
		assert.Equal(t, "c4", all[4].ClaimID)

		onlyA, err := s.ListDecisions(ctx, DecisionFilter{Team: "A"})
		require.NoError(t, err)
		assert.Equal(t, []string{"c0", "c2", "c3"}, ids(onlyA))

		page, err := s.ListDecisions(ctx, DecisionFilter{Team: "A", Limit: 1, Offset: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"c2"}, ids(page))

		tail, err := s.ListDecisions(ctx, DecisionFilter{Offset: 3})
		require.NoError(t, err)
		assert.Equal(t, []string{"c3", "c4"}, ids(tail))

		none, err := s.ListDecisions(ctx, DecisionFilter{Team: "missing"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("ConcurrentSavesGetUniqueIDs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		const n = 20
		decs := make([]*model.DecisionRecord, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			decs[i] = decision("", "Standard Claims Processing")
			decs[i].ClaimData.ClaimID = ""
			wg.Add(1)
			go func(d *model.DecisionRecord) {
				defer wg.Done()
				assert.NoError(t, s.SaveDecision(ctx, d))
			}(decs[i])
		}
		wg.Wait()

		seen := make(map[string]bool, n)
		for _, d := range decs {
			require.NotEmpty(t, d.ClaimID)
			assert.False(t, seen[d.ClaimID], "duplicate id %s", d.ClaimID)
			seen[d.ClaimID] = true
		}

		all, err := s.ListDecisions(ctx, DecisionFilter{})
		require.NoError(t, err)
		assert.Len(t, all, n)
	})

	t.Run("SaveNilDecision", func(t *testing.T) {
		s := newStore(t)
		assert.Error(t, s.SaveDecision(context.Background(), nil))
	})
}

func ids(decs []model.DecisionRecord) []string {
	out := make([]string, 0, len(decs))
	for _, d := range decs {
		out = append(out, d.ClaimID)
	}
	return out
}

func TestNew(t *testing.T) {
	s, err := New("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New("sqlite", filepath.Join(t.TempDir(), "claims.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = New("postgres", "")
	assert.Error(t, err)
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.SaveDecision(ctx, decision("claim-1", "A"))
	assert.ErrorIs(t, err, context.Canceled)
}
