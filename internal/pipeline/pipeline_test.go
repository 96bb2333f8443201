package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claim-router/internal/extract"
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/router"
	"github.com/sells-group/claim-router/internal/store"
)

const textBMW = "I'm a 65-year-old policyholder. I live in Milan. My BMW 5 Series was hit by another vehicle. Claim type: third-party liability. Claim is around €18,000."

// mockStore implements store.Store for testing save failures.
type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveDecision(ctx context.Context, dec *model.DecisionRecord) error {
	return m.Called(ctx, dec).Error(0)
}

func (m *mockStore) GetDecision(ctx context.Context, id string) (*model.DecisionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DecisionRecord), args.Error(1)
}

func (m *mockStore) ListDecisions(ctx context.Context, f store.DecisionFilter) ([]model.DecisionRecord, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.DecisionRecord), args.Error(1)
}

func (m *mockStore) Migrate(context.Context) error { return nil }
func (m *mockStore) Close() error                  { return nil }

func newTestPipeline(st store.Store) *Pipeline {
	return New(
		extract.New(extract.WithRecognizer(extract.NewLexiconRecognizer())),
		router.New(),
		st,
	)
}

func TestSubmit_SavesDecision(t *testing.T) {
	st := store.NewMemory()
	p := newTestPipeline(st)
	ctx := context.Background()

	dec, err := p.Submit(ctx, model.ClaimInput{Text: model.Ptr(textBMW)})
	require.NoError(t, err)
	assert.Equal(t, "High Value Claims - Milan", dec.AssignedTeam)
	assert.Equal(t, model.UrgencyHigh, dec.Urgency)

	got, err := st.GetDecision(ctx, dec.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, dec.AssignedTeam, got.AssignedTeam)
	assert.Equal(t, dec.Reasoning, got.Reasoning)
	assert.False(t, dec.DecidedAt.IsZero())
	assert.True(t, dec.DecidedAt.Equal(got.DecidedAt))

	// Mutating the returned record must not reach the store.
	dec.Reasoning[0] = "changed"
	got, err = st.GetDecision(ctx, dec.ClaimID)
	require.NoError(t, err)
	assert.NotEqual(t, "changed", got.Reasoning[0])
}

func TestSubmit_StructuredInput(t *testing.T) {
	p := newTestPipeline(store.NewMemory())

	dec, err := p.Submit(context.Background(), model.ClaimInput{StructuredData: map[string]any{
		"CLAIM_ID":            "CLM-9",
		"POLICYHOLDER_AGE":    30,
		"PREMIUM_AMOUNT_PAID": 950,
		"CLAIM_AMOUNT_PAID":   900,
		"CLAIM_REGION":        "Lombardy",
	}})
	require.NoError(t, err)
	assert.Equal(t, "CLM-9", dec.ClaimID)
	assert.Equal(t, model.ValueVIP, dec.CustomerValue)
	assert.Equal(t, router.TeamVIP, dec.AssignedTeam)
}

func TestSubmit_InvalidInput(t *testing.T) {
	st := new(mockStore)
	p := newTestPipeline(st)

	_, err := p.Submit(context.Background(), model.ClaimInput{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrInvalidInput))
	st.AssertNotCalled(t, "SaveDecision", mock.Anything, mock.Anything)
}

func TestSubmit_SaveError(t *testing.T) {
	st := new(mockStore)
	st.On("SaveDecision", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	p := newTestPipeline(st)

	dec, err := p.Submit(context.Background(), model.ClaimInput{Text: model.Ptr(textBMW)})
	assert.Nil(t, dec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	st.AssertExpectations(t)
}

func TestSubmit_NilStore(t *testing.T) {
	p := newTestPipeline(nil)

	dec, err := p.Submit(context.Background(), model.ClaimInput{Text: model.Ptr(textBMW)})
	require.NoError(t, err)
	assert.NotEmpty(t, dec.ClaimID)
	assert.Nil(t, p.Store())
}

func TestRoute_DoesNotSave(t *testing.T) {
	st := store.NewMemory()
	p := newTestPipeline(st)
	ctx := context.Background()

	dec, err := p.Route(ctx, model.ClaimInput{Text: model.Ptr(textBMW)})
	require.NoError(t, err)
	assert.True(t, dec.DecidedAt.IsZero())

	_, err = st.GetDecision(ctx, dec.ClaimID)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestNew_Defaults(t *testing.T) {
	p := New(nil, nil, nil)

	dec, err := p.Route(context.Background(), model.ClaimInput{StructuredData: map[string]any{"CLAIM_AMOUNT_PAID": 100}})
	require.NoError(t, err)
	assert.Equal(t, router.TeamStandard, dec.AssignedTeam)
}

func TestRunBatch_OrderAndFailures(t *testing.T) {
	st := store.NewMemory()
	p := newTestPipeline(st)
	ctx := context.Background()

	claims := []model.ClaimInput{
		{StructuredData: map[string]any{"CLAIM_ID": "A", "POLICYHOLDER_AGE": 40, "VEHICLE_BRAND": "Fiat", "CLAIM_AMOUNT_PAID": 20000, "CLAIM_REGION": "Lazio"}},
		{},
		{StructuredData: map[string]any{"CLAIM_ID": "C", "WARRANTY": "Third-Party Liability", "CLAIM_AMOUNT_PAID": 2000}},
		{StructuredData: map[string]any{"CLAIM_ID": "D", "CLAIM_AMOUNT_PAID": 100}},
	}

	results, err := p.RunBatch(ctx, claims, BatchOptions{Concurrency: 3, Save: true})
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, "High Value Claims - Lazio", results[0].Decision.AssignedTeam)
	assert.Nil(t, results[1].Decision)
	assert.True(t, errors.Is(results[1].Err, extract.ErrInvalidInput))
	assert.NotEmpty(t, results[1].Error)
	assert.Equal(t, router.TeamLegal, results[2].Decision.AssignedTeam)
	assert.Equal(t, router.TeamStandard, results[3].Decision.AssignedTeam)

	decs := Decisions(results)
	require.Len(t, decs, 3)
	assert.Equal(t, []string{"A", "C", "D"}, []string{decs[0].ClaimID, decs[1].ClaimID, decs[2].ClaimID})

	saved, err := st.ListDecisions(ctx, store.DecisionFilter{})
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestRunBatch_NoSave(t *testing.T) {
	st := store.NewMemory()
	p := newTestPipeline(st)
	ctx := context.Background()

	results, err := p.RunBatch(ctx, []model.ClaimInput{{Text: model.Ptr(textBMW)}}, BatchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Decision)

	saved, err := st.ListDecisions(ctx, store.DecisionFilter{})
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestRunBatch_Canceled(t *testing.T) {
	p := newTestPipeline(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	claims := make([]model.ClaimInput, 5)
	for i := range claims {
		claims[i] = model.ClaimInput{Text: model.Ptr(textBMW)}
	}

	results, err := p.RunBatch(ctx, claims, BatchOptions{Concurrency: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Len(t, results, 5)
}

func TestWithStore(t *testing.T) {
	p := newTestPipeline(nil)
	st := store.NewMemory()
	withStore := p.WithStore(st)

	assert.Nil(t, p.Store())
	assert.Same(t, st, withStore.Store())

	dec, err := withStore.Submit(context.Background(), model.ClaimInput{Text: model.Ptr(textBMW)})
	require.NoError(t, err)
	_, err = st.GetDecision(context.Background(), dec.ClaimID)
	assert.NoError(t, err)
}
