package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claim-router/internal/extract"
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/pipeline"
	"github.com/sells-group/claim-router/internal/store"
)

func TestRouteInput(t *testing.T) {
	claimFile := filepath.Join(t.TempDir(), "claim.json")
	require.NoError(t, os.WriteFile(claimFile, []byte(`{"structured_data": {"CLAIM_AMOUNT_PAID": 18000}}`), 0o644))

	in, err := routeInput("Ferrari crashed in Rome.", claimFile, []string{"ignored"})
	require.NoError(t, err)
	assert.Equal(t, "Ferrari crashed in Rome.", *in.Text)

	in, err = routeInput("", claimFile, nil)
	require.NoError(t, err)
	assert.Equal(t, json.Number("18000"), in.StructuredData["CLAIM_AMOUNT_PAID"])

	in, err = routeInput("", "", []string{"Ferrari", "crashed"})
	require.NoError(t, err)
	assert.Equal(t, "Ferrari crashed", *in.Text)

	_, err = routeInput("", "", nil)
	assert.Error(t, err)

	_, err = routeInput("", filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.Error(t, err)
}

func TestDecodeClaimInput_Malformed(t *testing.T) {
	_, err := decodeClaimInput(strings.NewReader(`{"text":`))
	assert.Error(t, err)
}

func TestRouteOne(t *testing.T) {
	st := store.NewMemory()
	p := pipeline.New(nil, nil, st)
	var buf bytes.Buffer

	err := routeOne(context.Background(), p, model.ClaimInput{Text: model.Ptr("Ferrari crashed in Rome. 35 year old driver. Comprehensive insurance. Repair costs 25k.")}, false, &buf)
	require.NoError(t, err)

	var dec model.DecisionRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dec))
	assert.Equal(t, "High Value Claims - Rome", dec.AssignedTeam)
	assert.Contains(t, buf.String(), "\n  \"assigned_team\"")

	saved, err := st.ListDecisions(context.Background(), store.DecisionFilter{})
	require.NoError(t, err)
	assert.Empty(t, saved)

	buf.Reset()
	require.NoError(t, routeOne(context.Background(), p, model.ClaimInput{Text: model.Ptr("Ferrari crashed in Rome.")}, true, &buf))
	saved, err = st.ListDecisions(context.Background(), store.DecisionFilter{})
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestRouteOne_InvalidInput(t *testing.T) {
	var buf bytes.Buffer
	err := routeOne(context.Background(), pipeline.New(nil, nil, nil), model.ClaimInput{}, false, &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, extract.ErrInvalidInput))
	assert.Empty(t, buf.String())
}
