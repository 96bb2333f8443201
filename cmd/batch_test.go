package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/claim-router/internal/fetcher"
	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/pipeline"
	"github.com/sells-group/claim-router/internal/router"
)

const claimsCSV = `CLAIM_ID,POLICYHOLDER_AGE,WARRANTY,CLAIM_AMOUNT_PAID,PREMIUM_AMOUNT_PAID,CLAIM_REGION,VEHICLE_BRAND
H1,45,comprehensive,16000,400,Lombardy,Fiat
H2,30,third-party liability,3000,300,Lombardy,Fiat
H3,38,collision,800,900,Lombardy,Fiat
H4,50,collision,40000,300,,
H5,29,collision,500,200,Lombardy,Fiat
`

func TestProcessBatch_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.csv")
	require.NoError(t, os.WriteFile(path, []byte(claimsCSV), 0o644))

	claims, err := fetcher.ReadClaims(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, claims, 5)

	var out, summary bytes.Buffer
	err = processBatch(context.Background(), pipeline.New(nil, nil, nil), claims, pipeline.BatchOptions{Concurrency: 3}, &out, &summary)
	require.NoError(t, err)

	var got []pipeline.Result
	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		var r pipeline.Result
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		got = append(got, r)
	}
	require.NoError(t, sc.Err())
	require.Len(t, got, 5)

	want := []struct {
		id   string
		team string
	}{
		{"H1", "High Value Claims - Lombardy"},
		{"H2", router.TeamLegal},
		{"H3", router.TeamVIP},
		{"H4", router.TeamFraud},
		{"H5", router.TeamStandard},
	}
	for i, w := range want {
		assert.Equal(t, i, got[i].Index)
		require.NotNil(t, got[i].Decision, w.id)
		assert.Equal(t, w.id, got[i].Decision.ClaimID)
		assert.Equal(t, w.team, got[i].Decision.AssignedTeam, w.id)
	}

	assert.Contains(t, summary.String(), "Routed 5 claims (0 failed)")
	assert.Contains(t, summary.String(), "Potential fraud: 1 (20.0%)")
	assert.Contains(t, summary.String(), router.TeamFraud)
}

func TestProcessBatch_FailedClaimsReported(t *testing.T) {
	claims := []model.ClaimInput{
		{},
		{StructuredData: map[string]any{"CLAIM_ID": "ok", "CLAIM_AMOUNT_PAID": "100"}},
	}

	var out, summary bytes.Buffer
	err := processBatch(context.Background(), pipeline.New(nil, nil, nil), claims, pipeline.BatchOptions{Concurrency: 1}, &out, &summary)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"error":`)
	assert.Contains(t, string(lines[1]), `"claim_id":"ok"`)
	assert.Contains(t, summary.String(), "Routed 1 claims (1 failed)")
}

func TestProcessBatch_Empty(t *testing.T) {
	var out, summary bytes.Buffer
	require.NoError(t, processBatch(context.Background(), pipeline.New(nil, nil, nil), nil, pipeline.BatchOptions{}, &out, &summary))
	assert.Empty(t, out.String())
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, sortedKeys(map[string]int{"a": 1, "b": 3, "c": 1}))
}
