package model

import (
	"encoding/json"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClaimID_Format(t *testing.T) {
	re := regexp.MustCompile(`^CLAIM-[0-9A-F]{8}$`)
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewClaimID()
		assert.Regexp(t, re, id)
		seen[id] = true
	}
	// Not guaranteed unique, but 200 draws from 32 bits should not collide.
	assert.Len(t, seen, 200)
}

func TestClaimRecord_CloneIsDeep(t *testing.T) {
	orig := ClaimRecord{
		PolicyholderAge: Ptr(65),
		ClaimRegion:     Ptr("Milan"),
		ClaimAmountPaid: Ptr(18000.0),
		Fraud: &FraudAssessment{
			Score:      0.4,
			Indicators: []string{"a"},
		},
	}

	cp := orig.Clone()
	*cp.PolicyholderAge = 30
	*cp.ClaimRegion = "Rome"
	cp.Fraud.Indicators[0] = "b"

	assert.Equal(t, 65, *orig.PolicyholderAge)
	assert.Equal(t, "Milan", *orig.ClaimRegion)
	assert.Equal(t, "a", orig.Fraud.Indicators[0])
	assert.Nil(t, cp.VehicleBrand)
}

func TestClaimRecord_Helpers(t *testing.T) {
	var empty ClaimRecord
	assert.False(t, empty.IsThirdParty())
	assert.False(t, empty.AmountAbove(0))
	assert.False(t, empty.AgeAbove(0))
	assert.Equal(t, "Central", empty.RegionOr("Central"))

	c := ClaimRecord{
		Warranty:        Ptr("Third-Party Liability"),
		ClaimAmountPaid: Ptr(15000.0),
		PolicyholderAge: Ptr(61),
		ClaimRegion:     Ptr("  "),
	}
	assert.True(t, c.IsThirdParty())
	assert.False(t, c.AmountAbove(15000))
	assert.True(t, c.AmountAbove(14999.99))
	assert.True(t, c.AgeAbove(60))
	assert.Equal(t, "Central", c.RegionOr("Central"))
}

func TestClaimRecord_JSONUnsetFieldsAreNull(t *testing.T) {
	data, err := json.Marshal(ClaimRecord{ClaimAmountPaid: Ptr(0.0)})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Nil(t, m["policyholder_age"])
	assert.Contains(t, m, "policyholder_age")
	// Zero is a value, not "unset".
	assert.Equal(t, 0.0, m["claim_amount_paid"])
}

func TestDeref(t *testing.T) {
	assert.Equal(t, 0, Deref[int](nil))
	assert.Equal(t, "x", Deref(Ptr("x")))
}

func TestClaimInput_Presence(t *testing.T) {
	assert.False(t, ClaimInput{}.HasText())
	assert.False(t, ClaimInput{Text: Ptr("   ")}.HasText())
	assert.True(t, ClaimInput{Text: Ptr("hello")}.HasText())
	assert.False(t, ClaimInput{StructuredData: map[string]any{}}.HasStructured())
	assert.True(t, ClaimInput{StructuredData: map[string]any{"WARRANTY": "x"}}.HasStructured())
	assert.Len(t, StructuredFields(), 11)
}

func TestFormatEUR(t *testing.T) {
	assert.Equal(t, "€950.50", FormatEUR(950.5))
	assert.Contains(t, FormatEUR(18000), "18,000")
}
