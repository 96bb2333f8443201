package scorer

import (
	"fmt"

	"github.com/sells-group/claim-router/internal/model"
)

// Urgency thresholds.
const (
	UrgencyHighAt   = 0.6
	UrgencyMediumAt = 0.3
)

// UrgencyResult is the outcome of urgency scoring.
type UrgencyResult struct {
	Score   float64            `json:"score"`
	Level   model.UrgencyLevel `json:"level"`
	Reasons []string           `json:"reasons"`
}

// Urgency accumulates amount, age and coverage triggers. Within the amount
// and age categories only the highest tier counts.
func Urgency(c model.ClaimRecord) UrgencyResult {
	var score float64
	var reasons []string

	switch {
	case c.AmountAbove(15000):
		score += 0.4
		reasons = append(reasons, fmt.Sprintf("Claim amount > €15,000 (%s)", model.FormatEUR(*c.ClaimAmountPaid)))
	case c.AmountAbove(10000):
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("Claim amount > €10,000 (%s)", model.FormatEUR(*c.ClaimAmountPaid)))
	case c.AmountAbove(5000):
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("Claim amount > €5,000 (%s)", model.FormatEUR(*c.ClaimAmountPaid)))
	}

	switch {
	case c.AgeAbove(70):
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("Policyholder age > 70 (%d)", *c.PolicyholderAge))
	case c.AgeAbove(60):
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("Policyholder age > 60 (%d)", *c.PolicyholderAge))
	}

	if c.IsThirdParty() {
		score += 0.3
		reasons = append(reasons, "Third-party liability claim")
	}

	score = round2(score)
	return UrgencyResult{
		Score:   score,
		Level:   urgencyLevel(score),
		Reasons: reasons,
	}
}

func urgencyLevel(score float64) model.UrgencyLevel {
	switch {
	case score >= UrgencyHighAt:
		return model.UrgencyHigh
	case score >= UrgencyMediumAt:
		return model.UrgencyMedium
	default:
		return model.UrgencyLow
	}
}
