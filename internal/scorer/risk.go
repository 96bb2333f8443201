package scorer

import (
	"fmt"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/vocab"
)

// RiskResult is the outcome of risk scoring. Score is capped at 1.
type RiskResult struct {
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Risk scores vehicle, amount, region and coverage exposure.
func Risk(c model.ClaimRecord) RiskResult {
	var score float64
	var reasons []string

	if vocab.In(vocab.RiskLuxuryBrands, c.VehicleBrand) {
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("Luxury vehicle brand (%s)", *c.VehicleBrand))
	}

	switch {
	case c.AmountAbove(20000):
		score += 0.4
		reasons = append(reasons, fmt.Sprintf("Very high claim amount (%s)", model.FormatEUR(*c.ClaimAmountPaid)))
	case c.AmountAbove(10000):
		score += 0.2
		reasons = append(reasons, fmt.Sprintf("High claim amount (%s)", model.FormatEUR(*c.ClaimAmountPaid)))
	}

	if vocab.In(vocab.HighRiskRegions, c.ClaimRegion) {
		score += 0.3
		reasons = append(reasons, fmt.Sprintf("High-risk region (%s)", *c.ClaimRegion))
	}

	if c.IsThirdParty() {
		score += 0.2
		reasons = append(reasons, "Third-party liability complexity")
	}

	return RiskResult{Score: capScore(score), Reasons: reasons}
}
