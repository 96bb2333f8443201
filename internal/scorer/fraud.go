package scorer

import (
	"fmt"
	"strings"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/rules"
	"github.com/sells-group/claim-router/internal/vocab"
)

// FraudThreshold is the score at which a claim is flagged.
const FraudThreshold = 0.5

// Fraud evaluates the built-in fraud triggers. See Scorer.Fraud for the
// variant that also applies configured rules.
func Fraud(c model.ClaimRecord) model.FraudAssessment {
	return fraud(c, nil)
}

func fraud(c model.ClaimRecord, extra *rules.Set) model.FraudAssessment {
	var score float64
	indicators := []string{}

	if c.AmountAbove(25000) && !vocab.KnownBrand(c.VehicleBrand) {
		score += 0.5
		indicators = append(indicators, fmt.Sprintf("Very high claim amount (%s) with unknown vehicle brand", model.FormatEUR(*c.ClaimAmountPaid)))
	}

	if c.AmountAbove(15000) && vocab.In(vocab.HighRiskRegions, c.ClaimRegion) {
		score += 0.4
		indicators = append(indicators, fmt.Sprintf("High claim amount (%s) in high-risk region (%s)", model.FormatEUR(*c.ClaimAmountPaid), *c.ClaimRegion))
	}

	if c.IsThirdParty() && c.AmountAbove(20000) {
		score += 0.3
		indicators = append(indicators, "Third-party liability claim above €20,000")
	}

	if missing := missingKeyFields(c); len(missing) >= 2 && c.AmountAbove(10000) {
		score += 0.5
		indicators = append(indicators, fmt.Sprintf("Missing key information (%s) on a claim above €10,000", strings.Join(missing, ", ")))
	}

	for _, hit := range extra.Evaluate(c) {
		score += hit.Weight
		indicators = append(indicators, hit.Indicator)
	}

	score = capScore(score)
	return model.FraudAssessment{
		IsPotentialFraud: score >= FraudThreshold,
		Score:            score,
		Indicators:       indicators,
	}
}

func missingKeyFields(c model.ClaimRecord) []string {
	var missing []string
	if c.PolicyholderAge == nil {
		missing = append(missing, "age")
	}
	if blank(c.VehicleBrand) {
		missing = append(missing, "brand")
	}
	if blank(c.ClaimRegion) {
		missing = append(missing, "region")
	}
	return missing
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
