package classifier

import (
	"fmt"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/vocab"
)

// Department labels produced by the trained model.
const (
	DeptHighValue = "High Value Claims"
	DeptLegal     = "Legal Claims"
	DeptSenior    = "Senior Claims"
	DeptVIP       = "VIP Claims"
	DeptSouth     = "Regional Team - South"
	DeptUrgent    = "Urgent Claims"
	DeptHighRisk  = "High-Risk Claims"
	DeptStandard  = "Standard"
)

// ReasonUnavailable is the sole reason returned when no prediction can be
// made.
const ReasonUnavailable = "model unavailable"

const reasonFallback = "Based on overall claim characteristics"

// explain cites the claim fields that plausibly support dept. The
// confidence is always the first reason.
func explain(c model.ClaimRecord, dept string, confidence float64) []string {
	reasons := []string{fmt.Sprintf("ML model confidence: %.2f", confidence)}

	switch dept {
	case DeptHighValue:
		if c.AmountAbove(5000) {
			reasons = append(reasons, fmt.Sprintf("Claim amount (%s) exceeds €5,000", model.FormatEUR(*c.ClaimAmountPaid)))
		}
		if vocab.In(vocab.ClassifierLuxuryBrands, c.VehicleBrand) {
			reasons = append(reasons, "Luxury vehicle brand: "+*c.VehicleBrand)
		}
	case DeptLegal:
		if c.IsThirdParty() {
			reasons = append(reasons, "Third-party liability warranty")
		}
	case DeptSenior:
		if c.AgeAbove(65) {
			reasons = append(reasons, fmt.Sprintf("Policyholder age (%d) exceeds 65 years", *c.PolicyholderAge))
		}
	case DeptVIP:
		if c.PremiumAmountPaid != nil && *c.PremiumAmountPaid > 400 {
			reasons = append(reasons, fmt.Sprintf("Premium amount (%s) exceeds €400", model.FormatEUR(*c.PremiumAmountPaid)))
		}
	case DeptSouth:
		if vocab.In(vocab.SouthernRegions, c.ClaimRegion) {
			reasons = append(reasons, "Claim from southern region: "+*c.ClaimRegion)
		}
	}

	if len(reasons) == 1 {
		reasons = append(reasons, reasonFallback)
	}
	return reasons
}
