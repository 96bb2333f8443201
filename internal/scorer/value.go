package scorer

import (
	"fmt"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/vocab"
)

// Premium thresholds for the customer value tiers.
const (
	VIPPremium     = 800.0
	PremiumPremium = 500.0
)

// ValueResult is the customer value tier with its single explanation.
type ValueResult struct {
	Tier    model.ValueTier `json:"tier"`
	Reasons []string        `json:"reasons"`
}

// CustomerValue tiers the customer by premium paid. When the premium is
// unknown the vehicle brand stands in for it.
func CustomerValue(c model.ClaimRecord) ValueResult {
	if p := c.PremiumAmountPaid; p != nil {
		switch {
		case *p > VIPPremium:
			return valueResult(model.ValueVIP, fmt.Sprintf("Premium > €800 (%s)", model.FormatEUR(*p)))
		case *p > PremiumPremium:
			return valueResult(model.ValuePremium, fmt.Sprintf("Premium > €500 (%s)", model.FormatEUR(*p)))
		default:
			return valueResult(model.ValueStandard, fmt.Sprintf("Standard premium (%s)", model.FormatEUR(*p)))
		}
	}

	switch {
	case vocab.In(vocab.VIPBrands, c.VehicleBrand):
		return valueResult(model.ValueVIP, fmt.Sprintf("Premium unknown; luxury vehicle brand (%s)", *c.VehicleBrand))
	case vocab.In(vocab.PremiumBrands, c.VehicleBrand):
		return valueResult(model.ValuePremium, fmt.Sprintf("Premium unknown; premium vehicle brand (%s)", *c.VehicleBrand))
	default:
		return valueResult(model.ValueStandard, "Premium amount unknown")
	}
}

func valueResult(tier model.ValueTier, reason string) ValueResult {
	return ValueResult{Tier: tier, Reasons: []string{reason}}
}
