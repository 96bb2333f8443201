package classifier

import (
	"strings"
	"time"

	"github.com/sells-group/claim-router/internal/model"
)

// Defaults substituted for fields the claim does not carry.
const (
	DefaultAge      = 40
	DefaultCategory = "Unknown"
	DefaultYear     = 2025
	DefaultMonth    = 1
)

// Derived feature names.
const (
	FeatureClaimYear  = "CLAIM_YEAR"
	FeatureClaimMonth = "CLAIM_MONTH"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
}

// claimDate returns the year and month of the claim date, or the fixed
// fallback when the date is absent or unparseable.
func claimDate(c model.ClaimRecord) (int, int) {
	if c.ClaimDate == nil {
		return DefaultYear, DefaultMonth
	}
	s := strings.TrimSpace(*c.ClaimDate)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), int(t.Month())
		}
	}
	return DefaultYear, DefaultMonth
}

func categorical(v *string) string {
	if v == nil {
		return DefaultCategory
	}
	return *v
}

// Vector builds the feature row in the exact order of features. Unknown
// feature names contribute 0, as do categories the encoders have never
// seen.
func Vector(c model.ClaimRecord, features []string, enc Encoders) []float64 {
	year, month := claimDate(c)
	x := make([]float64, len(features))

	for i, name := range features {
		switch strings.ToUpper(name) {
		case model.FieldPolicyholderAge:
			age := DefaultAge
			if c.PolicyholderAge != nil {
				age = *c.PolicyholderAge
			}
			x[i] = float64(age)
		case model.FieldClaimAmountPaid:
			x[i] = model.Deref(c.ClaimAmountPaid)
		case model.FieldPremiumAmountPaid:
			x[i] = model.Deref(c.PremiumAmountPaid)
		case FeatureClaimYear:
			x[i] = float64(year)
		case FeatureClaimMonth:
			x[i] = float64(month)
		case model.FieldPolicyholderGender:
			x[i] = enc.code(name, categorical(c.PolicyholderGender))
		case model.FieldWarranty:
			x[i] = enc.code(name, categorical(c.Warranty))
		case model.FieldClaimRegion:
			x[i] = enc.code(name, categorical(c.ClaimRegion))
		case model.FieldClaimProvince:
			x[i] = enc.code(name, categorical(c.ClaimProvince))
		case model.FieldVehicleBrand:
			x[i] = enc.code(name, categorical(c.VehicleBrand))
		case model.FieldVehicleModel:
			x[i] = enc.code(name, categorical(c.VehicleModel))
		}
	}
	return x
}

// code returns the position of value in the feature's class list. Feature
// names match case-insensitively; unseen values map to 0.
func (e Encoders) code(feature, value string) float64 {
	classes, ok := e[feature]
	if !ok {
		for k, v := range e {
			if strings.EqualFold(k, feature) {
				classes, ok = v, true
				break
			}
		}
	}
	if !ok {
		return 0
	}
	for i, c := range classes {
		if c == value {
			return float64(i)
		}
	}
	return 0
}
