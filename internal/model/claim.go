package model

import (
	"strings"

	"github.com/google/uuid"
)

// ClaimRecord is the normalized view of one insurance claim. Every field
// except ClaimID is optional; nil means "unknown", never zero.
type ClaimRecord struct {
	PolicyholderAge    *int             `json:"policyholder_age"`
	PolicyholderGender *string          `json:"policyholder_gender"`
	Warranty           *string          `json:"warranty"`
	ClaimAmountPaid    *float64         `json:"claim_amount_paid"`
	PremiumAmountPaid  *float64         `json:"premium_amount_paid"`
	ClaimRegion        *string          `json:"claim_region"`
	ClaimProvince      *string          `json:"claim_province"`
	VehicleBrand       *string          `json:"vehicle_brand"`
	VehicleModel       *string          `json:"vehicle_model"`
	ClaimID            string           `json:"claim_id,omitempty"`
	ClaimDate          *string          `json:"claim_date"`
	RawText            *string          `json:"raw_text"`
	Fraud              *FraudAssessment `json:"fraud_indicator"`
}

// FraudAssessment is produced once per claim by the fraud scorer.
type FraudAssessment struct {
	IsPotentialFraud bool     `json:"is_potential_fraud"`
	Score            float64  `json:"fraud_score"`
	Indicators       []string `json:"fraud_indicators"`
}

// Clone returns a deep copy so the assessment can be embedded without
// sharing the indicator slice.
func (f *FraudAssessment) Clone() *FraudAssessment {
	if f == nil {
		return nil
	}
	out := *f
	out.Indicators = append([]string(nil), f.Indicators...)
	return &out
}

// Clone returns a deep copy of the record. Pointer fields are re-allocated
// so the copy shares no memory with the original.
func (c ClaimRecord) Clone() ClaimRecord {
	out := c
	out.PolicyholderAge = clonePtr(c.PolicyholderAge)
	out.PolicyholderGender = clonePtr(c.PolicyholderGender)
	out.Warranty = clonePtr(c.Warranty)
	out.ClaimAmountPaid = clonePtr(c.ClaimAmountPaid)
	out.PremiumAmountPaid = clonePtr(c.PremiumAmountPaid)
	out.ClaimRegion = clonePtr(c.ClaimRegion)
	out.ClaimProvince = clonePtr(c.ClaimProvince)
	out.VehicleBrand = clonePtr(c.VehicleBrand)
	out.VehicleModel = clonePtr(c.VehicleModel)
	out.ClaimDate = clonePtr(c.ClaimDate)
	out.RawText = clonePtr(c.RawText)
	out.Fraud = c.Fraud.Clone()
	return out
}

// IsThirdParty reports whether the warranty mentions third-party cover.
func (c ClaimRecord) IsThirdParty() bool {
	return c.Warranty != nil && strings.Contains(strings.ToLower(*c.Warranty), "third-party")
}

// AmountAbove reports whether the claim amount is known and strictly above limit.
func (c ClaimRecord) AmountAbove(limit float64) bool {
	return c.ClaimAmountPaid != nil && *c.ClaimAmountPaid > limit
}

// AgeAbove reports whether the policyholder age is known and strictly above limit.
func (c ClaimRecord) AgeAbove(limit int) bool {
	return c.PolicyholderAge != nil && *c.PolicyholderAge > limit
}

// RegionOr returns the claim region, or fallback when unknown or blank.
func (c ClaimRecord) RegionOr(fallback string) string {
	if c.ClaimRegion == nil || strings.TrimSpace(*c.ClaimRegion) == "" {
		return fallback
	}
	return *c.ClaimRegion
}

// NewClaimID synthesizes a short identifier of the form CLAIM-XXXXXXXX.
// Collisions are possible; the store decides how to handle them.
func NewClaimID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "CLAIM-" + strings.ToUpper(hex[:8])
}

// Ptr returns a pointer to v. Handy for building sparse records.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the pointed-to value or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
