package model

import "strings"

// ClaimInput is the extraction input contract: either free text or a flat
// mapping of known field names to values.
type ClaimInput struct {
	Text           *string        `json:"text,omitempty"`
	StructuredData map[string]any `json:"structured_data,omitempty"`
}

// HasText reports whether the input carries non-blank free text.
func (in ClaimInput) HasText() bool {
	return in.Text != nil && strings.TrimSpace(*in.Text) != ""
}

// HasStructured reports whether the input carries a non-empty field mapping.
func (in ClaimInput) HasStructured() bool {
	return len(in.StructuredData) > 0
}

// Structured field names accepted on the structured extraction path.
const (
	FieldPolicyholderAge    = "POLICYHOLDER_AGE"
	FieldWarranty           = "WARRANTY"
	FieldClaimAmountPaid    = "CLAIM_AMOUNT_PAID"
	FieldPremiumAmountPaid  = "PREMIUM_AMOUNT_PAID"
	FieldClaimRegion        = "CLAIM_REGION"
	FieldClaimProvince      = "CLAIM_PROVINCE"
	FieldVehicleBrand       = "VEHICLE_BRAND"
	FieldVehicleModel       = "VEHICLE_MODEL"
	FieldPolicyholderGender = "POLICYHOLDER_GENDER"
	FieldClaimID            = "CLAIM_ID"
	FieldClaimDate          = "CLAIM_DATE"
)

// StructuredFields lists every recognized structured field name.
func StructuredFields() []string {
	return []string{
		FieldPolicyholderAge,
		FieldWarranty,
		FieldClaimAmountPaid,
		FieldPremiumAmountPaid,
		FieldClaimRegion,
		FieldClaimProvince,
		FieldVehicleBrand,
		FieldVehicleModel,
		FieldPolicyholderGender,
		FieldClaimID,
		FieldClaimDate,
	}
}
