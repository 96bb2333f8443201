// Package extract turns free text or a structured field mapping into a
// normalized ClaimRecord.
package extract

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/claim-router/internal/model"
)

// ErrInvalidInput is returned when the input carries neither free text nor
// structured data.
var ErrInvalidInput = eris.New("input must contain either 'text' or 'structured_data'")

// Extractor converts raw claim input into a ClaimRecord. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	recognizer EntityRecognizer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecognizer enables an entity recognizer that is consulted before the
// lexical detectors for every free-text field.
func WithRecognizer(r EntityRecognizer) Option {
	return func(e *Extractor) {
		e.recognizer = r
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract dispatches to the free-text or structured path. Text takes
// precedence when both are present.
func (e *Extractor) Extract(in model.ClaimInput) (model.ClaimRecord, error) {
	switch {
	case in.HasText():
		return e.FromText(*in.Text), nil
	case in.HasStructured():
		return FromStructured(in.StructuredData), nil
	default:
		return model.ClaimRecord{}, eris.Wrap(ErrInvalidInput, "extract")
	}
}

// FromStructured maps the fixed set of structured field names onto a
// ClaimRecord. Keys are matched case-sensitively; unknown keys and JSON
// nulls are ignored.
func FromStructured(data map[string]any) model.ClaimRecord {
	var rec model.ClaimRecord

	for key, raw := range data {
		if raw == nil {
			continue
		}

		var ok bool
		switch key {
		case model.FieldPolicyholderAge:
			rec.PolicyholderAge, ok = asInt(raw)
		case model.FieldClaimAmountPaid:
			rec.ClaimAmountPaid, ok = asFloat(raw)
		case model.FieldPremiumAmountPaid:
			rec.PremiumAmountPaid, ok = asFloat(raw)
		case model.FieldWarranty:
			rec.Warranty, ok = asString(raw)
		case model.FieldClaimRegion:
			rec.ClaimRegion, ok = asString(raw)
		case model.FieldClaimProvince:
			rec.ClaimProvince, ok = asString(raw)
		case model.FieldVehicleBrand:
			rec.VehicleBrand, ok = asString(raw)
		case model.FieldVehicleModel:
			rec.VehicleModel, ok = asString(raw)
		case model.FieldPolicyholderGender:
			rec.PolicyholderGender, ok = asString(raw)
		case model.FieldClaimDate:
			rec.ClaimDate, ok = asString(raw)
		case model.FieldClaimID:
			var id *string
			id, ok = asString(raw)
			if ok {
				rec.ClaimID = *id
			}
		default:
			continue
		}

		if !ok {
			zap.L().Debug("extract: ignoring unrepresentable structured value",
				zap.String("field", key),
				zap.String("type", fmt.Sprintf("%T", raw)),
			)
		}
	}

	return rec
}

func asInt(v any) (*int, bool) {
	switch n := v.(type) {
	case int:
		return &n, true
	case int64:
		i := int(n)
		return &i, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, false
		}
		i := int(n)
		return &i, true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			return nil, false
		}
		return &i, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, false
		}
		return &i, true
	}
	return nil, false
}

func asFloat(v any) (*float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, false
		}
		return &n, true
	case float32:
		f := float64(n)
		return &f, true
	case int:
		f := float64(n)
		return &f, true
	case int64:
		f := float64(n)
		return &f, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return &f, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, false
		}
		return &f, true
	}
	return nil, false
}

func asString(v any) (*string, bool) {
	switch s := v.(type) {
	case string:
		return &s, true
	case float64, float32, int, int64, json.Number, bool:
		str := fmt.Sprint(s)
		return &str, true
	}
	return nil, false
}
