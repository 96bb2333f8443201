package model

import (
	"slices"
	"time"
)

// UrgencyLevel classifies how quickly a claim must be handled.
type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "Low"
	UrgencyMedium UrgencyLevel = "Medium"
	UrgencyHigh   UrgencyLevel = "High"
)

// ValueTier classifies the customer's commercial value.
type ValueTier string

const (
	ValueStandard ValueTier = "Standard"
	ValuePremium  ValueTier = "Premium"
	ValueVIP      ValueTier = "VIP"
)

// RoutedBy names the branch of the decision procedure that chose the team.
type RoutedBy string

const (
	RoutedByFraud      RoutedBy = "fraud"
	RoutedByClassifier RoutedBy = "classifier"
	RoutedByRules      RoutedBy = "rules"
)

// ClassifierSuggestion records what the learned classifier proposed and
// whether the router accepted it.
type ClassifierSuggestion struct {
	Department string  `json:"department"`
	Confidence float64 `json:"confidence"`
	Applied    bool    `json:"applied"`
}

// DecisionRecord is the immutable routing outcome for one claim. A
// re-routing request produces a new record.
type DecisionRecord struct {
	AssignedTeam     string                `json:"assigned_team"`
	Urgency          UrgencyLevel          `json:"urgency"`
	RiskScore        float64               `json:"risk_score"`
	CustomerValue    ValueTier             `json:"customer_value"`
	Reasoning        []string              `json:"reasoning"`
	ClaimData        ClaimRecord           `json:"claim_data"`
	ClaimID          string                `json:"claim_id"`
	IsPotentialFraud bool                  `json:"is_potential_fraud"`
	FraudIndicators  []string              `json:"fraud_indicators"`
	RoutedBy         RoutedBy              `json:"routed_by"`
	MatchedRule      string                `json:"matched_rule,omitempty"`
	Classifier       *ClassifierSuggestion `json:"classifier,omitempty"`
	DecidedAt        time.Time             `json:"decided_at,omitzero"`
}

// Clone returns a deep copy of the record.
func (d *DecisionRecord) Clone() *DecisionRecord {
	if d == nil {
		return nil
	}
	out := *d
	out.Reasoning = slices.Clone(d.Reasoning)
	out.FraudIndicators = slices.Clone(d.FraudIndicators)
	out.ClaimData = d.ClaimData.Clone()
	if d.Classifier != nil {
		cs := *d.Classifier
		out.Classifier = &cs
	}
	return &out
}
