// Package monitoring summarizes routing decisions for the adjuster
// dashboard and batch reports.
package monitoring

import (
	"context"
	"math"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/store"
)

// Snapshot holds a point-in-time view of routing activity.
type Snapshot struct {
	Total int `json:"total"`

	ByTeam      map[string]int `json:"by_team"`
	ByUrgency   map[string]int `json:"by_urgency"`
	ByValueTier map[string]int `json:"by_value_tier"`
	ByRoutedBy  map[string]int `json:"by_routed_by"`

	// Fraud metrics.
	FraudCount int     `json:"fraud_count"`
	FraudRate  float64 `json:"fraud_rate"`

	AvgRiskScore float64 `json:"avg_risk_score"`

	// Classifier metrics. Suggested counts decisions where the model
	// proposed a department; Applied counts those it actually routed.
	ClassifierSuggested int `json:"classifier_suggested"`
	ClassifierApplied   int `json:"classifier_applied"`

	CollectedAt time.Time `json:"collected_at"`
}

// Summarize builds a Snapshot over decs.
func Summarize(decs []model.DecisionRecord) *Snapshot {
	snap := &Snapshot{
		Total:       len(decs),
		ByTeam:      map[string]int{},
		ByUrgency:   map[string]int{},
		ByValueTier: map[string]int{},
		ByRoutedBy:  map[string]int{},
		CollectedAt: time.Now().UTC(),
	}

	var totalRisk float64
	for _, d := range decs {
		snap.ByTeam[d.AssignedTeam]++
		snap.ByUrgency[string(d.Urgency)]++
		snap.ByValueTier[string(d.CustomerValue)]++
		if d.RoutedBy != "" {
			snap.ByRoutedBy[string(d.RoutedBy)]++
		}
		if d.IsPotentialFraud {
			snap.FraudCount++
		}
		if d.Classifier != nil {
			snap.ClassifierSuggested++
			if d.Classifier.Applied {
				snap.ClassifierApplied++
			}
		}
		totalRisk += d.RiskScore
	}

	if snap.Total > 0 {
		snap.FraudRate = round4(float64(snap.FraudCount) / float64(snap.Total))
		snap.AvgRiskScore = round4(totalRisk / float64(snap.Total))
	}
	return snap
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// DecisionLister abstracts the store method needed by the collector.
type DecisionLister interface {
	ListDecisions(ctx context.Context, filter store.DecisionFilter) ([]model.DecisionRecord, error)
}

// Collector gathers decision metrics from the store.
type Collector struct {
	store DecisionLister
}

// NewCollector creates a new metrics collector.
func NewCollector(st DecisionLister) *Collector {
	return &Collector{store: st}
}

// Collect summarizes the latest decision of every claim, optionally
// restricted to one team.
func (c *Collector) Collect(ctx context.Context, team string) (*Snapshot, error) {
	decs, err := c.store.ListDecisions(ctx, store.DecisionFilter{})
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list decisions")
	}

	decs = Latest(decs)
	if team != "" {
		kept := decs[:0]
		for _, d := range decs {
			if d.AssignedTeam == team {
				kept = append(kept, d)
			}
		}
		decs = kept
	}
	return Summarize(decs), nil
}

// Latest keeps the last decision per claim ID, ordered by each claim's
// first appearance.
func Latest(decs []model.DecisionRecord) []model.DecisionRecord {
	pos := make(map[string]int, len(decs))
	out := make([]model.DecisionRecord, 0, len(decs))
	for _, d := range decs {
		if i, ok := pos[d.ClaimID]; ok {
			out[i] = d
			continue
		}
		pos[d.ClaimID] = len(out)
		out = append(out, d)
	}
	return out
}
