// Package scorer computes the urgency, risk, customer value and fraud
// assessments of a claim. Every scorer is a pure function of the record.
package scorer

import (
	"context"
	"math"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/claim-router/internal/model"
	"github.com/sells-group/claim-router/internal/rules"
)

// Assessment bundles the four scores of one claim.
type Assessment struct {
	Urgency UrgencyResult         `json:"urgency"`
	Risk    RiskResult            `json:"risk"`
	Value   ValueResult           `json:"value"`
	Fraud   model.FraudAssessment `json:"fraud"`
}

// Scorer runs the four scorers. The zero value applies only the built-in
// fraud triggers.
type Scorer struct {
	rules *rules.Set
}

// New creates a Scorer. A nil rule set disables configured fraud rules.
func New(rs *rules.Set) *Scorer {
	return &Scorer{rules: rs}
}

// Fraud evaluates the built-in triggers followed by any configured rules.
func (s *Scorer) Fraud(c model.ClaimRecord) model.FraudAssessment {
	return fraud(c, s.rules)
}

// Assess runs the scorers concurrently and waits for all of them. The
// record is only read.
func (s *Scorer) Assess(ctx context.Context, c model.ClaimRecord) (*Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "scorer: assess")
	}

	var a Assessment
	var g errgroup.Group

	g.Go(guard("urgency", func() { a.Urgency = Urgency(c) }))
	g.Go(guard("risk", func() { a.Risk = Risk(c) }))
	g.Go(guard("value", func() { a.Value = CustomerValue(c) }))
	g.Go(guard("fraud", func() { a.Fraud = s.Fraud(c) }))

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "scorer: assess")
	}
	return &a, nil
}

// guard turns a panic in one branch into an error so the join still
// completes and the caller gets no partial assessment.
func guard(name string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = eris.Errorf("scorer: %s panicked: %v", name, r)
			}
		}()
		fn()
		return nil
	}
}

// round2 drops float noise such as 0.7000000000000001 so threshold
// comparisons behave like the decimal weights read.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func capScore(v float64) float64 {
	return math.Min(round2(v), 1.0)
}
